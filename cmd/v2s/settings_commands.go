package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"v2s/internal/api"
	"v2s/internal/ipc"
	"v2s/internal/settings"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change transcription settings",
	}

	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	settingsCmd.AddCommand(newSettingsSetCommand(ctx))

	return settingsCmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the settings applied to new jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SettingsGet()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Settings)
				}
				table := renderTable([]string{"Setting", "Value"}, buildSettingsRows(resp.Settings))
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit settings as JSON")
	return cmd
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Long: "Change one setting. Valid keys: " + strings.Join(settings.Keys(), ", ") + ".\n" +
			"Changes apply to jobs dispatched after the change.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			value := args[1]
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.SettingsSet(key, value)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, settingValue(resp.Settings, key))
				return nil
			})
		},
	}
}

func buildSettingsRows(view api.SettingsView) [][]string {
	rows := make([][]string, 0, len(settings.Keys()))
	for _, key := range settings.Keys() {
		rows = append(rows, []string{key, settingValue(view, key)})
	}
	return rows
}

func settingValue(view api.SettingsView, key string) string {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "model":
		return view.Model
	case "language":
		return view.Language
	case "device":
		return view.Device
	case "format":
		return view.Format
	case "outputname":
		return view.OutputName
	case "outputdir":
		return view.OutputDir
	case "preset":
		return view.Preset
	case "maxchars":
		return strconv.Itoa(view.MaxChars)
	case "maxlines":
		return strconv.Itoa(view.MaxLines)
	case "profanity":
		return yesNo(view.Profanity)
	case "autoopen":
		return yesNo(view.AutoOpen)
	default:
		return ""
	}
}
