package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"v2s/internal/ipc"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List subtitle layout presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.PresetList()
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp.Presets)
				}
				rows := make([][]string, 0, len(resp.Presets))
				for _, p := range resp.Presets {
					rows = append(rows, []string{
						p.Name,
						p.Label,
						fmt.Sprintf("%d", p.MaxChars),
						fmt.Sprintf("%d", p.MaxLines),
						yesNo(p.Builtin),
					})
				}
				table := renderTable([]string{"Name", "Label", "Max Chars", "Max Lines", "Builtin"}, rows, 2, 3)
				fmt.Fprint(cmd.OutOrStdout(), table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit presets as JSON")
	return cmd
}
