package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"v2s/internal/api"
	"v2s/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show finished transcriptions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, enabled, err := fetchHistory(cmd, ctx, limit)
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			if !enabled {
				fmt.Fprintln(stdout, "History is disabled in the configuration")
				return nil
			}
			if asJSON {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(stdout, "No finished transcriptions yet")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.DisplayName,
					entry.SavePath,
					fmt.Sprintf("%d", entry.WordCount),
					fmt.Sprintf("%d%%", entry.Confidence),
					formatDisplayTime(entry.FinishedAt),
				})
			}
			table := renderTable([]string{"Name", "Output", "Words", "Confidence", "Finished"}, rows, 2, 3)
			fmt.Fprint(stdout, table)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit history as JSON")
	return cmd
}

// fetchHistory asks the daemon first and falls back to reading the history
// database directly when no daemon is reachable.
func fetchHistory(cmd *cobra.Command, ctx *commandContext, limit int) ([]api.HistoryEntry, bool, error) {
	client, dialErr := ctx.dialClient()
	if dialErr == nil {
		defer client.Close()
		resp, err := client.HistoryList(limit)
		if err != nil {
			return nil, false, err
		}
		return resp.Entries, resp.Enabled, nil
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, false, err
	}
	if !cfg.History.Enabled {
		return nil, false, nil
	}
	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return nil, false, fmt.Errorf("open history database: %w", err)
	}
	defer store.Close()
	entries, err := store.List(cmd.Context(), limit)
	if err != nil {
		return nil, false, err
	}
	return api.FromHistoryEntries(entries), true, nil
}
