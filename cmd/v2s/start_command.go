package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"v2s/internal/ipc"
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start processing the queued files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()

				// Capture the feed cursor before starting so a batch that
				// finishes quickly cannot slip past the follow loop.
				var since uint64
				if follow {
					tip, err := client.StatusUpdates(ipc.StatusUpdatesRequest{Since: math.MaxUint64})
					if err != nil {
						return err
					}
					since = tip.Next
				}

				resp, err := client.StartBatch()
				if err != nil {
					return err
				}
				if !resp.Started {
					if resp.Message != "" {
						fmt.Fprintln(stdout, resp.Message)
					} else {
						fmt.Fprintln(stdout, "Nothing to start")
					}
					return nil
				}
				fmt.Fprintln(stdout, "Batch started")
				if follow {
					return streamUpdatesFrom(cmd, client, since, true)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stay attached and print progress until the batch finishes")
	return cmd
}
