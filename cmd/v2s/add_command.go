package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"v2s/internal/ipc"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var startAfter bool

	cmd := &cobra.Command{
		Use:   "add <path>...",
		Short: "Add media files to the transcription queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := make([]string, 0, len(args))
			for _, arg := range args {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return fmt.Errorf("resolve path %q: %w", arg, err)
				}
				paths = append(paths, abs)
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Enqueue(paths)
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				for _, job := range resp.Added {
					fmt.Fprintf(stdout, "Queued %s at position %d\n", job.DisplayName, job.Position+1)
				}
				for _, rejection := range resp.Rejected {
					fmt.Fprintf(stdout, "Skipped %s: %s\n", filepath.Base(rejection.Path), rejection.Reason)
				}
				if len(resp.Added) == 0 {
					return errors.New("no files were queued")
				}
				if startAfter {
					startResp, err := client.StartBatch()
					if err != nil {
						return err
					}
					if startResp.Started {
						fmt.Fprintln(stdout, "Batch started")
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&startAfter, "start", false, "Start processing immediately after queueing")
	return cmd
}
