package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"v2s/internal/ipc"
)

func newEngineCommand(ctx *commandContext) *cobra.Command {
	engineCmd := &cobra.Command{
		Use:   "engine",
		Short: "Manage the transcription worker process",
	}

	engineCmd.AddCommand(&cobra.Command{
		Use:   "restart",
		Short: "Replace the worker process with a fresh one",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.EngineRestart()
				if err != nil {
					return err
				}
				if resp.Running {
					fmt.Fprintf(cmd.OutOrStdout(), "Engine restarted (pid %d)\n", resp.PID)
				} else {
					fmt.Fprintln(cmd.OutOrStdout(), "Engine restart requested, worker not running yet")
				}
				return nil
			})
		},
	})

	return engineCmd
}
