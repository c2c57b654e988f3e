package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"v2s/internal/events"
	"v2s/internal/ipc"
	"v2s/internal/queue"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream job progress until the current batch finishes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				if once {
					resp, err := client.StatusUpdates(ipc.StatusUpdatesRequest{})
					if err != nil {
						return err
					}
					if len(resp.Updates) == 0 {
						fmt.Fprintln(stdout, "No recent activity")
						return nil
					}
					for _, upd := range resp.Updates {
						fmt.Fprintln(stdout, formatUpdate(upd))
					}
					return nil
				}

				status, err := client.Status()
				if err != nil {
					return err
				}
				if !status.BatchActive {
					fmt.Fprintln(stdout, "No batch is running; queue files with `v2s add` and run `v2s start`")
					return nil
				}
				return streamUpdates(cmd, client, true)
			})
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Print buffered updates and exit")
	return cmd
}

// streamUpdates long-polls the daemon's update feed from the current tip and
// prints each update. With exitOnBatchEnd it returns once a batch finishes;
// otherwise it runs until the command context ends.
func streamUpdates(cmd *cobra.Command, client *ipc.Client, exitOnBatchEnd bool) error {
	tip, err := client.StatusUpdates(ipc.StatusUpdatesRequest{Since: math.MaxUint64})
	if err != nil {
		return err
	}
	return streamUpdatesFrom(cmd, client, tip.Next, exitOnBatchEnd)
}

func streamUpdatesFrom(cmd *cobra.Command, client *ipc.Client, since uint64, exitOnBatchEnd bool) error {
	ctx := cmd.Context()
	stdout := cmd.OutOrStdout()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		resp, err := client.StatusUpdates(ipc.StatusUpdatesRequest{
			Since:      since,
			Limit:      64,
			WaitMillis: 5000,
		})
		if err != nil {
			return fmt.Errorf("stream updates: %w", err)
		}
		for _, upd := range resp.Updates {
			fmt.Fprintln(stdout, formatUpdate(upd))
			if exitOnBatchEnd && upd.Kind == events.KindBatchFinished {
				return nil
			}
		}
		since = resp.Next
	}
}

func formatUpdate(upd ipc.Update) string {
	ts := upd.Timestamp.Local().Format("15:04:05")
	name := upd.DisplayName
	if name == "" {
		name = upd.SourcePath
	}
	switch upd.Kind {
	case events.KindJobAdded:
		return fmt.Sprintf("%s  queued %s", ts, name)
	case events.KindJobRemoved:
		return fmt.Sprintf("%s  removed %s", ts, name)
	case events.KindQueueReordered:
		return fmt.Sprintf("%s  queue reordered", ts)
	case events.KindBatchStarted:
		return fmt.Sprintf("%s  batch started", ts)
	case events.KindBatchFinished:
		return fmt.Sprintf("%s  batch finished", ts)
	case events.KindEngineStatus:
		return fmt.Sprintf("%s  engine %s", ts, upd.Message)
	case events.KindJobUpdated:
		return fmt.Sprintf("%s  %s", ts, formatJobUpdate(upd, name))
	default:
		return fmt.Sprintf("%s  %s %s", ts, upd.Kind, name)
	}
}

func formatJobUpdate(upd ipc.Update, name string) string {
	switch queue.Status(upd.Status) {
	case queue.StatusProcessing:
		if upd.Progress > 0 {
			return fmt.Sprintf("%s %3.0f%%", name, upd.Progress)
		}
		return fmt.Sprintf("%s processing", name)
	case queue.StatusDone:
		if upd.SavePath != "" {
			return fmt.Sprintf("%s done -> %s", name, upd.SavePath)
		}
		return fmt.Sprintf("%s done", name)
	case queue.StatusError:
		if upd.Message != "" {
			return fmt.Sprintf("%s failed: %s", name, upd.Message)
		}
		return fmt.Sprintf("%s failed", name)
	default:
		return fmt.Sprintf("%s %s", name, upd.Status)
	}
}
