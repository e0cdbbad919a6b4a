package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dynamo-fod/fod/internal/fodconfig"
	"github.com/dynamo-fod/fod/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue status counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *fodconfig.Config, store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				colorize := shouldColorize(stdout)
				fmt.Fprintln(stdout, renderHeader("Queue Status", colorize))

				if len(stats) == 0 {
					fmt.Fprintln(stdout, "Queue is empty")
					return nil
				}

				order := []queue.Status{
					queue.StatusNew, queue.StatusStaging, queue.StatusStaged,
					queue.StatusQueued, queue.StatusActive,
					queue.StatusDone, queue.StatusFailed, queue.StatusCancelled,
				}

				rows := make([][]string, 0, len(stats))
				for _, status := range order {
					count, ok := stats[status]
					if !ok {
						continue
					}
					rows = append(rows, []string{string(status), fmt.Sprintf("%d", count)})
				}
				table := renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
				fmt.Fprint(stdout, table)
				return nil
			})
		},
	}
}
