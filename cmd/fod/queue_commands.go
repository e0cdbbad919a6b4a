package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dynamo-fod/fod/internal/fodconfig"
	"github.com/dynamo-fod/fod/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect transfer and deletion task rows",
	}
	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var kind string
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transfer or deletion tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *fodconfig.Config, store *queue.Store) error {
				stdout := cmd.OutOrStdout()
				switch strings.ToLower(kind) {
				case "transfer", "":
					tasks, err := store.ListTransferTasks(cmd.Context(), queue.Status(status))
					if err != nil {
						return err
					}
					rows := make([][]string, 0, len(tasks))
					for _, t := range tasks {
						rows = append(rows, []string{
							strconv.FormatInt(t.ID, 10), string(t.Status), t.SourceSite, t.DestinationSite, t.Source, t.Destination,
						})
					}
					fmt.Fprint(stdout, renderTable(
						[]string{"ID", "Status", "Source Site", "Dest Site", "Source", "Destination"},
						rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}))
				case "deletion":
					tasks, err := store.ListDeletionTasks(cmd.Context(), queue.Status(status))
					if err != nil {
						return err
					}
					rows := make([][]string, 0, len(tasks))
					for _, t := range tasks {
						rows = append(rows, []string{strconv.FormatInt(t.ID, 10), string(t.Status), t.Site, t.File})
					}
					fmt.Fprint(stdout, renderTable(
						[]string{"ID", "Status", "Site", "File"},
						rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft}))
				default:
					return fmt.Errorf("unknown --kind %q, want \"transfer\" or \"deletion\"", kind)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "transfer", "Task kind: transfer or deletion")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (new, staging, staged, queued, active, done, failed, cancelled)")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "show <id> [id...]",
		Short: "Show one or more transfer or deletion tasks",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, len(args))
			for i, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid id %q: %w", arg, err)
				}
				ids[i] = id
			}
			return ctx.withStore(func(cfg *fodconfig.Config, store *queue.Store) error {
				stdout := cmd.OutOrStdout()
				switch strings.ToLower(kind) {
				case "transfer", "":
					tasks, err := store.TransferTasksByIDs(cmd.Context(), ids)
					if err != nil {
						return err
					}
					if len(tasks) == 0 {
						return fmt.Errorf("no transfer task with the given id(s)")
					}
					for i, task := range tasks {
						if i > 0 {
							fmt.Fprintln(stdout)
						}
						fmt.Fprintf(stdout, "id:              %d\n", task.ID)
						fmt.Fprintf(stdout, "status:          %s\n", task.Status)
						fmt.Fprintf(stdout, "source:          %s\n", task.Source)
						fmt.Fprintf(stdout, "destination:     %s\n", task.Destination)
						fmt.Fprintf(stdout, "source_site:     %s\n", task.SourceSite)
						fmt.Fprintf(stdout, "destination_site:%s\n", task.DestinationSite)
						fmt.Fprintf(stdout, "mss_source:      %t\n", task.MSSSource)
						if task.ExitCode != nil {
							fmt.Fprintf(stdout, "exitcode:        %d\n", *task.ExitCode)
						}
						fmt.Fprintf(stdout, "message:         %s\n", task.Message)
					}
				case "deletion":
					tasks, err := store.DeletionTasksByIDs(cmd.Context(), ids)
					if err != nil {
						return err
					}
					if len(tasks) == 0 {
						return fmt.Errorf("no deletion task with the given id(s)")
					}
					for i, task := range tasks {
						if i > 0 {
							fmt.Fprintln(stdout)
						}
						fmt.Fprintf(stdout, "id:      %d\n", task.ID)
						fmt.Fprintf(stdout, "status:  %s\n", task.Status)
						fmt.Fprintf(stdout, "site:    %s\n", task.Site)
						fmt.Fprintf(stdout, "file:    %s\n", task.File)
						if task.ExitCode != nil {
							fmt.Fprintf(stdout, "exitcode:%d\n", *task.ExitCode)
						}
						fmt.Fprintf(stdout, "message: %s\n", task.Message)
					}
				default:
					return fmt.Errorf("unknown --kind %q, want \"transfer\" or \"deletion\"", kind)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "transfer", "Task kind: transfer or deletion")
	return cmd
}
