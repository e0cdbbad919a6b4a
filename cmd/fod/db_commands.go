package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dynamo-fod/fod/internal/fodconfig"
	"github.com/dynamo-fod/fod/internal/queue"
)

// newDBCommand groups local dev/test database helpers. Bootstrap applies
// the embedded schema DDL directly — spec.md §6 is explicit that the
// daemon itself issues no DDL in production, so this path exists only to
// stand up a throwaway database for local experimentation and the test
// suite, never invoked by "fod run".
func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Local development database helpers",
	}
	dbCmd.AddCommand(newDBBootstrapCommand(ctx))
	return dbCmd
}

func newDBBootstrapCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the queue schema in a fresh database (dev/test only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *fodconfig.Config, store *queue.Store) error {
				if err := store.Bootstrap(cmd.Context()); err != nil {
					return fmt.Errorf("bootstrap schema: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "schema applied to %s\n", cfg.DB.DBParams)
				return nil
			})
		},
	}
}
