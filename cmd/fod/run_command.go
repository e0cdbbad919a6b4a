package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dynamo-fod/fod/internal/daemonlife"
	"github.com/dynamo-fod/fod/internal/gfal"
	"github.com/dynamo-fod/fod/internal/logging"
	"github.com/dynamo-fod/fod/internal/queue"
	"github.com/dynamo-fod/fod/internal/scheduler"
)

// newRunCommand is the daemon's foreground entrypoint, generalized from
// the teacher's "spindle daemon" hidden run command to the FOD's
// scheduler-driven lifecycle instead of a workflow manager.
func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the file operations daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			if err := daemonlife.RaiseResourceLimits(); err != nil {
				return fmt.Errorf("raise resource limits: %w", err)
			}
			if err := daemonlife.DropPrivileges(cfg.User); err != nil {
				return fmt.Errorf("drop privileges: %w", err)
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}

			store, err := queue.Open(cfg.DB.DBParams)
			if err != nil {
				return fmt.Errorf("open queue store: %w", err)
			}
			defer store.Close()

			adapter := gfal.New(&gfal.CLIClient{}, logger)
			sched := scheduler.New(store, adapter, cfg, logger)
			d := daemonlife.New(cfg, store, sched, logger)

			dispatcher := daemonlife.NewSignalDispatcher(cmd.Context())
			defer dispatcher.Close()

			return d.Run(dispatcher.Context(), dispatcher.Hard)
		},
	}
}
