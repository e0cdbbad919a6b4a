package daemonlife

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"

	"github.com/dynamo-fod/fod/internal/fodconfig"
	"github.com/dynamo-fod/fod/internal/logging"
	"github.com/dynamo-fod/fod/internal/queue"
	"github.com/dynamo-fod/fod/internal/scheduler"
)

// Daemon owns the process-level lifecycle around a Scheduler: resource
// limits, privilege drop, single-instance locking, crash recovery, and the
// shutdown drain. It is the FOD's equivalent of the teacher's
// daemon.Daemon, generalized from a workflow.Manager to a
// scheduler.Scheduler.
type Daemon struct {
	cfg       *fodconfig.Config
	store     *queue.Store
	scheduler *scheduler.Scheduler
	logger    *slog.Logger
	lockPath  string
	lock      *flock.Flock
}

// New constructs a Daemon. RaiseResourceLimits and DropPrivileges are the
// caller's responsibility to invoke before New, since they affect the
// whole process, not just this component (matching spec.md §4.6's
// ordering: rlimit bump and privilege drop happen once at the very start
// of the run, ahead of config-dependent setup).
func New(cfg *fodconfig.Config, store *queue.Store, sched *scheduler.Scheduler, logger *slog.Logger) *Daemon {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Daemon{
		cfg:       cfg,
		store:     store,
		scheduler: sched,
		logger:    logger,
		lockPath:  LockPath(cfg.Logging.Path),
	}
}

// Run acquires the single-instance lock, performs the startup crash
// recovery sweep, runs the scheduler until ctx is cancelled, then performs
// the shutdown drain described in spec.md §4.6. When hardShutdown reports
// true, pools are closed immediately instead of drained; "fod run" passes
// SignalDispatcher.Hard here.
func (d *Daemon) Run(ctx context.Context, hardShutdown func() bool) error {
	lock, err := AcquireLock(d.lockPath)
	if err != nil {
		return err
	}
	d.lock = lock
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(err))
		}
	}()

	if err := d.store.ResetInFlight(ctx); err != nil {
		return fmt.Errorf("startup crash recovery sweep: %w", err)
	}
	d.logger.Info("fod daemon started", logging.String("lock", d.lockPath))

	runErr := d.scheduler.Run(ctx)

	if hardShutdown != nil && hardShutdown() {
		d.logger.Warn("SIGTERM received, hard-terminating in-flight pools")
		d.scheduler.TransferPools.CloseAll()
		d.scheduler.StagingPools.CloseAll()
		d.scheduler.DeletionPools.CloseAll()
	} else {
		d.drain(context.Background())
	}

	if err := d.store.ResetInFlight(context.Background()); err != nil {
		d.logger.Warn("final crash recovery sweep failed", logging.Error(err))
	}
	d.logger.Info("fod daemon stopped")
	return runErr
}

// drain polls every pool registry until all report ready-for-recycle, per
// spec.md §4.6's "final loop polls all pools until each reports
// ready-for-recycle".
func (d *Daemon) drain(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		if d.scheduler.TransferPools.AllRecyclable() &&
			d.scheduler.StagingPools.AllRecyclable() &&
			d.scheduler.DeletionPools.AllRecyclable() {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
