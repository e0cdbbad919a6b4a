package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dynamo-fod/fod/internal/fodconfig"
	"github.com/dynamo-fod/fod/internal/gfal"
	"github.com/dynamo-fod/fod/internal/logging"
	"github.com/dynamo-fod/fod/internal/pool"
	"github.com/dynamo-fod/fod/internal/queue"
	"github.com/dynamo-fod/fod/internal/worker"
)

// Scheduler is the single control loop of spec.md §4.5.
type Scheduler struct {
	Store   *queue.Store
	Adapter *gfal.Adapter
	Config  *fodconfig.Config
	Logger  *slog.Logger

	TransferPools *pool.Registry
	StagingPools  *pool.Registry
	DeletionPools *pool.Registry

	TransferQueued *worker.QueuedIDSet
	DeletionQueued *worker.QueuedIDSet

	// CollectorPeriod overrides Config.Daemon.CollectorPeriod when set;
	// zero means "use the config value" (see collectorPeriod).
	CollectorPeriod time.Duration
}

// New wires a Scheduler with fresh pool registries and queued-id sets.
func New(store *queue.Store, adapter *gfal.Adapter, cfg *fodconfig.Config, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		Store:          store,
		Adapter:        adapter,
		Config:         cfg,
		Logger:         logger,
		TransferPools:  pool.NewRegistry(),
		StagingPools:   pool.NewRegistry(),
		DeletionPools:  pool.NewRegistry(),
		TransferQueued: worker.NewQueuedIDSet(),
		DeletionQueued: worker.NewQueuedIDSet(),
	}
}

func (s *Scheduler) period() time.Duration {
	seconds := 30
	if s.Config != nil && s.Config.Daemon.SchedulerPeriod > 0 {
		seconds = s.Config.Daemon.SchedulerPeriod
	}
	return time.Duration(seconds) * time.Second
}

// Run loops RunOnce at the configured period until ctx is cancelled or a
// pass returns an error, per spec.md §7's "scheduler-level exception:
// logged; stop flag set; cleanup sweep runs; process exits" — the caller
// (internal/daemonlife) owns triggering that shutdown when Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.period())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				s.Logger.Error("scheduler pass failed", logging.Error(err))
				return err
			}
		}
	}
}

// RunOnce performs one scheduling pass: the seven ordered steps of
// spec.md §4.5. Every log line emitted during the pass carries a generated
// request id, so a single scheduling pass's activity can be grepped out of
// an otherwise continuous log stream.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	ctx = logging.WithRequestID(ctx, uuid.NewString())
	passLogger := logging.WithContext(ctx, s.Logger)
	passLogger.Debug("scheduling pass starting")
	defer passLogger.Debug("scheduling pass finished")

	if err := s.drainNewDeletions(ctx); err != nil {
		return fmt.Errorf("drain new deletions: %w", err)
	}
	if err := s.refreshDeletionQueuedSet(ctx); err != nil {
		return fmt.Errorf("refresh deletion queued set: %w", err)
	}
	if err := s.issueTapeStaging(ctx); err != nil {
		return fmt.Errorf("issue tape staging: %w", err)
	}
	if err := s.pollStagingTasks(ctx); err != nil {
		return fmt.Errorf("poll staging tasks: %w", err)
	}
	if err := s.submitRunnableTransfers(ctx); err != nil {
		return fmt.Errorf("submit runnable transfers: %w", err)
	}
	if err := s.refreshTransferQueuedSet(ctx); err != nil {
		return fmt.Errorf("refresh transfer queued set: %w", err)
	}
	s.recyclePools()
	return nil
}

func (s *Scheduler) maxParallelLinks() int {
	if s.Config != nil && s.Config.Daemon.MaxParallelLinks > 0 {
		return s.Config.Daemon.MaxParallelLinks
	}
	return 1
}

func (s *Scheduler) transferTimeout() int {
	if s.Config == nil {
		return 0
	}
	return s.Config.Daemon.TransferTimeout
}

func (s *Scheduler) overwrite() bool {
	return s.Config != nil && s.Config.Daemon.Overwrite
}

// collectorPeriod is the scan cadence handed to every pool this scheduler
// creates, sourced from daemon.collector_period_seconds (spec.md §6).
// CollectorPeriod, when set, overrides the config value directly; tests use
// it to exercise the collector's polling loop without waiting out a
// multi-second cadence.
func (s *Scheduler) collectorPeriod() time.Duration {
	if s.CollectorPeriod > 0 {
		return s.CollectorPeriod
	}
	if s.Config != nil && s.Config.Daemon.CollectorPeriod > 0 {
		return time.Duration(s.Config.Daemon.CollectorPeriod) * time.Second
	}
	return pool.DefaultCollectPeriod
}

func withStagingProxy(cfg *fodconfig.Config, fn func()) {
	if cfg == nil || cfg.Daemon.StagingX509Proxy == "" {
		fn()
		return
	}
	prior := os.Getenv(fodconfig.EnvX509Proxy)
	_ = os.Setenv(fodconfig.EnvX509Proxy, cfg.Daemon.StagingX509Proxy)
	defer func() {
		if prior == "" {
			_ = os.Unsetenv(fodconfig.EnvX509Proxy)
		} else {
			_ = os.Setenv(fodconfig.EnvX509Proxy, prior)
		}
	}()
	fn()
}
