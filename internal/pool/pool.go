package pool

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dynamo-fod/fod/internal/logging"
	"github.com/dynamo-fod/fod/internal/worker"
)

// DefaultCollectPeriod is the collector's scan cadence when a caller passes
// a non-positive period, matching spec.md §4.4's "~5 s" and
// fodconfig.Default's collector_period_seconds.
const DefaultCollectPeriod = 5 * time.Second

// ProcessResult is the collector-side write spec.md §4.4 calls
// process_result. Its behavior is op-specific: transfer and deletion pools
// map exit code to a terminal status; staging pools only act when
// outcome.Staged is true.
type ProcessResult func(ctx context.Context, outcome worker.Outcome) error

// Pool is a bounded-concurrency executor scoped to one endpoint grouping.
type Pool struct {
	key           string
	maxConcurrent int
	collectPeriod time.Duration
	sem           chan struct{}
	results       chan worker.Outcome
	processResult ProcessResult
	logger        *slog.Logger

	mu             sync.Mutex
	inFlight       int
	collectorAlive bool
	closed         bool
}

// New creates a pool bound to key with maxConcurrent worker slots. The
// collector scans for completions every collectPeriod (non-positive values
// fall back to DefaultCollectPeriod), per spec.md §4.4.
func New(key string, maxConcurrent int, collectPeriod time.Duration, processResult ProcessResult, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if collectPeriod <= 0 {
		collectPeriod = DefaultCollectPeriod
	}
	return &Pool{
		key:           key,
		maxConcurrent: maxConcurrent,
		collectPeriod: collectPeriod,
		sem:           make(chan struct{}, maxConcurrent),
		results:       make(chan worker.Outcome, maxConcurrent),
		processResult: processResult,
		logger:        logger.With(logging.String("pool_key", key)),
	}
}

// Key returns the endpoint grouping this pool serves.
func (p *Pool) Key() string { return p.key }

// MaxConcurrent returns the pool's configured worker slot count.
func (p *Pool) MaxConcurrent() int { return p.maxConcurrent }

// Submit runs task on a worker slot and starts the collector if it is not
// already running. This is the executor half of spec.md §4.4's add_task;
// the queued-row write and queued-set insertion happen in the caller
// (internal/scheduler), which owns per-op-type policy such as staging
// pools skipping queued-set bookkeeping entirely.
func (p *Pool) Submit(ctx context.Context, task worker.Task) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.inFlight++
	startCollector := !p.collectorAlive
	if startCollector {
		p.collectorAlive = true
	}
	p.mu.Unlock()

	if startCollector {
		go p.collect(ctx)
	}

	go func() {
		select {
		case p.sem <- struct{}{}:
		case <-ctx.Done():
			p.results <- worker.Outcome{TaskID: -1}
			return
		}
		defer func() { <-p.sem }()
		p.results <- task.Execute(ctx)
	}()
}

// collect polls the in-flight list every collectPeriod until it empties or
// the context is cancelled (the process-wide stop flag), matching spec.md
// §4.4's "polls the in-flight list every ~5 s" and "respects the
// process-wide stop flag by returning early".
func (p *Pool) collect(ctx context.Context) {
	defer func() {
		p.mu.Lock()
		p.collectorAlive = false
		p.mu.Unlock()
	}()

	ticker := time.NewTicker(p.collectPeriod)
	defer ticker.Stop()

	for {
		p.mu.Lock()
		remaining := p.inFlight
		p.mu.Unlock()
		if remaining == 0 {
			return
		}

		select {
		case <-ticker.C:
			p.drainReady(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// drainReady processes every result currently sitting in the channel
// without blocking, so one scan picks up everything that finished since
// the previous tick.
func (p *Pool) drainReady(ctx context.Context) {
	for {
		select {
		case outcome := <-p.results:
			if err := p.processResult(ctx, outcome); err != nil {
				p.logger.Error("process_result failed", logging.Int64("task_id", outcome.TaskID), logging.Error(err))
			}
			p.mu.Lock()
			p.inFlight--
			p.mu.Unlock()
		default:
			return
		}
	}
}

// InFlight reports the current number of unfinished submissions.
func (p *Pool) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// Recyclable implements spec.md §4.4's recyclability check: closed, or the
// in-flight set is empty and the collector is not alive.
func (p *Pool) Recyclable() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed || (p.inFlight == 0 && !p.collectorAlive)
}

// Close marks the pool closed. Submissions after Close are dropped rather
// than started, matching the hard-terminate path spec.md §4.4 describes
// for a stop-flag-triggered recycle.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
