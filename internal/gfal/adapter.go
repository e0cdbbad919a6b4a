package gfal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dynamo-fod/fod/internal/classify"
	"github.com/dynamo-fod/fod/internal/logging"
)

// MaxAttempts is the retry ceiling spec.md §4.1 and §9 fix at 5: each
// attempt is independently self-contained, with its own start time, finish
// time, and captured log, per the Open Question resolution in SPEC_FULL.md
// §9.
const MaxAttempts = 5

// Adapter wraps a Client with the retry and classification policy every
// storage operation shares. It never persists state; callers (the task
// workers) own translating the final Result into a queue transition.
type Adapter struct {
	Client Client
	Logger *slog.Logger
}

func New(client Client, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Adapter{Client: client, Logger: logger}
}

// attempt runs op up to MaxAttempts times, stopping early once a result is
// success (ExitCode == 0), success-equivalent for the given classify.Op, or
// classified irrecoverable. Each attempt is independently self-contained
// (its own start/finish time and captured log); the returned Result carries
// the last attempt's exit code and message but accumulates every attempt's
// log, per spec.md §8 scenario S6.
func (a *Adapter) attempt(ctx context.Context, op classify.Op, label string, run func(context.Context) Result) Result {
	var last Result
	var logs []string
	for i := 1; i <= MaxAttempts; i++ {
		last = run(ctx)
		if last.Log != "" {
			logs = append(logs, fmt.Sprintf("[attempt %d] %s", i, last.Log))
		}
		logger := a.Logger.With(
			logging.String("operation", label),
			logging.Int("attempt", i),
			logging.Int("exit_code", last.ExitCode),
		)
		if last.ExitCode == classify.CodeOK {
			logger.Debug("adapter call succeeded")
			last.Log = strings.Join(logs, "\n")
			return last
		}

		disposition := classify.Classify(op, last.ExitCode, last.Message)
		logger = logger.With(logging.String("disposition", disposition.String()))
		switch disposition {
		case classify.SuccessEquivalent:
			logger.Info("adapter call resolved success-equivalent")
			// spec.md §7: a success-equivalent result is recorded as a
			// done task with a descriptive message and an empty log, not
			// with the raw adapter exit code that triggered the match.
			last.ExitCode = classify.CodeOK
			last.Log = ""
			return last
		case classify.Irrecoverable:
			logger.Warn("adapter call failed irrecoverably, no further attempts")
			last.Log = strings.Join(logs, "\n")
			return last
		default:
			logger.Warn("adapter call failed, will retry", logging.String("message", last.Message))
		}
	}
	last.Log = strings.Join(logs, "\n")
	return last
}

func (a *Adapter) Copy(ctx context.Context, src, dst string, params CopyParams) Result {
	return a.attempt(ctx, classify.OpTransfer, "copy", func(ctx context.Context) Result {
		return a.Client.Copy(ctx, src, dst, params)
	})
}

func (a *Adapter) Stat(ctx context.Context, url string) Result {
	return a.attempt(ctx, classify.OpTransfer, "stat", func(ctx context.Context) Result {
		return a.Client.Stat(ctx, url)
	})
}

func (a *Adapter) Unlink(ctx context.Context, url string) Result {
	return a.attempt(ctx, classify.OpDelete, "unlink", func(ctx context.Context) Result {
		return a.Client.Unlink(ctx, url)
	})
}

// BringOnline and BringOnlinePoll are not retried the same way as
// copy/unlink: the scheduler calls poll repeatedly across scheduling
// passes, so a single EAGAIN "not ready yet" result is expected and must
// propagate immediately rather than be consumed as a retry.
func (a *Adapter) BringOnline(ctx context.Context, urls []string, pin, timeout int) BringOnlineResult {
	return a.Client.BringOnline(ctx, urls, pin, timeout)
}

func (a *Adapter) BringOnlinePoll(ctx context.Context, url, token string, pin, timeout int) Result {
	return a.Client.BringOnlinePoll(ctx, url, token, pin, timeout)
}
