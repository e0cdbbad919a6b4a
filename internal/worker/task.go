package worker

import (
	"context"

	"github.com/dynamo-fod/fod/internal/gfal"
)

// Outcome is what a worker hands back to the pool manager's collector.
// Staged is only meaningful for the staging worker; it tells process_result
// whether to write status='staged' or leave the row untouched.
type Outcome struct {
	TaskID int64
	Result gfal.Result
	Staged bool
}

// Task is the sum type spec.md §9 calls for in place of the original's
// dynamic dispatch across three worker functions.
type Task interface {
	Execute(ctx context.Context) Outcome
}

// cancelledResult is the sentinel spec.md §4.3 defines for a worker that
// loses the queued-set race: exit -1, no timestamps, no message, no log.
func cancelledResult() gfal.Result {
	return gfal.Result{ExitCode: -1}
}

// crashResult coerces a panic recovered from inside Execute into the same
// shape a normal adapter failure would take, per spec.md §4.3's "workers
// never raise out of the pool".
func crashResult(recovered any) gfal.Result {
	return gfal.Result{ExitCode: -1, Message: panicMessage(recovered)}
}

func panicMessage(recovered any) string {
	if err, ok := recovered.(error); ok {
		return err.Error()
	}
	if s, ok := recovered.(string); ok {
		return s
	}
	return "worker panic"
}
