package worker

import (
	"context"

	"github.com/dynamo-fod/fod/internal/classify"
	"github.com/dynamo-fod/fod/internal/gfal"
)

// DeleteAdapter is the slice of *gfal.Adapter a deletion worker needs.
type DeleteAdapter interface {
	Unlink(ctx context.Context, url string) gfal.Result
}

// DeleteStore is the slice of *queue.Store the worker preamble writes
// through once it wins the queued-set race.
type DeleteStore interface {
	SetDeletionActive(ctx context.Context, id int64) error
}

// Delete implements spec.md §4.3's deletion worker.
type Delete struct {
	TaskID int64
	File   string

	Adapter   DeleteAdapter
	Store     DeleteStore
	QueuedIDs *QueuedIDSet
}

func (d Delete) Execute(ctx context.Context) (outcome Outcome) {
	outcome.TaskID = d.TaskID
	defer func() {
		if r := recover(); r != nil {
			outcome.Result = crashResult(r)
		}
	}()

	if !d.QueuedIDs.TestAndRemove(d.TaskID) {
		outcome.Result = cancelledResult()
		return outcome
	}
	if err := d.Store.SetDeletionActive(ctx, d.TaskID); err != nil {
		outcome.Result = gfal.Result{ExitCode: classify.CodeEIO, Message: err.Error()}
		return outcome
	}

	outcome.Result = d.Adapter.Unlink(ctx, d.File)
	return outcome
}
