package worker

import (
	"context"

	"github.com/dynamo-fod/fod/internal/classify"
	"github.com/dynamo-fod/fod/internal/gfal"
)

// TransferAdapter is the slice of *gfal.Adapter a transfer worker needs.
type TransferAdapter interface {
	Stat(ctx context.Context, url string) gfal.Result
	Copy(ctx context.Context, src, dst string, params gfal.CopyParams) gfal.Result
}

// TransferStore is the slice of *queue.Store the worker preamble writes
// through once it wins the queued-set race.
type TransferStore interface {
	SetTransferActive(ctx context.Context, id int64) error
}

// Transfer implements spec.md §4.3's transfer worker.
type Transfer struct {
	TaskID       int64
	Source       string
	Destination  string
	Overwrite    bool
	Timeout      int
	ChecksumAlgo string
	Checksum     string

	Adapter   TransferAdapter
	Store     TransferStore
	QueuedIDs *QueuedIDSet
}

func (t Transfer) Execute(ctx context.Context) (outcome Outcome) {
	outcome.TaskID = t.TaskID
	defer func() {
		if r := recover(); r != nil {
			outcome.Result = crashResult(r)
		}
	}()

	if !t.QueuedIDs.TestAndRemove(t.TaskID) {
		outcome.Result = cancelledResult()
		return outcome
	}
	if err := t.Store.SetTransferActive(ctx, t.TaskID); err != nil {
		outcome.Result = gfal.Result{ExitCode: classify.CodeEIO, Message: err.Error()}
		return outcome
	}

	if !t.Overwrite {
		if statResult := t.Adapter.Stat(ctx, t.Destination); statResult.ExitCode == classify.CodeOK {
			outcome.Result = statResult
			return outcome
		}
	}

	outcome.Result = t.Adapter.Copy(ctx, t.Source, t.Destination, gfal.CopyParams{
		Overwrite:     t.Overwrite,
		ChecksumAlgo:  t.ChecksumAlgo,
		Checksum:      t.Checksum,
		Timeout:       t.Timeout,
		CreateParents: true,
	})
	return outcome
}
