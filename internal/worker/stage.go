package worker

import (
	"context"

	"github.com/dynamo-fod/fod/internal/classify"
	"github.com/dynamo-fod/fod/internal/gfal"
)

// StageAdapter is the slice of *gfal.Adapter a staging worker needs.
type StageAdapter interface {
	BringOnlinePoll(ctx context.Context, url, token string, pin, timeout int) gfal.Result
}

// Stage implements spec.md §4.3's staging worker. It does not participate
// in queued-set cancellation: staging never claims a per-site pool slot the
// way transfer and deletion do, so there is nothing to test-and-remove.
type Stage struct {
	TaskID     int64
	SourcePFN  string
	StageToken string

	Adapter StageAdapter
}

func (s Stage) Execute(ctx context.Context) (outcome Outcome) {
	outcome.TaskID = s.TaskID
	defer func() {
		if r := recover(); r != nil {
			outcome.Result = crashResult(r)
			outcome.Staged = false
		}
	}()

	result := s.Adapter.BringOnlinePoll(ctx, s.SourcePFN, s.StageToken, 0, 0)
	outcome.Result = result
	outcome.Staged = result.ExitCode == classify.CodeOK
	return outcome
}
