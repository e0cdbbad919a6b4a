package scheduler

import (
	"context"

	"github.com/dynamo-fod/fod/internal/pool"
	"github.com/dynamo-fod/fod/internal/queue"
	"github.com/dynamo-fod/fod/internal/worker"
)

// drainNewDeletions is spec.md §4.5 step 1.
func (s *Scheduler) drainNewDeletions(ctx context.Context) error {
	tasks, err := s.Store.NewDeletionTasks(ctx)
	if err != nil {
		return err
	}
	bySite := groupDeletionsBySite(tasks)
	for site, siteTasks := range bySite {
		p := s.DeletionPools.GetOrCreate(site, s.maxParallelLinks(), s.collectorPeriod(), s.deletionProcessResult(), s.Logger)
		for _, task := range siteTasks {
			if err := s.Store.SetDeletionQueued(ctx, task.ID); err != nil {
				return err
			}
			s.DeletionQueued.Add(task.ID)
			p.Submit(ctx, worker.Delete{
				TaskID:    task.ID,
				File:      task.File,
				Adapter:   s.Adapter,
				Store:     s.Store,
				QueuedIDs: s.DeletionQueued,
			})
		}
	}
	return nil
}

// refreshDeletionQueuedSet is step 2.
func (s *Scheduler) refreshDeletionQueuedSet(ctx context.Context) error {
	ids, err := s.Store.QueuedDeletionIDs(ctx)
	if err != nil {
		return err
	}
	s.DeletionQueued.Replace(ids)
	return nil
}

// issueTapeStaging is step 3: one bring_online call per unstaged tape
// batch, with the staging proxy swapped in for the call's duration.
func (s *Scheduler) issueTapeStaging(ctx context.Context) error {
	batches, err := s.Store.UnstagedTapeBatches(ctx)
	if err != nil {
		return err
	}
	for _, batch := range batches {
		tasks, err := s.Store.TasksForBatch(ctx, batch.BatchID)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			continue
		}
		pfns := make([]string, len(tasks))
		for i, t := range tasks {
			pfns[i] = t.Source
		}

		var bringResult struct {
			token         string
			perFileErrors map[string]string
		}
		withStagingProxy(s.Config, func() {
			result := s.Adapter.BringOnline(ctx, pfns, 0, 0)
			bringResult.token = result.Token
			bringResult.perFileErrors = result.PerFileErrors
		})

		// The token is recorded even when empty so this batch is never
		// selected by UnstagedTapeBatches again, per spec.md §7's
		// idempotence-on-stage_token requirement.
		if err := s.Store.SetStageToken(ctx, batch.BatchID, bringResult.token); err != nil {
			return err
		}
		for _, t := range tasks {
			if msg, failed := bringResult.perFileErrors[t.Source]; failed {
				if err := s.Store.SetTransferFailedDuringStaging(ctx, t.ID, msg); err != nil {
					return err
				}
				continue
			}
			if err := s.Store.SetTransferStaging(ctx, t.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// pollStagingTasks is step 4.
func (s *Scheduler) pollStagingTasks(ctx context.Context) error {
	tasks, err := s.Store.StagingTransferTasks(ctx)
	if err != nil {
		return err
	}
	bySite := groupTransfersBySourceSite(tasks)
	for site, siteTasks := range bySite {
		p := s.StagingPools.GetOrCreate(site, s.maxParallelLinks(), s.collectorPeriod(), s.stagingProcessResult(), s.Logger)
		for _, task := range siteTasks {
			token := ""
			if task.StageToken != nil {
				token = *task.StageToken
			}
			p.Submit(ctx, worker.Stage{
				TaskID:     task.ID,
				SourcePFN:  task.Source,
				StageToken: token,
				Adapter:    s.Adapter,
			})
		}
	}
	return nil
}

// submitRunnableTransfers is step 5.
func (s *Scheduler) submitRunnableTransfers(ctx context.Context) error {
	tasks, err := s.Store.RunnableTransferTasks(ctx)
	if err != nil {
		return err
	}
	byLink := groupTransfersByLink(tasks)
	for link, linkTasks := range byLink {
		p := s.TransferPools.GetOrCreate(link, s.maxParallelLinks(), s.collectorPeriod(), s.transferProcessResult(), s.Logger)
		for _, task := range linkTasks {
			if err := s.Store.SetTransferQueued(ctx, task.ID); err != nil {
				return err
			}
			s.TransferQueued.Add(task.ID)
			p.Submit(ctx, worker.Transfer{
				TaskID:       task.ID,
				Source:       task.Source,
				Destination:  task.Destination,
				Overwrite:    s.overwrite(),
				Timeout:      s.transferTimeout(),
				ChecksumAlgo: task.ChecksumAlgo,
				Checksum:     task.Checksum,
				Adapter:      s.Adapter,
				Store:        s.Store,
				QueuedIDs:    s.TransferQueued,
			})
		}
	}
	return nil
}

// refreshTransferQueuedSet is step 6.
func (s *Scheduler) refreshTransferQueuedSet(ctx context.Context) error {
	ids, err := s.Store.QueuedTransferIDs(ctx)
	if err != nil {
		return err
	}
	s.TransferQueued.Replace(ids)
	return nil
}

// recyclePools is step 7.
func (s *Scheduler) recyclePools() {
	s.DeletionPools.Recycle()
	s.StagingPools.Recycle()
	s.TransferPools.Recycle()
}

func (s *Scheduler) deletionProcessResult() pool.ProcessResult {
	return func(ctx context.Context, outcome worker.Outcome) error {
		return s.Store.WriteDeletionTerminal(ctx, outcome.TaskID, outcome.Result.ExitCode, outcome.Result.Message,
			outcome.Result.StartedAt, outcome.Result.FinishedAt)
	}
}

func (s *Scheduler) transferProcessResult() pool.ProcessResult {
	return func(ctx context.Context, outcome worker.Outcome) error {
		return s.Store.WriteTransferTerminal(ctx, outcome.TaskID, outcome.Result.ExitCode, outcome.Result.Message,
			outcome.Result.StartedAt, outcome.Result.FinishedAt)
	}
}

// stagingProcessResult only acts on a successful poll, per spec.md §4.4:
// pending polls are silent no-ops, leaving the row at status='staging'.
func (s *Scheduler) stagingProcessResult() pool.ProcessResult {
	return func(ctx context.Context, outcome worker.Outcome) error {
		if !outcome.Staged {
			return nil
		}
		return s.Store.SetTransferStaged(ctx, outcome.TaskID)
	}
}

func groupDeletionsBySite(tasks []*queue.DeletionTask) map[string][]*queue.DeletionTask {
	grouped := make(map[string][]*queue.DeletionTask)
	for _, t := range tasks {
		grouped[t.Site] = append(grouped[t.Site], t)
	}
	return grouped
}

func groupTransfersBySourceSite(tasks []*queue.TransferTask) map[string][]*queue.TransferTask {
	grouped := make(map[string][]*queue.TransferTask)
	for _, t := range tasks {
		grouped[t.SourceSite] = append(grouped[t.SourceSite], t)
	}
	return grouped
}

func groupTransfersByLink(tasks []*queue.TransferTask) map[string][]*queue.TransferTask {
	grouped := make(map[string][]*queue.TransferTask)
	for _, t := range tasks {
		key := t.SourceSite + "->" + t.DestinationSite
		grouped[key] = append(grouped[key], t)
	}
	return grouped
}
