package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/dynamo-fod/fod/internal/queue"
)

func newTestStore(t *testing.T) *queue.Store {
	t.Helper()
	store, err := queue.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return store
}

func TestDeletionTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	batchID, err := store.InsertDeletionBatch(ctx, &queue.DeletionBatch{Site: "T1_A"})
	if err != nil {
		t.Fatalf("insert batch: %v", err)
	}
	taskID, err := store.InsertDeletionTask(ctx, &queue.DeletionTask{BatchID: batchID, File: "/a"})
	if err != nil {
		t.Fatalf("insert task: %v", err)
	}

	tasks, err := store.NewDeletionTasks(ctx)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("expected one new task, got %v (err=%v)", tasks, err)
	}
	if tasks[0].Site != "T1_A" {
		t.Fatalf("got site %q, want T1_A", tasks[0].Site)
	}

	if err := store.SetDeletionQueued(ctx, taskID); err != nil {
		t.Fatalf("set queued: %v", err)
	}
	ids, err := store.QueuedDeletionIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != taskID {
		t.Fatalf("expected queued id %d, got %v (err=%v)", taskID, ids, err)
	}

	if err := store.SetDeletionActive(ctx, taskID); err != nil {
		t.Fatalf("set active: %v", err)
	}
	now := time.Now()
	if err := store.WriteDeletionTerminal(ctx, taskID, 0, "", now, now); err != nil {
		t.Fatalf("write terminal: %v", err)
	}
	task, err := store.GetDeletionTask(ctx, taskID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Status != queue.StatusDone {
		t.Fatalf("got status %s, want done", task.Status)
	}
}

func TestUnstagedTapeBatchesFiltersByStageToken(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	tapeBatch, err := store.InsertTransferBatch(ctx, &queue.TransferBatch{
		SourceSite: "T1_A", DestinationSite: "T2_B", MSSSource: true,
	})
	if err != nil {
		t.Fatalf("insert tape batch: %v", err)
	}
	diskBatch, err := store.InsertTransferBatch(ctx, &queue.TransferBatch{
		SourceSite: "T2_C", DestinationSite: "T2_B", MSSSource: false,
	})
	if err != nil {
		t.Fatalf("insert disk batch: %v", err)
	}

	batches, err := store.UnstagedTapeBatches(ctx)
	if err != nil {
		t.Fatalf("unstaged tape batches: %v", err)
	}
	if len(batches) != 1 || batches[0].BatchID != tapeBatch {
		t.Fatalf("got %v, want exactly the tape batch %d", batches, tapeBatch)
	}

	if err := store.SetStageToken(ctx, tapeBatch, "token-1"); err != nil {
		t.Fatalf("set stage token: %v", err)
	}
	batches, err = store.UnstagedTapeBatches(ctx)
	if err != nil {
		t.Fatalf("unstaged tape batches after token: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("got %v, want no unstaged batches once token is set", batches)
	}
	_ = diskBatch
}

func TestRunnableTransferTasksIncludesNonTapeNewAndStaged(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	diskBatch, _ := store.InsertTransferBatch(ctx, &queue.TransferBatch{SourceSite: "A", DestinationSite: "B"})
	tapeBatch, _ := store.InsertTransferBatch(ctx, &queue.TransferBatch{SourceSite: "C", DestinationSite: "B", MSSSource: true})

	diskTask, _ := store.InsertTransferTask(ctx, &queue.TransferTask{BatchID: diskBatch, Source: "/x", Destination: "/y"})
	tapeTaskNew, _ := store.InsertTransferTask(ctx, &queue.TransferTask{BatchID: tapeBatch, Source: "/x2", Destination: "/y2"})
	tapeTaskStaged, _ := store.InsertTransferTask(ctx, &queue.TransferTask{BatchID: tapeBatch, Source: "/x3", Destination: "/y3"})
	if err := store.SetTransferStaging(ctx, tapeTaskStaged); err != nil {
		t.Fatalf("set staging: %v", err)
	}
	if err := store.SetTransferStaged(ctx, tapeTaskStaged); err != nil {
		t.Fatalf("set staged: %v", err)
	}

	tasks, err := store.RunnableTransferTasks(ctx)
	if err != nil {
		t.Fatalf("runnable transfers: %v", err)
	}
	got := map[int64]bool{}
	for _, task := range tasks {
		got[task.ID] = true
	}
	if !got[diskTask] || !got[tapeTaskStaged] || got[tapeTaskNew] {
		t.Fatalf("got %v, want disk-new and tape-staged included, tape-new excluded", got)
	}
}

func TestResetInFlightRewritesQueuedAndActiveToNew(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	batch, _ := store.InsertTransferBatch(ctx, &queue.TransferBatch{SourceSite: "A", DestinationSite: "B"})
	active, _ := store.InsertTransferTask(ctx, &queue.TransferTask{BatchID: batch, Source: "/a", Destination: "/b"})
	queued, _ := store.InsertTransferTask(ctx, &queue.TransferTask{BatchID: batch, Source: "/c", Destination: "/d"})
	if err := store.SetTransferActive(ctx, active); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if err := store.SetTransferQueued(ctx, queued); err != nil {
		t.Fatalf("set queued: %v", err)
	}

	if err := store.ResetInFlight(ctx); err != nil {
		t.Fatalf("reset in-flight: %v", err)
	}

	for _, id := range []int64{active, queued} {
		task, err := store.GetTransferTask(ctx, id)
		if err != nil {
			t.Fatalf("get task %d: %v", id, err)
		}
		if task.Status != queue.StatusNew {
			t.Fatalf("task %d: got status %s, want new", id, task.Status)
		}
	}
}

// TestWriteTransferTerminalLeavesStartFinishNullWhenCancelled covers the
// cancelled-sentinel path (internal/worker's timestamp-less Result): a task that
// never ran should have NULL start_time/finish_time, not the Unix epoch's
// negative-year-one offset a zero time.Time would otherwise produce.
func TestWriteTransferTerminalLeavesStartFinishNullWhenCancelled(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	batch, _ := store.InsertTransferBatch(ctx, &queue.TransferBatch{SourceSite: "A", DestinationSite: "B"})
	id, _ := store.InsertTransferTask(ctx, &queue.TransferTask{BatchID: batch, Source: "/a", Destination: "/b"})

	if err := store.WriteTransferTerminal(ctx, id, -1, "", time.Time{}, time.Time{}); err != nil {
		t.Fatalf("write terminal: %v", err)
	}

	task, err := store.GetTransferTask(ctx, id)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Status != queue.StatusCancelled {
		t.Fatalf("got status %s, want cancelled", task.Status)
	}
	if task.StartTime != nil || task.FinishTime != nil {
		t.Fatalf("got start=%v finish=%v, want both nil for a task that never ran", task.StartTime, task.FinishTime)
	}
}

func TestTransferTasksByIDsFetchesExactlyTheRequestedRows(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	batch, _ := store.InsertTransferBatch(ctx, &queue.TransferBatch{SourceSite: "A", DestinationSite: "B"})
	first, _ := store.InsertTransferTask(ctx, &queue.TransferTask{BatchID: batch, Source: "/a", Destination: "/b"})
	_, _ = store.InsertTransferTask(ctx, &queue.TransferTask{BatchID: batch, Source: "/c", Destination: "/d"})
	third, _ := store.InsertTransferTask(ctx, &queue.TransferTask{BatchID: batch, Source: "/e", Destination: "/f"})

	tasks, err := store.TransferTasksByIDs(ctx, []int64{first, third})
	if err != nil {
		t.Fatalf("tasks by id: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	got := map[int64]bool{tasks[0].ID: true, tasks[1].ID: true}
	if !got[first] || !got[third] {
		t.Fatalf("got ids %v, want exactly %d and %d", got, first, third)
	}
}
