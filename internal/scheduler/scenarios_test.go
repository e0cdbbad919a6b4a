package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/dynamo-fod/fod/internal/classify"
	"github.com/dynamo-fod/fod/internal/fodconfig"
	"github.com/dynamo-fod/fod/internal/gfal"
	"github.com/dynamo-fod/fod/internal/logging"
	"github.com/dynamo-fod/fod/internal/queue"
	"github.com/dynamo-fod/fod/internal/scheduler"
)

// fakeClient scripts per-PFN behavior for scheduler scenario tests without
// shelling out to real gfal2-util tools.
type fakeClient struct {
	unlinkByURL      map[string]gfal.Result
	bringOnlineToken string
	bringOnlineFails map[string]string
	pollReadyByURL   map[string]bool
	bringOnlineCalls int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		unlinkByURL:      map[string]gfal.Result{},
		bringOnlineFails: map[string]string{},
		pollReadyByURL:   map[string]bool{},
	}
}

func (f *fakeClient) Copy(ctx context.Context, src, dst string, params gfal.CopyParams) gfal.Result {
	return gfal.Result{ExitCode: classify.CodeOK}
}
func (f *fakeClient) Stat(ctx context.Context, url string) gfal.Result {
	return gfal.Result{ExitCode: classify.CodeENoEnt}
}
func (f *fakeClient) Unlink(ctx context.Context, url string) gfal.Result {
	if r, ok := f.unlinkByURL[url]; ok {
		return r
	}
	return gfal.Result{ExitCode: classify.CodeOK}
}
func (f *fakeClient) BringOnline(ctx context.Context, urls []string, pin, timeout int) gfal.BringOnlineResult {
	f.bringOnlineCalls++
	return gfal.BringOnlineResult{
		Result:        gfal.Result{ExitCode: classify.CodeOK},
		Token:         f.bringOnlineToken,
		PerFileErrors: f.bringOnlineFails,
	}
}
func (f *fakeClient) BringOnlinePoll(ctx context.Context, url, token string, pin, timeout int) gfal.Result {
	if f.pollReadyByURL[url] {
		return gfal.Result{ExitCode: classify.CodeOK}
	}
	return gfal.Result{ExitCode: classify.CodeEAgain}
}

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

func eventually(t *testing.T, timeout time.Duration, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !check() {
		t.Fatal("condition not met before timeout")
	}
}

// TestS1DeletionsResolveENOENTAsDone mirrors spec scenario S1.
func TestS1DeletionsResolveENOENTAsDone(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	client := newFakeClient()
	client.unlinkByURL["/b"] = gfal.Result{ExitCode: classify.CodeENoEnt, Message: "Target file does not exist."}

	batchID, err := store.InsertDeletionBatch(ctx, &queue.DeletionBatch{Site: "T1_A"})
	if err != nil {
		t.Fatalf("insert batch: %v", err)
	}
	ids := make([]int64, 3)
	for i, file := range []string{"/a", "/b", "/c"} {
		id, err := store.InsertDeletionTask(ctx, &queue.DeletionTask{BatchID: batchID, File: file})
		if err != nil {
			t.Fatalf("insert task: %v", err)
		}
		ids[i] = id
	}

	sched := scheduler.New(store, gfal.New(client, logging.NewNop()), &fodconfig.Config{Daemon: fodconfig.Daemon{MaxParallelLinks: 2}}, logging.NewNop())
	sched.CollectorPeriod = 20 * time.Millisecond
	if err := sched.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	eventually(t, 2*time.Second, func() bool {
		for _, id := range ids {
			task, err := store.GetDeletionTask(ctx, id)
			if err != nil || task.Status != queue.StatusDone {
				return false
			}
		}
		return true
	})

	task, err := store.GetDeletionTask(ctx, ids[1])
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if task.Message != "Target file does not exist." {
		t.Fatalf("got message %q, want the ENOENT message preserved", task.Message)
	}
}

// TestS3TapeBatchStagesThenPartiallyCompletes mirrors spec scenario S3.
func TestS3TapeBatchStagesThenPartiallyCompletes(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	client := newFakeClient()
	client.bringOnlineToken = "token-abc"

	batchID, err := store.InsertTransferBatch(ctx, &queue.TransferBatch{
		SourceSite: "T1_A", DestinationSite: "T2_B", MSSSource: true,
	})
	if err != nil {
		t.Fatalf("insert batch: %v", err)
	}
	task1, err := store.InsertTransferTask(ctx, &queue.TransferTask{BatchID: batchID, Source: "/tape/1", Destination: "/disk/1"})
	if err != nil {
		t.Fatalf("insert task1: %v", err)
	}
	task2, err := store.InsertTransferTask(ctx, &queue.TransferTask{BatchID: batchID, Source: "/tape/2", Destination: "/disk/2"})
	if err != nil {
		t.Fatalf("insert task2: %v", err)
	}

	cfg := &fodconfig.Config{Daemon: fodconfig.Daemon{MaxParallelLinks: 2}}
	sched := scheduler.New(store, gfal.New(client, logging.NewNop()), cfg, logging.NewNop())
	sched.CollectorPeriod = 20 * time.Millisecond

	// First pass: issues bring_online once, both tasks move to staging.
	if err := sched.RunOnce(ctx); err != nil {
		t.Fatalf("first RunOnce: %v", err)
	}
	if client.bringOnlineCalls != 1 {
		t.Fatalf("got %d bring_online calls, want exactly 1", client.bringOnlineCalls)
	}
	batch, err := store.GetTransferBatch(ctx, batchID)
	if err != nil {
		t.Fatalf("get batch: %v", err)
	}
	if batch.StageToken == nil || *batch.StageToken != "token-abc" {
		t.Fatalf("got stage token %v, want token-abc recorded", batch.StageToken)
	}
	for _, id := range []int64{task1, task2} {
		task, err := store.GetTransferTask(ctx, id)
		if err != nil || task.Status != queue.StatusStaging {
			t.Fatalf("task %d: got status %v (err=%v), want staging", id, task, err)
		}
	}

	// Second pass: task1's poll reports ready, task2's does not.
	client.pollReadyByURL["/tape/1"] = true
	if err := sched.RunOnce(ctx); err != nil {
		t.Fatalf("second RunOnce: %v", err)
	}

	eventually(t, 2*time.Second, func() bool {
		task, err := store.GetTransferTask(ctx, task1)
		return err == nil && task.Status == queue.StatusStaged
	})
	task2Row, err := store.GetTransferTask(ctx, task2)
	if err != nil {
		t.Fatalf("get task2: %v", err)
	}
	if task2Row.Status != queue.StatusStaging {
		t.Fatalf("got task2 status %s, want it to remain staging", task2Row.Status)
	}
	if client.bringOnlineCalls != 1 {
		t.Fatalf("got %d bring_online calls after second pass, want still exactly 1 (idempotent on stage_token)", client.bringOnlineCalls)
	}
}
