package pool_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dynamo-fod/fod/internal/pool"
	"github.com/dynamo-fod/fod/internal/worker"
)

type fakeTask struct {
	id     int64
	result worker.Outcome
}

func (f fakeTask) Execute(ctx context.Context) worker.Outcome { return f.result }

func TestPoolSubmitDrainsAllResults(t *testing.T) {
	var mu sync.Mutex
	seen := map[int64]bool{}
	done := make(chan struct{})

	p := pool.New("A->B", 2, 20*time.Millisecond, func(ctx context.Context, outcome worker.Outcome) error {
		mu.Lock()
		seen[outcome.TaskID] = true
		complete := len(seen) == 3
		mu.Unlock()
		if complete {
			close(done)
		}
		return nil
	}, nil)

	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		p.Submit(ctx, fakeTask{id: i, result: worker.Outcome{TaskID: i}})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for results to drain")
	}

	// The last processResult call runs before the collector decrements the
	// in-flight count and exits, so give it a moment to finish.
	deadline := time.Now().Add(2 * time.Second)
	for !p.Recyclable() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !p.Recyclable() {
		t.Fatal("pool should be recyclable once its in-flight set drains")
	}
}

func TestPoolNotRecyclableWhileTasksInFlight(t *testing.T) {
	release := make(chan struct{})
	p := pool.New("A->B", 1, 20*time.Millisecond, func(ctx context.Context, outcome worker.Outcome) error { return nil }, nil)

	blocking := blockingTask{id: 1, release: release}
	p.Submit(context.Background(), blocking)

	// Give the goroutine a chance to register in-flight.
	time.Sleep(20 * time.Millisecond)
	if p.Recyclable() {
		t.Fatal("pool should not be recyclable while a task is running")
	}
	close(release)
}

type blockingTask struct {
	id      int64
	release chan struct{}
}

func (b blockingTask) Execute(ctx context.Context) worker.Outcome {
	<-b.release
	return worker.Outcome{TaskID: b.id}
}

func TestRegistryGetOrCreateRetainsExistingConcurrency(t *testing.T) {
	registry := pool.NewRegistry()
	noop := func(ctx context.Context, outcome worker.Outcome) error { return nil }

	first := registry.GetOrCreate("site-A", 3, 20*time.Millisecond, noop, nil)
	second := registry.GetOrCreate("site-A", 10, 20*time.Millisecond, noop, nil)

	if first != second {
		t.Fatal("expected the same pool instance to be returned")
	}
	if second.MaxConcurrent() != 3 {
		t.Fatalf("got max concurrent %d, want the original 3 preserved", second.MaxConcurrent())
	}
}

func TestRegistryRecycleDropsEmptyPools(t *testing.T) {
	registry := pool.NewRegistry()
	noop := func(ctx context.Context, outcome worker.Outcome) error { return nil }
	registry.GetOrCreate("site-A", 1, 20*time.Millisecond, noop, nil)

	if registry.Len() != 1 {
		t.Fatalf("got %d pools, want 1", registry.Len())
	}
	registry.Recycle()
	if registry.Len() != 0 {
		t.Fatalf("got %d pools after recycle, want 0 (freshly created pool has no in-flight work)", registry.Len())
	}
}
