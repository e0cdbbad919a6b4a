package gfal_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dynamo-fod/fod/internal/classify"
	"github.com/dynamo-fod/fod/internal/gfal"
	"github.com/dynamo-fod/fod/internal/logging"
)

type scriptedClient struct {
	copyResults []gfal.Result
	calls       int
}

func (s *scriptedClient) Copy(ctx context.Context, src, dst string, params gfal.CopyParams) gfal.Result {
	r := s.copyResults[s.calls]
	if s.calls < len(s.copyResults)-1 {
		s.calls++
	}
	return r
}
func (s *scriptedClient) Stat(ctx context.Context, url string) gfal.Result { return gfal.Result{} }
func (s *scriptedClient) Unlink(ctx context.Context, url string) gfal.Result {
	return gfal.Result{}
}
func (s *scriptedClient) BringOnline(ctx context.Context, urls []string, pin, timeout int) gfal.BringOnlineResult {
	return gfal.BringOnlineResult{}
}
func (s *scriptedClient) BringOnlinePoll(ctx context.Context, url, token string, pin, timeout int) gfal.Result {
	return gfal.Result{}
}

func TestAdapterCopyStopsOnFirstSuccess(t *testing.T) {
	client := &scriptedClient{copyResults: []gfal.Result{
		{ExitCode: classify.CodeEIO, Message: "transient"},
		{ExitCode: classify.CodeOK},
	}}
	adapter := gfal.New(client, logging.NewNop())

	got := adapter.Copy(context.Background(), "src", "dst", gfal.CopyParams{})
	if got.ExitCode != classify.CodeOK {
		t.Fatalf("got exit code %d, want 0", got.ExitCode)
	}
	if client.calls != 1 {
		t.Fatalf("got %d attempts recorded, want 1 retry to have advanced the script", client.calls)
	}
}

func TestAdapterCopyStopsOnIrrecoverable(t *testing.T) {
	client := &scriptedClient{copyResults: []gfal.Result{
		{ExitCode: classify.CodeEAcces, Message: "permission denied"},
		{ExitCode: classify.CodeOK},
	}}
	adapter := gfal.New(client, logging.NewNop())

	got := adapter.Copy(context.Background(), "src", "dst", gfal.CopyParams{})
	if got.ExitCode != classify.CodeEAcces {
		t.Fatalf("got exit code %d, want EACCES preserved (no retry past irrecoverable)", got.ExitCode)
	}
	if client.calls != 0 {
		t.Fatalf("got %d attempts recorded, want the script to never have advanced", client.calls)
	}
}

// TestAdapterCopyStopsOnSuccessEquivalent mirrors spec.md §7: a
// success-equivalent disposition (destination already exists) is recorded
// as a done task, so the adapter must rewrite the exit code to 0 and clear
// the log rather than surface the raw EEXIST it matched on.
func TestAdapterCopyStopsOnSuccessEquivalent(t *testing.T) {
	client := &scriptedClient{copyResults: []gfal.Result{
		{ExitCode: classify.CodeEExist, Message: "destination file exists"},
	}}
	adapter := gfal.New(client, logging.NewNop())

	got := adapter.Copy(context.Background(), "src", "dst", gfal.CopyParams{})
	if got.ExitCode != classify.CodeOK {
		t.Fatalf("got exit code %d, want 0 (success-equivalent rewritten to done)", got.ExitCode)
	}
	if got.Message != "destination file exists" {
		t.Fatalf("got message %q, want the descriptive adapter message preserved", got.Message)
	}
	if got.Log != "" {
		t.Fatalf("got log %q, want empty per spec.md §7", got.Log)
	}
	if client.calls != 0 {
		t.Fatalf("got %d attempts recorded, want the script to never have advanced", client.calls)
	}
}

func TestAdapterCopyExhaustsRetriesOnPersistentTransientFailure(t *testing.T) {
	results := make([]gfal.Result, gfal.MaxAttempts)
	for i := range results {
		results[i] = gfal.Result{ExitCode: classify.CodeEIO, Message: "still transient"}
	}
	client := &scriptedClient{copyResults: results}
	adapter := gfal.New(client, logging.NewNop())

	got := adapter.Copy(context.Background(), "src", "dst", gfal.CopyParams{})
	if got.ExitCode != classify.CodeEIO {
		t.Fatalf("got exit code %d, want the last observed transient failure", got.ExitCode)
	}
	if client.calls != gfal.MaxAttempts-1 {
		t.Fatalf("got %d attempts recorded, want %d", client.calls, gfal.MaxAttempts-1)
	}
}

// TestS6LogAccumulatesEveryAttempt mirrors spec scenario S6: after 5
// exhausted retries, the stored log buffer contains all 5 attempts' log
// lines.
func TestS6LogAccumulatesEveryAttempt(t *testing.T) {
	results := make([]gfal.Result, gfal.MaxAttempts)
	for i := range results {
		results[i] = gfal.Result{ExitCode: classify.CodeEIO, Message: "still transient", Log: fmt.Sprintf("log-line-%d", i+1)}
	}
	client := &scriptedClient{copyResults: results}
	adapter := gfal.New(client, logging.NewNop())

	got := adapter.Copy(context.Background(), "src", "dst", gfal.CopyParams{})
	for i := 1; i <= gfal.MaxAttempts; i++ {
		want := fmt.Sprintf("log-line-%d", i)
		if !strings.Contains(got.Log, want) {
			t.Fatalf("accumulated log missing %q: got %q", want, got.Log)
		}
	}
}
