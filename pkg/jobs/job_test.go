package jobs

import (
	"context"
	"testing"

	"github.com/agentviz/agentviz/pkg/api"
)

func newTestJob(cancel context.CancelFunc) *Job {
	return New(api.NewJobID(), map[api.Role]string{
		api.RoleAnalyst: "llama-3.3-70b-versatile",
		api.RoleCoder:   "llama-3.3-70b-versatile",
	}, "show totals", "/uploads/data.csv", cancel)
}

func TestJobAppendWhileRunning(t *testing.T) {
	job := newTestJob(nil)
	job.Append(api.Message{Role: api.RoleProxy, Content: "start"})
	job.Append(api.Message{Role: api.RoleAnalyst, Content: "plan"})

	rec := job.Snapshot()
	if len(rec.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(rec.Messages))
	}
	if rec.Messages[0].Content != "start" || rec.Messages[1].Content != "plan" {
		t.Error("message order not preserved")
	}
}

func TestJobAppendAfterFinishDropped(t *testing.T) {
	job := newTestJob(nil)
	if apiErr := job.Finish(api.JobStatusCompleted, ""); apiErr != nil {
		t.Fatalf("Finish: %v", apiErr)
	}
	job.Append(api.Message{Role: api.RoleCoder, Content: "late"})
	if n := len(job.Snapshot().Messages); n != 0 {
		t.Errorf("post-terminal message kept, got %d messages", n)
	}
}

func TestJobDoubleFinishRejected(t *testing.T) {
	job := newTestJob(nil)
	if apiErr := job.Finish(api.JobStatusCompleted, ""); apiErr != nil {
		t.Fatalf("first Finish: %v", apiErr)
	}
	if apiErr := job.Finish(api.JobStatusError, "late failure"); apiErr == nil {
		t.Error("second Finish accepted")
	}
	if job.Status() != api.JobStatusCompleted {
		t.Errorf("status = %s, want completed", job.Status())
	}
}

func TestCancellationIdempotence(t *testing.T) {
	cancelCalls := 0
	job := newTestJob(func() { cancelCalls++ })

	if !job.RequestCancel() {
		t.Fatal("first RequestCancel returned false")
	}
	if job.RequestCancel() {
		t.Error("second RequestCancel reported success")
	}
	if cancelCalls != 1 {
		t.Errorf("context cancelled %d times, want 1", cancelCalls)
	}

	// Several emission points observe the flag; the terminal transition
	// and the notice must happen exactly once.
	for i := 0; i < 3; i++ {
		if job.CancelRequested() {
			job.FinishCancelled()
		}
	}

	rec := job.Snapshot()
	if rec.Status != api.JobStatusCancelled {
		t.Fatalf("status = %s, want cancelled", rec.Status)
	}
	notices := 0
	for _, msg := range rec.Messages {
		if msg.Role == api.RoleSystem {
			notices++
		}
	}
	if notices != 1 {
		t.Errorf("got %d system notices, want exactly 1", notices)
	}
}

func TestCancelAfterFinishRejected(t *testing.T) {
	job := newTestJob(nil)
	job.Finish(api.JobStatusCompleted, "")
	if job.RequestCancel() {
		t.Error("cancel accepted on a finished job")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	job := newTestJob(nil)
	job.Append(api.Message{Role: api.RoleProxy, Content: "one"})

	rec := job.Snapshot()
	rec.Messages[0].Content = "mutated"
	rec.Status = api.JobStatusError

	fresh := job.Snapshot()
	if fresh.Messages[0].Content != "one" {
		t.Error("snapshot shares message backing array with the job")
	}
	if fresh.Status != api.JobStatusRunning {
		t.Error("snapshot mutation leaked into the job")
	}
}
