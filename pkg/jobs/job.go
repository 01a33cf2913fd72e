// Package jobs tracks live orchestration jobs: one handle per request,
// a registry keyed by job ID for explicit cancellation, and the bounded
// activity log the frontend polls. Concurrent jobs are independent;
// there is no process-global slot.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/agentviz/agentviz/pkg/api"
)

// cancellationNotice is the single system message appended when a job
// is cancelled.
const cancellationNotice = "Visualization generation cancelled by user."

// Job is the live handle of one running orchestration. It owns the
// job's record while the job is in flight and serializes all mutations.
//
// All methods are safe for concurrent access.
type Job struct {
	mu        sync.Mutex
	record    api.JobRecord
	cancel    context.CancelFunc
	cancelReq bool
}

// New creates a running job. cancel is invoked when the job is
// explicitly cancelled, interrupting any blocked model call.
func New(id string, models map[api.Role]string, prompt, datasetPath string, cancel context.CancelFunc) *Job {
	return &Job{
		record: api.JobRecord{
			ID:          id,
			StartedAt:   time.Now().UTC(),
			Models:      models,
			Prompt:      prompt,
			DatasetPath: datasetPath,
			Status:      api.JobStatusRunning,
		},
		cancel: cancel,
	}
}

// ID returns the job identifier.
func (j *Job) ID() string {
	return j.record.ID
}

// Append adds a message to the job's log the moment it is produced.
// Messages arriving after a terminal transition are dropped.
func (j *Job) Append(msg api.Message) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.record.Status.Terminal() {
		return
	}
	j.record.Messages = append(j.record.Messages, msg)
}

// RequestCancel flips the cancellation flag and interrupts the job's
// context. It reports whether this call was the one that set the flag;
// repeated requests are no-ops.
func (j *Job) RequestCancel() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancelReq || j.record.Status.Terminal() {
		return false
	}
	j.cancelReq = true
	if j.cancel != nil {
		j.cancel()
	}
	return true
}

// CancelRequested reports whether cancellation has been requested. The
// orchestrator checks this at every message-emission point.
func (j *Job) CancelRequested() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelReq
}

// FinishCancelled transitions the job to cancelled and appends the
// system notice. The transition happens exactly once no matter how many
// emission points observe the flag afterwards.
func (j *Job) FinishCancelled() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.record.Status.Terminal() {
		return
	}
	j.record.Messages = append(j.record.Messages, api.Message{
		ID:          api.NewMessageID(),
		Participant: "system",
		Role:        api.RoleSystem,
		Content:     cancellationNotice,
		CreatedAt:   time.Now().UTC(),
	})
	j.finishLocked(api.JobStatusCancelled, "")
}

// Finish transitions the job to a terminal status. Invalid transitions
// (double-finish, unknown status) are rejected.
func (j *Job) Finish(status api.JobStatus, errMsg string) *api.APIError {
	j.mu.Lock()
	defer j.mu.Unlock()
	if apiErr := api.ValidateJobTransition(j.record.Status, status); apiErr != nil {
		return apiErr
	}
	j.finishLocked(status, errMsg)
	return nil
}

func (j *Job) finishLocked(status api.JobStatus, errMsg string) {
	now := time.Now().UTC()
	j.record.Status = status
	j.record.FinishedAt = &now
	j.record.Error = errMsg
}

// Status returns the job's current status.
func (j *Job) Status() api.JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.record.Status
}

// Snapshot returns a copy of the job record safe to hand to storage or
// serialize while the job keeps running.
func (j *Job) Snapshot() api.JobRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	rec := j.record
	rec.Messages = make([]api.Message, len(j.record.Messages))
	copy(rec.Messages, j.record.Messages)
	if j.record.FinishedAt != nil {
		t := *j.record.FinishedAt
		rec.FinishedAt = &t
	}
	return rec
}
