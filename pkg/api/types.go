package api

import "time"

// Role identifies a participant's position in the group chat.
type Role string

const (
	// RoleProxy stands in for the human user: it opens the conversation
	// and approves the final configurations.
	RoleProxy Role = "proxy"

	// RoleAnalyst analyzes the dataset and writes visualization
	// specifications.
	RoleAnalyst Role = "analyst"

	// RoleCoder turns specifications into chart configurations. It is the
	// designated code-producing role; its messages are scanned for code
	// blocks after the exchange ends.
	RoleCoder Role = "coder"

	// RoleSystem marks notices emitted by the orchestrator itself
	// (cancellation, failures). System messages never count as a
	// participant turn.
	RoleSystem Role = "system"
)

// JobStatus is the lifecycle state of an orchestration job.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusError     JobStatus = "error"
)

// Terminal reports whether the status permits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusCancelled, JobStatusError:
		return true
	}
	return false
}

// Message is a single conversation entry. Messages are immutable once
// appended to a job; their order of appearance is the authoritative
// conversation order.
type Message struct {
	ID          string    `json:"id"`
	Participant string    `json:"participant"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// JobRecord is the persisted view of one orchestration job: the model
// bound to each role, every message in append order, and the terminal
// status. Records are append-only while the job runs and frozen once the
// status becomes terminal.
type JobRecord struct {
	ID          string          `json:"id"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
	Models      map[Role]string `json:"models"`
	Prompt      string          `json:"prompt,omitempty"`
	DatasetPath string          `json:"dataset_path,omitempty"`
	Messages    []Message       `json:"messages"`
	Status      JobStatus       `json:"status"`
	Error       string          `json:"error,omitempty"`
}

// ExecutionResult is the outcome of executing one generated code block
// in the sandbox. It is created once per execution attempt and never
// mutated afterwards. Figure is empty (never nil in JSON output) when no
// chart could be recovered.
type ExecutionResult struct {
	Figure map[string]any `json:"figure"`
	Output string         `json:"output"`
	Error  string         `json:"error"`
	Code   string         `json:"code"`
}

// Failed reports whether the attempt produced an error.
func (r *ExecutionResult) Failed() bool {
	return r.Error != ""
}

// VisualizationRequest asks the engine to run one orchestration job
// against the given dataset. Prompt is optional: when empty, the agents
// produce an initial set of suggested visualizations.
type VisualizationRequest struct {
	Prompt       string `json:"prompt,omitempty"`
	AnalystModel string `json:"analyst_model,omitempty"`
	CoderModel   string `json:"coder_model,omitempty"`
	DatasetPath  string `json:"-"`
	JobID        string `json:"-"`
}

// VisualizationResponse carries the renderer-ready chart configurations
// produced by a completed job, plus the per-block execution results for
// callers that want the captured output and sanitized code.
type VisualizationResponse struct {
	JobID          string            `json:"job_id"`
	Visualizations []map[string]any  `json:"visualizations"`
	Results        []ExecutionResult `json:"results,omitempty"`
}

// ActivityEntry is one line in the bounded orchestration activity log.
type ActivityEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Step      int       `json:"step"`
}
