package api

import "fmt"

// ValidateJobTransition checks whether a job status transition is valid.
// An empty "from" status represents the initial state before the job has
// started. Terminal states (completed, cancelled, error) allow no
// outgoing transitions: a job reaches exactly one terminal state and
// stays there until an explicit reset creates a new job.
func ValidateJobTransition(from, to JobStatus) *APIError {
	valid := map[JobStatus][]JobStatus{
		"":               {JobStatusRunning},
		JobStatusRunning: {JobStatusCompleted, JobStatusCancelled, JobStatusError},
	}

	allowed, exists := valid[from]
	if !exists {
		return NewInvalidRequestError("status",
			fmt.Sprintf("invalid transition from %s to %s", from, to))
	}

	for _, s := range allowed {
		if s == to {
			return nil
		}
	}

	return NewInvalidRequestError("status",
		fmt.Sprintf("invalid transition from %s to %s", from, to))
}
