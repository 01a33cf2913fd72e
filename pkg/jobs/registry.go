package jobs

import (
	"sync"
)

// Registry tracks in-flight jobs for explicit cancellation and status
// lookup. It maps job IDs to their live handles; finished jobs are
// removed and live on only in storage.
//
// All methods are safe for concurrent access.
type Registry struct {
	mu     sync.Mutex
	active map[string]*Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]*Job)}
}

// Register adds a running job. It reports false when the ID is already
// taken by another in-flight job.
func (r *Registry) Register(job *Job) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.active[job.ID()]; exists {
		return false
	}
	r.active[job.ID()] = job
	return true
}

// Cancel requests cancellation of the job with the given ID. It reports
// false when the ID is unknown (already finished or never existed) or
// when cancellation was already requested.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	job, ok := r.active[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return job.RequestCancel()
}

// Get returns the live handle for an in-flight job.
func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.active[id]
	return job, ok
}

// Remove drops a job from the registry once it has finished.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, id)
}

// Len returns the number of in-flight jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.active)
}
