// Package storage defines the job-record store interface and utilities
// shared by its adapter implementations (memory, postgres): sentinel
// errors and tenant context helpers.
package storage

import (
	"context"
	"errors"

	"github.com/agentviz/agentviz/pkg/api"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a job record does not exist.
	ErrNotFound = errors.New("job not found")

	// ErrConflict is returned when a job with the given ID already exists.
	ErrConflict = errors.New("job already exists")
)

// JobStore persists orchestration job records. The memory adapter keeps
// a bounded most-recent window; the postgres adapter keeps everything.
//
// Implementations must be safe for concurrent use.
type JobStore interface {
	// SaveJob inserts a new job record. Returns ErrConflict when the ID
	// is already stored.
	SaveJob(ctx context.Context, rec *api.JobRecord) error

	// UpdateJob replaces the stored record for rec.ID, used to flush
	// message appends and the terminal transition. Returns ErrNotFound
	// when the job was never saved (or already evicted).
	UpdateJob(ctx context.Context, rec *api.JobRecord) error

	// GetJob retrieves a job record by ID.
	GetJob(ctx context.Context, id string) (*api.JobRecord, error)

	// ListJobs returns up to limit records, newest first.
	ListJobs(ctx context.Context, limit int) ([]*api.JobRecord, error)

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases store resources.
	Close() error
}
