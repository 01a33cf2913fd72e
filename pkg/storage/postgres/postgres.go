// Package postgres provides a PostgreSQL implementation of
// storage.JobStore. It uses pgx/v5 for connection pooling and JSONB for
// the message log and role-to-model bindings.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/storage"
)

// Store is a PostgreSQL-backed JobStore.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.JobStore = (*Store)(nil)

// New creates a PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// SaveJob inserts a new job record.
func (s *Store) SaveJob(ctx context.Context, rec *api.JobRecord) error {
	modelsJSON, messagesJSON, err := marshalRecord(rec)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO jobs (
			id, tenant_id, status, prompt, dataset_path,
			models, messages, error, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		rec.ID, storage.GetTenant(ctx), string(rec.Status), rec.Prompt, rec.DatasetPath,
		nullJSON(modelsJSON), messagesJSON, rec.Error, rec.StartedAt, rec.FinishedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting job: %w", err)
	}
	return nil
}

// UpdateJob replaces the stored record for rec.ID.
func (s *Store) UpdateJob(ctx context.Context, rec *api.JobRecord) error {
	modelsJSON, messagesJSON, err := marshalRecord(rec)
	if err != nil {
		return err
	}

	query := `
		UPDATE jobs SET
			status = $2, prompt = $3, dataset_path = $4,
			models = $5, messages = $6, error = $7, finished_at = $8
		WHERE id = $1
	`
	args := []any{
		rec.ID, string(rec.Status), rec.Prompt, rec.DatasetPath,
		nullJSON(modelsJSON), messagesJSON, rec.Error, rec.FinishedAt,
	}
	if tenantID := storage.GetTenant(ctx); tenantID != "" {
		query += " AND tenant_id = $9"
		args = append(args, tenantID)
	}

	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetJob retrieves a job record by ID, scoped by tenant when one is
// present in the context.
func (s *Store) GetJob(ctx context.Context, id string) (*api.JobRecord, error) {
	query := `
		SELECT id, status, prompt, dataset_path,
		       models, messages, error, started_at, finished_at
		FROM jobs
		WHERE id = $1
	`
	args := []any{id}
	if tenantID := storage.GetTenant(ctx); tenantID != "" {
		query += " AND tenant_id = $2"
		args = append(args, tenantID)
	}

	rec, err := scanJob(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying job: %w", err)
	}
	return rec, nil
}

// ListJobs returns up to limit records, newest started first.
func (s *Store) ListJobs(ctx context.Context, limit int) ([]*api.JobRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, status, prompt, dataset_path,
		       models, messages, error, started_at, finished_at
		FROM jobs
	`
	args := []any{}
	if tenantID := storage.GetTenant(ctx); tenantID != "" {
		query += " WHERE tenant_id = $1"
		args = append(args, tenantID)
	}
	query += fmt.Sprintf(" ORDER BY started_at DESC, id DESC LIMIT %d", limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []*api.JobRecord
	for rows.Next() {
		rec, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*api.JobRecord, error) {
	var rec api.JobRecord
	var status string
	var modelsJSON *[]byte
	var messagesJSON []byte

	err := row.Scan(
		&rec.ID, &status, &rec.Prompt, &rec.DatasetPath,
		&modelsJSON, &messagesJSON, &rec.Error, &rec.StartedAt, &rec.FinishedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Status = api.JobStatus(status)
	if modelsJSON != nil {
		if err := json.Unmarshal(*modelsJSON, &rec.Models); err != nil {
			return nil, fmt.Errorf("unmarshaling models: %w", err)
		}
	}
	if err := json.Unmarshal(messagesJSON, &rec.Messages); err != nil {
		return nil, fmt.Errorf("unmarshaling messages: %w", err)
	}
	return &rec, nil
}

func marshalRecord(rec *api.JobRecord) (modelsJSON, messagesJSON []byte, err error) {
	if rec.Models != nil {
		modelsJSON, err = json.Marshal(rec.Models)
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling models: %w", err)
		}
	}

	messages := rec.Messages
	if messages == nil {
		messages = []api.Message{}
	}
	messagesJSON, err = json.Marshal(messages)
	if err != nil {
		return nil, nil, fmt.Errorf("marshaling messages: %w", err)
	}
	return modelsJSON, messagesJSON, nil
}

// nullJSON converts nil/empty byte slices to nil for nullable JSONB columns.
func nullJSON(b []byte) *[]byte {
	if len(b) == 0 {
		return nil
	}
	return &b
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
