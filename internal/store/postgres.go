package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled PostgreSQL).
//
// TODO(test): PostgresStore methods require live Postgres, tested via integration tests.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*pgxpool.Config)

// WithPoolSize sets the maximum number of pooled connections.
func WithPoolSize(n int) PostgresOption {
	return func(cfg *pgxpool.Config) {
		if n > 0 {
			cfg.MaxConns = int32(n) //nolint:gosec // pool size comes from validated config
		}
	}
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string, opts ...PostgresOption) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize
	for _, opt := range opts {
		opt(cfg)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := RunMigrations(ctx, s.pool)
	return err
}

// Pool exposes the underlying pool for the migrate command.
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

// CreateJob inserts j. The caller assigns the id; timestamps come from the
// database.
func (s *PostgresStore) CreateJob(ctx context.Context, j *domain.Job) error {
	err := s.pool.QueryRow(ctx, queryInsertJob, jobArgs(j)).Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting job: %w", err)
	}
	return nil
}

// UpdateJob writes every mutable field of j.
func (s *PostgresStore) UpdateJob(ctx context.Context, j *domain.Job) error {
	err := s.pool.QueryRow(ctx, queryUpdateJob, jobArgs(j)).Scan(&j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("updating job %s: %w", j.ID, ErrJobNotFound)
	}
	if err != nil {
		return fmt.Errorf("updating job %s: %w", j.ID, err)
	}
	return nil
}

// GetJob retrieves a job by id.
func (s *PostgresStore) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	j := &domain.Job{}
	err := scanJob(s.pool.QueryRow(ctx, queryGetJob, id), j)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("job %s: %w", id, ErrJobNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting job %s: %w", id, err)
	}
	return j, nil
}

// ListJobs queries jobs with optional filters, returning results and total count.
func (s *PostgresStore) ListJobs(ctx context.Context, q *JobQuery) ([]domain.Job, int, error) {
	if q == nil {
		q = &JobQuery{}
	}
	dataSQL, countSQL, args := q.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting jobs: %w", err)
	}

	jobs, err := s.queryJobs(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// ListActiveJobs returns every job still requested or polling, oldest first.
func (s *PostgresStore) ListActiveJobs(ctx context.Context) ([]domain.Job, error) {
	return s.queryJobs(ctx, queryListActiveJobs)
}

func (s *PostgresStore) queryJobs(ctx context.Context, query string, args ...any) ([]domain.Job, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		var j domain.Job
		if err := scanJob(rows, &j); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}

func jobArgs(j *domain.Job) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":               j.ID,
		"name":             j.Name,
		"report_type":      j.ReportType,
		"request_id":       j.RequestID,
		"report_id":        j.ReportID,
		"state":            string(j.State),
		"status":           j.Status,
		"polls":            j.Polls,
		"archive_location": j.ArchiveLocation,
		"bytes":            j.Bytes,
		"ack_error":        j.AckError,
		"error_text":       j.ErrorText,
		"completed_at":     j.CompletedAt,
	}
}

// scannable abstracts pgx.Row and pgx.Rows for reuse.
type scannable interface {
	Scan(dest ...any) error
}

// scanJob scans a full job row.
func scanJob(row scannable, j *domain.Job) error {
	return row.Scan(
		&j.ID, &j.Name, &j.ReportType, &j.RequestID, &j.ReportID,
		&j.State, &j.Status, &j.Polls, &j.ArchiveLocation, &j.Bytes, &j.AckError, &j.ErrorText,
		&j.CreatedAt, &j.UpdatedAt, &j.CompletedAt,
	)
}
