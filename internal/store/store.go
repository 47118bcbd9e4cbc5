// Package store defines the datastore abstraction for mws-sync.
// The engine and the API depend on the Store interface, never on concrete
// implementations. This enables mock-based testing without a running database.
package store

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

// ErrJobNotFound is returned when no job matches the given id.
var ErrJobNotFound = errors.New("job not found")

// JobQuery defines optional filters for job queries.
type JobQuery struct {
	Name    string
	States  []domain.JobState
	Limit   int // default 50
	Offset  int
	OrderBy string // "created_at", "updated_at"
}

// Store defines all data access operations for mws-sync.
type Store interface {
	// Jobs
	CreateJob(ctx context.Context, j *domain.Job) error
	UpdateJob(ctx context.Context, j *domain.Job) error
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	ListJobs(ctx context.Context, q *JobQuery) ([]domain.Job, int, error)
	ListActiveJobs(ctx context.Context) ([]domain.Job, error)

	// Migrations
	Migrate(ctx context.Context) error

	// Health
	Ping(ctx context.Context) error
}
