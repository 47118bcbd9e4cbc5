package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

// ErrJobExists is returned by MemoryStore.CreateJob for a duplicate id.
var ErrJobExists = errors.New("job already exists")

// MemoryStore implements Store in process memory. It backs the daemon when
// no database is configured; jobs do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	jobs    map[string]*domain.Job
	nowFunc func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs:    make(map[string]*domain.Job),
		nowFunc: time.Now,
	}
}

// Ping always succeeds.
func (*MemoryStore) Ping(context.Context) error { return nil }

// Migrate is a no-op.
func (*MemoryStore) Migrate(context.Context) error { return nil }

// CreateJob stores a copy of j and stamps its timestamps.
func (m *MemoryStore) CreateJob(_ context.Context, j *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[j.ID]; ok {
		return fmt.Errorf("creating job %s: %w", j.ID, ErrJobExists)
	}
	now := m.nowFunc()
	j.CreatedAt, j.UpdatedAt = now, now
	stored := *j
	m.jobs[j.ID] = &stored
	return nil
}

// UpdateJob replaces the stored job, keeping its creation time.
func (m *MemoryStore) UpdateJob(_ context.Context, j *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.jobs[j.ID]
	if !ok {
		return fmt.Errorf("updating job %s: %w", j.ID, ErrJobNotFound)
	}
	j.CreatedAt = cur.CreatedAt
	j.UpdatedAt = m.nowFunc()
	stored := *j
	m.jobs[j.ID] = &stored
	return nil
}

// GetJob returns a copy of the job with the given id.
func (m *MemoryStore) GetJob(_ context.Context, id string) (*domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, ErrJobNotFound)
	}
	out := *j
	return &out, nil
}

// ListJobs applies q the same way the SQL query does.
func (m *MemoryStore) ListJobs(_ context.Context, q *JobQuery) ([]domain.Job, int, error) {
	if q == nil {
		q = &JobQuery{}
	}

	m.mu.RLock()
	matched := make([]domain.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if q.Name != "" && j.Name != q.Name {
			continue
		}
		if len(q.States) > 0 && !slices.Contains(q.States, j.State) {
			continue
		}
		matched = append(matched, *j)
	}
	m.mu.RUnlock()

	byUpdated := q.OrderBy == orderByUpdated
	slices.SortFunc(matched, func(a, b domain.Job) int {
		if byUpdated {
			return b.UpdatedAt.Compare(a.UpdatedAt)
		}
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	total := len(matched)
	start := min(max(q.Offset, 0), total)
	end := min(start+q.limit(), total)
	return matched[start:end], total, nil
}

// ListActiveJobs returns every requested or polling job, oldest first.
func (m *MemoryStore) ListActiveJobs(_ context.Context) ([]domain.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.Job
	for _, j := range m.jobs {
		if j.State.Active() {
			out = append(out, *j)
		}
	}
	slices.SortFunc(out, func(a, b domain.Job) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}
