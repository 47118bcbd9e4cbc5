package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/mws-sync/internal/api/handlers"
	"github.com/donaldgifford/mws-sync/internal/store"
	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

// mockJobsProvider is a test double for JobsProvider.
type mockJobsProvider struct {
	jobs  []domain.Job
	total int
	err   error
	query *store.JobQuery
}

func (m *mockJobsProvider) ListJobs(_ context.Context, q *store.JobQuery) ([]domain.Job, int, error) {
	m.query = q
	return m.jobs, m.total, m.err
}

func (m *mockJobsProvider) GetJob(_ context.Context, id string) (*domain.Job, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.jobs {
		if m.jobs[i].ID == id {
			return &m.jobs[i], nil
		}
	}
	return nil, fmt.Errorf("job %s: %w", id, store.ErrJobNotFound)
}

func sampleJob(id, name string, state domain.JobState) domain.Job {
	now := time.Now().Truncate(time.Second)
	return domain.Job{
		ID:         id,
		Name:       name,
		ReportType: "_GET_FLAT_FILE_OPEN_LISTINGS_DATA_",
		RequestID:  "RR0001",
		State:      state,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestListJobs_Success(t *testing.T) {
	t.Parallel()

	p := &mockJobsProvider{
		jobs: []domain.Job{
			sampleJob("job-1", "inventory", domain.JobStateDone),
			sampleJob("job-2", "orders", domain.JobStatePolling),
		},
		total: 7,
	}
	_, api := humatest.New(t)
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(p))

	resp := api.Get("/api/v1/jobs?name=inventory&state=done,failed&limit=2&offset=4")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Jobs   []domain.Job `json:"jobs"`
		Total  int          `json:"total"`
		Limit  int          `json:"limit"`
		Offset int          `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Len(t, body.Jobs, 2)
	assert.Equal(t, 7, body.Total)
	assert.Equal(t, 2, body.Limit)
	assert.Equal(t, 4, body.Offset)

	require.NotNil(t, p.query)
	assert.Equal(t, "inventory", p.query.Name)
	assert.Equal(t, []domain.JobState{domain.JobStateDone, domain.JobStateFailed}, p.query.States)
	assert.Equal(t, "created_at", p.query.OrderBy)
}

func TestListJobs_Empty(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(&mockJobsProvider{}))

	resp := api.Get("/api/v1/jobs")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"jobs":[]`)
	assert.Contains(t, resp.Body.String(), `"limit":50`)
}

func TestListJobs_InvalidState(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(&mockJobsProvider{}))

	resp := api.Get("/api/v1/jobs?state=exploded")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestListJobs_Error(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(&mockJobsProvider{err: errors.New("db error")}))

	resp := api.Get("/api/v1/jobs")
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), "db error")
}

func TestGetJob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		provider   *mockJobsProvider
		id         string
		wantStatus int
		wantBody   string
	}{
		{
			name: "found",
			provider: &mockJobsProvider{jobs: []domain.Job{
				sampleJob("job-1", "inventory", domain.JobStateDone),
			}},
			id:         "job-1",
			wantStatus: http.StatusOK,
			wantBody:   `"name":"inventory"`,
		},
		{
			name:       "not found",
			provider:   &mockJobsProvider{},
			id:         "job-404",
			wantStatus: http.StatusNotFound,
			wantBody:   "job not found",
		},
		{
			name:       "store error",
			provider:   &mockJobsProvider{err: errors.New("connection reset")},
			id:         "job-1",
			wantStatus: http.StatusInternalServerError,
			wantBody:   "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(tt.provider))

			resp := api.Get("/api/v1/jobs/" + tt.id)
			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
}
