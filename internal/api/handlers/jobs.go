package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/mws-sync/internal/store"
	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

// JobsProvider defines the store methods required by the jobs handler.
type JobsProvider interface {
	ListJobs(ctx context.Context, q *store.JobQuery) ([]domain.Job, int, error)
	GetJob(ctx context.Context, id string) (*domain.Job, error)
}

// JobsHandler handles report job history requests.
type JobsHandler struct {
	store JobsProvider
}

// NewJobsHandler creates a new JobsHandler.
func NewJobsHandler(s JobsProvider) *JobsHandler {
	return &JobsHandler{store: s}
}

// ListJobsInput is the query for listing jobs.
type ListJobsInput struct {
	Name    string   `query:"name"     doc:"Report definition name"`
	State   []string `query:"state"    doc:"Job states to include" enum:"requested,polling,done,failed"`
	Limit   int      `query:"limit"    doc:"Page size"             minimum:"0" maximum:"500" default:"50"`
	Offset  int      `query:"offset"   doc:"Rows to skip"          minimum:"0"`
	OrderBy string   `query:"order_by" doc:"Sort column"           enum:"created_at,updated_at" default:"created_at"`
}

// ListJobsOutput is the response body for listing jobs.
type ListJobsOutput struct {
	Body struct {
		Jobs   []domain.Job `json:"jobs"`
		Total  int          `json:"total"  example:"42" doc:"Jobs matching the filter"`
		Limit  int          `json:"limit"  example:"50"`
		Offset int          `json:"offset" example:"0"`
	}
}

// GetJobInput is the request path for a single job.
type GetJobInput struct {
	ID string `path:"id" doc:"Job ID"`
}

// GetJobOutput is the response body for a single job.
type GetJobOutput struct {
	Body *domain.Job
}

// ListJobs returns jobs newest first.
func (h *JobsHandler) ListJobs(ctx context.Context, input *ListJobsInput) (*ListJobsOutput, error) {
	q := &store.JobQuery{
		Name:    input.Name,
		Limit:   input.Limit,
		Offset:  input.Offset,
		OrderBy: input.OrderBy,
	}
	for _, s := range input.State {
		q.States = append(q.States, domain.JobState(s))
	}

	jobs, total, err := h.store.ListJobs(ctx, q)
	if err != nil {
		return nil, huma.Error500InternalServerError("listing jobs failed: " + err.Error())
	}

	if jobs == nil {
		jobs = []domain.Job{}
	}

	resp := &ListJobsOutput{}
	resp.Body.Jobs = jobs
	resp.Body.Total = total
	resp.Body.Limit = input.Limit
	resp.Body.Offset = input.Offset
	return resp, nil
}

// GetJob returns one job.
func (h *JobsHandler) GetJob(ctx context.Context, input *GetJobInput) (*GetJobOutput, error) {
	job, err := h.store.GetJob(ctx, input.ID)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return nil, huma.Error404NotFound("job not found: " + input.ID)
		}
		return nil, huma.Error500InternalServerError("fetching job failed: " + err.Error())
	}
	return &GetJobOutput{Body: job}, nil
}

// RegisterJobRoutes registers job endpoints with the Huma API.
func RegisterJobRoutes(api huma.API, h *JobsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-jobs",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs",
		Summary:     "List report jobs",
		Description: "Returns report jobs newest first, optionally filtered by definition and state.",
		Tags:        []string{"jobs"},
		Errors:      []int{http.StatusInternalServerError},
	}, h.ListJobs)

	huma.Register(api, huma.Operation{
		OperationID: "get-job",
		Method:      http.MethodGet,
		Path:        "/api/v1/jobs/{id}",
		Summary:     "Get a report job",
		Tags:        []string{"jobs"},
		Errors:      []int{http.StatusNotFound, http.StatusInternalServerError},
	}, h.GetJob)
}
