package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

// JobFilter narrows a job listing. Zero values are omitted.
type JobFilter struct {
	Name   string
	States []domain.JobState
	Limit  int
	Offset int
}

// JobPage is one page of job history.
type JobPage struct {
	Jobs   []domain.Job `json:"jobs"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// ListJobs returns job history newest first.
func (c *Client) ListJobs(ctx context.Context, f JobFilter) (*JobPage, error) {
	q := url.Values{}
	if f.Name != "" {
		q.Set("name", f.Name)
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		q.Set("state", strings.Join(states, ","))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}

	var page JobPage
	if err := c.get(ctx, "/api/v1/jobs", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetJob returns one job by ID.
func (c *Client) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := c.get(ctx, "/api/v1/jobs/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
