package client

import (
	"context"
	"net/url"
	"time"

	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

// Report is a configured report definition as the server reports it.
type Report struct {
	Name           string   `json:"name"`
	ReportType     string   `json:"report_type"`
	Schedule       string   `json:"schedule,omitempty"`
	MarketplaceIDs []string `json:"marketplace_ids,omitempty"`
	Running        bool     `json:"running"`
}

// Quota is the server's view of the hourly request budget.
type Quota struct {
	HourlyLimit int64     `json:"hourly_limit"`
	HourlyUsed  int64     `json:"hourly_used"`
	Remaining   int64     `json:"remaining"`
	ResetAt     time.Time `json:"reset_at"`
}

// ListReports returns the server's report definitions.
func (c *Client) ListReports(ctx context.Context) ([]Report, error) {
	var reports []Report
	if err := c.get(ctx, "/api/v1/reports", nil, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// RunReport asks the server to run a definition now. The returned job is
// usually still polling.
func (c *Client) RunReport(ctx context.Context, name string) (*domain.Job, error) {
	var job domain.Job
	if err := c.post(ctx, "/api/v1/reports/"+url.PathEscape(name)+"/run", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetQuota returns the server's rate limiter state.
func (c *Client) GetQuota(ctx context.Context) (*Quota, error) {
	var q Quota
	if err := c.get(ctx, "/api/v1/quota", nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}
