package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/mws-sync/internal/config"
	"github.com/donaldgifford/mws-sync/internal/engine"
	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

// ReportRunner defines the engine methods required by the reports handler.
type ReportRunner interface {
	Definitions() []config.ReportConfig
	Running(name string) bool
	Trigger(ctx context.Context, name string) (*domain.Job, error)
}

// ReportsHandler lists report definitions and triggers runs.
type ReportsHandler struct {
	runner ReportRunner
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(r ReportRunner) *ReportsHandler {
	return &ReportsHandler{runner: r}
}

// ReportDefinition is one configured report.
type ReportDefinition struct {
	Name           string   `json:"name"                      example:"inventory"`
	ReportType     string   `json:"report_type"               example:"_GET_FLAT_FILE_OPEN_LISTINGS_DATA_"`
	Schedule       string   `json:"schedule,omitempty"        example:"@every 6h"`
	MarketplaceIDs []string `json:"marketplace_ids,omitempty"`
	Running        bool     `json:"running"                   doc:"Whether a job for this report is in flight"`
}

// ListReportsOutput is the response body for listing definitions.
type ListReportsOutput struct {
	Body []ReportDefinition
}

// RunReportInput is the request path for triggering a report.
type RunReportInput struct {
	Name string `path:"name" doc:"Report definition name"`
}

// RunReportOutput is the accepted job.
type RunReportOutput struct {
	Body *domain.Job
}

// ListReports returns the configured report definitions.
func (h *ReportsHandler) ListReports(_ context.Context, _ *struct{}) (*ListReportsOutput, error) {
	defs := h.runner.Definitions()
	out := make([]ReportDefinition, 0, len(defs))
	for _, d := range defs {
		out = append(out, ReportDefinition{
			Name:           d.Name,
			ReportType:     d.ReportType,
			Schedule:       d.Schedule,
			MarketplaceIDs: d.MarketplaceIDs,
			Running:        h.runner.Running(d.Name),
		})
	}
	return &ListReportsOutput{Body: out}, nil
}

// RunReport requests the report now and returns the polling job.
func (h *ReportsHandler) RunReport(ctx context.Context, input *RunReportInput) (*RunReportOutput, error) {
	job, err := h.runner.Trigger(ctx, input.Name)
	switch {
	case errors.Is(err, engine.ErrUnknownReport):
		return nil, huma.Error404NotFound("unknown report: " + input.Name)
	case errors.Is(err, engine.ErrReportRunning):
		return nil, huma.Error409Conflict("report already running: " + input.Name)
	case err != nil:
		return nil, huma.Error502BadGateway("report request failed: " + err.Error())
	}
	return &RunReportOutput{Body: job}, nil
}

// RegisterReportRoutes registers report endpoints with the Huma API.
func RegisterReportRoutes(api huma.API, h *ReportsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-reports",
		Method:      http.MethodGet,
		Path:        "/api/v1/reports",
		Summary:     "List report definitions",
		Tags:        []string{"reports"},
	}, h.ListReports)

	huma.Register(api, huma.Operation{
		OperationID:   "run-report",
		Method:        http.MethodPost,
		Path:          "/api/v1/reports/{name}/run",
		Summary:       "Run a report now",
		Description:   "Sends the report request and returns the job; polling continues in the background.",
		Tags:          []string{"reports"},
		DefaultStatus: http.StatusAccepted,
		Errors:        []int{http.StatusNotFound, http.StatusConflict, http.StatusBadGateway},
	}, h.RunReport)
}
