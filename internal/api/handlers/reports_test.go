package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/mws-sync/internal/api/handlers"
	"github.com/donaldgifford/mws-sync/internal/config"
	"github.com/donaldgifford/mws-sync/internal/engine"
	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

// mockRunner is a test double for ReportRunner.
type mockRunner struct {
	defs    []config.ReportConfig
	running map[string]bool
	job     *domain.Job
	err     error
	called  string
}

func (m *mockRunner) Definitions() []config.ReportConfig { return m.defs }

func (m *mockRunner) Running(name string) bool { return m.running[name] }

func (m *mockRunner) Trigger(_ context.Context, name string) (*domain.Job, error) {
	m.called = name
	return m.job, m.err
}

func TestListReports(t *testing.T) {
	t.Parallel()

	r := &mockRunner{
		defs: []config.ReportConfig{
			{Name: "inventory", ReportType: "_GET_FLAT_FILE_OPEN_LISTINGS_DATA_", Schedule: "@every 6h"},
			{Name: "orders", ReportType: "_GET_ORDERS_DATA_"},
		},
		running: map[string]bool{"orders": true},
	}
	_, api := humatest.New(t)
	handlers.RegisterReportRoutes(api, handlers.NewReportsHandler(r))

	resp := api.Get("/api/v1/reports")
	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, `"schedule":"@every 6h"`)
	assert.Contains(t, body, `"running":true`)
	assert.Contains(t, body, `"running":false`)
}

func TestRunReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		runner     *mockRunner
		wantStatus int
		wantBody   string
	}{
		{
			name: "accepted",
			runner: &mockRunner{job: &domain.Job{
				ID:        "job-1",
				Name:      "inventory",
				RequestID: "RR0001",
				State:     domain.JobStatePolling,
			}},
			wantStatus: http.StatusAccepted,
			wantBody:   `"state":"polling"`,
		},
		{
			name:       "unknown report",
			runner:     &mockRunner{err: fmt.Errorf("%w: inventory", engine.ErrUnknownReport)},
			wantStatus: http.StatusNotFound,
			wantBody:   "unknown report",
		},
		{
			name:       "already running",
			runner:     &mockRunner{err: fmt.Errorf("%w: inventory", engine.ErrReportRunning)},
			wantStatus: http.StatusConflict,
			wantBody:   "already running",
		},
		{
			name:       "service rejected request",
			runner:     &mockRunner{err: errors.New("mws sender error InvalidParameterValue")},
			wantStatus: http.StatusBadGateway,
			wantBody:   "InvalidParameterValue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			handlers.RegisterReportRoutes(api, handlers.NewReportsHandler(tt.runner))

			resp := api.Post("/api/v1/reports/inventory/run")
			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
			assert.Equal(t, "inventory", tt.runner.called)
		})
	}
}
