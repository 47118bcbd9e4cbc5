package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/mws-sync/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListReports(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		notFound   bool
	}{
		{
			name:       "problem json detail",
			status:     http.StatusNotFound,
			body:       `{"title":"Not Found","status":404,"detail":"job not found: j-1"}`,
			wantDetail: "job not found: j-1",
			notFound:   true,
		},
		{
			name:       "error field",
			status:     http.StatusInternalServerError,
			body:       `{"error":"internal server error"}`,
			wantDetail: "internal server error",
		},
		{
			name:       "plain text",
			status:     http.StatusBadGateway,
			body:       "upstream unavailable\n",
			wantDetail: "upstream unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).GetJob(context.Background(), "j-1")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Equal(t, tt.notFound, IsNotFound(err))
		})
	}
}

func TestClient_ListJobs(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/jobs", r.URL.Path)
		assert.Equal(t, "inventory", r.URL.Query().Get("name"))
		assert.Equal(t, "polling,failed", r.URL.Query().Get("state"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Empty(t, r.URL.Query().Get("offset"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(JobPage{
			Jobs:  []domain.Job{{ID: "j1", Name: "inventory", State: domain.JobStatePolling}},
			Total: 1,
			Limit: 10,
		})
	}))
	defer srv.Close()

	page, err := New(srv.URL).ListJobs(context.Background(), JobFilter{
		Name:   "inventory",
		States: []domain.JobState{domain.JobStatePolling, domain.JobStateFailed},
		Limit:  10,
	})
	require.NoError(t, err)
	require.Len(t, page.Jobs, 1)
	assert.Equal(t, "j1", page.Jobs[0].ID)
	assert.Equal(t, 1, page.Total)
}

func TestClient_GetJob(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/jobs/j-42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(domain.Job{ID: "j-42", State: domain.JobStateDone, ReportID: "5001"})
	}))
	defer srv.Close()

	job, err := New(srv.URL).GetJob(context.Background(), "j-42")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStateDone, job.State)
	assert.Equal(t, "5001", job.ReportID)
}

func TestClient_ListReports(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/reports", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"inventory","report_type":"_GET_MERCHANT_LISTINGS_DATA_","running":true}]`))
	}))
	defer srv.Close()

	reports, err := New(srv.URL).ListReports(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].Running)
	assert.Equal(t, "_GET_MERCHANT_LISTINGS_DATA_", reports[0].ReportType)
}

func TestClient_RunReport(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/reports/inventory/run", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(domain.Job{ID: "j1", Name: "inventory", State: domain.JobStatePolling})
	}))
	defer srv.Close()

	job, err := New(srv.URL).RunReport(context.Background(), "inventory")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatePolling, job.State)
}

func TestClient_GetQuota(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly_limit":7200,"hourly_used":12,"remaining":7188,"reset_at":"2026-06-15T15:30:00Z"}`))
	}))
	defer srv.Close()

	q, err := New(srv.URL).GetQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7188), q.Remaining)
	assert.Equal(t, 15, q.ResetAt.Hour())
}
