package handlers_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/mws-sync/internal/api/handlers"
	"github.com/donaldgifford/mws-sync/internal/mws"
)

func TestGetQuota(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rl       *mws.RateLimiter
		preCalls int
		wantBody []string
	}{
		{
			name:     "nil rate limiter returns zeroes",
			rl:       nil,
			wantBody: []string{`"hourly_limit":0`, `"hourly_used":0`, `"remaining":0`},
		},
		{
			name:     "unlimited rate limiter",
			rl:       mws.NewRateLimiter(100, 10, 0),
			wantBody: []string{`"hourly_limit":0`, `"remaining":-1`},
		},
		{
			name:     "rate limiter with usage",
			rl:       mws.NewRateLimiter(100, 10, 100),
			preCalls: 3,
			wantBody: []string{`"hourly_limit":100`, `"hourly_used":3`, `"remaining":97`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Simulate some API calls.
			if tt.rl != nil {
				for range tt.preCalls {
					require.NoError(t, tt.rl.Wait(t.Context()))
				}
			}

			_, api := humatest.New(t)
			handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(tt.rl))

			resp := api.Get("/api/v1/quota")
			require.Equal(t, http.StatusOK, resp.Code)

			body := resp.Body.String()
			assert.Contains(t, body, `"reset_at"`)
			for _, want := range tt.wantBody {
				assert.Contains(t, body, want)
			}
		})
	}
}

func TestGetQuota_ResetAtValue(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 15, 14, 30, 0, 0, time.UTC)
	rl := mws.NewRateLimiter(
		5, 10, 7200,
		mws.WithRateLimiterNowFunc(func() time.Time { return now }),
	)

	_, api := humatest.New(t)
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(rl))

	resp := api.Get("/api/v1/quota")
	require.Equal(t, http.StatusOK, resp.Code)

	// The window resets an hour after it opens.
	assert.Contains(t, resp.Body.String(), "2026-06-15T15:30:00Z")
}
