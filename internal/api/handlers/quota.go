package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/mws-sync/internal/mws"
)

// QuotaHandler provides the client-side request quota status endpoint.
type QuotaHandler struct {
	rl *mws.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(rl *mws.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		HourlyLimit int64     `json:"hourly_limit" example:"7200"                 doc:"Configured hourly call limit, 0 when unlimited"`
		HourlyUsed  int64     `json:"hourly_used"  example:"142"                  doc:"Calls made in the current one-hour window"`
		Remaining   int64     `json:"remaining"    example:"7058"                 doc:"Calls remaining in the window, -1 when unlimited"`
		ResetAt     time.Time `json:"reset_at"     example:"2026-06-16T14:30:00Z" doc:"When the current window expires"`
	}
}

// GetQuota returns the current quota status.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	resp.Body.HourlyLimit = h.rl.MaxHourly()
	resp.Body.HourlyUsed = h.rl.HourlyCount()
	resp.Body.Remaining = h.rl.Remaining()
	resp.Body.ResetAt = h.rl.ResetAt()

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get request quota status",
		Description: "Returns the client-side hourly call usage, remaining quota, and window reset time.",
		Tags:        []string{"mws"},
	}, h.GetQuota)
}
