// Package handlers implements HTTP handlers for the mws-sync ops API.
package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by every job store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check is one named readiness dependency.
type Check struct {
	Name   string
	Pinger Pinger
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	checks []Check
}

// NewHealthHandler creates a HealthHandler that is ready only when every
// check pings cleanly.
func NewHealthHandler(checks ...Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Healthz returns 200 if the process is running.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz pings every dependency and returns 503 with the failing ones when
// any is down.
func (h *HealthHandler) Readyz(c echo.Context) error {
	resp := StatusResponse{Status: "ready"}
	for _, chk := range h.checks {
		if err := chk.Pinger.Ping(c.Request().Context()); err != nil {
			if resp.Failed == nil {
				resp.Failed = make(map[string]string)
			}
			resp.Failed[chk.Name] = err.Error()
		}
	}
	if len(resp.Failed) > 0 {
		resp.Status = "unavailable"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
