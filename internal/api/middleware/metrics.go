// Package middleware provides Echo middleware for the mws-sync ops server.
package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/mws-sync/internal/metrics"
)

// unmatchedPath labels requests that hit no registered route, so random
// probes cannot blow up label cardinality.
const unmatchedPath = "unmatched"

// Probe and scrape paths stay out of the request histograms.
var metricsSkipPaths = map[string]struct{}{
	"/metrics": {},
	"/healthz": {},
	"/readyz":  {},
}

var healthGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// Metrics returns Echo middleware that records request duration and status
// keyed by route template (/api/v1/jobs/:id, not the concrete ID).
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := routePath(c)

			if _, skip := metricsSkipPaths[path]; skip {
				err := next(c)
				updateHealthGauge(path, c.Response().Status)
				return err
			}

			start := time.Now()
			err := next(c)

			// Echo writes the error response after the middleware chain
			// returns; recover the status it will use.
			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = errorStatus(err)
			}

			labels := []string{c.Request().Method, path, strconv.Itoa(status)}
			metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()

			return err
		}
	}
}

func routePath(c echo.Context) string {
	path := c.Path()
	if path == "" {
		return unmatchedPath
	}
	if _, ok := metricsSkipPaths[c.Request().URL.Path]; ok {
		return c.Request().URL.Path
	}
	return path
}

func errorStatus(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

func updateHealthGauge(path string, status int) {
	gauge, ok := healthGauges[path]
	if !ok {
		return
	}

	if status >= 200 && status < 300 {
		gauge.Set(1)
	} else {
		gauge.Set(0)
	}
}
