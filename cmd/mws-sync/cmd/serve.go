package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/mws-sync/internal/api/handlers"
	mw "github.com/donaldgifford/mws-sync/internal/api/middleware"
	"github.com/donaldgifford/mws-sync/internal/config"
	"github.com/donaldgifford/mws-sync/internal/engine"
	"github.com/donaldgifford/mws-sync/internal/notify"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ops server and report scheduler",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := newDaemon(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	sched, err := engine.NewScheduler(d.engine, d.log.With("component", "scheduler"))
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	e := newServer(&cfg.Server, d)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	d.engine.ResumeBackground()
	sched.Start()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr, "reports", len(cfg.Reports))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Error("server error", "err", err)
	}

	<-sched.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := d.engine.Shutdown(shutdownCtx); err != nil {
		logger.Warn("jobs still running at shutdown, they resume on next start", "err", err)
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newServer(cfg *config.ServerConfig, d *daemon) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.ReadTimeout
	e.Server.WriteTimeout = cfg.WriteTimeout

	httpLog := d.log.With("component", "http")
	e.Use(mw.RequestLog(httpLog), mw.Recovery(httpLog), mw.Metrics())

	health := handlers.NewHealthHandler(readinessChecks(d)...)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("mws-sync", Version))
	handlers.RegisterJobRoutes(api, handlers.NewJobsHandler(d.store))
	handlers.RegisterReportRoutes(api, handlers.NewReportsHandler(d.engine))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(d.client.RateLimiter()))

	return e
}

// readinessChecks pings the job store and any NATS connection.
func readinessChecks(d *daemon) []handlers.Check {
	checks := []handlers.Check{{Name: "store", Pinger: d.store}}

	targets := notify.Multi{d.notifier}
	if m, ok := d.notifier.(notify.Multi); ok {
		targets = m
	}
	for _, n := range targets {
		if nc, ok := n.(*notify.NATSNotifier); ok {
			checks = append(checks, handlers.Check{Name: "nats", Pinger: nc})
		}
	}
	return checks
}
