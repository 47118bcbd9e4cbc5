// Package main runs a fake MWS endpoint for local development. Point the mws
// CLI or the daemon at it with --domain http://localhost:8089 and the fixed
// credentials it prints at startup.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/donaldgifford/mws-sync/internal/mws/mwstest"
)

type options struct {
	port        int
	polls       int
	finalStatus string
	reportFile  string
}

func main() {
	var opts options
	flag.IntVar(&opts.port, "port", 8089, "port to listen on")
	flag.IntVar(&opts.polls, "polls", 1, "status polls a job stays in progress")
	flag.StringVar(&opts.finalStatus, "final-status", "", "terminal job status (default _DONE_)")
	flag.StringVar(&opts.reportFile, "report", "", "flat file served as report content")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	srv, err := newServer(opts, logger)
	if err != nil {
		logger.Error("failed to start mock server", "error", err)
		os.Exit(1)
	}
	defer srv.Close()

	logger.Info("mock MWS server listening",
		"url", srv.URL,
		"access_key", mwstest.AccessKey,
		"secret_key", mwstest.SecretKey,
		"seller_id", mwstest.AccountID,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info("shutting down")
}

func newServer(opts options, logger *slog.Logger) (*mwstest.Server, error) {
	srv := mwstest.New()
	srv.PollsUntilDone = opts.polls
	srv.FinalStatus = opts.finalStatus
	srv.Log = logger

	if opts.reportFile != "" {
		content, err := os.ReadFile(opts.reportFile)
		if err != nil {
			return nil, fmt.Errorf("reading report file: %w", err)
		}
		srv.ReportContent = content
	}

	if err := srv.Listen(fmt.Sprintf("127.0.0.1:%d", opts.port)); err != nil {
		return nil, err
	}
	return srv, nil
}
