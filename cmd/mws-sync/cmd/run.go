package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [report]",
	Short: "Run one report, or every configured report, and exit",
	Long: "run drives the named report (or all of them) through request, polling,\n" +
		"download, archive and notification in the foreground. Interrupting it leaves\n" +
		"the jobs polling; the next serve or run resumes them.",
	Args: cobra.MaximumNArgs(1),
	Example: `  mws-sync run
  mws-sync run inventory --config /etc/mws-sync/config.yaml`,
	RunE: runReports,
}

func runReports(_ *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		job, err := d.engine.RunReport(ctx, args[0])
		if err != nil {
			return fmt.Errorf("running %s: %w", args[0], err)
		}
		logger.Info("report done",
			"report", job.Name,
			"report_id", job.ReportID,
			"bytes", job.Bytes,
			"archive", job.ArchiveLocation,
		)
		return nil
	}

	if err := d.engine.Resume(ctx); err != nil {
		logger.Warn("resuming jobs", "err", err)
	}
	if err := d.engine.RunAll(ctx); err != nil {
		return fmt.Errorf("running reports: %w", err)
	}
	logger.Info("all reports done", "reports", len(cfg.Reports))
	return nil
}
