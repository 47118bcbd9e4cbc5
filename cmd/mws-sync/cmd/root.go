// Package cmd implements the mws-sync daemon commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/mws-sync/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mws-sync",
	Short: "Run scheduled merchant-services report jobs",
	Long: "mws-sync requests configured reports on a schedule, polls them to completion,\n" +
		"archives the payloads and publishes a completion event per job. Job state is\n" +
		"persisted between polls so in-flight jobs resume after a restart.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	rootCmd.AddCommand(serveCmd, migrateCmd, runCmd, versionCommand())
}

// Root returns the root command, for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and builds the process logger.
func loadConfig() (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           parseLogLevel(cfg.Logging.Level),
		ReportTimestamp: true,
	})
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(log.JSONFormatter)
	}
	return cfg, logger, nil
}

func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
