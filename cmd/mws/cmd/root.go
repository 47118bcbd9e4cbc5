// Package cmd implements the mws CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apiclient "github.com/donaldgifford/mws-sync/internal/api/client"
	"github.com/donaldgifford/mws-sync/internal/config"
	"github.com/donaldgifford/mws-sync/internal/jobs"
	"github.com/donaldgifford/mws-sync/internal/mws"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "mws",
		Short: "Call merchant-services operations from the terminal",
		Long: "mws signs and sends merchant-services API calls, waits on report and feed\n" +
			"jobs, and talks to a running mws-sync server.\n\n" +
			"Credentials come from flags, MWS_* environment variables, a .env file in the\n" +
			"working directory, or $HOME/.mws.yaml, in that order of precedence.",
		SilenceUsage: true,
	}
)

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default $HOME/.mws.yaml)")
	pf.String("region", "", "marketplace region code (default US)")
	pf.String("domain", "", "endpoint override, e.g. http://localhost:9000")
	pf.String("marketplace", mws.DefaultMarketplaceID, "marketplace ID")
	pf.Duration("timeout", 15*time.Second, "per-request HTTP timeout")
	pf.Duration("poll-interval", time.Minute, "report/feed polling interval")
	pf.Duration("poll-timeout", 2*time.Hour, "give up waiting on a job after this long")
	pf.String("dump-dir", "", "write every raw response body here")
	pf.String("server", "http://localhost:8080", "mws-sync server URL")
	pf.String("output", "table", "output format (table, json)")
	pf.Bool("debug", false, "debug logging")

	for _, name := range []string{
		"region", "domain", "marketplace", "timeout", "poll-interval", "poll-timeout",
		"dump-dir", "server", "output", "debug",
	} {
		cobra.CheckErr(viper.BindPFlag(name, pf.Lookup(name)))
	}

	rootCmd.AddCommand(
		statusCmd(),
		reportsCmd(),
		feedsCmd(),
		ordersCmd(),
		productsCmd(),
		sellersCmd(),
		inventoryCmd(),
		flatfileCmd(),
		jobsCmd(),
		versionCmd(),
	)
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "Ignoring .env:", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".mws")
	}

	viper.SetEnvPrefix("MWS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("debug") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger() *log.Logger {
	level := log.InfoLevel
	if viper.GetBool("debug") {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{Level: level, ReportTimestamp: true})
}

// mwsConfig collects the client settings from flags, env and config file.
// Keys use underscores so MWS_ACCESS_KEY and access_key: both work.
func mwsConfig() config.MWSConfig {
	return config.MWSConfig{
		AccessKey: viper.GetString("access_key"),
		SecretKey: viper.GetString("secret_key"),
		AccountID: viper.GetString("account_id"),
		AuthToken: viper.GetString("auth_token"),
		Region:    viper.GetString("region"),
		Domain:    viper.GetString("domain"),
		UserAgent: viper.GetString("user_agent"),
		Timeout:   viper.GetDuration("timeout"),
		DumpDir:   viper.GetString("dump-dir"),
		RateLimit: config.RateLimitConfig{PerSecond: 1, Burst: 15},
	}
}

func newMWSClient() (*mws.Client, error) {
	cfg := mwsConfig()
	return cfg.NewClient(slog.New(newLogger()))
}

func newPoller() *jobs.Poller {
	return jobs.NewPoller(
		jobs.WithInterval(viper.GetDuration("poll-interval")),
		jobs.WithTimeout(viper.GetDuration("poll-timeout")),
		jobs.WithLogger(slog.New(newLogger())),
	)
}

func marketplaceID() string {
	return viper.GetString("marketplace")
}

func newAPIClient() *apiclient.Client {
	return apiclient.New(viper.GetString("server"))
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
