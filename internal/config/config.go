// Package config handles loading and validating the daemon configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/mws-sync/internal/mws"
)

// Config is the top-level daemon configuration.
type Config struct {
	MWS           MWSConfig           `yaml:"mws"`
	Polling       PollingConfig       `yaml:"polling"`
	Sync          SyncConfig          `yaml:"sync"`
	Reports       []ReportConfig      `yaml:"reports"`
	Database      DatabaseConfig      `yaml:"database"`
	Archive       ArchiveConfig       `yaml:"archive"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Server        ServerConfig        `yaml:"server"`
	Logging       LoggingConfig       `yaml:"logging"`
	Tracing       TracingConfig       `yaml:"tracing"`
}

// MWSConfig defines the service credentials and client settings.
type MWSConfig struct {
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	AccountID string `yaml:"account_id"`
	AuthToken string `yaml:"auth_token"`
	Region    string `yaml:"region"`
	// Domain overrides the region endpoint.
	Domain    string          `yaml:"domain"`
	UserAgent string          `yaml:"user_agent"`
	Timeout   time.Duration   `yaml:"timeout"`
	DumpDir   string          `yaml:"dump_dir"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// Credentials converts the config into client credentials.
func (m *MWSConfig) Credentials() mws.Credentials {
	return mws.Credentials{
		AccessKey: m.AccessKey,
		SecretKey: m.SecretKey,
		AccountID: m.AccountID,
		AuthToken: m.AuthToken,
		Region:    m.Region,
		Domain:    m.Domain,
	}
}

// RateLimitConfig mirrors the service throttle client-side.
type RateLimitConfig struct {
	PerSecond   float64 `yaml:"per_second"`
	Burst       int     `yaml:"burst"`
	HourlyLimit int64   `yaml:"hourly_limit"` // 0 disables the hourly cap
}

// PollingConfig bounds the asynchronous job poller.
type PollingConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// SyncConfig controls the report engine.
type SyncConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// ReportConfig is one scheduled report definition.
type ReportConfig struct {
	Name           string        `yaml:"name"`
	ReportType     string        `yaml:"report_type"`
	Schedule       string        `yaml:"schedule"` // cron spec or @every descriptor
	MarketplaceIDs []string      `yaml:"marketplace_ids"`
	ReportOptions  string        `yaml:"report_options"`
	Lookback       time.Duration `yaml:"lookback"` // StartDate = now - lookback
}

// DatabaseConfig defines PostgreSQL connection settings. An empty host
// selects the in-memory job store.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// Enabled reports whether a database is configured.
func (d *DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// Archive backends.
const (
	ArchiveNone = ""
	ArchiveFile = "file"
	ArchiveS3   = "s3"
)

// ArchiveConfig selects where downloaded report payloads are kept.
type ArchiveConfig struct {
	Backend string   `yaml:"backend"` // "", file, s3
	Gzip    bool     `yaml:"gzip"`
	Dir     string   `yaml:"dir"`
	S3      S3Config `yaml:"s3"`
}

// S3Config defines an S3 (or S3-compatible) bucket.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// NotificationsConfig defines job completion notification targets.
type NotificationsConfig struct {
	Webhook WebhookConfig `yaml:"webhook"`
	NATS    NATSConfig    `yaml:"nats"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// NATSConfig defines NATS publishing settings.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// TracingConfig defines OTLP trace export settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // host:port of the OTLP/gRPC collector
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"` // 0 means 1
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Report returns the definition with the given name.
func (c *Config) Report(name string) (ReportConfig, bool) {
	for _, r := range c.Reports {
		if r.Name == name {
			return r, true
		}
	}
	return ReportConfig{}, false
}

func applyDefaults(cfg *Config) {
	applyMWSDefaults(&cfg.MWS)
	applyPollingDefaults(&cfg.Polling)
	applySyncDefaults(&cfg.Sync)
	applyDatabaseDefaults(&cfg.Database)
	applyArchiveDefaults(&cfg.Archive)
	applyNotificationsDefaults(&cfg.Notifications)
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)
	applyTracingDefaults(&cfg.Tracing)
}

func applyMWSDefaults(m *MWSConfig) {
	if m.Region == "" && m.Domain == "" {
		m.Region = "US"
	}
	if m.Timeout == 0 {
		m.Timeout = 15 * time.Second
	}
	applyRateLimitDefaults(&m.RateLimit)
}

// The service restores one request per minute for report requests; the
// client-side default is looser and only guards against bursts.
func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 1.0
	}
	if r.Burst == 0 {
		r.Burst = 15
	}
}

func applyPollingDefaults(p *PollingConfig) {
	if p.Interval == 0 {
		p.Interval = 60 * time.Second
	}
	if p.Timeout == 0 {
		p.Timeout = 2 * time.Hour
	}
}

func applySyncDefaults(s *SyncConfig) {
	if s.Concurrency == 0 {
		s.Concurrency = 2
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyArchiveDefaults(a *ArchiveConfig) {
	if a.Backend == ArchiveS3 && a.S3.Region == "" {
		a.S3.Region = "us-east-1"
	}
}

func applyNotificationsDefaults(n *NotificationsConfig) {
	if n.NATS.Subject == "" {
		n.NATS.Subject = "mws.jobs"
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.ServiceName == "" {
		t.ServiceName = "mws-sync"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1
	}
}

func validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateMWS(&cfg.MWS)...)
	errs = append(errs, validateReports(cfg.Reports)...)

	if cfg.Polling.Interval < 0 || cfg.Polling.Timeout < 0 || cfg.Polling.MaxAttempts < 0 {
		errs = append(errs, errors.New("polling values must not be negative"))
	}
	if cfg.Sync.Concurrency < 0 {
		errs = append(errs, errors.New("sync.concurrency must not be negative"))
	}

	if cfg.Database.Enabled() {
		if cfg.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required when database.host is set"))
		}
		if cfg.Database.User == "" {
			errs = append(errs, errors.New("database.user is required when database.host is set"))
		}
	}

	switch cfg.Archive.Backend {
	case ArchiveNone:
	case ArchiveFile:
		if cfg.Archive.Dir == "" {
			errs = append(errs, errors.New("archive.dir is required when backend is file"))
		}
	case ArchiveS3:
		if cfg.Archive.S3.Bucket == "" {
			errs = append(errs, errors.New("archive.s3.bucket is required when backend is s3"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"archive.backend must be one of: file, s3 (got %q)", cfg.Archive.Backend,
		))
	}

	if cfg.Notifications.Webhook.Enabled && cfg.Notifications.Webhook.URL == "" {
		errs = append(errs, errors.New("notifications.webhook.url is required when enabled"))
	}
	if cfg.Notifications.NATS.Enabled && cfg.Notifications.NATS.URL == "" {
		errs = append(errs, errors.New("notifications.nats.url is required when enabled"))
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample_ratio must be between 0 and 1 (got %v)", cfg.Tracing.SampleRatio))
	}

	return errors.Join(errs...)
}

func validateMWS(m *MWSConfig) []error {
	var errs []error
	if m.AccessKey == "" {
		errs = append(errs, errors.New("mws.access_key is required"))
	}
	if m.SecretKey == "" {
		errs = append(errs, errors.New("mws.secret_key is required"))
	}
	if m.AccountID == "" {
		errs = append(errs, errors.New("mws.account_id is required"))
	}
	if _, err := mws.ResolveDomain(m.Region, m.Domain); err != nil {
		errs = append(errs, fmt.Errorf("mws.region: %w", err))
	}
	return errs
}

func validateReports(reports []ReportConfig) []error {
	var errs []error
	seen := make(map[string]bool, len(reports))
	for i, r := range reports {
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("reports[%d].name is required", i))
		} else if seen[r.Name] {
			errs = append(errs, fmt.Errorf("reports[%d].name %q is duplicated", i, r.Name))
		}
		seen[r.Name] = true

		if r.ReportType == "" {
			errs = append(errs, fmt.Errorf("reports[%d].report_type is required", i))
		}
		if r.Schedule != "" {
			if _, err := cron.ParseStandard(r.Schedule); err != nil {
				errs = append(errs, fmt.Errorf("reports[%d].schedule: %w", i, err))
			}
		}
		if r.Lookback < 0 {
			errs = append(errs, fmt.Errorf("reports[%d].lookback must not be negative", i))
		}
	}
	return errs
}
