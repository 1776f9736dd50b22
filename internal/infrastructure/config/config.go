package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Brokerage    BrokerageConfig
	Split        SplitConfig
	Notification NotificationConfig
	Outbox       OutboxConfig
	Telemetry    TelemetryConfig
	Profiling    ProfilingConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host               string
	Port               int
	User               string
	Password           string
	DBName             string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    int // in minutes
	ConnMaxIdleTime    int // in minutes
	SlowQueryThreshold time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// BrokerageConfig holds the business identities the core depends on
type BrokerageConfig struct {
	// BuyerCompanyID is the company whose purchase orders are cost-bearing
	BuyerCompanyID uuid.UUID
	// MailingKeywords mark a job as a mailing job when found in its notes
	MailingKeywords []string
}

// SplitConfig holds the margin split percentages
type SplitConfig struct {
	PartnerShare            decimal.Decimal
	DirectIntermediaryShare decimal.Decimal
	DirectBuyerShare        decimal.Decimal
}

// SMTPConfig holds outgoing mail settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

// NotificationConfig holds vendor notification settings
type NotificationConfig struct {
	Enabled        bool
	Queue          string
	Concurrency    int
	MaxRetry       int
	IdempotencyTTL time.Duration
	// IdempotencyBackend is "redis" or "memory"
	IdempotencyBackend string
	SMTP               SMTPConfig
}

// OutboxConfig holds the outbox processor settings
type OutboxConfig struct {
	BatchSize        int
	PollInterval     time.Duration
	CleanupRetention time.Duration
	CleanupInterval  time.Duration
}

// TelemetryConfig holds OpenTelemetry settings for traces, metrics and logs
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string // OTEL Collector endpoint (e.g., "localhost:4317")
	ServiceName       string
	Insecure          bool // development only
	ExportInterval    time.Duration
	SamplingRatio     float64 // 0 means 1.0
	TraceDB           bool    // otelgorm spans for every query
	ExportLogs        bool    // bridge zap logs to the collector
}

// ProfilingConfig holds Pyroscope continuous profiling settings
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string // e.g. "http://pyroscope:4040"
	ApplicationName   string
	BasicAuthUser     string
	BasicAuthPassword string
	// ProfileTypes names the collected profiles: cpu, alloc_objects,
	// alloc_space, inuse_objects, inuse_space, goroutines, mutex_count,
	// mutex_duration, block_count, block_duration
	ProfileTypes         []string
	MutexProfileFraction int
	BlockProfileRate     int
	// SpanProfiles attaches span ids to CPU samples; needs telemetry.enabled
	SpanProfiles bool
	// RequestLabels tags request handling with route and method labels
	RequestLabels bool
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PRINTBROKER_ prefix (e.g., PRINTBROKER_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("PRINTBROKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	buyerID, err := parseOptionalUUID(v.GetString("brokerage.buyer_company_id"))
	if err != nil {
		return nil, fmt.Errorf("brokerage.buyer_company_id: %w", err)
	}
	split, err := parseSplit(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:               v.GetString("database.host"),
			Port:               v.GetInt("database.port"),
			User:               v.GetString("database.user"),
			Password:           v.GetString("database.password"),
			DBName:             v.GetString("database.dbname"),
			SSLMode:            v.GetString("database.sslmode"),
			MaxOpenConns:       v.GetInt("database.max_open_conns"),
			MaxIdleConns:       v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime:    v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime:    v.GetInt("database.conn_max_idle_time"),
			SlowQueryThreshold: v.GetDuration("database.slow_query_threshold"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Brokerage: BrokerageConfig{
			BuyerCompanyID:  buyerID,
			MailingKeywords: v.GetStringSlice("brokerage.mailing_keywords"),
		},
		Split: split,
		Notification: NotificationConfig{
			Enabled:            v.GetBool("notification.enabled"),
			Queue:              v.GetString("notification.queue"),
			Concurrency:        v.GetInt("notification.concurrency"),
			MaxRetry:           v.GetInt("notification.max_retry"),
			IdempotencyTTL:     v.GetDuration("notification.idempotency_ttl"),
			IdempotencyBackend: v.GetString("notification.idempotency_backend"),
			SMTP: SMTPConfig{
				Host:     v.GetString("notification.smtp.host"),
				Port:     v.GetInt("notification.smtp.port"),
				Username: v.GetString("notification.smtp.username"),
				Password: v.GetString("notification.smtp.password"),
				From:     v.GetString("notification.smtp.from"),
				FromName: v.GetString("notification.smtp.from_name"),
				Timeout:  v.GetDuration("notification.smtp.timeout"),
			},
		},
		Outbox: OutboxConfig{
			BatchSize:        v.GetInt("outbox.batch_size"),
			PollInterval:     v.GetDuration("outbox.poll_interval"),
			CleanupRetention: v.GetDuration("outbox.cleanup_retention"),
			CleanupInterval:  v.GetDuration("outbox.cleanup_interval"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			TraceDB:           v.GetBool("telemetry.trace_db"),
			ExportLogs:        v.GetBool("telemetry.export_logs"),
		},
		Profiling: ProfilingConfig{
			Enabled:              v.GetBool("profiling.enabled"),
			ServerAddress:        v.GetString("profiling.server_address"),
			ApplicationName:      v.GetString("profiling.application_name"),
			BasicAuthUser:        v.GetString("profiling.basic_auth_user"),
			BasicAuthPassword:    v.GetString("profiling.basic_auth_password"),
			ProfileTypes:         v.GetStringSlice("profiling.profile_types"),
			MutexProfileFraction: v.GetInt("profiling.mutex_profile_fraction"),
			BlockProfileRate:     v.GetInt("profiling.block_profile_rate"),
			SpanProfiles:         v.GetBool("profiling.span_profiles"),
			RequestLabels:        v.GetBool("profiling.request_labels"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseOptionalUUID(s string) (uuid.UUID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

func parseSplit(v *viper.Viper) (SplitConfig, error) {
	var cfg SplitConfig
	fields := []struct {
		key string
		dst *decimal.Decimal
	}{
		{"split.partner_share", &cfg.PartnerShare},
		{"split.direct_intermediary_share", &cfg.DirectIntermediaryShare},
		{"split.direct_buyer_share", &cfg.DirectBuyerShare},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(v.GetString(f.key))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return SplitConfig{}, fmt.Errorf("%s: invalid decimal %q: %w", f.key, raw, err)
		}
		*f.dst = d
	}
	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "printbroker"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "printbroker"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.SlowQueryThreshold == 0 {
		cfg.Database.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20 // 2MB
	}
	// No default CORS origin: cross-origin requests stay disabled until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if len(cfg.Brokerage.MailingKeywords) == 0 {
		cfg.Brokerage.MailingKeywords = []string{"mailing", "mail drop", "eddm", "presort", "postage", "usps"}
	}
	if cfg.Split.PartnerShare.IsZero() {
		cfg.Split.PartnerShare = decimal.RequireFromString("0.50")
	}
	if cfg.Split.DirectIntermediaryShare.IsZero() {
		cfg.Split.DirectIntermediaryShare = decimal.RequireFromString("0.35")
	}
	if cfg.Split.DirectBuyerShare.IsZero() {
		cfg.Split.DirectBuyerShare = decimal.RequireFromString("0.65")
	}
	if cfg.Notification.Queue == "" {
		cfg.Notification.Queue = "notifications"
	}
	if cfg.Notification.Concurrency == 0 {
		cfg.Notification.Concurrency = 5
	}
	if cfg.Notification.MaxRetry == 0 {
		cfg.Notification.MaxRetry = 8
	}
	if cfg.Notification.IdempotencyTTL == 0 {
		cfg.Notification.IdempotencyTTL = 72 * time.Hour
	}
	if cfg.Notification.IdempotencyBackend == "" {
		cfg.Notification.IdempotencyBackend = "redis"
	}
	if cfg.Notification.SMTP.Port == 0 {
		cfg.Notification.SMTP.Port = 587
	}
	if cfg.Notification.SMTP.FromName == "" {
		cfg.Notification.SMTP.FromName = "Print Brokerage"
	}
	if cfg.Notification.SMTP.Timeout == 0 {
		cfg.Notification.SMTP.Timeout = 15 * time.Second
	}
	if cfg.Outbox.BatchSize == 0 {
		cfg.Outbox.BatchSize = 100
	}
	if cfg.Outbox.PollInterval == 0 {
		cfg.Outbox.PollInterval = time.Second
	}
	if cfg.Outbox.CleanupRetention == 0 {
		cfg.Outbox.CleanupRetention = 7 * 24 * time.Hour
	}
	if cfg.Outbox.CleanupInterval == 0 {
		cfg.Outbox.CleanupInterval = time.Hour
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "printbroker"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Profiling.ApplicationName == "" {
		cfg.Profiling.ApplicationName = cfg.Telemetry.ServiceName
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if err := c.Split.Validate(); err != nil {
		return err
	}
	switch c.Notification.IdempotencyBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("notification.idempotency_backend must be redis or memory, got %q", c.Notification.IdempotencyBackend)
	}
	if c.Notification.Enabled && c.Notification.SMTP.Host != "" && c.Notification.SMTP.From == "" {
		return fmt.Errorf("notification.smtp.from is required when smtp.host is set")
	}
	if c.Outbox.BatchSize < 0 {
		return fmt.Errorf("outbox.batch_size cannot be negative")
	}
	if c.Telemetry.SamplingRatio < 0 || c.Telemetry.SamplingRatio > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0 and 1, got %v", c.Telemetry.SamplingRatio)
	}
	if c.Profiling.Enabled && c.Profiling.ServerAddress == "" {
		return fmt.Errorf("profiling.server_address is required when profiling is enabled")
	}

	if c.App.Env == "production" {
		if c.Brokerage.BuyerCompanyID == uuid.Nil {
			return fmt.Errorf("brokerage.buyer_company_id is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}
	return nil
}

// Validate rejects negative shares and direct shares that do not sum to 1
func (s SplitConfig) Validate() error {
	one := decimal.NewFromInt(1)
	for name, share := range map[string]decimal.Decimal{
		"split.partner_share":             s.PartnerShare,
		"split.direct_intermediary_share": s.DirectIntermediaryShare,
		"split.direct_buyer_share":        s.DirectBuyerShare,
	} {
		if share.IsNegative() || share.GreaterThan(one) {
			return fmt.Errorf("%s must be between 0 and 1, got %s", name, share)
		}
	}
	if sum := s.DirectIntermediaryShare.Add(s.DirectBuyerShare); !sum.Equal(one) {
		return fmt.Errorf("split.direct_intermediary_share + split.direct_buyer_share must equal 1, got %s", sum)
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
