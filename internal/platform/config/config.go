package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	apperrors "github.com/lueurxax/trend-notifier/internal/core/errors"
)

type Config struct {
	AppEnv      string  `env:"APP_ENV" envDefault:"local"`
	LogLevel    string  `env:"LOG_LEVEL" envDefault:"info"`
	PostgresDSN string  `env:"POSTGRES_DSN,required"`
	BotToken    string  `env:"BOT_TOKEN"`
	AdminIDs    []int64 `env:"ADMIN_IDS" envSeparator:","`
	AdminToken  string  `env:"ADMIN_TOKEN"`
	HealthPort  int     `env:"HEALTH_PORT" envDefault:"8080"`

	// Monitor
	ScanInterval      time.Duration `env:"SCAN_INTERVAL" envDefault:"5m"`
	NotifierTimeout   time.Duration `env:"NOTIFIER_TIMEOUT" envDefault:"10s"`
	DedupWindow       time.Duration `env:"DEDUP_WINDOW" envDefault:"1h"`
	DispatchWorkers   int           `env:"DISPATCH_WORKERS" envDefault:"8"`
	ScanLockEnabled   bool          `env:"SCAN_LOCK_ENABLED" envDefault:"false"`
	WatermarkStart    string        `env:"WATERMARK_START"`
	AutoStartMonitor  bool          `env:"AUTO_START_MONITOR" envDefault:"true"`
	NotifierRPS       float64       `env:"NOTIFIER_RPS" envDefault:"20"`
	NotifierBurst     int           `env:"NOTIFIER_BURST" envDefault:"5"`
	DeliveryRetention time.Duration `env:"DELIVERY_RETENTION" envDefault:"720h"`
	RetentionInterval time.Duration `env:"RETENTION_INTERVAL" envDefault:"1h"`

	// Weekly digest
	WeeklyDigestEnabled  bool          `env:"WEEKLY_DIGEST_ENABLED" envDefault:"true"`
	WeeklyDigestSchedule string        `env:"WEEKLY_DIGEST_SCHEDULE" envDefault:"0 9 * * 1"`
	DigestWindow         time.Duration `env:"DIGEST_WINDOW" envDefault:"168h"`
	DigestCheckInterval  time.Duration `env:"DIGEST_CHECK_INTERVAL" envDefault:"1m"`

	// Database pool
	DBMaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyAliases(cfg)

	return cfg, nil
}

// Validate checks values env parsing cannot. Errors wrap ErrConfiguration.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.BotToken) == "" {
		problems = append(problems, "BOT_TOKEN is required")
	}

	if c.ScanInterval <= 0 {
		problems = append(problems, "SCAN_INTERVAL must be positive")
	}

	if c.NotifierTimeout <= 0 {
		problems = append(problems, "NOTIFIER_TIMEOUT must be positive")
	}

	if c.DispatchWorkers <= 0 {
		problems = append(problems, "DISPATCH_WORKERS must be positive")
	}

	if c.DigestWindow <= 0 {
		problems = append(problems, "DIGEST_WINDOW must be positive")
	}

	if _, err := cron.ParseStandard(c.WeeklyDigestSchedule); err != nil {
		problems = append(problems, fmt.Sprintf("WEEKLY_DIGEST_SCHEDULE %q: %v", c.WeeklyDigestSchedule, err))
	}

	if _, err := c.WatermarkStartTime(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrConfiguration, strings.Join(problems, "; "))
	}

	return nil
}

// WatermarkStartTime parses WATERMARK_START in any format dateparse accepts.
// An empty value yields the zero time.
func (c *Config) WatermarkStartTime() (time.Time, error) {
	raw := strings.TrimSpace(c.WatermarkStart)
	if raw == "" {
		return time.Time{}, nil
	}

	parsed, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("WATERMARK_START %q: %w", raw, err)
	}

	return parsed.UTC(), nil
}

// IsLocal reports whether the process runs in a developer environment.
func (c *Config) IsLocal() bool {
	return c.AppEnv == "local"
}

// applyAliases honors older variable names when the current ones are unset.
func applyAliases(cfg *Config) {
	if !hasEnv("SCAN_INTERVAL") {
		setDurationFromEnv("MONITOR_INTERVAL", &cfg.ScanInterval)
	}

	if !hasEnv("WEEKLY_DIGEST_SCHEDULE") {
		setStringFromEnv("DIGEST_CRON", &cfg.WeeklyDigestSchedule)
	}
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}

func setDurationFromEnv(key string, target *time.Duration) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := time.ParseDuration(strings.TrimSpace(val))
	if err != nil {
		return
	}

	*target = parsed
}
