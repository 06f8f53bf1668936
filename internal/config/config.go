// Package config loads the service configuration from environment variables.
// envconfig maps variables onto the struct fields.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting of the application.
type Config struct {
	// --- Database ---
	// Inside docker-compose the host is the service name, override DB_HOST=localhost for local runs.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"game"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"game"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// The calendar day of a claim is taken in this zone.
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`

	// --- HTTP ---
	HTTPAddr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	GinMode             string        `envconfig:"GIN_MODE" default:"release"`
	HTTPShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
	AllowedOriginsRaw   string        `envconfig:"ALLOWED_ORIGINS" default:"*"`
	AllowedOrigins      []string      `envconfig:"-"`

	// --- Telegram (optional front-end) ---
	// Empty token disables the bot and the reminder job.
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	// How many updates are processed in parallel.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Long polling timeout (seconds)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`
	// Answer commands in group chats too, not only in private ones.
	BotAllowGroups bool `envconfig:"BOT_ALLOW_GROUPS" default:"false"`

	// --- Daily bonus ---
	BonusReminderCron       string `envconfig:"BONUS_REMINDER_CRON" default:"0 18 * * *"`
	BonusReminderMinStreak  int    `envconfig:"BONUS_REMINDER_MIN_STREAK" default:"3"`
	FeatureRemindersEnabled bool   `envconfig:"FEATURE_REMINDERS_ENABLED" default:"true"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// TelegramEnabled reports whether the Telegram front-end should start.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is empty")
	}
	if c.TelegramEnabled() {
		if c.BotMaxInflight <= 0 {
			return fmt.Errorf("BOT_MAX_INFLIGHT must be > 0")
		}
		if c.BotUpdateTimeoutSeconds <= 0 {
			return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS must be > 0")
		}
	}
	if c.BonusReminderMinStreak < 1 {
		return fmt.Errorf("BONUS_REMINDER_MIN_STREAK must be >= 1")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be > 0")
	}
	return nil
}

// Load reads the environment into Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.AllowedOrigins = parseCSV(cfg.AllowedOriginsRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseCSV(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
