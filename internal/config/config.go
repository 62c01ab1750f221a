// Package config loads the bot configuration from environment variables.
// envconfig maps the variables onto the Config struct.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds every tunable of the application.
type Config struct {
	// --- Discord ---
	DiscordBotToken string `envconfig:"DISCORD_BOT_TOKEN" required:"true"`

	// --- Database ---
	// Inside docker "localhost" is almost always wrong; the default matches the
	// compose service name. Override DB_HOST=localhost for local runs.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"royal_mint"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`

	// --- Admin ---
	AdminPasswordHash string        `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`
	AdminSessionTTL   time.Duration `envconfig:"ADMIN_SESSION_TTL" default:"24h"`

	// --- Economy ---
	EconomyStartingBalance int64 `envconfig:"ECONOMY_STARTING_BALANCE" default:"100"`
	// Balance ceilings, tiered by the privileged flag.
	GoldCapNormal     int64 `envconfig:"GOLD_CAP_NORMAL" default:"50000000000"`
	GoldCapPrivileged int64 `envconfig:"GOLD_CAP_PRIVILEGED" default:"100000000000"`

	// --- Claims ---
	DailyStipendMin  int64 `envconfig:"DAILY_STIPEND_MIN" default:"3"`
	DailyStipendMax  int64 `envconfig:"DAILY_STIPEND_MAX" default:"7"`
	LabourWageMin    int64 `envconfig:"LABOUR_WAGE_MIN" default:"8"`
	LabourWageMax    int64 `envconfig:"LABOUR_WAGE_MAX" default:"15"`
	AdminBonusAmount int64 `envconfig:"ADMIN_BONUS_AMOUNT" default:"30000000000"`

	// --- Wagering ---
	WeeklyWagerTries int `envconfig:"WEEKLY_WAGER_TRIES" default:"30"`

	// --- Drawings ---
	DrawingMinDuration time.Duration `envconfig:"DRAWING_MIN_DURATION" default:"5m"`
	DrawingMaxDuration time.Duration `envconfig:"DRAWING_MAX_DURATION" default:"24h"`
	DrawingMaxWinners  int           `envconfig:"DRAWING_MAX_WINNERS" default:"10"`
	// Cron spec for the sweep that ends overdue drawings.
	DrawingSweepSpec string `envconfig:"DRAWING_SWEEP_SPEC" default:"* * * * *"`
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) Validate() error {
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.EconomyStartingBalance < 0 {
		return fmt.Errorf("ECONOMY_STARTING_BALANCE must be >= 0")
	}
	if c.GoldCapNormal <= 0 || c.GoldCapPrivileged < c.GoldCapNormal {
		return fmt.Errorf("gold caps must satisfy 0 < GOLD_CAP_NORMAL <= GOLD_CAP_PRIVILEGED")
	}
	if c.DailyStipendMin <= 0 || c.DailyStipendMax < c.DailyStipendMin {
		return fmt.Errorf("invalid DAILY_STIPEND_MIN/DAILY_STIPEND_MAX")
	}
	if c.LabourWageMin <= 0 || c.LabourWageMax < c.LabourWageMin {
		return fmt.Errorf("invalid LABOUR_WAGE_MIN/LABOUR_WAGE_MAX")
	}
	if c.AdminBonusAmount <= 0 {
		return fmt.Errorf("ADMIN_BONUS_AMOUNT must be > 0")
	}
	if c.WeeklyWagerTries <= 0 {
		return fmt.Errorf("WEEKLY_WAGER_TRIES must be > 0")
	}
	if c.DrawingMinDuration <= 0 || c.DrawingMaxDuration < c.DrawingMinDuration {
		return fmt.Errorf("invalid DRAWING_MIN_DURATION/DRAWING_MAX_DURATION")
	}
	if c.DrawingMaxWinners < 1 {
		return fmt.Errorf("DRAWING_MAX_WINNERS must be >= 1")
	}
	return nil
}

// Load reads the environment and fills the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
