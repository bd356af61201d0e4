// Package config loads shopkeep settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every setting. Command-line flags override it.
type Config struct {
	DBPath      string        `env:"SHOPKEEP_DB"           envDefault:"shopkeep.db"`
	CatalogDir  string        `env:"SHOPKEEP_CATALOG"      envDefault:"shops/rusty_flagon"`
	Personality string        `env:"SHOPKEEP_PERSONALITY"`
	Character   string        `env:"SHOPKEEP_CHARACTER"    envDefault:"adventurer"`
	Threshold   float64       `env:"SHOPKEEP_THRESHOLD"    envDefault:"0.1"`
	VisitWindow time.Duration `env:"SHOPKEEP_VISIT_WINDOW" envDefault:"60m"`
	PageSize    int           `env:"SHOPKEEP_PAGE_SIZE"    envDefault:"5"`
	LedgerLimit int           `env:"SHOPKEEP_LEDGER_LIMIT" envDefault:"5"`
	SeatIdle    time.Duration `env:"SHOPKEEP_SEAT_IDLE"    envDefault:"30m"`
	Seed        int64         `env:"SHOPKEEP_SEED"`
	Debug       bool          `env:"SHOPKEEP_DEBUG"`

	Party    Party    `envPrefix:"SHOPKEEP_PARTY_"`
	Audit    Audit    `envPrefix:"AUDIT_"`
	Telegram Telegram `envPrefix:"TELEGRAM_"`
	LLM      LLM      `envPrefix:"OPENAI_"`
}

// Party is the shared party every character belongs to.
type Party struct {
	ID   string `env:"ID"   envDefault:"party"`
	Name string `env:"NAME" envDefault:"The Company"`
	Gold int64  `env:"GOLD" envDefault:"100"` // starting purse in gold pieces
}

// Audit controls audit log retention.
type Audit struct {
	RetentionDays int    `env:"RETENTION_DAYS" envDefault:"30"`
	PruneSchedule string `env:"PRUNE_SCHEDULE" envDefault:"@daily"`
}

// Telegram configures the bot relay.
type Telegram struct {
	Token        string  `env:"TOKEN"`
	AllowedChats []int64 `env:"ALLOWED_CHATS" envSeparator:","`
	Debug        bool    `env:"DEBUG"`
}

// LLM configures the optional language-model fallback. It is disabled when
// APIKey is empty.
type LLM struct {
	APIKey  string        `env:"API_KEY"`
	BaseURL string        `env:"BASE_URL"`
	Model   string        `env:"MODEL"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Load reads the given .env files, if they exist, then the environment.
// Variables already set in the environment win over the files.
func Load(dotenv ...string) (Config, error) {
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Threshold <= 0 || c.Threshold > 1 {
		errs = append(errs, fmt.Errorf("SHOPKEEP_THRESHOLD must be in (0, 1], got %v", c.Threshold))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("SHOPKEEP_PAGE_SIZE must be positive, got %d", c.PageSize))
	}
	if c.LedgerLimit <= 0 {
		errs = append(errs, fmt.Errorf("SHOPKEEP_LEDGER_LIMIT must be positive, got %d", c.LedgerLimit))
	}
	if c.SeatIdle < 0 {
		errs = append(errs, fmt.Errorf("SHOPKEEP_SEAT_IDLE must not be negative, got %v", c.SeatIdle))
	}
	if c.Party.Gold < 0 {
		errs = append(errs, fmt.Errorf("SHOPKEEP_PARTY_GOLD must not be negative, got %d", c.Party.Gold))
	}
	if c.Audit.RetentionDays < 0 {
		errs = append(errs, fmt.Errorf("AUDIT_RETENTION_DAYS must not be negative, got %d", c.Audit.RetentionDays))
	}
	return errors.Join(errs...)
}

// Retention returns how long audit records are kept; zero keeps them forever.
func (c Config) Retention() time.Duration {
	return time.Duration(c.Audit.RetentionDays) * 24 * time.Hour
}
