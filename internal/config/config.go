// Package config loads bookkeeper.yaml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/minesupport/bookkeeper/internal/ledger"
)

// FileName is the config file at the root of every book.
const FileName = "bookkeeper.yaml"

// Environment variables that override the config file.
const (
	EnvLogLevel       = "BOOKKEEPER_LOG_LEVEL"
	EnvLogFormat      = "BOOKKEEPER_LOG_FORMAT"
	EnvGitAutoCommit  = "BOOKKEEPER_GIT_AUTO_COMMIT"
	EnvGitAuthorName  = "BOOKKEEPER_GIT_AUTHOR_NAME"
	EnvGitAuthorEmail = "BOOKKEEPER_GIT_AUTHOR_EMAIL"
)

var validate = validator.New()

// Config represents the top-level bookkeeper.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Fiscal   FiscalConfig   `yaml:"fiscal"`
	Git      GitConfig      `yaml:"git"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Currency string `yaml:"currency" validate:"required,len=3,uppercase"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start" validate:"required"` // "MM-DD", e.g. "07-01"
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name" validate:"required_if=AutoCommit true"`
	AuthorEmail string `yaml:"author_email" validate:"omitempty,email"`
}

// LoggingConfig sets the default log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// Load reads a bookkeeper.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadBook reads bookkeeper.yaml from a book root, applies overrides from
// the book's .env file and the process environment, and validates the
// result.
func LoadBook(repoRoot string) (*Config, error) {
	cfg, err := Load(filepath.Join(repoRoot, FileName))
	if err != nil {
		return nil, err
	}

	env, err := readEnv(filepath.Join(repoRoot, ".env"))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(env); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new book.
func Default(businessName, currency string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:     businessName,
			Currency: currency,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Bookkeeper",
			AuthorEmail: "bookkeeper@example.com",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks field constraints and the fiscal year start.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, _, err := c.Fiscal.start(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ApplyEnv overrides config values from env. Values already present in the
// process environment take precedence over env.
func (c *Config) ApplyEnv(env map[string]string) error {
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	}

	if v, ok := lookup(EnvLogLevel); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		c.Logging.Format = v
	}
	if v, ok := lookup(EnvGitAutoCommit); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", EnvGitAutoCommit, v, err)
		}
		c.Git.AutoCommit = b
	}
	if v, ok := lookup(EnvGitAuthorName); ok {
		c.Git.AuthorName = v
	}
	if v, ok := lookup(EnvGitAuthorEmail); ok {
		c.Git.AuthorEmail = v
	}
	return nil
}

// FiscalYear returns the fiscal year that starts in calendar year y.
func (c *Config) FiscalYear(y int) (ledger.Period, error) {
	month, day, err := c.Fiscal.start()
	if err != nil {
		return ledger.Period{}, err
	}
	return ledger.FiscalYear(y, month, day), nil
}

func (f FiscalConfig) start() (time.Month, int, error) {
	t, err := time.Parse("01-02", f.YearStart)
	if err != nil {
		return 0, 0, fmt.Errorf("fiscal year_start %q is not MM-DD: %w", f.YearStart, err)
	}
	return t.Month(), t.Day(), nil
}

// readEnv parses a .env file without touching the process environment. A
// missing file yields no values.
func readEnv(path string) (map[string]string, error) {
	env, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return env, nil
}
