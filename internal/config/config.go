// Package config loads schemaddl defaults from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/caarlos0/env/v8"
	"github.com/joho/godotenv"

	"schemaddl/internal/core"
)

// EnvPrefix is prepended to every variable name read by Load.
const EnvPrefix = "SCHEMADDL_"

// Output formats understood by the command line.
const (
	FormatSQL  = "sql"
	FormatJSON = "json"
)

type Config struct {
	Dialect             string `env:"DIALECT" envDefault:"mysql"`
	Format              string `env:"FORMAT" envDefault:"sql"`
	MySQLCharset        string `env:"MYSQL_CHARSET" envDefault:"utf8mb4"`
	IdentifierMaxLength int    `env:"IDENTIFIER_MAX_LENGTH" envDefault:"30"`
	Workers             int    `env:"WORKERS" envDefault:"4"`

	Debug    bool `env:"DEBUG" envDefault:"false"`
	JSONLogs bool `env:"JSON_LOGS" envDefault:"false"`
}

// Load reads the given .env files, ignoring missing ones, then parses the
// process environment. Variables already set in the environment win over
// values from the files.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if file == "" {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}
	return parse(env.Options{Prefix: EnvPrefix, Environment: environ()})
}

// LoadFrom parses vars instead of the process environment. Keys carry the
// SCHEMADDL_ prefix like real variables do.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("config parsing error: %w", err)
	}
	cfg.Dialect = strings.ToLower(strings.TrimSpace(cfg.Dialect))
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if !core.IsValidDialect(c.Dialect) {
		return fmt.Errorf("invalid dialect: %s. Valid options: %v", c.Dialect, core.SupportedDialects())
	}
	formats := []string{FormatSQL, FormatJSON}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("invalid format: %s. Valid options: %v", c.Format, formats)
	}
	if strings.TrimSpace(c.MySQLCharset) == "" {
		return fmt.Errorf("mysql charset cannot be empty")
	}
	if c.IdentifierMaxLength <= 0 {
		return fmt.Errorf("identifier max length must be positive")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
