// Package config loads runtime settings from the environment, reading an
// optional .env file first.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr            string        `env:"APP_ADDR" default:":8080"`
	SQLitePath      string        `env:"SQLITE_PATH" default:"stockroom.db"`
	MigrationsDir   string        `env:"MIGRATIONS_DIR"`
	LogLevel        string        `env:"LOG_LEVEL" default:"info"`
	LogFormat       string        `env:"LOG_FORMAT" default:"text"`
	SessionTTL      time.Duration `env:"SESSION_TTL" default:"12h"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" default:"5s"`
	AdminPassword   string        `env:"ADMIN_PASSWORD" default:"Admin123!Stockroom"`
}

// Load reads .env files (missing files are fine) and then the environment.
// Variables already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
	}

	cfg := &Config{}
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("env")
		value := strings.TrimSpace(os.Getenv(name))
		if value == "" {
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}
		switch v.Field(i).Interface().(type) {
		case time.Duration:
			d, err := time.ParseDuration(value)
			if err != nil {
				return nil, fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
			}
			v.Field(i).SetInt(int64(d))
		default:
			v.Field(i).SetString(value)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, "APP_ADDR is required")
	}
	if strings.TrimSpace(c.SQLitePath) == "" {
		errs = append(errs, "SQLITE_PATH is required")
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, "SESSION_TTL must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "SHUTDOWN_TIMEOUT must be positive")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("LOG_FORMAT %q must be text or json", c.LogFormat))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
