// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the server.
type Config struct {
	Port          int
	DBPath        string
	LogLevel      string
	LogFile       string
	DefaultPolicy string
	Workers       int
	CompanyID     string
	CORSOrigins   []string
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:          8080,
		DBPath:        "overtime.db",
		LogLevel:      "info",
		DefaultPolicy: "default",
		Workers:       4,
	}
}

// Load reads the given .env files (".env" when none are named) into the
// process environment without overriding variables already set, then parses
// the OT_* variables. Missing .env files are not an error.
//
// Every invalid variable is reported at once.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv parses configuration through getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	invalid := make([]string, 0, 2)

	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if v := get("OT_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "OT_PORT")
		} else {
			cfg.Port = port
		}
	}

	if v := get("OT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	if v := get("OT_LOG_LEVEL"); v != "" {
		if _, err := log.ParseLevel(strings.ToLower(v)); err != nil {
			invalid = append(invalid, "OT_LOG_LEVEL")
		} else {
			cfg.LogLevel = strings.ToLower(v)
		}
	}

	cfg.LogFile = get("OT_LOG_FILE")

	if v := get("OT_DEFAULT_POLICY"); v != "" {
		cfg.DefaultPolicy = v
	}

	if v := get("OT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			invalid = append(invalid, "OT_WORKERS")
		} else {
			cfg.Workers = n
		}
	}

	cfg.CompanyID = get("OT_COMPANY_ID")

	if v := get("OT_CORS_ORIGINS"); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

// Addr is the listen address for Port.
func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
