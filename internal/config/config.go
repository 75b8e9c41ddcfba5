// Package config loads export settings from defaults, a dotenv file, the
// environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // zones resolve on hosts without a zoneinfo database
)

// Defaults.
const (
	DefaultOutputDir  = "./frontend/assets/database"
	DefaultOutputFile = "backup_all.xlsx"
	DefaultTimezone   = "UTC"
	DefaultEnvFile    = ".env"
)

// DatabaseURLEnv is the variable holding the connection string.
const DatabaseURLEnv = "DATABASE_URL"

// EnvPrefix prefixes every other setting in the environment.
const EnvPrefix = "BACKUP_"

// ErrMissingDatabaseURL is returned when no connection string is configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL not found in environment or .env file")

// Config holds the settings of one export run.
type Config struct {
	DatabaseURL string `koanf:"database_url"`
	OutputDir   string `koanf:"output_dir"`
	OutputFile  string `koanf:"output_file"`
	Versioned   bool   `koanf:"versioned"`
	Timezone    string `koanf:"timezone"`
	EnvFile     string `koanf:"env_file"`
	Verbose     bool   `koanf:"verbose"`

	loc *time.Location
}

// Validate checks the configuration and resolves the timezone.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return ErrMissingDatabaseURL
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if !strings.EqualFold(filepath.Ext(c.OutputFile), ".xlsx") {
		return fmt.Errorf("output_file %q must have an .xlsx extension", c.OutputFile)
	}
	if filepath.Base(c.OutputFile) != c.OutputFile {
		return fmt.Errorf("output_file %q must be a file name, not a path", c.OutputFile)
	}

	tz := c.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	c.loc = loc

	return nil
}

// Location is the zone whose wall clock is kept when offsets are stripped.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// OutputPath is the fixed, unversioned destination.
func (c *Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFile)
}
