package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Load builds the configuration.
// Precedence (highest to lowest): flags > BACKUP_* env > DATABASE_URL env > dotenv file > defaults.
// Variables from the dotenv file never override ones already set in the
// process environment. The result is validated.
func Load(flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"output_dir":  DefaultOutputDir,
		"output_file": DefaultOutputFile,
		"versioned":   false,
		"timezone":    DefaultTimezone,
		"env_file":    DefaultEnvFile,
		"verbose":     false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Dotenv file into the process environment
	envFile, explicit := envFileFrom(flags)
	if err := loadDotenv(envFile, explicit); err != nil {
		return nil, err
	}

	// 3. Environment
	if err := k.Load(env.Provider(DatabaseURLEnv, ".", func(s string) string {
		if s != DatabaseURLEnv {
			return ""
		}
		return "database_url"
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", DatabaseURLEnv, err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only the ones explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.EnvFile = envFile

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envFileFrom resolves the dotenv path before the environment is read,
// since the file itself feeds the environment.
func envFileFrom(flags *pflag.FlagSet) (path string, explicit bool) {
	if flags != nil && flags.Changed("env-file") {
		if v, err := flags.GetString("env-file"); err == nil {
			return v, true
		}
	}
	if v := os.Getenv(EnvPrefix + "ENV_FILE"); v != "" {
		return v, true
	}
	return DefaultEnvFile, false
}

// loadDotenv loads path into the process environment. A missing default
// file is ignored; a missing file the user asked for is an error.
func loadDotenv(path string, explicit bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return nil
	}
	return fmt.Errorf("failed to load env file %s: %w", path, err)
}
