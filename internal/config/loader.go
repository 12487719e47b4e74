package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names and prefixes.
const (
	EnvPrefix     = "AVALIA_"
	EnvConfigPath = "AVALIA_CONFIG"
	EnvDotenvPath = "AVALIA_DOTENV"
	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. .env file (AVALIA_DOTENV or ./.env), exported into the process env when present
//  3. file (YAML) if AVALIA_CONFIG is set
//  4. env (prefix AVALIA_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	dotenv := os.Getenv(EnvDotenvPath)
	if dotenv == "" {
		dotenv = defaultDotenv
	}
	// godotenv never overrides variables already present in the environment.
	if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, dotenv, err)
	}

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// AVALIA_SCORES_FILE -> scores_file (flat keys matching koanf tags).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first missing required setting.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.EvaluatorsFile) == "":
		return fmt.Errorf("%w: evaluators_file must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ProjectsFile) == "":
		return fmt.Errorf("%w: projects_file must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.ScoresFile) == "":
		return fmt.Errorf("%w: scores_file must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.LinksFile) == "":
		return fmt.Errorf("%w: links_file must not be empty", ErrInvalidConfig)
	}
	return nil
}
