package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/subosito/gotenv"
)

// Environment variables read by Load.
const (
	EnvPrefix  = "SENTISCOPE_"
	EnvConfig  = EnvPrefix + "CONFIG"
	EnvEnvFile = EnvPrefix + "ENV_FILE"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// SENTISCOPE_ENV_FILE, if set, is loaded into the environment first.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if SENTISCOPE_CONFIG is set
//  3. env (prefix SENTISCOPE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// The dotenv file goes first so it can name SENTISCOPE_CONFIG. gotenv
	// never overrides variables that are already set.
	if path := os.Getenv(EnvEnvFile); path != "" {
		if err := gotenv.Load(path); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SENTISCOPE_QUEUE_SIZE -> queue_size; underscores match the koanf tags.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
