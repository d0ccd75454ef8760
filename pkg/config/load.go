package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides. Nested keys use a
// double underscore: CONSOLE_SERVER__LISTEN_ADDR=:9000.
const EnvPrefix = "CONSOLE_"

// Load builds the configuration in order of increasing priority: defaults,
// the YAML file at path (skipped when path is empty or missing), then
// CONSOLE_* environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		switch {
		case err == nil:
			decodeErr := DecodeStrict(f, cfg)
			f.Close()
			if decodeErr != nil {
				return nil, fmt.Errorf("%s: %w", path, decodeErr)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("open config %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// applyEnv overlays CONSOLE_* variables onto cfg. Comma-separated values
// become lists.
func applyEnv(cfg *Config) error {
	k := koanf.New(".")
	provider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		key = strings.ReplaceAll(key, "__", ".")
		if strings.Contains(value, ",") {
			return key, strings.Split(value, ",")
		}
		return key, value
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("load env overrides: %w", err)
	}
	if len(k.Keys()) == 0 {
		return nil
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("apply env overrides: %w", err)
	}
	return nil
}
