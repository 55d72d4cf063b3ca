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
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ATTAIN_CONFIG is set
//  3. env (prefix ATTAIN_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("ATTAIN_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: ATTAIN_ADDR, ATTAIN_DIRECT_WEIGHT_PCT, ...
	// Map env keys like ATTAIN_DIRECT_WEIGHT_PCT -> direct_weight_pct.
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("ATTAIN_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "attain_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the engine cannot run with. The weight
// pair must sum to 100 here even though the engine itself accepts ad-hoc
// pairs on per-call overrides.
func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.DirectWeightPct < 0 || c.IndirectWeightPct < 0 {
		return fmt.Errorf("%w: blend weights must not be negative", ErrInvalidConfig)
	}
	if c.DirectWeightPct+c.IndirectWeightPct != 100 {
		return fmt.Errorf("%w: blend weights must sum to 100, got %v+%v",
			ErrInvalidConfig, c.DirectWeightPct, c.IndirectWeightPct)
	}
	if c.DefaultIndirectAttainment < 0 || c.DefaultIndirectAttainment > 3 {
		return fmt.Errorf("%w: default indirect attainment %v out of [0,3]",
			ErrInvalidConfig, c.DefaultIndirectAttainment)
	}
	if c.DefaultCourseTarget < 0 || c.DefaultCourseTarget > 100 {
		return fmt.Errorf("%w: default course target %v out of [0,100]",
			ErrInvalidConfig, c.DefaultCourseTarget)
	}
	return nil
}
