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

const (
	envPrefix     = "PLATFORMER_"
	envConfigPath = "PLATFORMER_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PLATFORMER_CONFIG is set
//  3. env (prefix PLATFORMER_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// PLATFORMER_MONGO_URI -> mongo_uri (flat keys, underscores kept).
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if origins, ok := loadOrigins(k); ok {
		cfg.AllowedOrigins = origins
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadOrigins reads allowed_origins either as a YAML list or as a comma
// separated string (the env form). Decoding a list over a non-empty default
// slice would keep stale trailing defaults, so the key is read directly.
func loadOrigins(k *koanf.Koanf) ([]string, bool) {
	if !k.Exists("allowed_origins") {
		return nil, false
	}
	var raw []string
	switch v := k.Get("allowed_origins").(type) {
	case string:
		raw = strings.Split(v, ",")
	case []any:
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
	case []string:
		raw = v
	}
	out := make([]string, 0, len(raw))
	for _, o := range raw {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out, true
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.TokenSecret == "":
		return fmt.Errorf("%w: token_secret must not be empty", ErrInvalidConfig)
	case c.LeaderboardCapacity < 1:
		return fmt.Errorf("%w: leaderboard_capacity must be at least 1", ErrInvalidConfig)
	case c.MergeRetries < 1:
		return fmt.Errorf("%w: merge_retries must be at least 1", ErrInvalidConfig)
	case c.TokenExpireDays < 1:
		return fmt.Errorf("%w: token_expire_days must be at least 1", ErrInvalidConfig)
	}
	switch c.Store {
	case StoreMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return fmt.Errorf("%w: mongo_uri and mongo_database are required for the mongo store", ErrInvalidConfig)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	return nil
}
