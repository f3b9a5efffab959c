package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "GLSANDBOX_"

// loadDotEnv reads .env from the working directory if present. Variables
// already set in the environment are not overwritten.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FILE", &cfg.Log.File)
	boolean("LOG_COLOR", &cfg.Log.Color)
	str("REDIS_ADDR", &cfg.Log.RedisAddr)
	str("START_MODE", &cfg.Render.StartMode)
	integer("INSTANCES", &cfg.Render.Instances)
	str("SNAPSHOT_DIR", &cfg.Render.SnapshotDir)
	if v, ok := lookup(EnvPrefix + "METRICS_ADDR"); ok && v != "" {
		cfg.Metrics.Addr = v
		cfg.Metrics.Enabled = true
	}
}
