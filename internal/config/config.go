// Package config resolves runtime settings from, in priority order,
// explicit CLI flags, environment variables, then built-in defaults.
// There is no on-disk config file — every setting is small enough to
// pass as a flag or env var, and a config file would be one more thing
// to go stale against a running session.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/kylesnowschwartz/agentwatch/internal/logformat"
	"github.com/kylesnowschwartz/agentwatch/internal/theme"
)

const (
	envTheme          = "AGENTWATCH_THEME"
	envPollInterval   = "AGENTWATCH_POLL_INTERVAL_MS"
	envBufferCapacity = "AGENTWATCH_BUFFER_CAPACITY"
	envVerbose        = "AGENTWATCH_VERBOSE"
)

// Config holds every setting shared across agentwatch/agentguard
// subcommands.
type Config struct {
	Theme          string
	SecurityMode   bool
	PollInterval   time.Duration
	BufferCapacity int
	Verbose        bool
}

// Default returns the built-in defaults before any flag or env
// resolution is applied.
func Default() Config {
	return Config{
		Theme:          theme.DefaultTheme,
		SecurityMode:   false,
		PollInterval:   2 * time.Second,
		BufferCapacity: logformat.DefaultBufferCapacity,
		Verbose:        false,
	}
}

// Resolve layers environment variables over the defaults, then flag
// overrides (any FlagOverrides field left at its zero value is treated
// as "not explicitly set" and does not override the env/default layer
// beneath it).
func Resolve(overrides FlagOverrides) Config {
	cfg := Default()

	if v := os.Getenv(envTheme); v != "" {
		cfg.Theme = v
	}
	if v := os.Getenv(envPollInterval); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.PollInterval = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv(envBufferCapacity); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BufferCapacity = n
		}
	}
	if v := os.Getenv(envVerbose); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Verbose = b
		}
	}

	if overrides.Theme != "" {
		cfg.Theme = overrides.Theme
	}
	if overrides.SecurityMode {
		cfg.SecurityMode = true
	}
	if overrides.PollInterval > 0 {
		cfg.PollInterval = overrides.PollInterval
	}
	if overrides.BufferCapacity > 0 {
		cfg.BufferCapacity = overrides.BufferCapacity
	}
	if overrides.Verbose {
		cfg.Verbose = true
	}

	return cfg
}

// FlagOverrides carries explicit CLI flag values into Resolve. Zero
// values mean "flag not passed", not "flag set to zero" — cobra flags
// with meaningful zero values (like --verbose=false) are represented by
// their presence alone, since every field here only ever raises a
// setting above the env/default layer.
type FlagOverrides struct {
	Theme          string
	SecurityMode   bool
	PollInterval   time.Duration
	BufferCapacity int
	Verbose        bool
}
