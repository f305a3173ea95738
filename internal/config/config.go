// Package config loads the diagnostic binary's CLI/env configuration:
// log level and format, the default cancellation timeout, and the
// optional metrics listener address. An optional .env file is loaded
// first for local runs.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved configuration for one invocation of the
// timetable-solver CLI.
type Config struct {
	LogLevel  string
	LogFormat string

	// SolveTimeout bounds the engine's cooperative cancellation token;
	// zero means no timeout.
	SolveTimeout time.Duration

	MetricsAddr string
}

// Load reads TIMETABLE_-prefixed environment variables (and an
// optional .env file in the working directory, ignored if absent) into
// a Config with sane defaults. CLI flags given explicitly to
// cmd/timetable override these.
func Load() (*Config, error) {
	_ = godotenv.Load() // optional; a missing .env file is not an error

	v := viper.New()
	v.SetEnvPrefix("TIMETABLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("solve_timeout", 0)
	v.SetDefault("metrics_addr", "")

	return &Config{
		LogLevel:     v.GetString("log_level"),
		LogFormat:    v.GetString("log_format"),
		SolveTimeout: v.GetDuration("solve_timeout"),
		MetricsAddr:  v.GetString("metrics_addr"),
	}, nil
}
