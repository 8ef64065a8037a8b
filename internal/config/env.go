package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns the value of EnvPrefix+key, or defaultVal if unset.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns EnvPrefix+key parsed as int, or defaultVal if unset or
// invalid.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvInt64 is getEnvInt for 64-bit values.
func getEnvInt64(key string, defaultVal int64) int64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool returns EnvPrefix+key parsed as bool, or defaultVal if unset.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false
// (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration returns EnvPrefix+key parsed as a duration ("5m", "30s"),
// or defaultVal if unset or invalid.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
func isFlagSet(fs *flag.FlagSet, names ...string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				found = true
			}
		}
	})
	return found
}

// applyEnvOverrides fills in flags that were not given on the command line
// from the environment. Priority: flags > environment > defaults.
//
// Supported environment variables:
//   - BIGADD_NP: Number of ranks (int)
//   - BIGADD_TRANSPORT: local or amqp
//   - BIGADD_AMQP_URL: RabbitMQ URL
//   - BIGADD_RANK: Rank of this process (int)
//   - BIGADD_SESSION: amqp session name
//   - BIGADD_DATA_DIR: Directory of number files
//   - BIGADD_SEED: Generation seed (int64)
//   - BIGADD_TIMEOUT: Run timeout (duration: "5m", "30s")
//   - BIGADD_LOG_LEVEL: debug, info, warn, error
//   - BIGADD_PORT: Port for server mode
//   - BIGADD_SERVER, BIGADD_JSON, BIGADD_QUIET, BIGADD_VERBOSE, BIGADD_NO_COLOR: bools
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "np") {
		config.Processes = getEnvInt("NP", config.Processes)
	}
	if !isFlagSet(fs, "rank") {
		config.Rank = getEnvInt("RANK", config.Rank)
	}
	if !isFlagSet(fs, "seed") {
		config.Seed = getEnvInt64("SEED", config.Seed)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	overrides := []struct {
		flag, env string
		dst       *string
	}{
		{"transport", "TRANSPORT", &config.Transport},
		{"amqp-url", "AMQP_URL", &config.AMQPURL},
		{"session", "SESSION", &config.Session},
		{"data-dir", "DATA_DIR", &config.DataDir},
		{"log-level", "LOG_LEVEL", &config.LogLevel},
		{"port", "PORT", &config.Port},
	}
	for _, o := range overrides {
		if !isFlagSet(fs, o.flag) {
			*o.dst = getEnvString(o.env, *o.dst)
		}
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "server") {
		config.ServerMode = getEnvBool("SERVER", config.ServerMode)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !isFlagSet(fs, "quiet", "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "v") {
		config.Verbose = getEnvBool("VERBOSE", config.Verbose)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
}
