package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/bigadd/internal/errors"
)

func validConfig() AppConfig {
	return AppConfig{
		N1: 10, N2: 12, Mode: ModeAll, Processes: 4,
		Transport: TransportLocal, Session: DefaultSession,
		Timeout: time.Minute, LogLevel: DefaultLogLevel,
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("bigadd", []string{"100", "80"}, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.N1 != 100 || cfg.N2 != 80 || cfg.N() != 100 {
			t.Errorf("Expected N1=100 N2=80, got %d %d", cfg.N1, cfg.N2)
		}
		if cfg.Mode != ModeAll {
			t.Errorf("Expected default mode 'all', got %s", cfg.Mode)
		}
		if cfg.Processes != DefaultProcesses {
			t.Errorf("Expected default np %d, got %d", DefaultProcesses, cfg.Processes)
		}
		if cfg.Timeout != 5*time.Minute {
			t.Errorf("Expected default Timeout 5m, got %v", cfg.Timeout)
		}
		if cfg.Transport != TransportLocal || cfg.LogLevel != "warn" {
			t.Errorf("unexpected defaults %+v", cfg)
		}
	})

	t.Run("ValidFlags", func(t *testing.T) {
		t.Parallel()
		args := []string{
			"-np", "6",
			"-timeout", "10s",
			"-seed", "42",
			"-data-dir", "/tmp/numbers",
			"-json",
			"-q",
			"-log-level", "debug",
			"50", "60", "3",
		}
		cfg, err := ParseConfig("bigadd", args, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Processes != 6 || cfg.Timeout != 10*time.Second || cfg.Seed != 42 {
			t.Errorf("flags not applied: %+v", cfg)
		}
		if cfg.DataDir != "/tmp/numbers" || !cfg.JSONOutput || !cfg.Quiet || cfg.LogLevel != "debug" {
			t.Errorf("flags not applied: %+v", cfg)
		}
		if cfg.Mode != ModeAsync {
			t.Errorf("Expected mode async, got %s", cfg.Mode)
		}
	})

	t.Run("AMQPTransport", func(t *testing.T) {
		t.Parallel()
		args := []string{"-transport", "AMQP", "-rank", "2", "-np", "3", "-session", "s1", "10", "10", "1"}
		cfg, err := ParseConfig("bigadd", args, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.Transport != TransportAMQP || cfg.Rank != 2 || cfg.Session != "s1" {
			t.Errorf("unexpected amqp config %+v", cfg)
		}
	})

	t.Run("ServerModeNeedsNoArguments", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("bigadd", []string{"-server", "-port", "9090"}, io.Discard)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !cfg.ServerMode || cfg.Port != "9090" {
			t.Errorf("unexpected server config %+v", cfg)
		}
	})

	t.Run("HelpFlag", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		_, err := ParseConfig("bigadd", []string{"-h"}, &buf)
		if !errors.Is(err, flag.ErrHelp) {
			t.Fatalf("Expected flag.ErrHelp, got %v", err)
		}
		out := buf.String()
		for _, want := range []string{"Usage:", "<N1> <N2> [variant]", "Variants:", "-np", "verify the results"} {
			if !strings.Contains(out, want) {
				t.Errorf("usage should contain %q", want)
			}
		}
	})

	t.Run("InvalidFlag", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseConfig("bigadd", []string{"-nope", "1", "1"}, io.Discard); err == nil {
			t.Error("Expected an error for an unknown flag")
		}
	})
}

func TestParseConfigUsageErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		args []string
	}{
		{"NoArguments", nil},
		{"OneArgument", []string{"10"}},
		{"TooManyArguments", []string{"10", "10", "1", "extra"}},
		{"NonNumericN1", []string{"abc", "10"}},
		{"ZeroN2", []string{"10", "0"}},
		{"NegativeN1", []string{"--", "-5", "10"}},
		{"VariantTooLarge", []string{"10", "10", "7"}},
		{"VariantNegative", []string{"10", "10", "-1"}},
		{"VariantNotANumber", []string{"10", "10", "x"}},
		{"StandardOnOneRank", []string{"-np", "1", "10", "10", "1"}},
		{"UnknownTransport", []string{"-transport", "carrier-pigeon", "10", "10"}},
		{"RankOutOfRange", []string{"-transport", "amqp", "-rank", "4", "10", "10"}},
		{"ZeroTimeout", []string{"-timeout", "0s", "10", "10"}},
		{"BadLogLevel", []string{"-log-level", "chatty", "10", "10"}},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			_, err := ParseConfig("bigadd", tc.args, &buf)
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if !strings.Contains(buf.String(), "Configuration error:") {
				t.Error("the error should be reported before the usage")
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name        string
		mutate      func(*AppConfig)
		expectError bool
	}{
		{"Valid", func(*AppConfig) {}, false},
		{"ScatterOnOneRank", func(c *AppConfig) { c.Mode, c.Processes = ModeScatter, 1 }, false},
		{"SequentialOnOneRank", func(c *AppConfig) { c.Mode, c.Processes = ModeSequential, 1 }, false},
		{"VerifyOnOneRank", func(c *AppConfig) { c.Mode, c.Processes = ModeVerify, 1 }, false},
		{"AllOnOneRank", func(c *AppConfig) { c.Mode, c.Processes = ModeAll, 1 }, true},
		{"OptimizedOnOneRank", func(c *AppConfig) { c.Mode, c.Processes = ModeOptimized, 1 }, true},
		{"ZeroProcesses", func(c *AppConfig) { c.Processes = 0 }, true},
		{"ZeroDigits", func(c *AppConfig) { c.N1 = 0 }, true},
		{"ServerIgnoresDigits", func(c *AppConfig) { c.N1, c.N2, c.ServerMode = 0, 0, true }, false},
		{"AMQPRankInRange", func(c *AppConfig) { c.Transport, c.Rank = TransportAMQP, 3 }, false},
		{"AMQPNegativeRank", func(c *AppConfig) { c.Transport, c.Rank = TransportAMQP, -1 }, true},
		{"AMQPEmptySession", func(c *AppConfig) { c.Transport, c.Session = TransportAMQP, "" }, true},
		{"NegativeTimeout", func(c *AppConfig) { c.Timeout = -time.Second }, true},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.expectError && err == nil {
				t.Error("Expected validation error but got nil")
			}
			if !tc.expectError && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestModeString(t *testing.T) {
	t.Parallel()
	if ModeOptimized.String() != "optimized" || ModeVerify.String() != "verify" {
		t.Error("unexpected mode names")
	}
	if Mode(9).String() != "mode(9)" || Mode(9).Valid() {
		t.Error("out of range modes should be invalid")
	}
}

// Environment tests mutate process state and do not run in parallel.
func TestParseConfigWithEnvironment(t *testing.T) {
	t.Setenv(EnvPrefix+"NP", "8")
	t.Setenv(EnvPrefix+"TIMEOUT", "30s")
	t.Setenv(EnvPrefix+"DATA_DIR", "/data")
	t.Setenv(EnvPrefix+"JSON", "yes")
	t.Setenv(EnvPrefix+"SEED", "7")

	cfg, err := ParseConfig("bigadd", []string{"-np", "3", "5", "5"}, io.Discard)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Processes != 3 {
		t.Errorf("a flag must win over the environment, got np=%d", cfg.Processes)
	}
	if cfg.Timeout != 30*time.Second || cfg.DataDir != "/data" || !cfg.JSONOutput || cfg.Seed != 7 {
		t.Errorf("environment not applied: %+v", cfg)
	}
}

func TestEnvHelpers(t *testing.T) {
	prefix := EnvPrefix

	t.Run("getEnvString", func(t *testing.T) {
		t.Setenv(prefix+"TEST_STRING", "value")
		if val := getEnvString("TEST_STRING", "default"); val != "value" {
			t.Errorf("Expected 'value', got '%s'", val)
		}
		if val := getEnvString("NONEXISTENT", "default"); val != "default" {
			t.Errorf("Expected 'default', got '%s'", val)
		}
	})

	t.Run("getEnvInt", func(t *testing.T) {
		t.Setenv(prefix+"TEST_INT", "-123")
		if val := getEnvInt("TEST_INT", 0); val != -123 {
			t.Errorf("Expected -123, got %d", val)
		}
		t.Setenv(prefix+"INVALID", "abc")
		if val := getEnvInt("INVALID", 999); val != 999 {
			t.Errorf("Expected default 999 for invalid input, got %d", val)
		}
	})

	t.Run("getEnvInt64", func(t *testing.T) {
		t.Setenv(prefix+"TEST_INT64", "9000000000")
		if val := getEnvInt64("TEST_INT64", 0); val != 9000000000 {
			t.Errorf("Expected 9000000000, got %d", val)
		}
	})

	t.Run("getEnvBool", func(t *testing.T) {
		key := "TEST_BOOL"
		t.Setenv(prefix+key, "true")
		if val := getEnvBool(key, false); !val {
			t.Error("Expected true")
		}
		os.Setenv(prefix+key, "0")
		if val := getEnvBool(key, true); val {
			t.Error("Expected false for '0'")
		}
		os.Setenv(prefix+key, "invalid")
		if val := getEnvBool(key, true); !val {
			t.Error("Expected default true for invalid input")
		}
	})

	t.Run("getEnvDuration", func(t *testing.T) {
		t.Setenv(prefix+"TEST_DURATION", "1h")
		if val := getEnvDuration("TEST_DURATION", 0); val != time.Hour {
			t.Errorf("Expected 1h, got %v", val)
		}
	})
}
