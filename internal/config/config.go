// Package config provides configuration for the picker fixture server and the
// Playwright test harness. It loads configuration from CLI flags and
// environment variables, validates it, and provides sensible defaults.
//
// Environment variables use the PICKERPW_ prefix. CLI flags (--addr,
// --overlay-delay) override their environment counterparts.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultWaitTimeout  = 5 * time.Second
	defaultOverlayDelay = 150 * time.Millisecond
	defaultFixtureAddr  = "127.0.0.1:8931"
	defaultBrowser      = "chromium"
	defaultLogLevel     = "info"

	// maxWaitTimeout caps how long any single engine wait may block a test.
	maxWaitTimeout = 60 * time.Second
)

// Browsers lists the engines Playwright can launch.
var Browsers = []string{"chromium", "firefox", "webkit"}

// Config holds harness and fixture configuration.
type Config struct {
	// Engine settings
	Browser     string        // PICKERPW_BROWSER
	Headless    bool          // PICKERPW_HEADLESS
	WaitTimeout time.Duration // PICKERPW_WAIT_TIMEOUT, default engine timeout for actions and waits

	// Fixture server
	FixtureAddr  string        // PICKERPW_FIXTURE_ADDR
	OverlayDelay time.Duration // PICKERPW_OVERLAY_DELAY, how long emulated overlays stay open after Enter

	// Logging
	LogLevel string // PICKERPW_LOG_LEVEL
}

// ValidationError represents a configuration validation error with multiple issues.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// ParseFlags parses CLI flags and returns them. Call before LoadConfig.
func ParseFlags() (addr string, overlayDelay time.Duration) {
	flag.StringVar(&addr, "addr", "", "Listen address (overrides PICKERPW_FIXTURE_ADDR)")
	flag.DurationVar(&overlayDelay, "overlay-delay", -1, "Overlay close delay after Enter (overrides PICKERPW_OVERLAY_DELAY)")
	flag.Parse()
	return addr, overlayDelay
}

// LoadConfig loads configuration from environment variables and CLI flag values.
// An empty addr or a negative overlayDelay leaves the environment value in place.
func LoadConfig(addr string, overlayDelay time.Duration) (*Config, error) {
	cfg := &Config{}

	cfg.Browser = strings.ToLower(strings.TrimSpace(getEnvOrDefault("PICKERPW_BROWSER", defaultBrowser)))
	cfg.Headless = parseBoolOrDefault("PICKERPW_HEADLESS", true)
	cfg.WaitTimeout = parseDurationOrDefault("PICKERPW_WAIT_TIMEOUT", defaultWaitTimeout)

	cfg.FixtureAddr = getEnvOrDefault("PICKERPW_FIXTURE_ADDR", defaultFixtureAddr)
	if addr != "" {
		cfg.FixtureAddr = addr
	}
	cfg.OverlayDelay = parseDurationOrDefault("PICKERPW_OVERLAY_DELAY", defaultOverlayDelay)
	if overlayDelay >= 0 {
		cfg.OverlayDelay = overlayDelay
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnvOrDefault("PICKERPW_LOG_LEVEL", defaultLogLevel)))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	var errs []string

	if !isKnownBrowser(c.Browser) {
		errs = append(errs, fmt.Sprintf("PICKERPW_BROWSER must be one of %s (got %q)", strings.Join(Browsers, ", "), c.Browser))
	}

	if c.WaitTimeout <= 0 {
		errs = append(errs, "PICKERPW_WAIT_TIMEOUT must be positive")
	} else if c.WaitTimeout > maxWaitTimeout {
		errs = append(errs, fmt.Sprintf("PICKERPW_WAIT_TIMEOUT must not exceed %s", maxWaitTimeout))
	}

	if c.OverlayDelay < 0 {
		errs = append(errs, "PICKERPW_OVERLAY_DELAY must not be negative")
	} else if c.WaitTimeout > 0 && c.OverlayDelay >= c.WaitTimeout {
		errs = append(errs, "PICKERPW_OVERLAY_DELAY must be shorter than PICKERPW_WAIT_TIMEOUT, or every write times out")
	}

	if strings.TrimSpace(c.FixtureAddr) == "" {
		errs = append(errs, "PICKERPW_FIXTURE_ADDR must not be empty")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("PICKERPW_LOG_LEVEL must be debug, info, warn or error (got %q)", c.LogLevel))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// WaitTimeoutMS returns the wait timeout in the float milliseconds Playwright expects.
func (c *Config) WaitTimeoutMS() float64 {
	return float64(c.WaitTimeout.Milliseconds())
}

// PrintStartupSummary prints a human-readable summary of the configuration to stderr.
func (c *Config) PrintStartupSummary() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "picker fixture server starting...")
	fmt.Fprintf(os.Stderr, "  Listen:  http://%s/pickers\n", c.FixtureAddr)
	fmt.Fprintf(os.Stderr, "  Overlay: closes %s after Enter\n", c.OverlayDelay)
	fmt.Fprintf(os.Stderr, "  Log:     %s\n", c.LogLevel)
	fmt.Fprintln(os.Stderr, "")
}

// MustLoadConfig loads configuration and panics if validation fails.
func MustLoadConfig(addr string, overlayDelay time.Duration) *Config {
	cfg, err := LoadConfig(addr, overlayDelay)
	if err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			panic(fmt.Sprintf("Configuration validation failed:\n  - %s", strings.Join(validationErr.Errors, "\n  - ")))
		}
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}
	return cfg
}

func isKnownBrowser(name string) bool {
	for _, b := range Browsers {
		if b == name {
			return true
		}
	}
	return false
}

// Helper functions for parsing environment variables

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
