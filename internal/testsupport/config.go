package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// Network-facing timings are zeroed so tests never sleep on the rate limiter.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.ExportDir = filepath.Join(base, "export")
	cfg.Source.RequestDelaySeconds = 0
	cfg.TMDB.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithStrategy sets the collection strategy on the test config.
func WithStrategy(strategy string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Collection.Strategy = strategy
	}
}

// WithFailureThreshold overrides the circuit-breaker threshold.
func WithFailureThreshold(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Collection.FailureThreshold = n
	}
}
