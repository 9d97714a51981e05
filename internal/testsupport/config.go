package testsupport

import (
	"path/filepath"
	"testing"

	"zipcrack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Search defaults are shrunk so tests finish quickly.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ExtractDir = filepath.Join(base, "extracted")
	cfgVal.Paths.CheckpointFile = filepath.Join(base, "state", "zipcrack_status.txt")
	cfgVal.Search.MinLength = 1
	cfgVal.Search.MaxLength = 3
	cfgVal.Search.Charset = "num"
	cfgVal.Search.BatchSize = 4
	cfgVal.Search.CheckpointInterval = 4
	cfgVal.Oracle.RetryDelayMS = 0
	cfgVal.Metrics.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithSearch overrides the length range and charset on the test config.
func WithSearch(minLength, maxLength int, charset string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Search.MinLength = minLength
		b.cfg.Search.MaxLength = maxLength
		b.cfg.Search.Charset = charset
	}
}

// WithCustomCharset selects the custom charset with the given symbols.
func WithCustomCharset(symbols string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Search.Charset = "custom"
		b.cfg.Search.CustomCharset = symbols
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
