package testsupport

import (
	"path/filepath"
	"testing"

	"phrasebook/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.Database = filepath.Join(base, "data", "phrases.db")
	cfgVal.Paths.ActivityLog = filepath.Join(base, "data", "activity_log.csv")
	cfgVal.Server.Bind = "127.0.0.1:0"
	cfgVal.Server.EnvFile = ""
	cfgVal.Server.Secret = "test-secret"

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

// WithUsers sets the server user table, e.g. "alice:pass1,bob:pass2".
func WithUsers(users string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Server.Users = users
	}
}

// WithSearchLimits overrides the default and maximum search limits.
func WithSearchLimits(defaultLimit, maxLimit int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Search.DefaultLimit = defaultLimit
		b.cfg.Search.MaxLimit = maxLimit
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
