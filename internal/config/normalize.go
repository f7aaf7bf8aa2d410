package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	envUsers  = "PHRASEBOOK_USERS"
	envSecret = "PHRASEBOOK_SECRET"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAlign()
	c.normalizeSearch()
	if err := c.normalizeServer(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.Database) == "" {
		c.Paths.Database = filepath.Join(c.Paths.DataDir, defaultDatabaseName)
	}
	if c.Paths.Database, err = expandPath(c.Paths.Database); err != nil {
		return fmt.Errorf("paths.database: %w", err)
	}
	if strings.TrimSpace(c.Paths.ActivityLog) == "" {
		c.Paths.ActivityLog = filepath.Join(c.Paths.DataDir, defaultActivityLogName)
	}
	if c.Paths.ActivityLog, err = expandPath(c.Paths.ActivityLog); err != nil {
		return fmt.Errorf("paths.activity_log: %w", err)
	}
	return nil
}

func (c *Config) normalizeAlign() {
	c.Align.Layout = strings.ToLower(strings.TrimSpace(c.Align.Layout))
	if c.Align.Layout == "" {
		c.Align.Layout = defaultLayout
	}
	if strings.TrimSpace(c.Align.UnmatchedMarker) == "" {
		c.Align.UnmatchedMarker = defaultUnmatchedMarker
	}
}

func (c *Config) normalizeSearch() {
	if c.Search.MaxLimit == 0 {
		c.Search.MaxLimit = defaultSearchMaxLimit
	}
	if c.Search.DefaultLimit == 0 {
		c.Search.DefaultLimit = min(defaultSearchLimit, c.Search.MaxLimit)
	}
}

// normalizeServer fills credentials from the process environment first and
// from the optional env file second. Values set in the TOML file win.
func (c *Config) normalizeServer() error {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	if c.Server.SessionHours == 0 {
		c.Server.SessionHours = defaultSessionHours
	}

	fileEnv, err := readEnvFile(c.Server.EnvFile)
	if err != nil {
		return fmt.Errorf("server.env_file: %w", err)
	}
	c.Server.Users = firstNonEmpty(c.Server.Users, lookupEnv(envUsers), fileEnv[envUsers])
	c.Server.Secret = firstNonEmpty(c.Server.Secret, lookupEnv(envSecret), fileEnv[envSecret])
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func readEnvFile(path string) (map[string]string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return nil, err
	}
	values, err := godotenv.Read(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return values, nil
}

func lookupEnv(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
