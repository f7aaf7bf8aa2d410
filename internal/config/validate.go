package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAlign(); err != nil {
		return err
	}
	if err := c.validateSearch(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAlign() error {
	if c.Align.MinOverlapMillis <= 0 {
		return errors.New("align.min_overlap_ms must be positive")
	}
	if c.Align.SlackMillis <= 0 {
		return errors.New("align.slack_ms must be positive")
	}
	switch c.Align.Layout {
	case LayoutDictionary, LayoutPairs:
	default:
		return fmt.Errorf("align.layout must be %q or %q, got %q", LayoutDictionary, LayoutPairs, c.Align.Layout)
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Search.MaxLimit < 1 {
		return errors.New("search.max_limit must be at least 1")
	}
	if c.Search.DefaultLimit < 1 || c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit must be between 1 and %d", c.Search.MaxLimit)
	}
	if c.Search.MinScore < 0 || c.Search.MinScore > 100 {
		return errors.New("search.min_score must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	if c.Server.SessionHours < 0 {
		return errors.New("server.session_hours must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", strings.TrimSpace(c.Logging.Level))
	}
}
