package main

import (
	"context"
	"log/slog"
	"os"
	"os/user"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"phrasebook/internal/activity"
	"phrasebook/internal/config"
	"phrasebook/internal/dictionary"
	"phrasebook/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = err
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the run logger. Every invocation gets its own run id.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logging.WithRunID(logger, uuid.NewString())
	})
	return c.logger, c.loggerErr
}

// withStore opens the dictionary for the duration of fn.
func (c *commandContext) withStore(fn func(*dictionary.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := dictionary.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func (c *commandContext) activityLog() (*activity.Log, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return activity.New(cfg.Paths.ActivityLog), nil
}

// record appends an activity entry. Failures are logged, not returned, so a
// read-only audit file never fails the command that did the real work.
func (c *commandContext) record(ctx context.Context, action, details string) {
	logger, err := c.ensureLogger()
	if err != nil {
		logger = logging.NewNop()
	}
	log, err := c.activityLog()
	if err == nil {
		_, err = log.Append(ctx, activity.Entry{User: cliUser(), Action: action, Details: details})
	}
	if err != nil {
		logging.WarnWithContext(logger, "failed to append activity", "activity_append_failed",
			logging.String("action", action),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.activity_log is writable"),
			logging.String(logging.FieldImpact, "the action is missing from the audit log"),
		)
	}
}

func cliUser() string {
	if name := strings.TrimSpace(os.Getenv("PHRASEBOOK_USER")); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "cli"
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
