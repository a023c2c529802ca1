package scheduler

import (
	"log/slog"
	"time"

	"github.com/bububa/marksix-agents/marksix/history"
)

type Config struct {
	location      *time.Location
	logger        *slog.Logger
	refresher     history.Refresher
	archiver      Archiver
	archivePrefix string
	now           func() time.Time
}

type Option func(*Config)

// WithLocation time zone of the cron spec
func WithLocation(loc *time.Location) Option {
	return func(c *Config) {
		if loc != nil {
			c.location = loc
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRefresher updates the history before every run
func WithRefresher(r history.Refresher) Option {
	return func(c *Config) {
		c.refresher = r
	}
}

// WithArchiver stores every chart under prefix
func WithArchiver(a Archiver, prefix string) Option {
	return func(c *Config) {
		c.archiver = a
		c.archivePrefix = prefix
	}
}

func withClock(now func() time.Time) Option {
	return func(c *Config) {
		c.now = now
	}
}
