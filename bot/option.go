package bot

import (
	"log/slog"
	"net/http"
)

const (
	DefaultTempDir     = "./temp_images"
	DefaultWorkers     = 4
	DefaultPollTimeout = 30
)

type Config struct {
	logger       *slog.Logger
	tempDir      string
	workers      int
	pollTimeout  int
	httpClient   *http.Client
	fileEndpoint string
}

type Option func(*Config)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTempDir directory of downloaded photos
func WithTempDir(dir string) Option {
	return func(c *Config) {
		if dir != "" {
			c.tempDir = dir
		}
	}
}

// WithWorkers count of updates handled concurrently
func WithWorkers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithPollTimeout long polling timeout in seconds
func WithPollTimeout(seconds int) Option {
	return func(c *Config) {
		c.pollTimeout = seconds
	}
}

// WithHTTPClient client downloading photos
func WithHTTPClient(clt *http.Client) Option {
	return func(c *Config) {
		if clt != nil {
			c.httpClient = clt
		}
	}
}

// WithFileEndpoint format of the file download url, taking the token and the file path
func WithFileEndpoint(endpoint string) Option {
	return func(c *Config) {
		if endpoint != "" {
			c.fileEndpoint = endpoint
		}
	}
}
