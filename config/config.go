// Package config loads the bot settings from .env, an optional YAML file and the environment
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLLMModel       = "google/gemini-2.5-flash-lite"
	DefaultVisionModel    = "google/gemini-2.0-flash-001"
	DefaultGeminiModel    = "gemini-2.0-flash"
	DefaultHistoryCSV     = "./history.csv"
	DefaultHistoryS3Key   = "marksix/history.csv"
	DefaultTempDir        = "./temp_images"
	DefaultScheduleCron   = "0 22 * * *"
	DefaultScheduleZone   = "Asia/Hong_Kong"
	DefaultMaxTokens      = 1024
	DefaultMaxInputTokens = 2000
	DefaultMemorySize     = 10
	DefaultWorkers        = 4
	DefaultCacheMaxAge    = 30 * 24 * time.Hour
)

// VisionBackend values
const (
	VisionAgent  = "agent"
	VisionGemini = "gemini"
)

// ErrInvalidConfig wraps every Validate failure
var ErrInvalidConfig = errors.New("invalid config")

type Telegram struct {
	Token string `yaml:"token"`
	// ChartChatID chat receiving the scheduled frequency chart, 0 disables the job
	ChartChatID int64  `yaml:"chart_chat_id"`
	TempDir     string `yaml:"temp_dir"`
	Workers     int    `yaml:"workers"`
}

type LLM struct {
	Provider       string `yaml:"provider"`
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	MaxTokens      int    `yaml:"max_tokens"`
	MaxInputTokens int    `yaml:"max_input_tokens"`
	MemorySize     int    `yaml:"memory_size"`
}

type Vision struct {
	// Backend agent or gemini
	Backend      string `yaml:"backend"`
	Model        string `yaml:"model"`
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GeminiModel  string `yaml:"gemini_model"`
}

type S3 struct {
	Bucket          string `yaml:"bucket"`
	Key             string `yaml:"key"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type History struct {
	CSV            string `yaml:"csv"`
	RefreshCommand string `yaml:"refresh_command"`
	ScrapeURL      string `yaml:"scrape_url"`
	S3             S3     `yaml:"s3"`
}

type Schedule struct {
	Cron     string `yaml:"cron"`
	Timezone string `yaml:"timezone"`
}

type Database struct {
	URL         string        `yaml:"url"`
	CacheMaxAge time.Duration `yaml:"cache_max_age"`
}

// Config bot settings
type Config struct {
	Telegram Telegram `yaml:"telegram"`
	LLM      LLM      `yaml:"llm"`
	Vision   Vision   `yaml:"vision"`
	History  History  `yaml:"history"`
	Schedule Schedule `yaml:"schedule"`
	Database Database `yaml:"database"`
	LogLevel string   `yaml:"log_level"`
}

// Default returns the settings used when nothing is configured
func Default() *Config {
	return &Config{
		Telegram: Telegram{
			TempDir: DefaultTempDir,
			Workers: DefaultWorkers,
		},
		LLM: LLM{
			Provider:       "openai",
			Model:          DefaultLLMModel,
			MaxTokens:      DefaultMaxTokens,
			MaxInputTokens: DefaultMaxInputTokens,
			MemorySize:     DefaultMemorySize,
		},
		Vision: Vision{
			Backend:     VisionAgent,
			Model:       DefaultVisionModel,
			GeminiModel: DefaultGeminiModel,
		},
		History: History{
			CSV: DefaultHistoryCSV,
			S3: S3{
				Key: DefaultHistoryS3Key,
			},
		},
		Schedule: Schedule{
			Cron:     DefaultScheduleCron,
			Timezone: DefaultScheduleZone,
		},
		Database: Database{
			CacheMaxAge: DefaultCacheMaxAge,
		},
		LogLevel: "info",
	}
}

// Load reads .env files, then the YAML file at path if any, then the environment.
// A missing .env is ignored, a missing YAML file is an error.
func Load(path string, envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)
	cfg := Default()
	if path == "" {
		path = os.Getenv("MARKSIX_CONFIG")
	}
	if path != "" {
		bs, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(bs, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var err error
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			n, e := strconv.Atoi(strings.TrimSpace(v))
			if e != nil {
				err = errors.Join(err, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, e))
				return
			}
			*dst = n
		}
	}
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.Token)
	if v, ok := lookup("TELEGRAM_CHART_CHAT_ID"); ok && strings.TrimSpace(v) != "" {
		id, e := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if e != nil {
			err = errors.Join(err, fmt.Errorf("%w: TELEGRAM_CHART_CHAT_ID: %v", ErrInvalidConfig, e))
		} else {
			c.Telegram.ChartChatID = id
		}
	}
	str("TEMP_DIR", &c.Telegram.TempDir)
	integer("BOT_WORKERS", &c.Telegram.Workers)

	str("LLM_PROVIDER", &c.LLM.Provider)
	switch strings.ToLower(c.LLM.Provider) {
	case "anthropic", "claude":
		str("ANTHROPIC_API_KEY", &c.LLM.APIKey)
		str("ANTHROPIC_API_BASE_URL", &c.LLM.BaseURL)
	case "cohere":
		str("COHERE_API_KEY", &c.LLM.APIKey)
		str("COHERE_API_BASE_URL", &c.LLM.BaseURL)
	default:
		str("OPENROUTER_API_KEY", &c.LLM.APIKey)
		str("OPENAI_API_KEY", &c.LLM.APIKey)
		str("OPENAI_API_BASE_URL", &c.LLM.BaseURL)
	}
	str("LLM_MODEL", &c.LLM.Model)
	integer("LLM_MAX_TOKENS", &c.LLM.MaxTokens)
	integer("LLM_MAX_INPUT_TOKENS", &c.LLM.MaxInputTokens)
	integer("LLM_MEMORY_SIZE", &c.LLM.MemorySize)

	str("VISION_BACKEND", &c.Vision.Backend)
	str("VISION_MODEL", &c.Vision.Model)
	str("GEMINI_API_KEY", &c.Vision.GeminiAPIKey)
	str("GEMINI_MODEL", &c.Vision.GeminiModel)

	str("HISTORY_CSV", &c.History.CSV)
	str("HISTORY_REFRESH_COMMAND", &c.History.RefreshCommand)
	str("HISTORY_SCRAPE_URL", &c.History.ScrapeURL)
	str("HISTORY_S3_BUCKET", &c.History.S3.Bucket)
	str("HISTORY_S3_KEY", &c.History.S3.Key)
	str("AWS_REGION", &c.History.S3.Region)
	str("AWS_ACCESS_KEY_ID", &c.History.S3.AccessKeyID)
	str("AWS_SECRET_ACCESS_KEY", &c.History.S3.SecretAccessKey)
	str("S3_ENDPOINT", &c.History.S3.Endpoint)

	str("SCHEDULE_CRON", &c.Schedule.Cron)
	str("SCHEDULE_TIMEZONE", &c.Schedule.Timezone)

	str("DATABASE_URL", &c.Database.URL)
	if v, ok := lookup("CACHE_MAX_AGE"); ok && strings.TrimSpace(v) != "" {
		d, e := time.ParseDuration(strings.TrimSpace(v))
		if e != nil {
			err = errors.Join(err, fmt.Errorf("%w: CACHE_MAX_AGE: %v", ErrInvalidConfig, e))
		} else {
			c.Database.CacheMaxAge = d
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	return err
}

// Validate reports every missing or malformed setting
func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	if c.Telegram.Token == "" {
		fail("TELEGRAM_BOT_TOKEN is required")
	}
	if c.Telegram.Workers <= 0 {
		fail("bot workers must be positive, got %d", c.Telegram.Workers)
	}
	if c.LLM.APIKey == "" {
		fail("api key of llm provider %s is required", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		fail("LLM_MODEL is required")
	}
	switch c.Vision.Backend {
	case VisionAgent:
		if c.Vision.Model == "" {
			fail("VISION_MODEL is required")
		}
	case VisionGemini:
		if c.Vision.GeminiAPIKey == "" {
			fail("GEMINI_API_KEY is required by the gemini vision backend")
		}
	default:
		fail("unknown VISION_BACKEND %q, use %s or %s", c.Vision.Backend, VisionAgent, VisionGemini)
	}
	if c.History.CSV == "" && c.History.S3.Bucket == "" {
		fail("HISTORY_CSV or HISTORY_S3_BUCKET is required")
	}
	if c.History.S3.Bucket != "" && c.History.S3.Key == "" {
		fail("HISTORY_S3_KEY is required with HISTORY_S3_BUCKET")
	}
	if c.Telegram.ChartChatID != 0 {
		if c.Schedule.Cron == "" {
			fail("SCHEDULE_CRON is required with TELEGRAM_CHART_CHAT_ID")
		}
		if _, err := c.Location(); err != nil {
			fail("SCHEDULE_TIMEZONE: %v", err)
		}
	}
	if _, err := c.Level(); err != nil {
		fail("LOG_LEVEL: %v", err)
	}
	return errors.Join(errs...)
}

// Location returns the schedule time zone
func (c *Config) Location() (*time.Location, error) {
	if c.Schedule.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Schedule.Timezone)
}

// Level returns the slog level of LogLevel
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}
