package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/bububa/marksix-agents/assistant"
	"github.com/bububa/marksix-agents/bot"
	"github.com/bububa/marksix-agents/config"
	"github.com/bububa/marksix-agents/llm"
	"github.com/bububa/marksix-agents/marksix/history"
	"github.com/bububa/marksix-agents/scheduler"
	"github.com/bububa/marksix-agents/store"
	"github.com/bububa/marksix-agents/tools"
	"github.com/bububa/marksix-agents/tools/calculator"
	"github.com/bububa/marksix-agents/tools/extractor"
	"github.com/bububa/marksix-agents/tools/query"
)

func main() {
	configPath := flag.String("config", "", "path of the YAML config file, defaults to $MARKSIX_CONFIG")
	runJob := flag.Bool("run-job", false, "run the frequency chart job once and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, cfg, logger, *runJob); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("exit", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, runJob bool) error {
	client := llm.NewInstructor(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	})

	source, fileSource, s3Source := historySource(cfg)
	refresher, err := historyRefresher(cfg, fileSource)
	if err != nil {
		return err
	}
	if refresher != nil && s3Source != nil {
		refresher = history.Mirror(refresher, fileSource, s3Source)
	}

	var cache extractor.Cache
	if cfg.Database.URL != "" {
		db, err := store.Open(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		cache = store.NewExtractionRepo(db, cfg.Database.CacheMaxAge)
		logger.Info("extraction cache enabled")
	}

	var backend extractor.Backend
	switch cfg.Vision.Backend {
	case config.VisionGemini:
		gemini, err := extractor.NewGeminiBackend(ctx, cfg.Vision.GeminiAPIKey, cfg.Vision.GeminiModel)
		if err != nil {
			return err
		}
		defer gemini.Close()
		backend = gemini
	default:
		backend = extractor.NewAgentBackend(client, cfg.Vision.Model, cfg.LLM.MaxTokens)
	}

	hooks := toolHooks(logger)
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	helper := assistant.New(client,
		calculator.New(),
		// the extractor reports cache failures through its error hook
		extractor.New(backend, cache, hooks...),
		query.New(source),
		assistant.WithModel(cfg.LLM.Model),
		assistant.WithMaxTokens(cfg.LLM.MaxTokens),
		assistant.WithMemorySize(cfg.LLM.MemorySize),
		assistant.WithMaxInputTokens(cfg.LLM.MaxInputTokens),
		assistant.WithLocation(loc),
		assistant.WithToolOptions(hooks...),
	)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	b := bot.New(api, helper,
		bot.WithLogger(logger.With(slog.String("component", "bot"))),
		bot.WithTempDir(cfg.Telegram.TempDir),
		bot.WithWorkers(cfg.Telegram.Workers),
	)

	if cfg.Telegram.ChartChatID != 0 {
		opts := []scheduler.Option{
			scheduler.WithLocation(loc),
			scheduler.WithLogger(logger.With(slog.String("component", "scheduler"))),
		}
		if refresher != nil {
			opts = append(opts, scheduler.WithRefresher(refresher))
		}
		if s3Source != nil {
			opts = append(opts, scheduler.WithArchiver(s3Source, path.Join(path.Dir(cfg.History.S3.Key), "charts")+"/"))
		}
		job, err := scheduler.New(cfg.Schedule.Cron, source, b, cfg.Telegram.ChartChatID, opts...)
		if err != nil {
			return err
		}
		if runJob {
			return job.RunOnce(ctx)
		}
		job.Start(ctx)
		defer job.Stop()
	} else if runJob {
		return errors.New("TELEGRAM_CHART_CHAT_ID is required to run the job")
	}

	return b.Run(ctx)
}

// historySource prefers the bucket when configured, the file source is returned for the scraper
func historySource(cfg *config.Config) (history.Source, *history.FileSource, *history.S3Source) {
	fileSource := history.NewFileSource(cfg.History.CSV)
	if cfg.History.S3.Bucket == "" {
		return fileSource, fileSource, nil
	}
	clt := history.NewS3Client(history.S3Config{
		Region:          cfg.History.S3.Region,
		AccessKeyID:     cfg.History.S3.AccessKeyID,
		SecretAccessKey: cfg.History.S3.SecretAccessKey,
		Endpoint:        cfg.History.S3.Endpoint,
	})
	s3Source := history.NewS3Source(
		history.WithS3Client(clt),
		history.WithS3Bucket(cfg.History.S3.Bucket),
		history.WithS3Key(cfg.History.S3.Key),
	)
	return s3Source, fileSource, s3Source
}

func historyRefresher(cfg *config.Config, file *history.FileSource) (history.Refresher, error) {
	switch {
	case cfg.History.RefreshCommand != "":
		return history.NewCommandRefresher(cfg.History.RefreshCommand, filepath.Dir(cfg.History.CSV), history.DefaultCommandTimeout)
	case cfg.History.ScrapeURL != "":
		return history.NewScrapeRefresher(cfg.History.ScrapeURL, file, nil), nil
	}
	return nil, nil
}

func toolHooks(logger *slog.Logger) []tools.Option {
	logger = logger.With(slog.String("component", "tool"))
	return []tools.Option{
		tools.WithStartHook(func(_ context.Context, tool tools.ITool, input any) {
			logger.Debug("tool start", slog.String("tool", tool.Title()), slog.Any("input", input))
		}),
		tools.WithEndHook(func(_ context.Context, tool tools.ITool, _ any, output any) {
			logger.Info("tool done", slog.String("tool", tool.Title()), slog.Any("output", output))
		}),
		tools.WithErrorHook(func(_ context.Context, tool tools.ITool, _ any, err error) {
			logger.Warn("tool error", slog.String("tool", tool.Title()), slog.String("error", err.Error()))
		}),
	}
}
