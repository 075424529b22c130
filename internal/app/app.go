// Package app wires configuration into a ready Processor for both the
// server and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/rolodex/internal/anthropic"
	"github.com/MikeSquared-Agency/rolodex/internal/api"
	"github.com/MikeSquared-Agency/rolodex/internal/calendar"
	"github.com/MikeSquared-Agency/rolodex/internal/config"
	"github.com/MikeSquared-Agency/rolodex/internal/extractor"
	"github.com/MikeSquared-Agency/rolodex/internal/gemini"
	"github.com/MikeSquared-Agency/rolodex/internal/hermes"
	"github.com/MikeSquared-Agency/rolodex/internal/insights"
	"github.com/MikeSquared-Agency/rolodex/internal/processor"
	"github.com/MikeSquared-Agency/rolodex/internal/session"
	"github.com/MikeSquared-Agency/rolodex/internal/slack"
	"github.com/MikeSquared-Agency/rolodex/internal/store"
	"github.com/MikeSquared-Agency/rolodex/internal/transcribe"
)

type App struct {
	Processor *processor.Processor
	Extractor *extractor.Extractor
	Sessions  *session.Cache
	Status    api.Status
	Logger    *slog.Logger

	closers []func()
}

// Close releases connections in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// ModelGenerator is a Generator that reports its model name.
type ModelGenerator interface {
	extractor.Generator
	Model() string
}

// NewGenerator returns the text-generation client for the configured provider.
func NewGenerator(cfg config.Config) (ModelGenerator, error) {
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GoogleAPIKey == "" {
			return nil, fmt.Errorf("GOOGLE_API_KEY is required for provider gemini")
		}
		return gemini.NewClient(cfg.GoogleAPIKey, cfg.GeminiModel), nil
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for provider anthropic")
		}
		return anthropic.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
}

// NewScheduler returns the calendar scheduler for CALENDAR_MODE.
func NewScheduler(cfg config.Config, logger *slog.Logger) (calendar.Scheduler, error) {
	switch cfg.CalendarMode {
	case "link":
		return calendar.NewLinkScheduler(cfg.CalendarTimezone), nil
	case "api":
		if cfg.CalendarToken == "" {
			return nil, fmt.Errorf("CALENDAR_TOKEN is required for calendar mode api")
		}
		return calendar.NewAPIScheduler(cfg.CalendarToken, cfg.CalendarID, cfg.CalendarTimezone, logger), nil
	default:
		return nil, fmt.Errorf("unknown CALENDAR_MODE %q", cfg.CalendarMode)
	}
}

func NewTranscriber(cfg config.Config) transcribe.Transcriber {
	if cfg.TranscribeURL == "" {
		return transcribe.Disabled{}
	}
	return transcribe.NewHTTPTranscriber(cfg.TranscribeURL, cfg.TranscribeAPIKey)
}

// New builds the pipeline. Postgres is used when DATABASE_URL is set,
// otherwise records live in memory. NATS and Slack are optional.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	llm, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("llm client ready", "provider", cfg.LLMProvider, "model", llm.Model())

	loc, err := time.LoadLocation(cfg.CalendarTimezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.CalendarTimezone, err)
	}

	scheduler, err := NewScheduler(cfg, logger)
	if err != nil {
		return nil, err
	}

	var log store.Log
	storage := "memory"
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		if err := db.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		log = db
		storage = "postgres"
		logger.Info("database connected")
	} else {
		log = store.NewMemory()
		logger.Warn("DATABASE_URL not set, records are kept in memory only")
	}

	var publisher processor.Publisher
	if cfg.NatsURL != "" {
		hc, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, hc.Close)
		publisher = hc
		logger.Info("NATS connected", "url", cfg.NatsURL)
	}

	var notifier processor.Notifier
	if cfg.SlackBotToken != "" && cfg.SlackChannel != "" {
		notifier = slack.NewPoster(cfg.SlackBotToken, cfg.SlackChannel, logger)
		logger.Info("slack poster ready", "channel", cfg.SlackChannel)
	}

	transcriber := NewTranscriber(cfg)

	a.Extractor = extractor.New(llm, logger)
	a.Sessions = session.NewCache(cfg.SessionTTL)
	a.Processor = processor.New(processor.Deps{
		Extractor:   a.Extractor,
		Log:         log,
		Sessions:    a.Sessions,
		Calendar:    scheduler,
		Transcriber: transcriber,
		Assistant:   insights.NewAssistant(llm, logger),
		Scorer:      insights.NewScorer(),
		Publisher:   publisher,
		Notifier:    notifier,
		Location:    loc,
		Logger:      logger,
	})
	a.Status = api.Status{
		Provider:     cfg.LLMProvider,
		Model:        llm.Model(),
		Storage:      storage,
		CalendarMode: scheduler.Mode(),
		Transcribe:   transcriber.Enabled(),
		Events:       publisher != nil,
	}

	ok = true
	return a, nil
}
