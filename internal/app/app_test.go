package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/MikeSquared-Agency/rolodex/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		LLMProvider:      "gemini",
		GoogleAPIKey:     "test-key",
		GeminiModel:      "gemini-2.0-flash",
		CalendarMode:     "link",
		CalendarID:       "primary",
		CalendarTimezone: "UTC",
	}
}

func TestNewGenerator(t *testing.T) {
	cfg := testConfig()
	gen, err := NewGenerator(cfg)
	if err != nil {
		t.Fatalf("gemini: %v", err)
	}
	if gen.Model() != "gemini-2.0-flash" {
		t.Errorf("model = %q", gen.Model())
	}

	cfg.LLMProvider = "anthropic"
	if _, err := NewGenerator(cfg); err == nil {
		t.Error("expected error for anthropic without key")
	}
	cfg.AnthropicAPIKey = "sk-test"
	cfg.AnthropicModel = "claude-sonnet-4-20250514"
	if _, err := NewGenerator(cfg); err != nil {
		t.Errorf("anthropic: %v", err)
	}

	cfg.LLMProvider = "openai"
	if _, err := NewGenerator(cfg); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewScheduler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig()

	s, err := NewScheduler(cfg, logger)
	if err != nil || s.Mode() != "link" {
		t.Fatalf("link: %v %v", s, err)
	}

	cfg.CalendarMode = "api"
	if _, err := NewScheduler(cfg, logger); err == nil {
		t.Error("expected error for api mode without token")
	}
	cfg.CalendarToken = "ya29.token"
	if s, err := NewScheduler(cfg, logger); err != nil || s.Mode() != "api" {
		t.Errorf("api: %v %v", s, err)
	}
}

func TestNew_InMemory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := New(context.Background(), testConfig(), logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Status.Storage != "memory" || a.Status.Transcribe || a.Status.Events {
		t.Errorf("unexpected status: %+v", a.Status)
	}

	cfg := testConfig()
	cfg.CalendarTimezone = "Not/AZone"
	if _, err := New(context.Background(), cfg, logger); err == nil {
		t.Error("expected error for invalid timezone")
	}
}
