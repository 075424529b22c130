package slack

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFormatSavedMessage_Full(t *testing.T) {
	r := record.Record{
		Name:         record.Ptr("John"),
		Company:      record.Ptr("Acme Corp"),
		FollowUpDate: record.Ptr("next Tuesday"),
		Notes:        record.Ptr("Pricing discussion"),
	}

	msg := formatSavedMessage(r, "https://calendar.example/evt")

	checks := []string{
		"*John* from *Acme Corp* added to CRM",
		"next Tuesday",
		"Pricing discussion",
		"<https://calendar.example/evt|Add follow-up to calendar>",
	}
	for _, c := range checks {
		if !strings.Contains(msg, c) {
			t.Errorf("expected message to contain %q, got:\n%s", c, msg)
		}
	}
}

func TestFormatSavedMessage_Sparse(t *testing.T) {
	msg := formatSavedMessage(record.Record{Notes: record.Ptr("raw text")}, "")

	if !strings.HasPrefix(msg, "*Unknown contact* added to CRM") {
		t.Errorf("unexpected message:\n%s", msg)
	}
	if strings.Contains(msg, "Follow-up") || strings.Contains(msg, "calendar") {
		t.Errorf("expected no follow-up or calendar lines, got:\n%s", msg)
	}
}

func TestPostRecordSaved(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer xoxb-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "ts": "1700000000.000100"})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C123", discardLogger())
	p.apiURL = server.URL

	ts, err := p.PostRecordSaved(context.Background(), 3, record.Record{Name: record.Ptr("John")}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts != "1700000000.000100" {
		t.Errorf("unexpected ts %q", ts)
	}
	if gotBody["channel"] != "C123" {
		t.Errorf("unexpected channel %v", gotBody["channel"])
	}
	if !strings.Contains(gotBody["text"].(string), "John") {
		t.Errorf("unexpected text %v", gotBody["text"])
	}
}

func TestPostRecordSaved_SlackError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "channel_not_found"})
	}))
	defer server.Close()

	p := NewPoster("xoxb-test", "C404", discardLogger())
	p.apiURL = server.URL

	_, err := p.PostRecordSaved(context.Background(), 1, record.Record{}, "")
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("expected channel_not_found error, got %v", err)
	}
}
