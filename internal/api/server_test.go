package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/rolodex/internal/calendar"
	"github.com/MikeSquared-Agency/rolodex/internal/extractor"
	"github.com/MikeSquared-Agency/rolodex/internal/insights"
	"github.com/MikeSquared-Agency/rolodex/internal/processor"
	"github.com/MikeSquared-Agency/rolodex/internal/record"
	"github.com/MikeSquared-Agency/rolodex/internal/session"
	"github.com/MikeSquared-Agency/rolodex/internal/store"
	"github.com/MikeSquared-Agency/rolodex/internal/transcribe"
)

type stubGenerator struct {
	out string
	err error
}

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	return s.out, s.err
}

func newTestServer(t *testing.T, gen *stubGenerator, token string) (*Server, *store.Memory) {
	t.Helper()
	return newTestServerWith(t, gen, token, transcribe.Disabled{})
}

func newTestServerWith(t *testing.T, gen *stubGenerator, token string, tr transcribe.Transcriber) (*Server, *store.Memory) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	log := store.NewMemory()
	proc := processor.New(processor.Deps{
		Extractor:   extractor.New(gen, logger),
		Log:         log,
		Sessions:    session.NewCache(time.Hour),
		Calendar:    calendar.NewLinkScheduler("UTC"),
		Transcriber: tr,
		Assistant:   insights.NewAssistant(gen, logger),
		Scorer:      insights.NewScorer(),
		Location:    time.UTC,
		Logger:      logger,
	})
	status := Status{Provider: "stub", Storage: "memory", CalendarMode: "link"}
	return NewServer(8760, token, proc, status, logger), log
}

func do(srv *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, "secret")

	w := do(srv, "GET", "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status ok, got %q", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, "")

	w := do(srv, "GET", "/api/v1/status", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Agent  string `json:"agent"`
		Config Status `json:"config"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Agent != "rolodex" {
		t.Errorf("expected agent rolodex, got %q", body.Agent)
	}
	if body.Config.CalendarMode != "link" {
		t.Errorf("expected calendar mode link, got %q", body.Config.CalendarMode)
	}
}

func TestNotFoundEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, "")

	w := do(srv, "GET", "/nonexistent", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, "secret")

	if w := do(srv, "GET", "/api/v1/records", nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: expected 401, got %d", w.Code)
	}
	if w := do(srv, "GET", "/api/v1/records", nil, "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: expected 401, got %d", w.Code)
	}
	if w := do(srv, "GET", "/api/v1/records", nil, "secret"); w.Code != http.StatusOK {
		t.Errorf("valid token: expected 200, got %d", w.Code)
	}
}

func TestExtractSaveList(t *testing.T) {
	gen := &stubGenerator{out: "```json\n{\"Name\":\"Alice\",\"Company\":\"Acme\",\"Follow_up_Date\":\"2024-06-01\",\"Notes\":\"wants demo\"}\n```"}
	srv, log := newTestServer(t, gen, "")

	w := do(srv, "POST", "/api/v1/extract", ExtractRequest{
		Text:   "Met Alice from Acme, follow up June 1, wants demo",
		Source: "email",
	}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("extract: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var extracted processor.ExtractResult
	if err := json.NewDecoder(w.Body).Decode(&extracted); err != nil {
		t.Fatalf("failed to decode extract response: %v", err)
	}
	if extracted.Record.Company == nil || *extracted.Record.Company != "Acme" {
		t.Fatalf("unexpected record: %+v", extracted.Record)
	}

	if w := do(srv, "GET", "/api/v1/sessions/"+extracted.SessionID, nil, ""); w.Code != http.StatusOK {
		t.Errorf("pending: expected 200, got %d", w.Code)
	}

	w = do(srv, "POST", "/api/v1/records", SaveRequest{SessionID: extracted.SessionID}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("save: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var saved processor.SaveResult
	if err := json.NewDecoder(w.Body).Decode(&saved); err != nil {
		t.Fatalf("failed to decode save response: %v", err)
	}
	if saved.CalendarMode != "link" || saved.CalendarLink == "" {
		t.Errorf("expected a calendar link, got %+v", saved)
	}

	w = do(srv, "GET", "/api/v1/records", nil, "")
	var list ListResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if list.Count != 1 || list.Records[0].Name == nil || *list.Records[0].Name != "Alice" {
		t.Errorf("unexpected list: %+v", list)
	}

	all, _ := log.ListAll(context.Background())
	if len(all) != 1 {
		t.Errorf("expected 1 stored record, got %d", len(all))
	}

	if w := do(srv, "POST", "/api/v1/records", SaveRequest{SessionID: extracted.SessionID}, ""); w.Code != http.StatusNotFound {
		t.Errorf("second save: expected 404, got %d", w.Code)
	}
}

func TestExtract_ServiceErrorIsBadGateway(t *testing.T) {
	srv, log := newTestServer(t, &stubGenerator{err: errors.New("connection refused")}, "")

	w := do(srv, "POST", "/api/v1/extract", ExtractRequest{Text: "Met Bob", Source: "email"}, "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}

	all, _ := log.ListAll(context.Background())
	if len(all) != 0 {
		t.Errorf("expected no stored records, got %d", len(all))
	}
}

func TestExtract_BadRequests(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, "")

	if w := do(srv, "POST", "/api/v1/extract", ExtractRequest{Text: "x", Source: "fax"}, ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown source: expected 400, got %d", w.Code)
	}

	req := httptest.NewRequest("POST", "/api/v1/extract", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON: expected 400, got %d", w.Code)
	}
}

// recordingTranscriber captures the file it was asked to transcribe.
type recordingTranscriber struct {
	path    string
	content string
}

func (r *recordingTranscriber) Enabled() bool { return true }

func (r *recordingTranscriber) Transcribe(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	r.path = path
	r.content = string(data)
	return "Met Alice from Acme, follow up Friday", nil
}

func voiceUpload(t *testing.T, filename, content, sessionID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if sessionID != "" {
		mw.WriteField("session_id", sessionID)
	}
	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		t.Fatal(err)
	}
	io.WriteString(part, content)
	mw.Close()

	req := httptest.NewRequest("POST", "/api/v1/voice", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestVoice_Upload(t *testing.T) {
	gen := &stubGenerator{out: `{"Name":"Alice","Company":"Acme","Follow_up_Date":"Friday","Notes":null}`}
	tr := &recordingTranscriber{}
	srv, _ := newTestServerWith(t, gen, "", tr)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, voiceUpload(t, "memo.wav", "RIFF fake audio", "s1"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var res processor.VoiceResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if res.Extraction == nil || res.Extraction.SessionID != "s1" || res.Extraction.Source != "voice" {
		t.Fatalf("unexpected extraction: %+v", res.Extraction)
	}
	if tr.content != "RIFF fake audio" {
		t.Errorf("transcriber got %q, want the uploaded bytes", tr.content)
	}
	if filepath.Ext(tr.path) != ".wav" {
		t.Errorf("temp file %q should keep the .wav extension", tr.path)
	}
	if _, err := os.Stat(tr.path); !os.IsNotExist(err) {
		t.Errorf("temp file %q not removed after the request", tr.path)
	}
}

func TestVoice_RejectsServerPath(t *testing.T) {
	tr := &recordingTranscriber{}
	srv, _ := newTestServerWith(t, &stubGenerator{}, "", tr)

	w := do(srv, "POST", "/api/v1/voice", map[string]string{"audio_path": "/etc/passwd"}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if tr.path != "" {
		t.Errorf("transcriber should not be called, got path %q", tr.path)
	}
}

func TestVoice_UnknownExtensionDropped(t *testing.T) {
	tr := &recordingTranscriber{}
	srv, _ := newTestServerWith(t, &stubGenerator{out: `{}`}, "", tr)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, voiceUpload(t, "../../etc/cron.d/x.sh", "data", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if filepath.Ext(tr.path) != "" || filepath.Dir(tr.path) != filepath.Clean(os.TempDir()) {
		t.Errorf("unexpected temp path %q", tr.path)
	}
}

func TestVoice_Disabled(t *testing.T) {
	srv, _ := newTestServer(t, &stubGenerator{}, "")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, voiceUpload(t, "memo.wav", "RIFF", ""))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res processor.VoiceResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !res.Disabled || res.Transcript != transcribe.DisabledMessage {
		t.Errorf("unexpected response: %+v", res)
	}
}

func TestInsightsEndpoints(t *testing.T) {
	gen := &stubGenerator{}
	srv, log := newTestServer(t, gen, "")

	if w := do(srv, "POST", "/api/v1/insights/summary", nil, ""); w.Code != http.StatusNotFound {
		t.Errorf("summary on empty log: expected 404, got %d", w.Code)
	}

	log.Insert(context.Background(), "email", recordWith("Alice", "Acme", "Loved the demo, excited to start"))

	w := do(srv, "GET", "/api/v1/insights", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("insights: expected 200, got %d", w.Code)
	}
	var rep insights.Report
	if err := json.NewDecoder(w.Body).Decode(&rep); err != nil {
		t.Fatalf("failed to decode insights: %v", err)
	}
	if rep.Overview.TotalContacts != 1 || len(rep.Rows) != 1 {
		t.Errorf("unexpected report: %+v", rep)
	}

	if w := do(srv, "POST", "/api/v1/insights/ask", AskRequest{Question: "  "}, ""); w.Code != http.StatusBadRequest {
		t.Errorf("blank question: expected 400, got %d", w.Code)
	}

	gen.out = "Alice at Acme."
	w = do(srv, "POST", "/api/v1/insights/ask", AskRequest{Question: "Who is at Acme?"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("ask: expected 200, got %d", w.Code)
	}
	var body map[string]string
	json.NewDecoder(w.Body).Decode(&body)
	if body["answer"] != "Alice at Acme." {
		t.Errorf("unexpected answer %q", body["answer"])
	}
}

func recordWith(name, company, notes string) record.Record {
	return record.Record{
		Name:    record.Ptr(name),
		Company: record.Ptr(company),
		Notes:   record.Ptr(notes),
	}
}
