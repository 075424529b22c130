package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DisabledMessage is returned in place of a transcript when voice input is off.
const DisabledMessage = "Voice transcription is disabled in the deployed version."

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
	Enabled() bool
}

// Disabled always answers with DisabledMessage.
type Disabled struct{}

func (Disabled) Transcribe(context.Context, string) (string, error) {
	return DisabledMessage, nil
}

func (Disabled) Enabled() bool { return false }

// HTTPTranscriber uploads audio to a whisper-compatible
// /v1/audio/transcriptions endpoint.
type HTTPTranscriber struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

func NewHTTPTranscriber(url, apiKey string) *HTTPTranscriber {
	return &HTTPTranscriber{
		url:    url,
		apiKey: apiKey,
		model:  "whisper-1",
		client: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (h *HTTPTranscriber) Enabled() bool { return true }

func (h *HTTPTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("model", h.model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription error %d: %s", resp.StatusCode, string(respBody))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("parse transcription: %w", err)
	}
	return out.Text, nil
}
