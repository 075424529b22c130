package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultAPIBaseURL = "https://www.googleapis.com/calendar/v3"

// APIScheduler creates events through the Google Calendar API using an
// OAuth bearer token.
type APIScheduler struct {
	token      string
	calendarID string
	timezone   string
	baseURL    string
	client     *http.Client
	logger     *slog.Logger
}

func NewAPIScheduler(token, calendarID, timezone string, logger *slog.Logger) *APIScheduler {
	return &APIScheduler{
		token:      token,
		calendarID: calendarID,
		timezone:   timezone,
		baseURL:    defaultAPIBaseURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// SetTestTransport points the scheduler at a test server.
func (a *APIScheduler) SetTestTransport(url string) {
	a.baseURL = url
}

func (a *APIScheduler) Mode() string { return "api" }

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventBody struct {
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Start       eventTime `json:"start"`
	End         eventTime `json:"end"`
}

// Schedule inserts ev and returns the created event's htmlLink.
func (a *APIScheduler) Schedule(ctx context.Context, ev Event) (string, error) {
	body, err := json.Marshal(eventBody{
		Summary:     ev.Summary,
		Description: ev.Description,
		Start:       eventTime{DateTime: ev.Start.Format(time.RFC3339), TimeZone: a.timezone},
		End:         eventTime{DateTime: ev.End.Format(time.RFC3339), TimeZone: a.timezone},
	})
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", a.baseURL, url.PathEscape(a.calendarID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calendar insert: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			return "", fmt.Errorf("calendar api error %d: %s", resp.StatusCode, errResp.Error.Message)
		}
		return "", fmt.Errorf("calendar api error %d: %s", resp.StatusCode, string(respBody))
	}

	var created struct {
		ID       string `json:"id"`
		HTMLLink string `json:"htmlLink"`
	}
	if err := json.Unmarshal(respBody, &created); err != nil {
		return "", fmt.Errorf("parse calendar response: %w", err)
	}

	a.logger.Info("calendar event created", "event_id", created.ID, "start", ev.Start)
	return created.HTMLLink, nil
}
