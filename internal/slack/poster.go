package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

const defaultPostMessageURL = "https://slack.com/api/chat.postMessage"

type Poster struct {
	token   string
	channel string
	client  *http.Client
	logger  *slog.Logger
	apiURL  string
}

func NewPoster(token, channel string, logger *slog.Logger) *Poster {
	return &Poster{
		token:   token,
		channel: channel,
		client:  &http.Client{Timeout: 10 * time.Second},
		apiURL:  defaultPostMessageURL,
		logger:  logger,
	}
}

// PostRecordSaved posts a confirmation for a stored record and returns the
// message timestamp.
func (p *Poster) PostRecordSaved(ctx context.Context, id int64, r record.Record, calendarLink string) (string, error) {
	text := formatSavedMessage(r, calendarLink)

	body, err := json.Marshal(map[string]any{
		"channel": p.channel,
		"text":    text,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{
					"type": "mrkdwn",
					"text": text,
				},
			},
			{
				"type": "context",
				"elements": []map[string]any{
					{
						"type": "mrkdwn",
						"text": fmt.Sprintf("CRM record #%d", id),
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("slack post: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var slackResp struct {
		OK    bool   `json:"ok"`
		TS    string `json:"ts"`
		Error string `json:"error,omitempty"`
	}
	if err := json.Unmarshal(respBody, &slackResp); err != nil {
		return "", fmt.Errorf("parse slack response: %w", err)
	}
	if !slackResp.OK {
		return "", fmt.Errorf("slack error: %s", slackResp.Error)
	}

	p.logger.Info("posted crm confirmation to slack", "ts", slackResp.TS, "record_id", id)
	return slackResp.TS, nil
}

func formatSavedMessage(r record.Record, calendarLink string) string {
	var sb strings.Builder

	who := orUnknown(r.Name)
	if r.Company != nil && *r.Company != "" {
		fmt.Fprintf(&sb, "*%s* from *%s* added to CRM\n", who, *r.Company)
	} else {
		fmt.Fprintf(&sb, "*%s* added to CRM\n", who)
	}
	if r.FollowUpDate != nil && *r.FollowUpDate != "" {
		fmt.Fprintf(&sb, "*Follow-up:* %s\n", *r.FollowUpDate)
	}
	if r.Notes != nil && *r.Notes != "" {
		fmt.Fprintf(&sb, "*Notes:* %s\n", *r.Notes)
	}
	if calendarLink != "" {
		fmt.Fprintf(&sb, "<%s|Add follow-up to calendar>", calendarLink)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return "Unknown contact"
	}
	return *s
}
