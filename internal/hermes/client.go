package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

// SubjectRecordSaved is published once per record appended to the log.
const SubjectRecordSaved = "crm.record.saved"

// RecordSavedEvent is the payload of SubjectRecordSaved. Notes are left out;
// subscribers that need them read the log.
type RecordSavedEvent struct {
	EventID      string    `json:"event_id"`
	RecordID     int64     `json:"id"`
	Source       string    `json:"source"`
	Name         *string   `json:"name"`
	Company      *string   `json:"company"`
	FollowUpDate *string   `json:"follow_up_date"`
	SavedAt      time.Time `json:"saved_at"`
}

// NewRecordSavedEvent builds the event for a freshly inserted record.
func NewRecordSavedEvent(id int64, source string, r record.Record, at time.Time) RecordSavedEvent {
	return RecordSavedEvent{
		EventID:      uuid.NewString(),
		RecordID:     id,
		Source:       source,
		Name:         r.Name,
		Company:      r.Company,
		FollowUpDate: r.FollowUpDate,
		SavedAt:      at.UTC(),
	}
}

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("rolodex"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

// PublishRecordSaved announces a newly stored record.
func (c *Client) PublishRecordSaved(evt RecordSavedEvent) error {
	if err := c.Publish(SubjectRecordSaved, evt); err != nil {
		return fmt.Errorf("publish %s: %w", SubjectRecordSaved, err)
	}
	return nil
}

func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}
