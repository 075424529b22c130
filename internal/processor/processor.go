package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/rolodex/internal/calendar"
	"github.com/MikeSquared-Agency/rolodex/internal/extractor"
	"github.com/MikeSquared-Agency/rolodex/internal/hermes"
	"github.com/MikeSquared-Agency/rolodex/internal/insights"
	"github.com/MikeSquared-Agency/rolodex/internal/record"
	"github.com/MikeSquared-Agency/rolodex/internal/session"
	"github.com/MikeSquared-Agency/rolodex/internal/store"
	"github.com/MikeSquared-Agency/rolodex/internal/transcribe"
)

// Publisher announces saved records on the event bus.
type Publisher interface {
	PublishRecordSaved(evt hermes.RecordSavedEvent) error
}

// Notifier sends a human-facing confirmation for a saved record.
type Notifier interface {
	PostRecordSaved(ctx context.Context, id int64, r record.Record, calendarLink string) (string, error)
}

// Deps are the collaborators of a Processor. Publisher and Notifier are optional.
type Deps struct {
	Extractor   *extractor.Extractor
	Log         store.Log
	Sessions    *session.Cache
	Calendar    calendar.Scheduler
	Transcriber transcribe.Transcriber
	Assistant   *insights.Assistant
	Scorer      *insights.Scorer
	Publisher   Publisher
	Notifier    Notifier
	Location    *time.Location
	Logger      *slog.Logger
}

// Processor orchestrates the CRM pipeline: extract into a pending record,
// save it to the log, then schedule and announce the follow-up.
type Processor struct {
	extractor   *extractor.Extractor
	log         store.Log
	sessions    *session.Cache
	calendar    calendar.Scheduler
	transcriber transcribe.Transcriber
	assistant   *insights.Assistant
	scorer      *insights.Scorer
	publisher   Publisher
	notifier    Notifier
	loc         *time.Location
	now         func() time.Time
	logger      *slog.Logger
}

func New(d Deps) *Processor {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	return &Processor{
		extractor:   d.Extractor,
		log:         d.Log,
		sessions:    d.Sessions,
		calendar:    d.Calendar,
		transcriber: d.Transcriber,
		assistant:   d.Assistant,
		scorer:      d.Scorer,
		publisher:   d.Publisher,
		notifier:    d.Notifier,
		loc:         loc,
		now:         time.Now,
		logger:      d.Logger,
	}
}

type ExtractResult struct {
	SessionID string        `json:"session_id"`
	Source    string        `json:"source"`
	Record    record.Record `json:"record"`
}

type VoiceResult struct {
	Transcript string         `json:"transcript"`
	Disabled   bool           `json:"disabled"`
	Extraction *ExtractResult `json:"extraction,omitempty"`
}

type SaveResult struct {
	ID            int64         `json:"id"`
	Record        record.Record `json:"record"`
	CalendarMode  string        `json:"calendar_mode,omitempty"`
	CalendarLink  string        `json:"calendar_link,omitempty"`
	CalendarError string        `json:"calendar_error,omitempty"`
}

// Extract runs the pipeline on text and holds the result as the session's
// pending record. An empty sessionID starts a new session. On a service
// error nothing is cached.
func (p *Processor) Extract(ctx context.Context, sessionID string, source extractor.Source, text string) (*ExtractResult, error) {
	rec, err := p.extractor.Process(ctx, source, text)
	if err != nil {
		return nil, err
	}

	if sessionID == "" {
		sessionID = session.NewID()
	}
	p.sessions.Put(sessionID, string(source), rec)

	return &ExtractResult{SessionID: sessionID, Source: string(source), Record: rec}, nil
}

// Voice transcribes audioPath and extracts from the transcript. With
// transcription disabled it returns the disabled message and extracts nothing.
func (p *Processor) Voice(ctx context.Context, sessionID, audioPath string) (*VoiceResult, error) {
	if !p.transcriber.Enabled() {
		msg, err := p.transcriber.Transcribe(ctx, audioPath)
		if err != nil {
			return nil, fmt.Errorf("transcription disabled: %w", err)
		}
		return &VoiceResult{Transcript: msg, Disabled: true}, nil
	}

	transcript, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, &extractor.ServiceError{Op: "transcription", Err: err}
	}

	res, err := p.Extract(ctx, sessionID, extractor.SourceVoice, transcript)
	if err != nil {
		return nil, err
	}
	return &VoiceResult{Transcript: transcript, Extraction: res}, nil
}

// Pending returns the session's unsaved record.
func (p *Processor) Pending(sessionID string) (session.Pending, error) {
	return p.sessions.Peek(sessionID)
}

// Save stores the session's pending record. If the insert fails the record
// stays pending so the user can retry.
func (p *Processor) Save(ctx context.Context, sessionID string) (*SaveResult, error) {
	pending, err := p.sessions.Take(sessionID)
	if err != nil {
		return nil, err
	}

	res, err := p.SaveRecord(ctx, pending.Source, pending.Record)
	if err != nil {
		p.sessions.Put(sessionID, pending.Source, pending.Record)
		return nil, err
	}
	return res, nil
}

// SaveRecord appends r to the log, then schedules its follow-up and
// announces it. Scheduling failures are reported in the result, not as an
// error, because the record is already stored.
func (p *Processor) SaveRecord(ctx context.Context, source string, r record.Record) (*SaveResult, error) {
	id, err := p.log.Insert(ctx, source, r)
	if err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	p.logger.Info("crm record saved", "id", id, "source", source)

	res := &SaveResult{ID: id, Record: r}

	if p.calendar != nil {
		res.CalendarMode = p.calendar.Mode()
		ev := calendar.EventFor(r, p.now(), p.loc)
		link, err := p.calendar.Schedule(ctx, ev)
		if err != nil {
			svcErr := &extractor.ServiceError{Op: "calendar scheduling", Err: err}
			p.logger.Error("calendar scheduling failed", "id", id, "error", svcErr)
			res.CalendarError = svcErr.Error()
		} else {
			res.CalendarLink = link
		}
	}

	if p.publisher != nil {
		evt := hermes.NewRecordSavedEvent(id, source, r, p.now())
		if err := p.publisher.PublishRecordSaved(evt); err != nil {
			p.logger.Warn("failed to publish record saved event", "id", id, "error", err)
		}
	}

	if p.notifier != nil {
		if _, err := p.notifier.PostRecordSaved(ctx, id, r, res.CalendarLink); err != nil {
			p.logger.Warn("failed to post crm confirmation", "id", id, "error", err)
		}
	}

	return res, nil
}

// List returns the full log in insertion order.
func (p *Processor) List(ctx context.Context) ([]record.Stored, error) {
	records, err := p.log.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Insights scores the log and computes dashboard aggregates.
func (p *Processor) Insights(ctx context.Context) (insights.Report, error) {
	records, err := p.List(ctx)
	if err != nil {
		return insights.Report{}, err
	}
	return insights.Build(p.scorer, records), nil
}

// Summary asks the text-generation service for a short overview of the log.
func (p *Processor) Summary(ctx context.Context) (string, error) {
	rep, err := p.Insights(ctx)
	if err != nil {
		return "", err
	}
	return p.assistant.Summarize(ctx, rep.Rows)
}

// Ask answers a question about the log.
func (p *Processor) Ask(ctx context.Context, question string) (string, error) {
	rep, err := p.Insights(ctx)
	if err != nil {
		return "", err
	}
	return p.assistant.Ask(ctx, rep.Rows, question)
}

// IsServiceError reports whether err came from an external service call.
func IsServiceError(err error) bool {
	var svcErr *extractor.ServiceError
	return errors.As(err, &svcErr)
}
