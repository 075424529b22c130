package extractor

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

// Generator is the text-generation service: one prompt in, one completion out.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Extractor struct {
	llm    Generator
	logger *slog.Logger
}

func New(llm Generator, logger *slog.Logger) *Extractor {
	return &Extractor{llm: llm, logger: logger}
}

// Extract sends the prompt for text to the service and returns its raw reply.
// Failures are wrapped in *ServiceError and are not retried.
func (e *Extractor) Extract(ctx context.Context, source Source, text string) (string, error) {
	e.logger.Info("extracting crm fields",
		"source", source,
		"text_len", len(text),
	)

	raw, err := e.llm.Generate(ctx, BuildPrompt(source, text))
	if err != nil {
		return "", &ServiceError{Op: "llm extraction", Err: err}
	}
	return raw, nil
}

// Process runs the whole pipeline for one input: normalize, extract, parse.
// Blank input yields the source placeholder without calling the service.
func (e *Extractor) Process(ctx context.Context, source Source, raw string) (record.Record, error) {
	text, err := Normalize(raw)
	if errors.Is(err, ErrEmptyInput) {
		e.logger.Debug("blank input, skipping extraction", "source", source)
		return record.Placeholder(source.Placeholder()), nil
	}

	resp, err := e.Extract(ctx, source, text)
	if err != nil {
		return record.Record{}, err
	}

	rec, err := decode(resp)
	if err != nil {
		e.logger.Warn("unparseable extraction response, using fallback record",
			"error", err,
			"raw", resp,
		)
		return record.Fallback(text), nil
	}

	e.logger.Info("extraction complete",
		"source", source,
		"has_name", rec.Name != nil,
		"has_company", rec.Company != nil,
		"has_follow_up", rec.FollowUpDate != nil,
	)
	return rec, nil
}
