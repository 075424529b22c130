package insights

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/MikeSquared-Agency/rolodex/internal/extractor"
	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

var (
	ErrNoRecords     = errors.New("no crm records")
	ErrEmptyQuestion = errors.New("empty question")
)

const summaryPrompt = `Summarize this CRM dataset briefly (2-3 sentences) highlighting key follow-ups, sentiment, and companies:
%s`

const askPrompt = `You are an AI CRM assistant. Use the CRM data below to answer clearly.

%s
Question: %s`

// Assistant answers free-form questions about the log through the same
// text-generation service used for extraction.
type Assistant struct {
	llm    extractor.Generator
	logger *slog.Logger
}

func NewAssistant(llm extractor.Generator, logger *slog.Logger) *Assistant {
	return &Assistant{llm: llm, logger: logger}
}

// Summarize asks for a short overview of the whole log.
func (a *Assistant) Summarize(ctx context.Context, rows []Row) (string, error) {
	if len(rows) == 0 {
		return "", ErrNoRecords
	}
	out, err := a.llm.Generate(ctx, fmt.Sprintf(summaryPrompt, table(rows)))
	if err != nil {
		return "", &extractor.ServiceError{Op: "summary", Err: err}
	}
	a.logger.Info("crm summary generated", "records", len(rows))
	return strings.TrimSpace(out), nil
}

// Ask answers question using the log as context.
func (a *Assistant) Ask(ctx context.Context, rows []Row, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	if len(rows) == 0 {
		return "", ErrNoRecords
	}
	out, err := a.llm.Generate(ctx, fmt.Sprintf(askPrompt, table(rows), question))
	if err != nil {
		return "", &extractor.ServiceError{Op: "ask", Err: err}
	}
	return strings.TrimSpace(out), nil
}

// table renders rows as aligned plain text for prompting.
func table(rows []Row) string {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Name\tCompany\tFollow_up_Date\tNotes\tSentiment")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			cell(r.Name), cell(r.Company), cell(r.FollowUpDate), cell(r.Notes), r.Sentiment.Label)
	}
	tw.Flush()
	return sb.String()
}

func cell(s *string) string {
	if s == nil {
		return "-"
	}
	return strings.ReplaceAll(record.Value(s), "\n", " ")
}
