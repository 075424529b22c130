package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

const noNotes = "No additional notes"

// Event is a follow-up to put on a calendar.
type Event struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
}

// Scheduler turns an Event into something the user can open: either a
// prefilled link or an event created through an API. It returns that URL.
type Scheduler interface {
	Schedule(ctx context.Context, ev Event) (string, error)
	Mode() string
}

// EventFor builds the follow-up event for a saved record.
func EventFor(r record.Record, now time.Time, loc *time.Location) Event {
	summary := "Follow-up"
	if r.Name != nil && *r.Name != "" {
		summary = fmt.Sprintf("Follow-up with %s", *r.Name)
	}
	desc := record.Value(r.Notes)
	if desc == "" {
		desc = noNotes
	}
	start := ParseFollowUp(record.Value(r.FollowUpDate), now, loc)
	return Event{
		Summary:     summary,
		Description: desc,
		Start:       start,
		End:         start.Add(eventLength),
	}
}
