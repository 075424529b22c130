package calendar

import (
	"context"
	"net/url"
)

const renderURL = "https://calendar.google.com/calendar/render"

const linkTimeLayout = "20060102T150405"

// LinkScheduler builds a Google Calendar "add event" link. No credentials are
// involved and nothing is created until the user opens the link.
type LinkScheduler struct {
	timezone string
}

func NewLinkScheduler(timezone string) *LinkScheduler {
	return &LinkScheduler{timezone: timezone}
}

func (l *LinkScheduler) Mode() string { return "link" }

func (l *LinkScheduler) Schedule(_ context.Context, ev Event) (string, error) {
	return l.Link(ev), nil
}

// Link renders ev as a calendar template URL. Times are written as local
// wall-clock values and tagged with the scheduler's time zone.
func (l *LinkScheduler) Link(ev Event) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", ev.Summary)
	q.Set("details", ev.Description)
	q.Set("dates", ev.Start.Format(linkTimeLayout)+"/"+ev.End.Format(linkTimeLayout))
	if l.timezone != "" {
		q.Set("ctz", l.timezone)
	}
	return renderURL + "?" + q.Encode()
}
