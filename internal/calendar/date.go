package calendar

import (
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Follow-ups are booked at 10:00 local time for one hour.
const (
	followUpHour = 10
	eventLength  = time.Hour
)

var absoluteLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

var parser = newParser()

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseFollowUp reads a free-text follow-up date ("next Tuesday", "2025-03-14",
// "tomorrow") and returns that day at 10:00 in loc. Anything it cannot read
// becomes tomorrow at 10:00.
func ParseFollowUp(text string, now time.Time, loc *time.Location) time.Time {
	base := now.In(loc)
	text = strings.TrimSpace(text)

	if text != "" {
		for _, layout := range absoluteLayouts {
			if t, err := time.ParseInLocation(layout, text, loc); err == nil {
				return atFollowUpHour(t, loc)
			}
		}
		if r, err := parser.Parse(text, base); err == nil && r != nil {
			return atFollowUpHour(r.Time, loc)
		}
	}
	return atFollowUpHour(base.AddDate(0, 0, 1), loc)
}

func atFollowUpHour(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), followUpHour, 0, 0, 0, loc)
}
