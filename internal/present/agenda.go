// Package present turns refreshed calendar events and articles into what
// the CLI prints: agenda windows, short time labels and styled output.
package present

import (
	"time"

	"github.com/pders01/sowestart/internal/storage"
)

const (
	DefaultUpcomingDays  = 7
	DefaultUpcomingLimit = 10
)

// Agenda splits sorted events into those starting today and those in the
// following days.
type Agenda struct {
	Today    []storage.CalendarEvent
	Upcoming []storage.CalendarEvent
}

func (a Agenda) Empty() bool {
	return len(a.Today) == 0 && len(a.Upcoming) == 0
}

// BuildAgenda keeps events starting in [midnight, midnight+1d) as Today and
// events in [tomorrow, midnight+days) as Upcoming, the latter capped at
// limit. Midnight is taken in now's location. Input order is preserved, so
// pass events already sorted by start.
func BuildAgenda(events []storage.CalendarEvent, now time.Time, days, limit int) Agenda {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	horizon := today.AddDate(0, 0, days)

	agenda := Agenda{
		Today:    []storage.CalendarEvent{},
		Upcoming: []storage.CalendarEvent{},
	}
	for _, ev := range events {
		switch {
		case !ev.Start.Before(today) && ev.Start.Before(tomorrow):
			agenda.Today = append(agenda.Today, ev)
		case !ev.Start.Before(tomorrow) && ev.Start.Before(horizon):
			if len(agenda.Upcoming) < limit {
				agenda.Upcoming = append(agenda.Upcoming, ev)
			}
		}
	}
	return agenda
}

// EventTime labels an event the way the agenda shows it: "Mon, Jan 2" for
// all-day events, otherwise "3:04 PM" or "3:04 PM - 4:00 PM" in loc.
// All-day dates are floating and are never converted.
func EventTime(ev storage.CalendarEvent, loc *time.Location) string {
	if ev.IsAllDay {
		return ev.Start.Format("Mon, Jan 2")
	}
	if loc == nil {
		loc = time.Local
	}

	start := ev.Start.In(loc).Format("3:04 PM")
	if ev.End != nil {
		return start + " - " + ev.End.In(loc).Format("3:04 PM")
	}
	return start
}
