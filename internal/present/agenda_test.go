package present

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/sowestart/internal/storage"
)

func event(summary string, start time.Time) storage.CalendarEvent {
	return storage.CalendarEvent{FeedName: "Cal", Summary: summary, Start: start}
}

func summaries(events []storage.CalendarEvent) []string {
	out := []string{}
	for _, ev := range events {
		out = append(out, ev.Summary)
	}
	return out
}

func TestBuildAgenda(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, loc)
	midnight := time.Date(2024, 3, 15, 0, 0, 0, 0, loc)

	events := []storage.CalendarEvent{
		event("yesterday", midnight.Add(-time.Minute)),
		event("midnight", midnight),
		event("this morning", midnight.Add(9*time.Hour)),
		event("tonight", midnight.Add(23*time.Hour+59*time.Minute)),
		event("tomorrow", midnight.AddDate(0, 0, 1)),
		event("in six days", midnight.AddDate(0, 0, 6).Add(12*time.Hour)),
		event("in seven days", midnight.AddDate(0, 0, 7)),
	}

	agenda := BuildAgenda(events, now, 7, 10)
	assert.Equal(t, []string{"midnight", "this morning", "tonight"}, summaries(agenda.Today))
	assert.Equal(t, []string{"tomorrow", "in six days"}, summaries(agenda.Upcoming))
	assert.False(t, agenda.Empty())
}

func TestBuildAgenda_UTCEventsCompareByInstant(t *testing.T) {
	loc := time.FixedZone("test", 2*3600)
	now := time.Date(2024, 3, 15, 8, 0, 0, 0, loc)

	// 23:00 UTC on the 14th is 01:00 local on the 15th.
	ev := event("late utc", time.Date(2024, 3, 14, 23, 0, 0, 0, time.UTC))
	agenda := BuildAgenda([]storage.CalendarEvent{ev}, now, 7, 10)
	require.Len(t, agenda.Today, 1)
	assert.Empty(t, agenda.Upcoming)
}

func TestBuildAgenda_UpcomingLimit(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	var events []storage.CalendarEvent
	for i := 0; i < 15; i++ {
		events = append(events, event("e", now.AddDate(0, 0, 1).Add(time.Duration(i)*time.Hour)))
	}

	agenda := BuildAgenda(events, now, 7, 10)
	assert.Len(t, agenda.Upcoming, 10)

	agenda = BuildAgenda(events, now, 7, 3)
	assert.Len(t, agenda.Upcoming, 3)
}

func TestBuildAgenda_Defaults(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	events := []storage.CalendarEvent{event("day six", now.AddDate(0, 0, 6))}

	agenda := BuildAgenda(events, now, 0, 0)
	assert.Len(t, agenda.Upcoming, 1)

	empty := BuildAgenda(nil, now, 7, 10)
	assert.True(t, empty.Empty())
	assert.NotNil(t, empty.Today)
	assert.NotNil(t, empty.Upcoming)
}

func TestEventTime(t *testing.T) {
	end := time.Date(2024, 3, 15, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ev   storage.CalendarEvent
		want string
	}{
		{
			name: "all day",
			ev:   storage.CalendarEvent{Start: time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local), IsAllDay: true},
			want: "Fri, Mar 15",
		},
		{
			name: "start and end",
			ev:   storage.CalendarEvent{Start: time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC), End: &end},
			want: "2:00 PM - 4:00 PM",
		},
		{
			name: "start only",
			ev:   storage.CalendarEvent{Start: time.Date(2024, 3, 15, 9, 5, 0, 0, time.UTC)},
			want: "9:05 AM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EventTime(tt.ev, time.UTC))
		})
	}
}

func TestEventTime_ConvertsToLocation(t *testing.T) {
	ev := storage.CalendarEvent{Start: time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)}
	assert.Equal(t, "3:00 PM", EventTime(ev, time.FixedZone("CET", 3600)))
}
