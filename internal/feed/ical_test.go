package feed

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testZone = time.FixedZone("UTC+1", 3600)

func newTestICalParser() *ICalParser {
	p := NewICalParser()
	p.SetLocation(testZone)
	return p
}

func calendar(lines ...string) string {
	all := append([]string{"BEGIN:VCALENDAR", "VERSION:2.0"}, lines...)
	all = append(all, "END:VCALENDAR")
	return strings.Join(all, "\r\n") + "\r\n"
}

func TestICalParser_BasicEvent(t *testing.T) {
	raw := calendar(
		"BEGIN:VEVENT",
		"UID:abc-123@example.org",
		"SUMMARY:Team sync",
		"DESCRIPTION:Agenda:\\nitem one\\, item two",
		"LOCATION:Room 4\\; second floor",
		"DTSTART:20240315T140000Z",
		"DTEND:20240315T150000Z",
		"URL:https://example.org/meet",
		"X-CUSTOM:ignored",
		"END:VEVENT",
	)

	events := newTestICalParser().Parse(raw, "Work")
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "Work", ev.FeedName)
	assert.Equal(t, "Team sync", ev.Summary)
	assert.Equal(t, "Agenda:\nitem one, item two", ev.Description)
	assert.Equal(t, "Room 4; second floor", ev.Location)
	assert.Equal(t, "abc-123@example.org", ev.UID)
	assert.Equal(t, "https://example.org/meet", ev.URL)
	assert.False(t, ev.IsAllDay)
	assert.True(t, ev.Start.Equal(time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)))
	require.NotNil(t, ev.End)
	assert.True(t, ev.End.Equal(time.Date(2024, 3, 15, 15, 0, 0, 0, time.UTC)))
}

func TestICalParser_Dates(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantStart time.Time
		allDay    bool
	}{
		{
			name:      "all-day date",
			line:      "DTSTART;VALUE=DATE:20240315",
			wantStart: time.Date(2024, 3, 15, 0, 0, 0, 0, testZone),
			allDay:    true,
		},
		{
			name:      "utc date-time",
			line:      "DTSTART:20240315T140000Z",
			wantStart: time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC),
		},
		{
			name:      "floating date-time",
			line:      "DTSTART:20240315T093000",
			wantStart: time.Date(2024, 3, 15, 9, 30, 0, 0, testZone),
		},
		{
			name:      "tzid read as local",
			line:      "DTSTART;TZID=America/New_York:20240315T093000",
			wantStart: time.Date(2024, 3, 15, 9, 30, 0, 0, testZone),
		},
		{
			name:      "eight characters without value param",
			line:      "DTSTART:20240315",
			wantStart: time.Date(2024, 3, 15, 0, 0, 0, 0, testZone),
		},
		{
			name:      "out of range components roll over",
			line:      "DTSTART;VALUE=DATE:20241340",
			wantStart: time.Date(2025, 2, 9, 0, 0, 0, 0, testZone),
			allDay:    true,
		},
		{
			name:      "truncated value keeps parsed prefix",
			line:      "DTSTART:202403",
			wantStart: time.Date(2024, 3, 1, 0, 0, 0, 0, testZone),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := calendar("BEGIN:VEVENT", "SUMMARY:Dated", tt.line, "END:VEVENT")
			events := newTestICalParser().Parse(raw, "Cal")
			require.Len(t, events, 1)
			assert.True(t, tt.wantStart.Equal(events[0].Start), "got %s want %s", events[0].Start, tt.wantStart)
			assert.Equal(t, tt.allDay, events[0].IsAllDay)
		})
	}
}

func TestICalParser_LineFolding(t *testing.T) {
	unfolded := calendar(
		"BEGIN:VEVENT",
		"SUMMARY:Quarterly planning meeting with the whole team",
		"DTSTART:20240315T140000Z",
		"END:VEVENT",
	)
	folded := calendar(
		"BEGIN:VEVENT",
		"SUMMARY:Quarterly planning",
		"  meeting with",
		"\t the whole team",
		"DTSTART:20240315T140000Z",
		"END:VEVENT",
	)

	p := newTestICalParser()
	want := p.Parse(unfolded, "Cal")
	got := p.Parse(folded, "Cal")

	require.Len(t, want, 1)
	assert.Equal(t, want, got)
	assert.Equal(t, "Quarterly planning meeting with the whole team", got[0].Summary)
}

func TestICalParser_FoldingBeforeFieldSplit(t *testing.T) {
	// The parameter list itself is folded, so the colon only exists after unfolding.
	raw := calendar(
		"BEGIN:VEVENT",
		"SUMMARY:Split",
		"DTSTART;VALUE=",
		" DATE:20240102",
		"END:VEVENT",
	)

	events := newTestICalParser().Parse(raw, "Cal")
	require.Len(t, events, 1)
	assert.True(t, events[0].IsAllDay)
	assert.True(t, events[0].Start.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, testZone)))
}

func TestICalParser_LineEndings(t *testing.T) {
	lines := []string{
		"BEGIN:VCALENDAR",
		"BEGIN:VEVENT",
		"SUMMARY:One",
		"DTSTART:20240101T100000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	}

	for name, sep := range map[string]string{"crlf": "\r\n", "lf": "\n", "cr": "\r"} {
		t.Run(name, func(t *testing.T) {
			events := newTestICalParser().Parse(strings.Join(lines, sep), "Cal")
			require.Len(t, events, 1)
			assert.Equal(t, "One", events[0].Summary)
		})
	}
}

func TestICalParser_DropsIncompleteEvents(t *testing.T) {
	raw := calendar(
		"BEGIN:VEVENT",
		"DTSTART:20240101T100000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:No start",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:Garbage start",
		"DTSTART:not-a-date",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:Kept",
		"DTSTART:20240102T100000Z",
		"END:VEVENT",
	)

	events := newTestICalParser().Parse(raw, "Cal")
	require.Len(t, events, 1)
	assert.Equal(t, "Kept", events[0].Summary)
	for _, ev := range events {
		assert.NotEmpty(t, ev.Summary)
		assert.False(t, ev.Start.IsZero())
	}
}

func TestICalParser_SourceOrderAndNoise(t *testing.T) {
	raw := calendar(
		"PRODID:-//Example//EN",
		"SUMMARY:outside any event",
		"BEGIN:VEVENT",
		"SUMMARY:Later",
		"DTSTART:20240310T100000Z",
		"this line has no colon",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:Earlier",
		"DTSTART:20240301T100000Z",
		"END:VEVENT",
		"END:VEVENT",
	)

	events := newTestICalParser().Parse(raw, "Cal")
	require.Len(t, events, 2)
	assert.Equal(t, "Later", events[0].Summary)
	assert.Equal(t, "Earlier", events[1].Summary)
}

// A flat line scanner would let the alarm's DESCRIPTION and SUMMARY
// overwrite the event's. Nested components are skipped on purpose so the
// event keeps its own fields.
func TestICalParser_NestedAlarmIgnored(t *testing.T) {
	raw := calendar(
		"BEGIN:VEVENT",
		"SUMMARY:Dentist",
		"DTSTART:20240301T080000Z",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"DESCRIPTION:Reminder",
		"SUMMARY:Alarm summary",
		"END:VALARM",
		"LOCATION:Main St",
		"END:VEVENT",
	)

	events := newTestICalParser().Parse(raw, "Cal")
	require.Len(t, events, 1)
	assert.Equal(t, "Dentist", events[0].Summary)
	assert.Empty(t, events[0].Description)
	assert.Equal(t, "Main St", events[0].Location)
}

func TestICalParser_EmptyAndGarbage(t *testing.T) {
	p := newTestICalParser()
	assert.Empty(t, p.Parse("", "Cal"))
	assert.Empty(t, p.Parse("<html><body>oops</body></html>", "Cal"))
	assert.Empty(t, p.Parse("BEGIN:VEVENT\nSUMMARY:unterminated\nDTSTART:20240101", "Cal"))
}

func TestUnescapeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `Line1\nLine2\, test`, want: "Line1\nLine2, test"},
		{in: `a\;b`, want: "a;b"},
		{in: `back\\slash`, want: `back\slash`},
		{in: `\\n`, want: "\\\n"},
		{in: "plain", want: "plain"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, UnescapeText(tt.in))
		})
	}
}

func TestSplitContentLine(t *testing.T) {
	name, params, value, ok := splitContentLine("dtstart;tzid=Europe/Berlin;VALUE=DATE-TIME:20240101T090000")
	require.True(t, ok)
	assert.Equal(t, "DTSTART", name)
	assert.Equal(t, map[string]string{"TZID": "Europe/Berlin", "VALUE": "DATE-TIME"}, params)
	assert.Equal(t, "20240101T090000", value)

	// A ';' after the first ':' belongs to the value.
	name, params, value, ok = splitContentLine("SUMMARY:a;b=c")
	require.True(t, ok)
	assert.Equal(t, "SUMMARY", name)
	assert.Empty(t, params)
	assert.Equal(t, "a;b=c", value)

	_, _, _, ok = splitContentLine("NOCOLON")
	assert.False(t, ok)
}
