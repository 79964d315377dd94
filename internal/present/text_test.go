package present

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 7, "this is..."},
		{"héllo wörld", 5, "héllo..."},
		{"anything", 0, ""},
		{"", 5, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Truncate(tt.in, tt.n), "Truncate(%q, %d)", tt.in, tt.n)
	}
}

func TestTruncateMiddle(t *testing.T) {
	assert.Equal(t, "abc", TruncateMiddle("abc", 5))
	assert.Equal(t, "ab…ef", TruncateMiddle("abcdef", 5))
	assert.Equal(t, "…", TruncateMiddle("abcdef", 1))
	assert.Equal(t, "", TruncateMiddle("abcdef", 0))
	assert.Len(t, []rune(TruncateMiddle("https://calendar.example.org/ical/very/long/path/basic.ics", 20)), 20)
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{name: "seconds", ago: 30 * time.Second, want: "Just now"},
		{name: "future", ago: -5 * time.Minute, want: "Just now"},
		{name: "one minute", ago: time.Minute, want: "1m ago"},
		{name: "minutes", ago: 59*time.Minute + 59*time.Second, want: "59m ago"},
		{name: "hour", ago: time.Hour, want: "1h ago"},
		{name: "hours", ago: 23 * time.Hour, want: "23h ago"},
		{name: "day", ago: 24 * time.Hour, want: "1d ago"},
		{name: "six days", ago: 6*24*time.Hour + 23*time.Hour, want: "6d ago"},
		{name: "week", ago: 7 * 24 * time.Hour, want: "Jun 8, 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeTime(now.Add(-tt.ago), now))
		})
	}
}
