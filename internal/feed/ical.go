package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/pders01/sowestart/internal/storage"
)

var tzidFragment = regexp.MustCompile(`;TZID=.*?:`)

// ICalParser turns iCalendar text into calendar events. It never fails:
// lines it cannot make sense of are skipped, and events without a summary
// or start are dropped.
type ICalParser struct {
	loc *time.Location
}

func NewICalParser() *ICalParser {
	return &ICalParser{loc: time.Local}
}

// SetLocation sets the zone used for floating (non-UTC) times and dates.
func (p *ICalParser) SetLocation(loc *time.Location) {
	if loc != nil {
		p.loc = loc
	}
}

// eventBuilder accumulates one VEVENT block.
type eventBuilder struct {
	event    storage.CalendarEvent
	hasStart bool
	// nested counts open sub-components such as VALARM, whose fields
	// belong to the sub-component and not to the event.
	nested int
}

func (p *ICalParser) Parse(raw, feedName string) []storage.CalendarEvent {
	var (
		events  []storage.CalendarEvent
		current *eventBuilder
	)

	for _, line := range unfoldLines(raw) {
		line = strings.TrimSpace(line)

		switch {
		case line == "BEGIN:VEVENT":
			current = &eventBuilder{event: storage.CalendarEvent{FeedName: feedName}}
			continue
		case line == "END:VEVENT":
			if current != nil && current.event.Summary != "" && current.hasStart {
				events = append(events, current.event)
			}
			current = nil
			continue
		case current == nil:
			continue
		case strings.HasPrefix(line, "BEGIN:"):
			current.nested++
			continue
		case strings.HasPrefix(line, "END:"):
			if current.nested > 0 {
				current.nested--
			}
			continue
		case current.nested > 0:
			continue
		}

		name, params, value, ok := splitContentLine(line)
		if !ok {
			continue
		}
		p.applyField(current, name, params, value)
	}

	return events
}

func (p *ICalParser) applyField(b *eventBuilder, name string, params map[string]string, value string) {
	switch name {
	case "SUMMARY":
		b.event.Summary = UnescapeText(value)
	case "DESCRIPTION":
		b.event.Description = UnescapeText(value)
	case "LOCATION":
		b.event.Location = UnescapeText(value)
	case "DTSTART":
		if start, ok := p.ParseDateTime(value, params); ok {
			b.event.Start = start
			b.hasStart = true
		}
		b.event.IsAllDay = params["VALUE"] == "DATE"
	case "DTEND":
		if end, ok := p.ParseDateTime(value, params); ok {
			b.event.End = &end
		}
	case "UID":
		b.event.UID = value
	case "URL":
		b.event.URL = value
	}
}

// unfoldLines splits on CRLF, LF or CR and joins continuation lines (those
// starting with a space or tab) onto the previous line, dropping the fold
// character.
func unfoldLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	physical := strings.Split(raw, "\n")
	lines := make([]string, 0, len(physical))
	for _, line := range physical {
		if len(lines) > 0 && line != "" && (line[0] == ' ' || line[0] == '\t') {
			lines[len(lines)-1] += line[1:]
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// splitContentLine splits NAME;K=V;K2=V2:value. Parameters are only
// recognised when the first ';' comes before the first ':'.
func splitContentLine(line string) (name string, params map[string]string, value string, ok bool) {
	colon := strings.IndexByte(line, ':')
	if colon == -1 {
		return "", nil, "", false
	}

	params = map[string]string{}
	semi := strings.IndexByte(line, ';')
	if semi != -1 && semi < colon {
		name = line[:semi]
		for _, param := range strings.Split(line[semi+1:colon], ";") {
			key, val, found := strings.Cut(param, "=")
			if found && key != "" && val != "" {
				params[strings.ToUpper(key)] = val
			}
		}
	} else {
		name = line[:colon]
	}

	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return "", nil, "", false
	}
	return name, params, line[colon+1:], true
}

// ParseDateTime decodes DATE (YYYYMMDD) and DATE-TIME (YYYYMMDDTHHMMSS[Z])
// values. Timezone identifiers are ignored and floating times are read in
// the parser's location. Component ranges are not checked, so month 13
// rolls over into the next year the same way time.Date does. Missing
// trailing components default to their zero value; ok is false only when
// not even a year can be read.
func (p *ICalParser) ParseDateTime(value string, params map[string]string) (time.Time, bool) {
	clean := tzidFragment.ReplaceAllString(strings.TrimSpace(value), "")

	year, ok := leadingInt(substr(clean, 0, 4))
	if !ok {
		return time.Time{}, false
	}
	month := intOr(substr(clean, 4, 6), 1)
	day := intOr(substr(clean, 6, 8), 1)

	if params["VALUE"] == "DATE" || len(clean) == 8 {
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, p.loc), true
	}

	hour := intOr(substr(clean, 9, 11), 0)
	minute := intOr(substr(clean, 11, 13), 0)
	second := intOr(substr(clean, 13, 15), 0)

	loc := p.loc
	if strings.HasSuffix(clean, "Z") {
		loc = time.UTC
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, loc), true
}

// UnescapeText reverses iCalendar TEXT escaping. The replacements run one
// after another in this order, so `\\n` becomes a backslash followed by a
// newline.
func UnescapeText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, `\n`, "\n")
	text = strings.ReplaceAll(text, `\,`, ",")
	text = strings.ReplaceAll(text, `\;`, ";")
	text = strings.ReplaceAll(text, `\\`, `\`)
	return text
}

func substr(s string, start, end int) string {
	if start >= len(s) {
		return ""
	}
	if end > len(s) {
		end = len(s)
	}
	return s[start:end]
}

// leadingInt reads the decimal digits at the start of s, ignoring a leading
// sign and whitespace, and stops at the first non-digit.
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		n = n*10 + int(s[digits]-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

func intOr(s string, fallback int) int {
	if n, ok := leadingInt(s); ok {
		return n
	}
	return fallback
}
