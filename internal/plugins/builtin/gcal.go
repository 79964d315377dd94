package builtin

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pders01/sowestart/internal/plugins"
	"github.com/pders01/sowestart/internal/storage"
)

// GoogleCalendarPlugin converts a public calendar's embed link into its
// iCalendar export.
type GoogleCalendarPlugin struct{}

func NewGoogleCalendarPlugin() *GoogleCalendarPlugin {
	return &GoogleCalendarPlugin{}
}

func (p *GoogleCalendarPlugin) Name() string {
	return "google-calendar"
}

func (p *GoogleCalendarPlugin) Priority() int {
	return 60
}

func (p *GoogleCalendarPlugin) CanHandle(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || strings.ToLower(u.Hostname()) != "calendar.google.com" {
		return false
	}
	return strings.HasPrefix(u.Path, "/calendar/embed") && u.Query().Get("src") != ""
}

func (p *GoogleCalendarPlugin) Resolve(rawURL string) (*plugins.FeedInfo, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	id := u.Query().Get("src")
	if id == "" {
		return nil, fmt.Errorf("no calendar id in %q", rawURL)
	}

	escaped := strings.ReplaceAll(url.PathEscape(id), "@", "%40")
	return &plugins.FeedInfo{
		OriginalURL: rawURL,
		FeedURL:     "https://calendar.google.com/calendar/ical/" + escaped + "/public/basic.ics",
		Title:       "Google Calendar",
		Kind:        storage.KindCalendar,
		Metadata:    map[string]string{"calendar_id": id},
	}, nil
}
