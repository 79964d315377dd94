package storage

import (
	"fmt"
	"strings"
	"time"
)

// Kind selects which widget a subscription belongs to.
type Kind string

const (
	KindCalendar Kind = "calendar"
	KindNews     Kind = "news"
)

// Kinds lists every subscription kind in display order.
var Kinds = []Kind{KindCalendar, KindNews}

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindCalendar, KindNews:
		return k, nil
	}
	return "", fmt.Errorf("unknown feed kind %q (want calendar or news)", s)
}

type Subscription struct {
	URL     string    `json:"url"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`
}

type CalendarEvent struct {
	FeedName    string     `json:"feed_name"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end,omitempty"`
	IsAllDay    bool       `json:"is_all_day"`
	UID         string     `json:"uid,omitempty"`
	URL         string     `json:"url,omitempty"`
}

type Article struct {
	FeedName    string    `json:"feed_name"`
	Title       string    `json:"title"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	PubDate     time.Time `json:"pub_date"`
}

// URLs returns the subscription URLs in input order.
func URLs(subs []Subscription) []string {
	urls := make([]string, len(subs))
	for i, s := range subs {
		urls[i] = s.URL
	}
	return urls
}
