package present

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pders01/sowestart/internal/config"
	"github.com/pders01/sowestart/internal/search"
	"github.com/pders01/sowestart/internal/storage"
)

const (
	urlWidth                 = 60
	defaultDescriptionLength = 120
)

// Renderer prints pipeline results for a terminal. Failures go to errOut
// so piping the normal output stays clean. NotifyFailures may be called
// from several pipelines refreshing at once.
type Renderer struct {
	mu sync.Mutex

	out     io.Writer
	errOut  io.Writer
	styles  Styles
	now     func() time.Time
	loc     *time.Location
	descLen int
}

func NewRenderer(out, errOut io.Writer, cfg *config.Config) *Renderer {
	descLen := cfg.News.DescriptionLength
	if descLen <= 0 {
		descLen = defaultDescriptionLength
	}
	return &Renderer{
		out:     out,
		errOut:  errOut,
		styles:  NewStyles(cfg.UI.Colors),
		now:     time.Now,
		loc:     time.Local,
		descLen: descLen,
	}
}

// SetClock fixes the reference time and display zone, mainly for tests.
func (r *Renderer) SetClock(now func() time.Time, loc *time.Location) {
	if now != nil {
		r.now = now
	}
	if loc != nil {
		r.loc = loc
	}
}

func (r *Renderer) Now() time.Time {
	return r.now().In(r.loc)
}

func (r *Renderer) Banner(version string) {
	fmt.Fprintln(r.out, r.styles.Banner(version))
}

// NotifyFailures reports feeds that could not be loaded.
func (r *Renderer) NotifyFailures(widget string, failed []string) {
	if len(failed) == 0 {
		return
	}
	noun := "feed"
	if len(failed) > 1 {
		noun = "feeds"
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.errOut, "%s %s: failed to load %d %s: %s\n",
		r.styles.Error.Render("!"), widget, len(failed), noun, strings.Join(failed, ", "))
}

func (r *Renderer) Agenda(a Agenda) {
	fmt.Fprintln(r.out, r.styles.Header.Render("Today"))
	if len(a.Today) == 0 {
		fmt.Fprintln(r.out, "  "+r.styles.Muted.Render("No events today"))
	}
	for _, ev := range a.Today {
		r.event(ev)
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.styles.Header.Render("Upcoming"))
	if len(a.Upcoming) == 0 {
		fmt.Fprintln(r.out, "  "+r.styles.Muted.Render("No upcoming events this week"))
	}
	for _, ev := range a.Upcoming {
		r.event(ev)
	}
}

func (r *Renderer) event(ev storage.CalendarEvent) {
	label := EventTime(ev, r.loc)
	if ev.IsAllDay {
		label += " " + r.styles.Badge.Render("All Day")
	}
	if !ev.IsAllDay && !sameDay(ev.Start.In(r.loc), r.Now()) {
		label = ev.Start.In(r.loc).Format("Mon, Jan 2") + " " + label
	}

	fmt.Fprintf(r.out, "  %s  %s %s\n",
		r.styles.Time.Render(label),
		r.styles.Title.Render(ev.Summary),
		r.styles.Feed.Render("["+ev.FeedName+"]"))
	if ev.Location != "" {
		fmt.Fprintf(r.out, "    @ %s\n", ev.Location)
	}
	if ev.Description != "" {
		fmt.Fprintf(r.out, "    %s\n", r.styles.Muted.Render(Truncate(oneLine(ev.Description), r.descLen)))
	}
	if ev.URL != "" {
		fmt.Fprintf(r.out, "    %s\n", TruncateMiddle(ev.URL, urlWidth))
	}
}

func (r *Renderer) Articles(articles []storage.Article) {
	if len(articles) == 0 {
		fmt.Fprintln(r.out, r.styles.Muted.Render("No articles"))
		return
	}

	now := r.Now()
	for _, a := range articles {
		fmt.Fprintln(r.out, r.styles.Title.Render(a.Title))
		fmt.Fprintf(r.out, "  %s %s %s\n",
			r.styles.Feed.Render(a.FeedName),
			r.styles.Time.Render("•"),
			r.styles.Time.Render(RelativeTime(a.PubDate, now)))
		if a.Description != "" {
			fmt.Fprintf(r.out, "  %s\n", Truncate(a.Description, r.descLen))
		}
		fmt.Fprintf(r.out, "  %s\n", r.styles.Muted.Render(a.Link))
	}
}

func (r *Renderer) Subscriptions(kind storage.Kind, subs []storage.Subscription) {
	fmt.Fprintln(r.out, r.styles.Header.Render(fmt.Sprintf("%s feeds (%d)", kind, len(subs))))
	if len(subs) == 0 {
		fmt.Fprintln(r.out, "  "+r.styles.Muted.Render("none"))
		return
	}
	for _, s := range subs {
		fmt.Fprintf(r.out, "  %s  %s\n", r.styles.Title.Render(s.Name), r.styles.Muted.Render(TruncateMiddle(s.URL, urlWidth)))
	}
}

// EmptyState explains how to add the first feed of a kind.
func (r *Renderer) EmptyState(kind storage.Kind) {
	fmt.Fprintf(r.out, "%s\n%s\n",
		r.styles.Muted.Render(fmt.Sprintf("No %s feeds yet.", kind)),
		r.styles.Muted.Render(fmt.Sprintf("Add one with: %s feeds add --kind %s <url>", AppName, kind)))
}

func (r *Renderer) SearchResults(query string, results []*search.Result) {
	if len(results) == 0 {
		fmt.Fprintln(r.out, r.styles.Muted.Render(fmt.Sprintf("No results for %q", query)))
		return
	}
	for _, res := range results {
		fmt.Fprintf(r.out, "%s %s %s\n",
			r.styles.Badge.Render("["+res.Kind+"]"),
			r.styles.Title.Render(res.Title),
			r.styles.Feed.Render(res.Feed))
		if res.URL != "" {
			fmt.Fprintf(r.out, "  %s\n", r.styles.Muted.Render(TruncateMiddle(res.URL, urlWidth)))
		}
	}
}

// Success prints a confirmation line.
func (r *Renderer) Success(format string, args ...any) {
	fmt.Fprintln(r.out, r.styles.Success.Render(fmt.Sprintf(format, args...)))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
