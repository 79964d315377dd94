package feed

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pders01/sowestart/internal/cache"
	"github.com/pders01/sowestart/internal/config"
	"github.com/pders01/sowestart/internal/debuglog"
	"github.com/pders01/sowestart/internal/storage"
)

const (
	WidgetCalendar = "calendar"
	WidgetNews     = "news"
)

// Notifier is told which feeds failed after a refresh that had failures.
type Notifier interface {
	NotifyFailures(widget string, failed []string)
}

// FetchFunc fetches and parses one subscription. Returned items must
// already carry the subscription's display name.
type FetchFunc[T any] func(ctx context.Context, sub storage.Subscription) ([]T, error)

// Result is what a refresh hands to the presentation layer. Failed holds
// display names in subscription order.
type Result[T any] struct {
	Items     []T
	Failed    []string
	FromCache bool
}

type outcome[T any] struct {
	items []T
	err   error
}

// Pipeline fetches every subscription concurrently, merges what succeeded,
// sorts it and caches the merged result. A pipeline is not re-entrant:
// callers must not run two Refresh calls on the same pipeline at once.
type Pipeline[T any] struct {
	name          string
	fetch         FetchFunc[T]
	compare       func(a, b T) int
	limit         int
	maxConcurrent int
	cache         *cache.Cache[T]
	notifier      Notifier
	log           *debuglog.FieldLogger
}

// NewPipeline builds a pipeline around fetch. A nil cache gets a
// zero-TTL cache that never serves a hit.
func NewPipeline[T any](name string, fetch FetchFunc[T], compare func(a, b T) int, c *cache.Cache[T]) *Pipeline[T] {
	if c == nil {
		c = cache.New[T](0)
	}
	return &Pipeline[T]{
		name:    name,
		fetch:   fetch,
		compare: compare,
		cache:   c,
		log:     debuglog.WithFields(map[string]any{"widget": name}),
	}
}

func (p *Pipeline[T]) Name() string { return p.name }

func (p *Pipeline[T]) Cache() *cache.Cache[T] { return p.cache }

func (p *Pipeline[T]) SetCache(c *cache.Cache[T]) {
	if c != nil {
		p.cache = c
	}
}

// SetLimit caps the merged result after sorting. Zero means no cap.
func (p *Pipeline[T]) SetLimit(n int) { p.limit = n }

// SetMaxConcurrent bounds in-flight fetches. Zero means all at once.
func (p *Pipeline[T]) SetMaxConcurrent(n int) { p.maxConcurrent = n }

func (p *Pipeline[T]) SetNotifier(n Notifier) { p.notifier = n }

// Refresh returns the merged items for subs. With useCache set, a fresh
// cache entry is returned without touching the network. Failed feeds never
// abort the batch; they are listed in Result.Failed instead.
func (p *Pipeline[T]) Refresh(ctx context.Context, subs []storage.Subscription, useCache bool) Result[T] {
	if len(subs) == 0 {
		return Result[T]{Items: []T{}, Failed: []string{}}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	urls := storage.URLs(subs)
	if useCache {
		if items, ok := p.cache.Get(urls); ok {
			p.log.Debugf("cache hit for %d feeds (%d items)", len(subs), len(items))
			return Result[T]{Items: items, Failed: []string{}, FromCache: true}
		}
	}

	p.log.Debugf("refreshing %d feeds", len(subs))
	started := time.Now()

	outcomes := make([]outcome[T], len(subs))
	var g errgroup.Group
	if p.maxConcurrent > 0 {
		g.SetLimit(p.maxConcurrent)
	}
	for i, sub := range subs {
		g.Go(func() error {
			items, err := p.fetchOne(ctx, sub)
			outcomes[i] = outcome[T]{items: items, err: err}
			return nil
		})
	}
	_ = g.Wait()

	items := []T{}
	failed := []string{}
	for i, out := range outcomes {
		if out.err != nil {
			failed = append(failed, subs[i].Name)
			p.log.With("feed", subs[i].Name).With("url", subs[i].URL).Warnf("feed failed: %v", out.err)
			continue
		}
		items = append(items, out.items...)
	}

	slices.SortStableFunc(items, p.compare)
	if p.limit > 0 && len(items) > p.limit {
		items = items[:p.limit]
	}

	if len(items) > 0 {
		p.cache.Put(urls, items)
	}

	p.log.Infof("refreshed %d feeds in %s: %d items, %d failed",
		len(subs), time.Since(started).Round(time.Millisecond), len(items), len(failed))

	if len(failed) > 0 && p.notifier != nil {
		p.notifier.NotifyFailures(p.name, slices.Clone(failed))
	}

	return Result[T]{Items: items, Failed: failed}
}

func (p *Pipeline[T]) fetchOne(ctx context.Context, sub storage.Subscription) (items []T, err error) {
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("feed %s: %v", sub.Name, r)
		}
	}()
	return p.fetch(ctx, sub)
}

// NewCalendarPipeline builds the calendar pipeline: iCalendar feeds,
// soonest event first, no cap.
func NewCalendarPipeline(f *Fetcher, cfg *config.Config) *Pipeline[storage.CalendarEvent] {
	parser := NewICalParser()
	timeout := cfg.Calendar.Timeout

	fetch := func(ctx context.Context, sub storage.Subscription) ([]storage.CalendarEvent, error) {
		body, err := f.FetchCalendar(ctx, sub.URL, timeout)
		if err != nil {
			return nil, err
		}
		return parser.Parse(body, sub.Name), nil
	}

	p := NewPipeline(WidgetCalendar, fetch, CompareEventStart, cache.New[storage.CalendarEvent](cfg.Calendar.CacheTTL))
	p.SetMaxConcurrent(cfg.Calendar.MaxConcurrent)
	return p
}

// NewNewsPipeline builds the news pipeline: RSS/Atom feeds, newest
// article first, capped at the configured display limit.
func NewNewsPipeline(f *Fetcher, cfg *config.Config) *Pipeline[storage.Article] {
	parser := NewParser(cfg.News.MaxArticles)
	timeout := cfg.News.Timeout

	fetch := func(ctx context.Context, sub storage.Subscription) ([]storage.Article, error) {
		body, err := f.Fetch(ctx, sub.URL, timeout)
		if err != nil {
			return nil, err
		}
		articles, err := parser.Parse(body)
		if err != nil {
			return nil, err
		}
		for i := range articles {
			articles[i].FeedName = sub.Name
		}
		return articles, nil
	}

	p := NewPipeline(WidgetNews, fetch, CompareArticleNewest, cache.New[storage.Article](cfg.News.CacheTTL))
	p.SetLimit(cfg.News.DisplayLimit)
	p.SetMaxConcurrent(cfg.News.MaxConcurrent)
	return p
}

func CompareEventStart(a, b storage.CalendarEvent) int {
	return a.Start.Compare(b.Start)
}

func CompareArticleNewest(a, b storage.Article) int {
	return b.PubDate.Compare(a.PubDate)
}
