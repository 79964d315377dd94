package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/sowestart/internal/config"
	"github.com/pders01/sowestart/internal/feed"
	"github.com/pders01/sowestart/internal/present"
	"github.com/pders01/sowestart/internal/storage"
)

type refreshFlags struct {
	noCache  bool
	watch    bool
	interval time.Duration
}

// useCache reports whether a refresh may be served from cache. Watch
// ticks always fetch: the cache entry is stamped when the previous fetch
// finished, so a tick one TTL later can still find it valid.
func (f *refreshFlags) useCache(tick bool) bool {
	return !f.noCache && !tick
}

func (f *refreshFlags) register(cmd *cobra.Command, defaultInterval time.Duration) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "ignore cached results and fetch every feed")
	cmd.Flags().BoolVarP(&f.watch, "watch", "w", false, "keep running and refresh periodically")
	cmd.Flags().DurationVar(&f.interval, "interval", defaultInterval, "refresh interval in watch mode")
}

func (a *app) calendarCmd() *cobra.Command {
	var flags refreshFlags

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show today's and upcoming events",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			subs, err := store.Subscriptions(storage.KindCalendar)
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				a.renderer.EmptyState(storage.KindCalendar)
				return nil
			}

			pipeline := feed.NewCalendarPipeline(a.fetcher, a.cfg)
			pipeline.SetNotifier(a.renderer)

			return a.watch(cmd.Context(), flags.watch, flags.interval, func(tick bool) {
				result := pipeline.Refresh(cmd.Context(), subs, flags.useCache(tick))
				agenda := present.BuildAgenda(result.Items, a.renderer.Now(),
					a.cfg.Calendar.UpcomingDays, a.cfg.Calendar.UpcomingLimit)
				a.renderer.Agenda(agenda)
			})
		},
	}
	flags.register(cmd, a.defaultInterval(storage.KindCalendar))
	return cmd
}

func (a *app) newsCmd() *cobra.Command {
	var flags refreshFlags

	cmd := &cobra.Command{
		Use:     "news",
		Aliases: []string{"rss"},
		Short:   "Show the latest articles from your news feeds",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			subs, err := store.Subscriptions(storage.KindNews)
			if err != nil {
				return err
			}
			if len(subs) == 0 {
				a.renderer.EmptyState(storage.KindNews)
				return nil
			}

			pipeline := feed.NewNewsPipeline(a.fetcher, a.cfg)
			pipeline.SetNotifier(a.renderer)

			return a.watch(cmd.Context(), flags.watch, flags.interval, func(tick bool) {
				result := pipeline.Refresh(cmd.Context(), subs, flags.useCache(tick))
				a.renderer.Articles(result.Items)
			})
		},
	}
	flags.register(cmd, a.defaultInterval(storage.KindNews))
	return cmd
}

// defaultInterval matches the widget's cache TTL. Flags are registered
// before config is loaded, so the built-in TTLs are used here.
func (a *app) defaultInterval(kind storage.Kind) time.Duration {
	defaults := config.Default()
	if kind == storage.KindCalendar {
		return defaults.Calendar.CacheTTL
	}
	return defaults.News.CacheTTL
}
