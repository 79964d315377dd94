package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pders01/sowestart/internal/feed"
	"github.com/pders01/sowestart/internal/search"
	"github.com/pders01/sowestart/internal/storage"
)

func (a *app) searchCmd() *cobra.Command {
	var (
		limit   int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search current events and articles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")

			idx, err := search.NewIndex()
			if err != nil {
				return err
			}
			defer idx.Close()

			if err := a.indexAll(cmd.Context(), idx, !noCache); err != nil {
				return err
			}

			results, err := idx.Search(query, limit)
			if err != nil {
				return err
			}
			a.renderer.SearchResults(query, results)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", search.DefaultLimit, "maximum number of results")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "ignore cached results and fetch every feed")
	return cmd
}

// indexAll refreshes both widgets side by side and indexes what came back.
func (a *app) indexAll(ctx context.Context, idx *search.Index, useCache bool) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	calSubs, err := store.Subscriptions(storage.KindCalendar)
	if err != nil {
		return err
	}
	newsSubs, err := store.Subscriptions(storage.KindNews)
	if err != nil {
		return err
	}

	calendar := feed.NewCalendarPipeline(a.fetcher, a.cfg)
	calendar.SetNotifier(a.renderer)
	news := feed.NewNewsPipeline(a.fetcher, a.cfg)
	news.SetNotifier(a.renderer)

	var (
		events   []storage.CalendarEvent
		articles []storage.Article
		g        errgroup.Group
	)
	g.Go(func() error {
		events = calendar.Refresh(ctx, calSubs, useCache).Items
		return nil
	})
	g.Go(func() error {
		articles = news.Refresh(ctx, newsSubs, useCache).Items
		return nil
	})
	_ = g.Wait()

	if err := idx.IndexEvents(events); err != nil {
		return fmt.Errorf("indexing events: %w", err)
	}
	if err := idx.IndexArticles(articles); err != nil {
		return fmt.Errorf("indexing articles: %w", err)
	}
	return nil
}
