package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pders01/sowestart/internal/plugins"
	"github.com/pders01/sowestart/internal/storage"
	"github.com/pders01/sowestart/internal/validation"
)

func (a *app) feedsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Manage calendar and news subscriptions",
	}
	cmd.AddCommand(a.feedsListCmd(), a.feedsAddCmd(), a.feedsRemoveCmd())
	return cmd
}

func (a *app) feedsListCmd() *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List subscriptions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := storage.Kinds
			if kindFlag != "" {
				kind, err := storage.ParseKind(kindFlag)
				if err != nil {
					return err
				}
				kinds = []storage.Kind{kind}
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			for i, kind := range kinds {
				subs, err := store.Subscriptions(kind)
				if err != nil {
					return err
				}
				if i > 0 {
					fmt.Fprintln(a.out)
				}
				a.renderer.Subscriptions(kind, subs)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "calendar or news (default both)")
	return cmd
}

func (a *app) feedsAddCmd() *cobra.Command {
	var (
		kindFlag   string
		name       string
		allowLocal bool
	)

	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Subscribe to a calendar (iCalendar/webcal) or news (RSS/Atom) feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := a.resolveURL(args[0], allowLocal)
			if err != nil {
				return err
			}

			kind := info.Kind
			if kindFlag != "" {
				if kind, err = storage.ParseKind(kindFlag); err != nil {
					return err
				}
			}
			if kind == "" {
				return fmt.Errorf("cannot tell the feed kind of %s: pass --kind calendar or --kind news", info.FeedURL)
			}
			if name == "" {
				name = info.Title
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.AddSubscription(kind, storage.Subscription{URL: info.FeedURL, Name: name}); err != nil {
				return err
			}

			label := name
			if label == "" {
				label = info.FeedURL
			}
			a.renderer.Success("Added %s feed: %s", kind, label)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "calendar or news (optional for recognised sites)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name (defaults to the site title or URL)")
	cmd.Flags().BoolVar(&allowLocal, "allow-local", false, "allow localhost and private network addresses")
	return cmd
}

func (a *app) feedsRemoveCmd() *cobra.Command {
	var (
		kindFlag   string
		allowLocal bool
	)

	cmd := &cobra.Command{
		Use:     "remove <url>",
		Aliases: []string{"rm"},
		Short:   "Unsubscribe from a feed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := storage.ParseKind(kindFlag)
			if err != nil {
				return err
			}
			info, err := a.resolveURL(args[0], allowLocal)
			if err != nil {
				return err
			}
			url := info.FeedURL

			store, err := a.openStore()
			if err != nil {
				return err
			}
			if err := store.RemoveSubscription(kind, url); err != nil {
				return fmt.Errorf("removing %s: %w", url, err)
			}
			a.renderer.Success("Removed %s feed: %s", kind, url)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "calendar or news")
	cmd.Flags().BoolVar(&allowLocal, "allow-local", false, "allow localhost and private network addresses")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

// resolveURL validates raw and maps site links (a subreddit, a GitHub
// repository, a Google Calendar embed) to the feed behind them.
func (a *app) resolveURL(raw string, allowLocal bool) (*plugins.FeedInfo, error) {
	v := validation.NewFeedURLValidator()
	if allowLocal {
		v = validation.NewPermissiveFeedURLValidator()
	}
	normalized, err := v.ValidateAndNormalize(raw)
	if err != nil {
		return nil, err
	}
	return a.plugins.Resolve(normalized)
}
