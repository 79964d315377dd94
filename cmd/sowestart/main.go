package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pders01/sowestart/internal/config"
	"github.com/pders01/sowestart/internal/debuglog"
	"github.com/pders01/sowestart/internal/feed"
	"github.com/pders01/sowestart/internal/plugins"
	"github.com/pders01/sowestart/internal/plugins/builtin"
	"github.com/pders01/sowestart/internal/present"
	"github.com/pders01/sowestart/internal/storage"
	"github.com/pders01/sowestart/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

// noConfigAnnotation marks commands that must work without a readable
// config file, e.g. the one that creates it.
const noConfigAnnotation = "sowestart/no-config"

// app carries what every subcommand shares. The store is opened lazily so
// commands that never touch subscriptions do not lock the database.
type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	dbPath     string
	logLevel   string

	cfg      *config.Config
	store    *storage.Store
	renderer *present.Renderer
	fetcher  *feed.Fetcher
	plugins  *plugins.Registry
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command line. Resources opened by the command are
// released even when it fails.
func run(ctx context.Context, args []string, out, errOut io.Writer) error {
	root, a := newRootCmd(out, errOut)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if closeErr := a.teardown(); err == nil {
		err = closeErr
	}
	return err
}

func newRootCmd(out, errOut io.Writer) (*cobra.Command, *app) {
	a := &app{out: out, errOut: errOut, plugins: builtin.NewRegistry()}

	root := &cobra.Command{
		Use:           present.AppName,
		Short:         "Calendar and news feeds for your terminal start page",
		Long:          "sowestart pulls iCalendar and RSS/Atom subscriptions through a CORS relay and shows today's agenda and the latest headlines.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsConfig(cmd) {
				a.cfg = config.Default()
				a.renderer = present.NewRenderer(a.out, a.errOut, a.cfg)
				return nil
			}
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "path to subscription database (overrides config)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn, error or off (overrides config)")

	root.AddCommand(
		a.calendarCmd(),
		a.newsCmd(),
		a.feedsCmd(),
		a.searchCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	return root, a
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.dbPath != "" {
		cfg.Database.Path = a.dbPath
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		return err
	}
	debuglog.Debugf("config loaded (db=%s relay=%q)", cfg.Database.Path, cfg.Relay.BaseURL)

	a.renderer = present.NewRenderer(a.out, a.errOut, cfg)
	a.fetcher = feed.NewFetcher(cfg)
	return nil
}

func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[noConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

func (a *app) teardown() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
		a.store = nil
	}
	if closeErr := debuglog.Close(); err == nil {
		err = closeErr
	}
	return err
}

// openStore opens the database on first use and seeds the default news
// feeds the first time a database is created.
func (a *app) openStore() (*storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	path, err := validation.PrepareFilePath(a.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	store, err := storage.NewStoreWithTimeout(path, a.cfg.Database.Timeout)
	if err != nil {
		return nil, err
	}

	seeded, err := store.SeedDefaultNews()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("seeding default feeds: %w", err)
	}
	if seeded {
		debuglog.Infof("seeded %d default news feeds", len(storage.DefaultNewsFeeds))
	}

	a.store = store
	return store, nil
}

// watch calls show(false) once and, when enabled, show(true) on every
// tick until ctx is cancelled.
func (a *app) watch(ctx context.Context, enabled bool, interval time.Duration, show func(tick bool)) error {
	if enabled && interval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}
	show(false)
	if !enabled {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fmt.Fprintln(a.out, strings.Repeat("─", 40))
			show(true)
		}
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{noConfigAnnotation: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "%s %s\n", present.AppName, Version)
			fmt.Fprintln(a.out, "calendar and news start page")
			fmt.Fprintln(a.out, "github.com/pders01/sowestart")
		},
	}
}
