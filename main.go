package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/P1n3appl3/rssfetch/aggregator"
	"github.com/P1n3appl3/rssfetch/config"
	"github.com/P1n3appl3/rssfetch/emitter"
	"github.com/P1n3appl3/rssfetch/fetcher"
	"github.com/P1n3appl3/rssfetch/filter"
	"github.com/P1n3appl3/rssfetch/store"
)

func main() {
	slog.SetDefault(newLogger())

	app := &cli.App{
		Name:      "rssfetch",
		Usage:     "fetch blog feeds and print recent posts as JSON lines",
		ArgsUsage: "<sources.jsonl>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a TOML config",
				Value: config.DefaultPath(),
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "path to a SQLite fetch log, overrides database_path",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("pass a single sources filename, got %d arguments", c.Args().Len())
	}

	conf, err := loadConfig(c.String("config"), c.IsSet("config"))
	if err != nil {
		return err
	}
	if path := c.String("db"); path != "" {
		conf.DatabasePath = path
	}

	sources, err := config.ReadSources(c.Args().First())
	if err != nil {
		return err
	}
	slog.Debug("sources loaded", "count", len(sources))

	clientCfg, err := fetcher.ClientConfigFrom(conf)
	if err != nil {
		return err
	}
	cutoff, err := conf.CutoffDate()
	if err != nil {
		return err
	}
	pipeline, err := filter.NewPipeline(conf.Filter, cutoff)
	if err != nil {
		return fmt.Errorf("failed to initialize filters: %w", err)
	}

	var recorder aggregator.Recorder
	if conf.DatabasePath != "" {
		db, err := store.Open(conf.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()
		recorder = db

		if stats, err := db.Stats(); err != nil {
			slog.Warn("failed to get fetch log stats", "error", err)
		} else {
			slog.Debug("fetch log opened",
				"runs", stats.Runs,
				"fetches", stats.Fetches,
				"failures", stats.Failures)
		}
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f := fetcher.New(fetcher.NewClient(clientCfg), slog.Default())
	outcomes := aggregator.New(f, recorder, slog.Default()).Collect(ctx, sources)

	posts := pipeline.Apply(aggregator.Posts(outcomes))
	written, err := emitter.New(os.Stdout).Emit(posts)
	if err != nil {
		return err
	}
	slog.Info("posts written", "amount", written)
	return nil
}

// loadConfig reads the config file, falling back to defaults when the
// default path does not exist
func loadConfig(path string, explicit bool) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	conf, err := config.Read(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return config.Default(), nil
	} else if err != nil {
		return conf, fmt.Errorf("failed to read config with %w", err)
	}
	if err := conf.Validate(); err != nil {
		return conf, fmt.Errorf("invalid config at '%s': %w", path, err)
	}
	return conf, nil
}

func newLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if os.Getenv("DEBUG") != "" {
		opts.Level = slog.LevelDebug
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
