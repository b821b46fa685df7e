// Command fileindexer is a small demonstration CLI for the engine: scan a
// set of roots, optionally watch them for changes, and run one search.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	fileindexer "github.com/EdwardDiehl/file-indexer"
	"github.com/EdwardDiehl/file-indexer/internal/config"
	"github.com/EdwardDiehl/file-indexer/internal/logging"
)

func main() {
	app := &cli.App{
		Name:  "fileindexer",
		Usage: "scan, watch, and search a set of file roots",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "root path to index (repeatable)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "KDL config file path (overrides --root and --include when set)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "glob pattern of files to index (default: *.txt)",
			},
			&cli.StringFlag{
				Name:  "search",
				Usage: "term to search for once the scan completes",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "keep watching the roots after the initial scan and print live events",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable structured logging to stderr",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fileindexer: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		return config.LoadFile(path)
	}

	b := config.NewBuilder().WithRoots(c.StringSlice("root")...)
	if c.Bool("verbose") {
		b.WithLogger(logging.New(os.Stderr, "fileindexer"))
	}
	if patterns := c.StringSlice("include"); len(patterns) > 0 {
		b.WithFileFilter(config.GlobFileFilter(patterns))
	}
	return config.Build(b)
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if len(cfg.Roots()) == 0 {
		return errors.New("no roots configured: pass --root or --config")
	}

	engine, err := fileindexer.New(cfg, nil)
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	start := time.Now()
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("starting engine: %w", err)
	}
	fmt.Fprintf(os.Stderr, "scanned %d roots in %s\n", len(cfg.Roots()), time.Since(start))

	if term := c.String("search"); term != "" {
		for _, r := range engine.Search(term) {
			fmt.Printf("%s\t%v\n", r.File, r.Matches)
		}
	}

	if !c.Bool("watch") {
		engine.Close()
		return nil
	}

	sub := engine.WatchForChanges()
	defer sub.Cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	fmt.Fprintln(os.Stderr, "watching for changes, press ctrl-c to stop")
	for {
		select {
		case ev := <-sub.Events:
			fmt.Printf("%s %s\n", ev.Kind, ev.Path)
		case <-sig:
			engine.Close()
			return nil
		}
	}
}
