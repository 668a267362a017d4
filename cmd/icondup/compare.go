package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benoitkugler/icondup/batch"
	"github.com/benoitkugler/icondup/config"
	"github.com/benoitkugler/icondup/report"
	"github.com/schollz/progressbar/v2"
	"go.uber.org/zap"
	"golang.org/x/term"
)

func runCompare() {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath(), "config file path")
	var dirs stringList
	fs.Var(&dirs, "dir", "icon directory (repeatable), added to the configured ones")
	themeIcons := fs.Bool("theme", false, "also compare against the fyne theme icons")
	limit := fs.Int("limit", 0, "maximum number of results (0 uses the configured limit)")
	format := fs.String("format", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: icondup compare [flags] <reference.svg | ->\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	if *format != "text" && *format != "json" {
		fatalf("Invalid format %q", *format)
	}

	cfg := loadConfig(*configPath)
	cfg.Library.Directories = append(cfg.Library.Directories, dirs...)
	if *limit > 0 {
		cfg.Report.Limit = *limit
	}
	logger := newLogger(cfg.Debug || *debug)
	defer logger.Sync()

	reference, err := readReference(fs.Arg(0), os.Stdin)
	if err != nil {
		fatalf("Failed to read reference: %v", err)
	}

	cat, err := newCatalog(cfg, *themeIcons || cfg.Library.ThemeIcons, logger)
	if err != nil {
		fatalf("Failed to load icons: %v", err)
	}
	candidates := cat.Candidates()
	if len(candidates) == 0 {
		fatalf("No icon to compare: use -dir, -theme or the library section of the config")
	}

	opts := []batch.Option{batch.WithLogger(logger)}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		bar := progressbar.NewOptions(len(candidates),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("comparing"),
			progressbar.OptionSetWidth(40),
		)
		opts = append(opts, batch.WithProgress(func(p batch.Progress) {
			if p.Current > 0 {
				_ = bar.Add(1)
			} else if p.Total == 0 {
				_ = bar.Finish()
				fmt.Fprintln(os.Stderr)
			}
		}))
	}
	orchestrator := batch.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	start := time.Now()
	scores, err := orchestrator.Run(ctx, reference, candidates)
	if err != nil {
		fatalf("Comparison failed: %v", err)
	}
	logger.Debug("comparison finished", zap.Int("scores", len(scores)))

	entries := report.Rank(scores, cfg.Report.Thresholds, cfg.Report.Limit)
	if *format == "json" {
		err = report.WriteJSON(os.Stdout, entries)
	} else {
		err = report.WriteText(os.Stdout, entries, term.IsTerminal(int(os.Stdout.Fd())))
	}
	if err != nil {
		fatalf("Failed to write report: %v", err)
	}

	counts := report.Count(report.Rank(scores, cfg.Report.Thresholds, 0))
	fmt.Fprintf(os.Stderr, "%d/%d icons compared in %s: %d duplicate(s), %d similar, %d related\n",
		len(scores), len(candidates), report.FormatTime(time.Since(start)),
		counts[report.Duplicate], counts[report.Similar], counts[report.Related])
}

// readReference reads the reference markup from a file, or from stdin for "-".
func readReference(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
