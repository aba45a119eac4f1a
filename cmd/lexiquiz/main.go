package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/japaniel/lexiquiz/pkg/app"
	"github.com/japaniel/lexiquiz/pkg/config"
	"github.com/japaniel/lexiquiz/pkg/quiz"
)

type options struct {
	export    string
	importing string
	reset     bool
	preload   bool
	stats     bool
	version   bool
}

func (o options) maintenance() bool {
	return o.export != "" || o.importing != "" || o.reset || o.preload || o.stats
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "lexiquiz:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("lexiquiz", flag.ContinueOnError)
	fs.StringVar(&cfg.Store.Path, "db", cfg.Store.Path, "Path to SQLite database")
	fs.BoolVar(&cfg.Store.Ephemeral, "ephemeral", cfg.Store.Ephemeral, "Keep progress in memory only")
	fs.StringVar(&cfg.Source.Kind, "source", cfg.Source.Kind, "Word source: http, dir or builtin")
	fs.StringVar(&cfg.Source.URL, "source-url", cfg.Source.URL, "Base URL of the word server")
	fs.StringVar(&cfg.Source.Dir, "source-dir", cfg.Source.Dir, "Directory of {difficulty}/{category}.json files")
	fs.BoolVar(&cfg.Source.Readings, "readings", cfg.Source.Readings, "Fill missing pronunciations of Japanese words")
	fs.StringVar(&cfg.Quiz.Difficulty, "difficulty", cfg.Quiz.Difficulty, "Difficulty: easy, medium or hard")
	fs.StringVar(&cfg.Quiz.Category, "category", cfg.Quiz.Category, "Category: general, academic or business")
	fs.DurationVar(&cfg.Quiz.TimeLimit, "time-limit", cfg.Quiz.TimeLimit, "Time per question (0 disables)")

	var opts options
	fs.StringVar(&opts.export, "export", "", "Write all saved progress to `FILE` as JSON")
	fs.StringVar(&opts.importing, "import", "", "Load saved progress from `FILE`")
	fs.BoolVar(&opts.reset, "reset", false, "Reset all progress")
	fs.BoolVar(&opts.preload, "preload", false, "Load every word bank and report the result")
	fs.BoolVar(&opts.stats, "stats", false, "Print statistics")
	fs.BoolVar(&opts.version, "version", false, "Print version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.version {
		fmt.Fprintln(stdout, "lexiquiz", app.BuildVersion())
		return nil
	}

	// Only an explicit flag overrides a saved selection.
	explicitSelection := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "difficulty" || f.Name == "category" {
			explicitSelection = true
		}
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}
	logger := app.NewLogger(cfg.Log)

	timeouts := make(chan quiz.Outcome, 1)
	a, err := app.Open(cfg, logger, quiz.WithTimeLimit(cfg.Quiz.TimeLimit, func(o quiz.Outcome) {
		select {
		case timeouts <- o:
		default:
		}
	}))
	if err != nil {
		return err
	}
	defer a.Close()

	if explicitSelection {
		if err := a.Game.Select(cfg.Quiz.Difficulty, cfg.Quiz.Category); err != nil {
			return err
		}
	}

	if opts.maintenance() {
		return maintain(ctx, a.Game, opts, stdout)
	}

	p := tea.NewProgram(newModel(ctx, a.Game, timeouts, cfg.Quiz.TimeLimit), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// maintain runs the non-interactive commands in a fixed order: import,
// reset, preload, export, stats.
func maintain(ctx context.Context, g *quiz.Game, opts options, stdout io.Writer) error {
	if opts.importing != "" {
		n, err := importFrom(g, opts.importing)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Imported %d values from %s\n", n, opts.importing)
	}
	if opts.reset {
		g.ResetProgress()
		fmt.Fprintln(stdout, "Progress reset.")
	}
	if opts.preload {
		start := time.Now()
		rep := g.PreloadAll(ctx, func(done, total int) {
			fmt.Fprintf(stdout, "\rLoading word banks %d/%d", done, total)
		})
		fmt.Fprintf(stdout, "\n%s", renderPreload(rep))
		fmt.Fprintf(stdout, "Preload finished in %v\n", time.Since(start).Round(time.Millisecond))
	}
	if opts.export != "" {
		n, err := exportTo(g, opts.export)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Exported %d values to %s\n", n, opts.export)
	}
	if opts.stats {
		fmt.Fprint(stdout, renderStats(g.Stats()))
	}
	return nil
}

func exportTo(g *quiz.Game, path string) (int, error) {
	data := g.Export()
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("encode export: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}
	return len(data), nil
}

func importFrom(g *quiz.Game, path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read import: %w", err)
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(b, &data); err != nil {
		return 0, fmt.Errorf("decode import %s: %w", path, err)
	}
	if err := g.Import(data); err != nil {
		return 0, err
	}
	return len(data), nil
}
