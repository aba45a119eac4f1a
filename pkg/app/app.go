// Package app wires the quiz together from a Config.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/japaniel/lexiquiz/pkg/config"
	"github.com/japaniel/lexiquiz/pkg/db"
	"github.com/japaniel/lexiquiz/pkg/quiz"
	"github.com/japaniel/lexiquiz/pkg/reading"
	"github.com/japaniel/lexiquiz/pkg/store"
	"github.com/japaniel/lexiquiz/pkg/words"
)

// App holds the wired components of one quiz session.
type App struct {
	Config *config.Config
	Store  *store.Store
	Loader *words.Loader
	Game   *quiz.Game

	conn *sql.DB
}

// Open builds an App. Storage and reading failures never abort: the store
// degrades to memory and pronunciations are left as loaded.
func Open(cfg *config.Config, logger *slog.Logger, opts ...quiz.Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg}

	medium, err := a.openMedium(cfg.Store)
	if err != nil {
		logger.Warn("storage unavailable, progress will not be saved", "path", cfg.Store.Path, "error", err)
	}
	a.Store = store.New(medium, store.WithPrefix(cfg.Store.Prefix), store.WithLogger(logger))

	src, err := NewSource(cfg.Source)
	if err != nil {
		a.Close()
		return nil, err
	}

	loaderOpts := []words.LoaderOption{
		words.WithLogger(logger),
		words.WithPreloadWorkers(cfg.Quiz.PreloadWorkers),
	}
	if cfg.Source.Readings {
		ann, err := reading.NewAnnotator()
		if err != nil {
			logger.Warn("reading annotator unavailable", "error", err)
		} else {
			loaderOpts = append(loaderOpts, words.WithReadingFiller(ann.Reading))
		}
	}
	a.Loader = words.NewLoader(src, loaderOpts...)

	gameOpts := []quiz.Option{
		quiz.WithLogger(logger),
		quiz.WithDefaultSelection(cfg.Quiz.Difficulty, cfg.Quiz.Category),
	}
	a.Game = quiz.New(a.Store, a.Loader, append(gameOpts, opts...)...)

	logger.Info("quiz ready",
		slog.String("version", BuildVersion()),
		slog.String("source", cfg.Source.Kind),
		slog.Bool("persistent", a.Store.Available()),
	)
	return a, nil
}

// openMedium returns nil (and the reason) when nothing can be persisted.
func (a *App) openMedium(cfg config.StoreConfig) (store.Medium, error) {
	if cfg.Ephemeral {
		return store.NewMemoryMedium(), nil
	}
	conn, err := db.Open(cfg.Path)
	if err != nil {
		return nil, err
	}
	a.conn = conn
	return db.NewKV(conn), nil
}

// NewSource returns the word source for cfg. The builtin kind returns nil,
// which makes the Loader serve its built-in sample banks.
func NewSource(cfg config.SourceConfig) (words.Source, error) {
	switch cfg.Kind {
	case config.SourceHTTP:
		s := words.NewHTTPSource(cfg.URL, cfg.Timeout)
		if cfg.UserAgent != "" {
			s.UserAgent = cfg.UserAgent
		}
		return s, nil
	case config.SourceDir:
		if _, err := os.Stat(cfg.Dir); err != nil {
			return nil, fmt.Errorf("word directory: %w", err)
		}
		return words.FSSource{FS: os.DirFS(cfg.Dir)}, nil
	case config.SourceBuiltin, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// Close releases the database, if one was opened.
func (a *App) Close() error {
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	return err
}
