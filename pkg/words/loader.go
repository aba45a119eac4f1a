package words

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Result is the outcome of loading one pair.
type Result struct {
	Bank Bank
	// FromSource is false when the built-in sample bank was substituted.
	FromSource bool
	// Cause is the fetch or validation error that triggered the fallback.
	Cause error
}

// Loader loads and memoizes word banks. Each pair is fetched at most once per
// Loader; concurrent requests for the same pair share one fetch.
type Loader struct {
	source         Source
	logger         *slog.Logger
	fill           ReadingFiller
	preloadWorkers int

	mu    sync.Mutex
	cache map[string]Result
	group singleflight.Group
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

func WithLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithReadingFiller sets the hook used for entries without a pronunciation.
func WithReadingFiller(f ReadingFiller) LoaderOption {
	return func(ld *Loader) { ld.fill = f }
}

// WithPreloadWorkers sets the PreloadAll concurrency, capped at MaxPreloadWorkers.
func WithPreloadWorkers(n int) LoaderOption {
	return func(ld *Loader) { ld.preloadWorkers = n }
}

// NewLoader creates a Loader reading from src. A nil src serves the built-in
// sample banks only.
func NewLoader(src Source, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:         src,
		logger:         slog.Default(),
		preloadWorkers: MaxPreloadWorkers,
		cache:          make(map[string]Result),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load returns the bank for a pair. Fetch and validation failures are not
// returned as errors: the built-in bank is substituted and Result.FromSource
// is false. Errors are reserved for unknown pairs and the caller's own ctx
// being done; a fetch already in flight keeps running for other callers.
func (l *Loader) Load(ctx context.Context, difficulty, category string) (Result, error) {
	if err := CheckPair(difficulty, category); err != nil {
		return Result{}, err
	}
	key := Key(difficulty, category)

	l.mu.Lock()
	res, ok := l.cache[key]
	l.mu.Unlock()
	if ok {
		return res, nil
	}

	// The flight is shared, so it must not die with the caller that started it.
	// Each caller still stops waiting when its own ctx is done.
	flightCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(key, func() (interface{}, error) {
		// A flight that finished between the cache check and DoChan already stored it.
		l.mu.Lock()
		res, ok := l.cache[key]
		l.mu.Unlock()
		if ok {
			return res, nil
		}
		res = l.fetch(flightCtx, difficulty, category)
		l.mu.Lock()
		l.cache[key] = res
		l.mu.Unlock()
		return res, nil
	})

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case r := <-ch:
		return r.Val.(Result), nil
	}
}

// fetch loads a pair from the source, substituting the built-in bank on failure.
func (l *Loader) fetch(ctx context.Context, difficulty, category string) Result {
	bank, err := l.fromSource(ctx, difficulty, category)
	if err == nil {
		l.logger.Debug("word bank loaded", "difficulty", difficulty, "category", category, "words", bank.Len())
		return Result{Bank: bank, FromSource: true}
	}

	fb, ok := Builtin(difficulty, category)
	if !ok {
		fb = Bank{Difficulty: difficulty, Category: category}
	}
	l.logger.Warn("word bank unavailable, using built-in sample",
		"difficulty", difficulty,
		"category", category,
		"words", fb.Len(),
		"error", err,
	)
	return Result{Bank: fb, FromSource: false, Cause: err}
}

func (l *Loader) fromSource(ctx context.Context, difficulty, category string) (Bank, error) {
	if l.source == nil {
		return Bank{}, fmt.Errorf("no word source configured")
	}
	data, err := l.source.Fetch(ctx, difficulty, category)
	if err != nil {
		return Bank{}, err
	}
	doc, err := Parse(data)
	if err != nil {
		return Bank{}, err
	}
	fillReadings(&doc, l.fill)
	return toBank(doc, difficulty, category)
}

// WordCount returns the number of words available for a pair.
func (l *Loader) WordCount(ctx context.Context, difficulty, category string) (int, error) {
	res, err := l.Load(ctx, difficulty, category)
	if err != nil {
		return 0, err
	}
	return res.Bank.Len(), nil
}

// Cached reports whether a pair has already been loaded.
func (l *Loader) Cached(difficulty, category string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.cache[Key(difficulty, category)]
	return ok
}
