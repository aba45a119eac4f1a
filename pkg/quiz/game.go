// Package quiz is the caller-facing game: it draws words from the cycling
// selector, scores answers and writes the results through the progress ledger.
package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/japaniel/lexiquiz/pkg/cycle"
	"github.com/japaniel/lexiquiz/pkg/progress"
	"github.com/japaniel/lexiquiz/pkg/store"
	"github.com/japaniel/lexiquiz/pkg/words"
)

var (
	// ErrStaleSelection is returned by NextWord when the selection changed
	// while its bank was loading. The drawn word is discarded.
	ErrStaleSelection = errors.New("selection changed during load")
	// ErrNoActiveWord is returned when answering without a word in play.
	ErrNoActiveWord = errors.New("no word in play")
	// ErrImportFailed means at least one imported value could not be stored.
	ErrImportFailed = errors.New("import failed")
)

// Outcome is the result of one answered or timed-out word.
type Outcome struct {
	Term              string `json:"term"`
	Correct           bool   `json:"correct"`
	TimedOut          bool   `json:"timedOut"`
	CorrectAnswer     string `json:"correctAnswer"`
	Points            int    `json:"points"`
	Streak            int    `json:"streak"`
	TotalScore        int    `json:"totalScore"`
	Level             int    `json:"level"`
	LeveledUp         bool   `json:"leveledUp"`
	CategoryCompleted bool   `json:"categoryCompleted"`
}

// Progress describes how far the player is through one pair.
type Progress struct {
	TotalWords         int `json:"totalWords"`
	CompletedWords     int `json:"completedWords"`
	RemainingWords     int `json:"remainingWords"`
	Accuracy           int `json:"accuracy"`
	ProgressPercentage int `json:"progressPercentage"`
}

// Stats is the full statistics view.
type Stats struct {
	progress.Snapshot
	Completion     progress.CompletionStats `json:"completion"`
	StoreAvailable bool                     `json:"storeAvailable"`
	Storage        store.SizeInfo           `json:"storage"`
}

// Game serializes every operation behind a mutex. Only bank loading runs
// outside it.
type Game struct {
	mu     sync.Mutex
	st     *store.Store
	loader *words.Loader
	sel    *cycle.Selector
	ledger *progress.Ledger
	logger *slog.Logger

	timer     QuestionTimer
	timeLimit time.Duration
	onTimeout func(Outcome)

	difficulty string
	category   string
	gen        uint64
	current    *cycle.PreparedWord
	paused     bool
}

// Option configures a Game.
type Option func(*gameOptions)

type gameOptions struct {
	logger    *slog.Logger
	rng       *rand.Rand
	now       func() time.Time
	timeLimit time.Duration
	onTimeout func(Outcome)

	difficulty string
	category   string
}

func WithLogger(l *slog.Logger) Option {
	return func(o *gameOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRand sets the random source used for word and option shuffles.
func WithRand(r *rand.Rand) Option {
	return func(o *gameOptions) { o.rng = r }
}

// WithClock overrides time.Now for completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *gameOptions) { o.now = now }
}

// WithTimeLimit starts a countdown of d for every word. When it runs out the
// word is scored as incorrect and onTimeout receives the outcome. Zero
// disables the countdown.
func WithTimeLimit(d time.Duration, onTimeout func(Outcome)) Option {
	return func(o *gameOptions) {
		o.timeLimit = d
		o.onTimeout = onTimeout
	}
}

// WithDefaultSelection sets the pair played when no selection was saved.
func WithDefaultSelection(difficulty, category string) Option {
	return func(o *gameOptions) { o.difficulty, o.category = difficulty, category }
}

// New creates a Game persisting into st and drawing banks from loader.
// The last saved selection is restored, the default selection otherwise.
func New(st *store.Store, loader *words.Loader, opts ...Option) *Game {
	o := gameOptions{
		logger:     slog.Default(),
		difficulty: words.Difficulties[0],
		category:   words.Categories[0],
	}
	for _, opt := range opts {
		opt(&o)
	}

	selOpts := []cycle.Option{cycle.WithLogger(o.logger)}
	if o.rng != nil {
		selOpts = append(selOpts, cycle.WithRand(o.rng))
	}
	ledgerOpts := []progress.Option{progress.WithLogger(o.logger)}
	if o.now != nil {
		ledgerOpts = append(ledgerOpts, progress.WithClock(o.now))
	}

	g := &Game{
		st:         st,
		loader:     loader,
		sel:        cycle.NewSelector(loader, st, selOpts...),
		ledger:     progress.NewLedger(st, ledgerOpts...),
		logger:     o.logger,
		timeLimit:  o.timeLimit,
		onTimeout:  o.onTimeout,
		difficulty: words.Difficulties[0],
		category:   words.Categories[0],
	}
	if words.CheckPair(o.difficulty, o.category) == nil {
		g.difficulty, g.category = o.difficulty, o.category
	}
	if d, c, ok := g.ledger.SavedSelection(); ok && words.CheckPair(d, c) == nil {
		g.difficulty, g.category = d, c
	}
	return g
}

// Selection returns the current difficulty and category.
func (g *Game) Selection() (difficulty, category string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.difficulty, g.category
}

// Current returns the word in play, or nil.
func (g *Game) Current() *cycle.PreparedWord {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Select switches to another pair. A change resets the new pair's cycle,
// drops the word in play and discards any load still in flight.
func (g *Game) Select(difficulty, category string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selectLocked(difficulty, category)
}

func (g *Game) selectLocked(difficulty, category string) error {
	if err := words.CheckPair(difficulty, category); err != nil {
		return err
	}
	if difficulty == g.difficulty && category == g.category {
		return nil
	}
	g.gen++
	g.timer.Stop()
	g.current = nil
	g.difficulty, g.category = difficulty, category
	g.sel.Reset(difficulty, category)
	g.ledger.SaveSelection(difficulty, category)
	g.logger.Debug("selection changed", "difficulty", difficulty, "category", category)
	return nil
}

// NextWord draws the next word of the pair, switching the selection first
// if needed. Once the pair is exhausted the draw carries the end-of-category
// signal and the pair is marked completed.
func (g *Game) NextWord(ctx context.Context, difficulty, category string) (cycle.Draw, error) {
	g.mu.Lock()
	if err := g.selectLocked(difficulty, category); err != nil {
		g.mu.Unlock()
		return cycle.Draw{}, err
	}
	gen := g.gen
	g.timer.Stop()
	g.current = nil
	g.paused = false
	g.mu.Unlock()

	// Warm the loader cache without holding the lock; the draw below is then
	// served from memory.
	if _, err := g.loader.Load(ctx, difficulty, category); err != nil {
		return cycle.Draw{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen != gen {
		g.logger.Debug("discarding stale load", "difficulty", difficulty, "category", category)
		return cycle.Draw{}, ErrStaleSelection
	}
	draw, err := g.sel.Next(ctx, difficulty, category)
	if err != nil {
		return cycle.Draw{}, err
	}
	if draw.Exhausted() {
		g.ledger.MarkCategoryCompleted(difficulty, category)
		return draw, nil
	}
	g.current = draw.Word
	g.startTimerLocked(draw.Word)
	return draw, nil
}

func (g *Game) startTimerLocked(w *cycle.PreparedWord) {
	if g.timeLimit <= 0 {
		return
	}
	g.timer.Start(g.timeLimit, func() { g.expire(w) })
}

// expire scores w as timed out if it is still the word in play.
func (g *Game) expire(w *cycle.PreparedWord) {
	g.mu.Lock()
	if g.current != w || g.paused {
		g.mu.Unlock()
		return
	}
	out := g.scoreLocked(false, true)
	cb := g.onTimeout
	g.mu.Unlock()

	g.logger.Debug("time up", "term", out.Term)
	if cb != nil {
		cb(out)
	}
}

// SubmitAnswer scores choice against the word in play.
func (g *Game) SubmitAnswer(choice string) (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return Outcome{}, ErrNoActiveWord
	}
	return g.scoreLocked(choice == g.current.CorrectAnswer, false), nil
}

// TimeUp scores the word in play as incorrect.
func (g *Game) TimeUp() (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return Outcome{}, ErrNoActiveWord
	}
	return g.scoreLocked(false, true), nil
}

// scoreLocked applies one turn to the ledger and clears the word in play.
func (g *Game) scoreLocked(correct, timedOut bool) Outcome {
	w := g.current
	g.current = nil
	g.timer.Stop()

	before := g.ledger.Stats()
	out := Outcome{
		Term:          w.Term,
		Correct:       correct,
		TimedOut:      timedOut,
		CorrectAnswer: w.CorrectAnswer,
		TotalScore:    before.TotalScore,
		Level:         before.Level,
	}

	g.ledger.IncrementWordsAttempted()
	if correct {
		out.Streak = before.CurrentStreak + 1
		out.Points = BasePoints(w.Meta.Difficulty) + StreakBonus(out.Streak)
		g.ledger.IncrementCorrectAnswers()
		g.ledger.SetStreak(out.Streak)
		g.ledger.ApplyScoreDelta(out.Points)
		out.TotalScore += out.Points
		if lvl := LevelFor(out.TotalScore); lvl > before.Level {
			g.ledger.SetLevel(lvl)
			out.Level = lvl
			out.LeveledUp = true
		}
	} else {
		g.ledger.SetStreak(0)
	}
	g.ledger.RecordAnswer(w.Term, w.Meta.Difficulty, correct)

	if w.Meta.IsLastWord {
		g.ledger.MarkCategoryCompleted(w.Meta.Difficulty, w.Meta.Category)
		out.CategoryCompleted = true
	}
	return out
}

// RecordAnswer records an answer for term under the current difficulty
// without scoring a turn.
func (g *Game) RecordAnswer(term string, correct bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ledger.RecordAnswer(term, g.difficulty, correct)
}

// Pause cancels the countdown of the word in play.
func (g *Game) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = true
	g.timer.Stop()
}

// Resume restarts the countdown of the word in play with a full time limit.
func (g *Game) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused {
		return
	}
	g.paused = false
	if g.current != nil {
		g.startTimerLocked(g.current)
	}
}

// ResetProgress clears every statistic, completed category and cycle.
func (g *Game) ResetProgress() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.timer.Stop()
	g.current = nil
	g.ledger.ResetAll()
	g.ledger.ResetCategoryCompletion()
	g.sel.ResetAll()
}

// ResetCycle starts the pair's cycle over on the next draw.
func (g *Game) ResetCycle(difficulty, category string) error {
	if err := words.CheckPair(difficulty, category); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sel.Reset(difficulty, category)
	if difficulty == g.difficulty && category == g.category {
		g.timer.Stop()
		g.current = nil
	}
	return nil
}

// Stats returns the statistics view.
func (g *Game) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Stats{
		Snapshot:       g.ledger.Stats(),
		Completion:     g.ledger.CompletionStats(),
		StoreAvailable: g.st.Available(),
		Storage:        g.st.SizeInfo(),
	}
}

// Progress reports how many words of the pair have ever been answered and
// how accurately.
func (g *Game) Progress(ctx context.Context, difficulty, category string) (Progress, error) {
	res, err := g.loader.Load(ctx, difficulty, category)
	if err != nil {
		return Progress{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	p := Progress{TotalWords: res.Bank.Len()}
	var correct, total int
	for _, w := range res.Bank.Words {
		if g.ledger.IsWordCompleted(w.Term) {
			p.CompletedWords++
		}
		t := g.ledger.WordAccuracy(w.Term)
		correct += t.Correct
		total += t.Total
	}
	p.RemainingWords = p.TotalWords - p.CompletedWords
	p.Accuracy = progress.Percent(correct, total)
	p.ProgressPercentage = progress.Percent(p.CompletedWords, p.TotalWords)
	return p, nil
}

// WordCount returns the number of words available for the pair.
func (g *Game) WordCount(ctx context.Context, difficulty, category string) (int, error) {
	return g.loader.WordCount(ctx, difficulty, category)
}

// PreloadAll loads every pair ahead of play.
func (g *Game) PreloadAll(ctx context.Context, onProgress func(done, total int)) words.PreloadReport {
	return g.loader.PreloadAll(ctx, onProgress)
}

// Export returns every stored value.
func (g *Game) Export() map[string]json.RawMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.st.ExportAll()
}

// Import stores data and reloads all state from the Store.
func (g *Game) Import(data map[string]json.RawMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	ok := g.st.ImportAll(data)
	g.timer.Stop()
	g.current = nil
	g.ledger.Reload()
	g.sel.Forget()
	if !ok {
		return fmt.Errorf("%w: %d values", ErrImportFailed, len(data))
	}
	return nil
}

// CycleState reports the pair's cycle state.
func (g *Game) CycleState(difficulty, category string) cycle.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sel.State(difficulty, category)
}
