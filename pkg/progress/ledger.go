// Package progress keeps the player's score, streaks and per-word accuracy.
package progress

import (
	"log/slog"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/japaniel/lexiquiz/pkg/store"
	"github.com/japaniel/lexiquiz/pkg/words"
)

// MaxWeight caps the selection bias of frequently missed words.
const MaxWeight = 5

// InitialLevel is the level of a fresh player.
const InitialLevel = 1

// Tally counts answers for one word.
type Tally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// DifficultyTally counts answers for one difficulty.
type DifficultyTally struct {
	Correct  int `json:"correct"`
	Total    int `json:"total"`
	Accuracy int `json:"accuracy"`
}

// Snapshot is a copy of the ledger's state.
type Snapshot struct {
	TotalScore          int                        `json:"totalScore"`
	CurrentStreak       int                        `json:"currentStreak"`
	BestStreak          int                        `json:"bestStreak"`
	Level               int                        `json:"level"`
	TotalWordsAttempted int                        `json:"totalWords"`
	CorrectAnswers      int                        `json:"correctAnswers"`
	CompletedWords      []string                   `json:"completedWords"`
	MissedWords         map[string]int             `json:"missedWords"`
	WordAccuracy        map[string]Tally           `json:"wordAccuracy"`
	DifficultyStats     map[string]DifficultyTally `json:"difficultyStats"`
	AverageAccuracy     int                        `json:"averageAccuracy"`
}

// Ledger derives and maintains statistics on top of a Store. State is held
// in memory and written through one key at a time, so an unavailable Store
// still leaves a fully working in-memory ledger.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	st     *store.Store
	logger *slog.Logger
	now    func() time.Time

	s         Snapshot
	completed map[string]map[string]time.Time // difficulty -> category -> completedAt
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides time.Now for completion timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger sets the ledger's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLedger loads the ledger from st, initializing default values on first use.
func NewLedger(st *store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		st:     st,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(l)
	}
	if !store.Get(st, keyInitialized, false) {
		l.s = zeroSnapshot()
		l.writeAll()
		if st.Set(keyInitialized, true) {
			l.logger.Debug("initialized progress ledger")
		}
	}
	l.Reload()
	return l
}

func zeroSnapshot() Snapshot {
	return Snapshot{
		Level:           InitialLevel,
		CompletedWords:  []string{},
		MissedWords:     map[string]int{},
		WordAccuracy:    map[string]Tally{},
		DifficultyStats: map[string]DifficultyTally{},
	}
}

// Reload re-reads every value from the Store, discarding in-memory state.
// Use it after importing data behind the ledger's back.
func (l *Ledger) Reload() {
	z := zeroSnapshot()
	l.s = Snapshot{
		TotalScore:          store.Get(l.st, keyTotalScore, z.TotalScore),
		CurrentStreak:       store.Get(l.st, keyCurrentStreak, z.CurrentStreak),
		BestStreak:          store.Get(l.st, keyBestStreak, z.BestStreak),
		Level:               store.Get(l.st, keyLevel, z.Level),
		TotalWordsAttempted: store.Get(l.st, keyTotalWords, z.TotalWordsAttempted),
		CorrectAnswers:      store.Get(l.st, keyCorrectAnswers, z.CorrectAnswers),
		CompletedWords:      store.Get(l.st, keyCompletedWords, z.CompletedWords),
		MissedWords:         store.Get(l.st, keyMissedWords, z.MissedWords),
		WordAccuracy:        store.Get(l.st, keyWordAccuracy, z.WordAccuracy),
		DifficultyStats:     store.Get(l.st, keyDifficulty, z.DifficultyStats),
	}
	// A stored null or empty document decodes to nil.
	if l.s.CompletedWords == nil {
		l.s.CompletedWords = []string{}
	}
	if l.s.MissedWords == nil {
		l.s.MissedWords = map[string]int{}
	}
	if l.s.WordAccuracy == nil {
		l.s.WordAccuracy = map[string]Tally{}
	}
	if l.s.DifficultyStats == nil {
		l.s.DifficultyStats = map[string]DifficultyTally{}
	}

	l.completed = make(map[string]map[string]time.Time)
	for _, d := range words.Difficulties {
		for _, c := range store.Get[[]string](l.st, completedCategoriesKey(d), nil) {
			ts := store.Get(l.st, categoryCompletedKey(d, c), "")
			at, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				at = time.Time{}
			}
			l.setCompleted(d, c, at)
		}
	}
}

func (l *Ledger) writeAll() {
	l.st.Set(keyTotalScore, l.s.TotalScore)
	l.st.Set(keyCurrentStreak, l.s.CurrentStreak)
	l.st.Set(keyBestStreak, l.s.BestStreak)
	l.st.Set(keyLevel, l.s.Level)
	l.st.Set(keyTotalWords, l.s.TotalWordsAttempted)
	l.st.Set(keyCorrectAnswers, l.s.CorrectAnswers)
	l.st.Set(keyCompletedWords, l.s.CompletedWords)
	l.st.Set(keyMissedWords, l.s.MissedWords)
	l.st.Set(keyWordAccuracy, l.s.WordAccuracy)
	l.st.Set(keyDifficulty, l.s.DifficultyStats)
}

// RecordAnswer updates the per-word and per-difficulty tallies for one answer.
func (l *Ledger) RecordAnswer(term, difficulty string, correct bool) {
	t := l.s.WordAccuracy[term]
	t.Total++
	if correct {
		t.Correct++
	}
	l.s.WordAccuracy[term] = t
	l.st.Set(keyWordAccuracy, l.s.WordAccuracy)

	d := l.s.DifficultyStats[difficulty]
	d.Total++
	if correct {
		d.Correct++
	}
	d.Accuracy = Percent(d.Correct, d.Total)
	l.s.DifficultyStats[difficulty] = d
	l.st.Set(keyDifficulty, l.s.DifficultyStats)

	if !slices.Contains(l.s.CompletedWords, term) {
		l.s.CompletedWords = append(l.s.CompletedWords, term)
		l.st.Set(keyCompletedWords, l.s.CompletedWords)
	}

	if correct {
		if _, ok := l.s.MissedWords[term]; ok {
			delete(l.s.MissedWords, term)
			l.st.Set(keyMissedWords, l.s.MissedWords)
		}
	} else {
		l.s.MissedWords[term]++
		l.st.Set(keyMissedWords, l.s.MissedWords)
	}
}

// ApplyScoreDelta adds points (which may be negative) to the total score.
func (l *Ledger) ApplyScoreDelta(points int) {
	l.s.TotalScore += points
	l.st.Set(keyTotalScore, l.s.TotalScore)
}

// SetStreak sets the current streak, raising the best streak if exceeded.
func (l *Ledger) SetStreak(n int) {
	l.s.CurrentStreak = n
	l.st.Set(keyCurrentStreak, n)
	if n > l.s.BestStreak {
		l.s.BestStreak = n
		l.st.Set(keyBestStreak, n)
	}
}

func (l *Ledger) SetLevel(n int) {
	l.s.Level = n
	l.st.Set(keyLevel, n)
}

func (l *Ledger) IncrementWordsAttempted() {
	l.s.TotalWordsAttempted++
	l.st.Set(keyTotalWords, l.s.TotalWordsAttempted)
}

func (l *Ledger) IncrementCorrectAnswers() {
	l.s.CorrectAnswers++
	l.st.Set(keyCorrectAnswers, l.s.CorrectAnswers)
}

// AverageAccuracy is the rounded percentage of correct answers, 0 with no attempts.
func (l *Ledger) AverageAccuracy() int {
	return Percent(l.s.CorrectAnswers, l.s.TotalWordsAttempted)
}

// WeightFor returns the selection weight of term: one more than its miss
// count, capped at MaxWeight.
func (l *Ledger) WeightFor(term string) int {
	return min(l.s.MissedWords[term]+1, MaxWeight)
}

// MissCount returns how often term has been missed since its last correct answer.
func (l *Ledger) MissCount(term string) int { return l.s.MissedWords[term] }

// WordAccuracy returns the answer tally for term.
func (l *Ledger) WordAccuracy(term string) Tally { return l.s.WordAccuracy[term] }

// DifficultyAccuracy returns the answer tally for difficulty.
func (l *Ledger) DifficultyAccuracy(difficulty string) DifficultyTally {
	return l.s.DifficultyStats[difficulty]
}

// IsWordCompleted reports whether term has ever been answered.
func (l *Ledger) IsWordCompleted(term string) bool {
	return slices.Contains(l.s.CompletedWords, term)
}

// CompletedCount is the number of distinct words ever answered.
func (l *Ledger) CompletedCount() int { return len(l.s.CompletedWords) }

// Stats returns a deep copy of the ledger state.
func (l *Ledger) Stats() Snapshot {
	out := l.s
	out.CompletedWords = slices.Clone(l.s.CompletedWords)
	out.MissedWords = maps.Clone(l.s.MissedWords)
	out.WordAccuracy = maps.Clone(l.s.WordAccuracy)
	out.DifficultyStats = maps.Clone(l.s.DifficultyStats)
	out.AverageAccuracy = l.AverageAccuracy()
	return out
}

// ResetAll rewrites every counter and map to its initial value. Category
// completion is left alone; see ResetCategoryCompletion.
func (l *Ledger) ResetAll() {
	l.s = zeroSnapshot()
	l.writeAll()
	l.logger.Info("progress reset")
}

// SaveSelection remembers the last played difficulty and category.
func (l *Ledger) SaveSelection(difficulty, category string) {
	l.st.Set(keySelDifficulty, difficulty)
	l.st.Set(keySelCategory, category)
}

// SavedSelection returns the last saved selection, if any.
func (l *Ledger) SavedSelection() (difficulty, category string, ok bool) {
	difficulty = store.Get(l.st, keySelDifficulty, "")
	category = store.Get(l.st, keySelCategory, "")
	return difficulty, category, difficulty != "" && category != ""
}

// Percent returns round(100·part/whole), or 0 when whole is not positive.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}
