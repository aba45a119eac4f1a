// Package cycle serves every word of a bank exactly once, in random order,
// before signaling that the bank is exhausted.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/japaniel/lexiquiz/pkg/store"
	"github.com/japaniel/lexiquiz/pkg/words"
)

// ErrNoWords means the pair has no words at all, which is a genuine failure
// unlike exhaustion.
var ErrNoWords = errors.New("no words available")

// State is the cycle state of one pair.
type State int

const (
	Uninitialized State = iota
	Cycling
	Exhausted
)

func (s State) String() string {
	switch s {
	case Cycling:
		return "cycling"
	case Exhausted:
		return "exhausted"
	default:
		return "uninitialized"
	}
}

// BankLoader supplies word banks.
type BankLoader interface {
	Load(ctx context.Context, difficulty, category string) (words.Result, error)
}

// Meta describes where a prepared word sits in its cycle.
type Meta struct {
	Difficulty string `json:"difficulty"`
	Category   string `json:"category"`
	Remaining  int    `json:"remaining"`
	Total      int    `json:"total"`
	IsLastWord bool   `json:"isLastWord"`
}

// PreparedWord is a word ready to be asked, with shuffled options.
type PreparedWord struct {
	Term          string   `json:"term"`
	Pronunciation string   `json:"pronunciation"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Meta          Meta     `json:"meta"`
}

// EndOfCategory signals that every word of the pair has been served.
type EndOfCategory struct {
	Difficulty   string `json:"difficulty"`
	Category     string `json:"category"`
	Total        int    `json:"total"`
	VisitedCount int    `json:"visitedCount"`
	Message      string `json:"message"`
}

// Draw is the outcome of Next: exactly one of Word and End is set.
type Draw struct {
	Word *PreparedWord
	End  *EndOfCategory
}

// Exhausted reports whether the draw is an end-of-category signal.
func (d Draw) Exhausted() bool { return d.End != nil }

// persisted is the stored form of a cycle.
type persisted struct {
	Queue   []int    `json:"queue"`
	Visited []string `json:"visited"`
}

type cycleState struct {
	queue   []int
	visited []string
	seen    map[string]struct{}
}

func (c *cycleState) visit(term string) {
	if _, ok := c.seen[term]; ok {
		return
	}
	c.seen[term] = struct{}{}
	c.visited = append(c.visited, term)
}

// Selector tracks one cycle per pair. It is not safe for concurrent use.
type Selector struct {
	loader BankLoader
	st     *store.Store
	rng    *rand.Rand
	logger *slog.Logger

	cycles map[string]*cycleState
}

// Option configures a Selector.
type Option func(*Selector)

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(s *Selector) { s.rng = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSelector creates a Selector. Cycle progress is persisted in st so it
// survives restarts.
func NewSelector(loader BankLoader, st *store.Store, opts ...Option) *Selector {
	s := &Selector{
		loader: loader,
		st:     st,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger: slog.Default(),
		cycles: make(map[string]*cycleState),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func storeKey(difficulty, category string) string {
	return "cycle_" + words.Key(difficulty, category)
}

// InitCycle starts a fresh cycle over size words, shuffled if reshuffle is
// true and in bank order otherwise.
func (s *Selector) InitCycle(difficulty, category string, size int, reshuffle bool) {
	queue := make([]int, size)
	for i := range queue {
		queue[i] = i
	}
	if reshuffle {
		shuffle(s.rng, queue)
	}
	c := &cycleState{queue: queue, visited: []string{}, seen: make(map[string]struct{})}
	s.cycles[words.Key(difficulty, category)] = c
	s.save(difficulty, category, c)
}

// Next returns the next unserved word of the pair, or an end-of-category
// signal once all words have been served. It returns ErrNoWords for an
// empty bank.
func (s *Selector) Next(ctx context.Context, difficulty, category string) (Draw, error) {
	res, err := s.loader.Load(ctx, difficulty, category)
	if err != nil {
		return Draw{}, err
	}
	bank := res.Bank
	if bank.Len() == 0 {
		return Draw{}, fmt.Errorf("%s: %w", words.Key(difficulty, category), ErrNoWords)
	}

	key := words.Key(difficulty, category)
	c, ok := s.cycles[key]
	if !ok {
		c, ok = s.restore(difficulty, category, bank)
		if ok {
			s.cycles[key] = c
		} else {
			s.InitCycle(difficulty, category, bank.Len(), true)
			c = s.cycles[key]
		}
	}

	if len(c.queue) == 0 {
		return Draw{End: &EndOfCategory{
			Difficulty:   difficulty,
			Category:     category,
			Total:        bank.Len(),
			VisitedCount: len(c.visited),
			Message:      fmt.Sprintf("You've completed all %d words in %s %s!", bank.Len(), difficulty, category),
		}}, nil
	}

	idx := c.queue[0]
	c.queue = c.queue[1:]
	entry := bank.Words[idx]
	c.visit(entry.Term)
	s.save(difficulty, category, c)

	return Draw{Word: s.prepare(entry, Meta{
		Difficulty: difficulty,
		Category:   category,
		Remaining:  len(c.queue),
		Total:      bank.Len(),
		IsLastWord: len(c.queue) == 0,
	})}, nil
}

func (s *Selector) prepare(e words.Entry, meta Meta) *PreparedWord {
	options := make([]string, 0, 1+words.MinIncorrect)
	options = append(options, e.CorrectDefinition)
	for _, o := range words.Decoys(e) {
		if len(options) == cap(options) {
			break
		}
		options = append(options, o)
	}
	shuffle(s.rng, options)
	return &PreparedWord{
		Term:          e.Term,
		Pronunciation: e.Pronunciation,
		Options:       options,
		CorrectAnswer: e.CorrectDefinition,
		Meta:          meta,
	}
}

// restore loads a persisted cycle, rejecting one that does not fit bank.
func (s *Selector) restore(difficulty, category string, bank words.Bank) (*cycleState, bool) {
	p := store.Get(s.st, storeKey(difficulty, category), persisted{})
	if p.Queue == nil && p.Visited == nil {
		return nil, false
	}
	n := bank.Len()
	used := make(map[int]bool, len(p.Queue))
	for _, idx := range p.Queue {
		if idx < 0 || idx >= n || used[idx] {
			s.logger.Warn("discarding invalid cycle state", "difficulty", difficulty, "category", category)
			return nil, false
		}
		used[idx] = true
	}
	c := &cycleState{queue: p.Queue, visited: []string{}, seen: make(map[string]struct{})}
	for _, term := range p.Visited {
		c.visit(term)
	}
	// Visited must be exactly the terms of the indices no longer queued.
	served := make(map[string]struct{}, n-len(used))
	for i, e := range bank.Words {
		if !used[i] {
			served[e.Term] = struct{}{}
		}
	}
	stale := len(served) != len(c.seen)
	for term := range c.seen {
		if _, ok := served[term]; !ok {
			stale = true
			break
		}
	}
	if stale {
		s.logger.Warn("discarding stale cycle state", "difficulty", difficulty, "category", category,
			"queued", len(c.queue), "visited", len(c.visited), "words", n)
		return nil, false
	}
	return c, true
}

func (s *Selector) save(difficulty, category string, c *cycleState) {
	s.st.Set(storeKey(difficulty, category), persisted{Queue: c.queue, Visited: c.visited})
}

// Reset forgets the pair's cycle so the next call to Next reshuffles.
func (s *Selector) Reset(difficulty, category string) {
	delete(s.cycles, words.Key(difficulty, category))
	s.st.Remove(storeKey(difficulty, category))
}

// ResetAll forgets every cycle.
func (s *Selector) ResetAll() {
	for _, p := range words.Grid() {
		s.Reset(p.Difficulty, p.Category)
	}
	clear(s.cycles)
}

// Forget drops in-memory cycles so the next call to Next restores them
// from the Store. Use it after the Store was imported behind the Selector.
func (s *Selector) Forget() { clear(s.cycles) }

// State reports the pair's position in the cycle state machine.
func (s *Selector) State(difficulty, category string) State {
	if c, ok := s.cycles[words.Key(difficulty, category)]; ok {
		if len(c.queue) == 0 {
			return Exhausted
		}
		return Cycling
	}
	p := store.Get(s.st, storeKey(difficulty, category), persisted{})
	switch {
	case p.Queue == nil && p.Visited == nil:
		return Uninitialized
	case len(p.Queue) == 0:
		return Exhausted
	default:
		return Cycling
	}
}

// Remaining returns the number of unserved words of an active cycle.
func (s *Selector) Remaining(difficulty, category string) (int, bool) {
	if c, ok := s.cycles[words.Key(difficulty, category)]; ok {
		return len(c.queue), true
	}
	p := store.Get(s.st, storeKey(difficulty, category), persisted{})
	if p.Queue == nil && p.Visited == nil {
		return 0, false
	}
	return len(p.Queue), true
}

// Visited returns the terms served in the pair's current cycle.
func (s *Selector) Visited(difficulty, category string) []string {
	if c, ok := s.cycles[words.Key(difficulty, category)]; ok {
		return append([]string(nil), c.visited...)
	}
	return store.Get(s.st, storeKey(difficulty, category), persisted{}).Visited
}

// shuffle is an in-place Fisher–Yates shuffle: for i from the last index
// down to 1, swap element i with a uniformly chosen element at index <= i.
func shuffle[T any](rng *rand.Rand, xs []T) {
	for i := len(xs) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
