// Package words loads vocabulary banks for each (difficulty, category) pair.
package words

import (
	"errors"
	"fmt"
	"slices"
)

// Fixed enumerations offered to players.
var (
	Difficulties = []string{"easy", "medium", "hard"}
	Categories   = []string{"general", "academic", "business"}
)

var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrUnknownCategory   = errors.New("unknown category")
)

// Entry is one vocabulary item. Entries are never mutated after load.
type Entry struct {
	Term                 string   `json:"word"`
	Pronunciation        string   `json:"pronunciation"`
	CorrectDefinition    string   `json:"correct_definition"`
	IncorrectDefinitions []string `json:"incorrect_options"`
}

// Document is the wire format of one word bank resource.
type Document struct {
	Category   string  `json:"category"`
	Difficulty string  `json:"difficulty"`
	Words      []Entry `json:"words"`
}

// Bank is the ordered word set of one (difficulty, category) pair.
type Bank struct {
	Difficulty string
	Category   string
	Words      []Entry
}

// Len returns the number of entries.
func (b Bank) Len() int { return len(b.Words) }

// Key returns the cache key of a pair.
func Key(difficulty, category string) string {
	return difficulty + "_" + category
}

// CheckPair returns an error unless both values belong to the fixed enumerations.
func CheckPair(difficulty, category string) error {
	if !slices.Contains(Difficulties, difficulty) {
		return fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}
	if !slices.Contains(Categories, category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return nil
}

// Pair is one cell of the difficulty × category grid.
type Pair struct {
	Difficulty string
	Category   string
}

// Grid lists every pair, difficulty-major.
func Grid() []Pair {
	out := make([]Pair, 0, len(Difficulties)*len(Categories))
	for _, d := range Difficulties {
		for _, c := range Categories {
			out = append(out, Pair{Difficulty: d, Category: c})
		}
	}
	return out
}
