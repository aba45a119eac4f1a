package progress

import (
	"slices"
	"time"

	"github.com/japaniel/lexiquiz/pkg/words"
)

// CompletionTally summarizes finished categories for one difficulty.
type CompletionTally struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// CompletionStats summarizes finished categories across the whole grid.
type CompletionStats struct {
	Completed    int                        `json:"completed"`
	Total        int                        `json:"total"`
	Percentage   int                        `json:"percentage"`
	ByDifficulty map[string]CompletionTally `json:"byDifficulty"`
}

func (l *Ledger) setCompleted(difficulty, category string, at time.Time) {
	m, ok := l.completed[difficulty]
	if !ok {
		m = make(map[string]time.Time)
		l.completed[difficulty] = m
	}
	m[category] = at
}

// MarkCategoryCompleted records that every word of the pair has been played.
// Marking an already completed pair keeps its original timestamp.
func (l *Ledger) MarkCategoryCompleted(difficulty, category string) {
	if l.IsCategoryCompleted(difficulty, category) {
		return
	}
	at := l.now().UTC().Truncate(time.Second)
	l.setCompleted(difficulty, category, at)

	l.st.Set(completedCategoriesKey(difficulty), l.completedCategories(difficulty))
	l.st.Set(categoryCompletedKey(difficulty, category), at.Format(time.RFC3339))
	l.logger.Info("category completed", "difficulty", difficulty, "category", category)
}

// IsCategoryCompleted reports whether the pair has been completed.
func (l *Ledger) IsCategoryCompleted(difficulty, category string) bool {
	_, ok := l.completed[difficulty][category]
	return ok
}

// CategoryCompletedAt returns when the pair was completed.
func (l *Ledger) CategoryCompletedAt(difficulty, category string) (time.Time, bool) {
	at, ok := l.completed[difficulty][category]
	return at, ok
}

// completedCategories lists completed categories of difficulty in grid order.
func (l *Ledger) completedCategories(difficulty string) []string {
	out := []string{}
	for _, c := range words.Categories {
		if l.IsCategoryCompleted(difficulty, c) {
			out = append(out, c)
		}
	}
	// Categories outside the fixed grid are kept after the known ones.
	for c := range l.completed[difficulty] {
		if !slices.Contains(words.Categories, c) {
			out = append(out, c)
		}
	}
	return out
}

// CompletionStats aggregates completion over the difficulty × category grid.
func (l *Ledger) CompletionStats() CompletionStats {
	out := CompletionStats{ByDifficulty: make(map[string]CompletionTally, len(words.Difficulties))}
	for _, d := range words.Difficulties {
		t := CompletionTally{Total: len(words.Categories)}
		for _, c := range words.Categories {
			if l.IsCategoryCompleted(d, c) {
				t.Completed++
			}
		}
		t.Percentage = Percent(t.Completed, t.Total)
		out.ByDifficulty[d] = t
		out.Completed += t.Completed
		out.Total += t.Total
	}
	out.Percentage = Percent(out.Completed, out.Total)
	return out
}

// ResetCategoryCompletion forgets every completed category.
func (l *Ledger) ResetCategoryCompletion() {
	for _, d := range words.Difficulties {
		for _, c := range words.Categories {
			l.st.Remove(categoryCompletedKey(d, c))
		}
		for c := range l.completed[d] {
			l.st.Remove(categoryCompletedKey(d, c))
		}
		l.st.Remove(completedCategoriesKey(d))
	}
	l.completed = make(map[string]map[string]time.Time)
}
