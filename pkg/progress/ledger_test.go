package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/lexiquiz/pkg/store"
)

func newLedger(t *testing.T, opts ...Option) (*Ledger, *store.Store) {
	t.Helper()
	st := store.New(store.NewMemoryMedium())
	return NewLedger(st, opts...), st
}

func TestNewLedgerInitializes(t *testing.T) {
	l, st := newLedger(t)
	assert.True(t, store.Get(st, keyInitialized, false))
	s := l.Stats()
	assert.Equal(t, InitialLevel, s.Level)
	assert.Zero(t, s.TotalScore)
	assert.Empty(t, s.MissedWords)
	assert.NotNil(t, s.WordAccuracy)
}

func TestNewLedgerKeepsExistingData(t *testing.T) {
	st := store.New(store.NewMemoryMedium())
	l := NewLedger(st)
	l.ApplyScoreDelta(40)
	l.SetStreak(3)

	again := NewLedger(st)
	assert.Equal(t, 40, again.Stats().TotalScore)
	assert.Equal(t, 3, again.Stats().BestStreak)
}

func TestRecordAnswerScenario(t *testing.T) {
	l, _ := newLedger(t)
	l.RecordAnswer("Happy", "easy", true)
	l.RecordAnswer("Happy", "easy", false)

	assert.Equal(t, Tally{Correct: 1, Total: 2}, l.WordAccuracy("Happy"))
	assert.Equal(t, 1, l.MissCount("Happy"))
	assert.Equal(t, DifficultyTally{Correct: 1, Total: 2, Accuracy: 50}, l.DifficultyAccuracy("easy"))
	assert.True(t, l.IsWordCompleted("Happy"))
	assert.Equal(t, 1, l.CompletedCount())
}

func TestCorrectAnswerClearsMiss(t *testing.T) {
	l, st := newLedger(t)
	l.RecordAnswer("Brave", "easy", false)
	l.RecordAnswer("Brave", "easy", false)
	assert.Equal(t, 2, l.MissCount("Brave"))

	l.RecordAnswer("Brave", "easy", true)
	_, missed := l.Stats().MissedWords["Brave"]
	assert.False(t, missed)
	assert.NotContains(t, store.Get(st, keyMissedWords, map[string]int{}), "Brave")
}

func TestWeightFor(t *testing.T) {
	tests := []struct {
		misses int
		want   int
	}{
		{0, 1},
		{1, 2},
		{3, 4},
		{4, 5},
		{10, 5},
	}
	for _, tt := range tests {
		l, _ := newLedger(t)
		for range tt.misses {
			l.RecordAnswer("Quiet", "easy", false)
		}
		assert.Equal(t, tt.want, l.WeightFor("Quiet"), "misses=%d", tt.misses)
	}
}

func TestAverageAccuracy(t *testing.T) {
	l, _ := newLedger(t)
	assert.Zero(t, l.AverageAccuracy())

	for i := range 9 {
		l.IncrementWordsAttempted()
		if i < 7 {
			l.IncrementCorrectAnswers()
		}
	}
	assert.Equal(t, 78, l.AverageAccuracy())
	assert.Equal(t, 78, l.Stats().AverageAccuracy)
}

func TestSetStreakRaisesBest(t *testing.T) {
	l, _ := newLedger(t)
	l.SetStreak(4)
	l.SetStreak(0)
	l.SetStreak(2)
	s := l.Stats()
	assert.Equal(t, 2, s.CurrentStreak)
	assert.Equal(t, 4, s.BestStreak)
}

func TestStatsIsACopy(t *testing.T) {
	l, _ := newLedger(t)
	l.RecordAnswer("Happy", "easy", false)
	s := l.Stats()
	s.MissedWords["Happy"] = 99
	s.CompletedWords[0] = "changed"
	assert.Equal(t, 1, l.MissCount("Happy"))
	assert.True(t, l.IsWordCompleted("Happy"))
}

func TestResetAll(t *testing.T) {
	l, st := newLedger(t)
	l.ApplyScoreDelta(120)
	l.SetLevel(3)
	l.RecordAnswer("Happy", "easy", false)
	l.MarkCategoryCompleted("easy", "general")

	l.ResetAll()
	s := l.Stats()
	assert.Zero(t, s.TotalScore)
	assert.Equal(t, InitialLevel, s.Level)
	assert.Empty(t, s.MissedWords)
	assert.Empty(t, s.CompletedWords)
	assert.Equal(t, 0, store.Get(st, keyTotalScore, -1))
	// Completion survives a progress reset.
	assert.True(t, l.IsCategoryCompleted("easy", "general"))
}

func TestCategoryCompletion(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 589000000, time.FixedZone("JST", 9*3600))
	l, st := newLedger(t, WithClock(func() time.Time { return at }))

	assert.False(t, l.IsCategoryCompleted("easy", "general"))
	l.MarkCategoryCompleted("easy", "general")
	l.MarkCategoryCompleted("easy", "business")
	l.MarkCategoryCompleted("hard", "academic")

	got, ok := l.CategoryCompletedAt("easy", "general")
	require.True(t, ok)
	assert.Equal(t, at.UTC().Truncate(time.Second), got)
	assert.Equal(t, "2026-03-14T00:26:53Z", store.Get(st, "categoryCompleted_easy_general", ""))
	assert.Equal(t, []string{"general", "business"}, store.Get[[]string](st, "completedCategories_easy", nil))

	cs := l.CompletionStats()
	assert.Equal(t, 9, cs.Total)
	assert.Equal(t, 3, cs.Completed)
	assert.Equal(t, 33, cs.Percentage)
	assert.Equal(t, CompletionTally{Completed: 2, Total: 3, Percentage: 67}, cs.ByDifficulty["easy"])
	assert.Equal(t, CompletionTally{Completed: 0, Total: 3, Percentage: 0}, cs.ByDifficulty["medium"])
}

func TestMarkCategoryCompletedKeepsFirstTimestamp(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l, _ := newLedger(t, WithClock(func() time.Time { return now }))
	l.MarkCategoryCompleted("medium", "general")
	now = now.Add(time.Hour)
	l.MarkCategoryCompleted("medium", "general")

	got, _ := l.CategoryCompletedAt("medium", "general")
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestResetCategoryCompletion(t *testing.T) {
	l, st := newLedger(t)
	l.MarkCategoryCompleted("easy", "general")
	l.MarkCategoryCompleted("hard", "business")

	l.ResetCategoryCompletion()
	assert.False(t, l.IsCategoryCompleted("easy", "general"))
	assert.Zero(t, l.CompletionStats().Completed)
	assert.False(t, st.Has("categoryCompleted_easy_general"))
	assert.False(t, st.Has("completedCategories_hard"))
}

func TestExportClearImportRoundTrip(t *testing.T) {
	now := time.Date(2026, 5, 5, 12, 0, 0, 0, time.UTC)
	l, st := newLedger(t, WithClock(func() time.Time { return now }))
	l.RecordAnswer("Happy", "easy", true)
	l.RecordAnswer("Brave", "easy", false)
	l.RecordAnswer("Analyze", "medium", true)
	l.ApplyScoreDelta(35)
	l.SetStreak(2)
	l.IncrementWordsAttempted()
	l.IncrementCorrectAnswers()
	l.MarkCategoryCompleted("easy", "general")
	before := l.Stats()

	exported := st.ExportAll()
	st.ClearAll()
	l.Reload()
	assert.Zero(t, l.Stats().TotalScore)
	assert.False(t, l.IsCategoryCompleted("easy", "general"))

	require.True(t, st.ImportAll(exported))
	l.Reload()
	assert.Equal(t, before, l.Stats())
	at, ok := l.CategoryCompletedAt("easy", "general")
	require.True(t, ok)
	assert.Equal(t, now, at)
}

func TestDegradedStoreKeepsCounting(t *testing.T) {
	l := NewLedger(store.New(nil))
	l.RecordAnswer("Happy", "easy", false)
	l.ApplyScoreDelta(10)
	l.MarkCategoryCompleted("easy", "general")

	assert.Equal(t, 1, l.MissCount("Happy"))
	assert.Equal(t, 10, l.Stats().TotalScore)
	assert.True(t, l.IsCategoryCompleted("easy", "general"))
}

func TestSelection(t *testing.T) {
	l, _ := newLedger(t)
	_, _, ok := l.SavedSelection()
	assert.False(t, ok)

	l.SaveSelection("hard", "academic")
	d, c, ok := l.SavedSelection()
	require.True(t, ok)
	assert.Equal(t, "hard", d)
	assert.Equal(t, "academic", c)
}
