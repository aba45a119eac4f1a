package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/japaniel/lexiquiz/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenMedium fails every operation, like storage disabled by the host.
type brokenMedium struct{ calls int }

var errBroken = errors.New("storage disabled")

func (b *brokenMedium) Get(string) (string, bool, error) { b.calls++; return "", false, errBroken }
func (b *brokenMedium) Set(string, string) error         { b.calls++; return errBroken }
func (b *brokenMedium) Remove(string) error              { b.calls++; return errBroken }
func (b *brokenMedium) Keys() ([]string, error)          { b.calls++; return nil, errBroken }

func TestStore_SetGetNamespaced(t *testing.T) {
	m := NewMemoryMedium()
	s := New(m)

	require.True(t, s.Available())
	require.True(t, s.Set("totalScore", 42))

	raw, ok, err := m.Get("vocabQuiz_totalScore")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "42", raw)

	assert.Equal(t, 42, Get(s, "totalScore", 0))
	assert.Equal(t, 7, Get(s, "missing", 7))

	_, probeLeft, _ := m.Get("vocabQuiz_" + probeKey)
	assert.False(t, probeLeft, "probe key must be cleaned up")
}

func TestStore_CorruptValueReturnsDefault(t *testing.T) {
	m := NewMemoryMedium()
	s := New(m)
	require.NoError(t, m.Set("vocabQuiz_missedWords", "{not json"))
	require.NoError(t, m.Set("vocabQuiz_level", `"three"`))
	require.NoError(t, m.Set("vocabQuiz_bestStreak", "null"))

	def := map[string]int{"x": 1}
	assert.Equal(t, def, Get(s, "missedWords", def))
	assert.Equal(t, 1, Get(s, "level", 1))
	assert.Equal(t, 3, Get(s, "bestStreak", 3))
}

func TestStore_DegradedMode(t *testing.T) {
	b := &brokenMedium{}
	s := New(b)

	assert.False(t, s.Available())
	assert.False(t, s.Set("totalScore", 5))
	assert.Equal(t, 9, Get(s, "totalScore", 9))
	assert.False(t, s.Remove("totalScore"))
	assert.Empty(t, s.ExportAll())
	assert.False(t, s.ImportAll(map[string]json.RawMessage{"a": json.RawMessage("1")}))
	assert.Equal(t, SizeInfo{}, s.SizeInfo())
	s.ClearAll()

	// Only the probe touched the medium.
	assert.Equal(t, 1, b.calls)
}

func TestStore_NilMedium(t *testing.T) {
	s := New(nil)
	assert.False(t, s.Available())
	assert.False(t, s.Set("k", 1))
	assert.Equal(t, "d", Get(s, "k", "d"))
}

func TestStore_ExportClearImportRoundTrip(t *testing.T) {
	m := NewMemoryMedium()
	require.NoError(t, m.Set("unrelated", "keep"))
	s := New(m)

	require.True(t, s.Set("totalScore", 120))
	require.True(t, s.Set("missedWords", map[string]int{"Happy": 2}))
	require.True(t, s.Set("completedWords", []string{"Happy", "Brave"}))
	require.NoError(t, m.Set("vocabQuiz_garbage", "{oops"))

	exported := s.ExportAll()
	assert.Len(t, exported, 3)
	assert.NotContains(t, exported, "garbage")

	s.ClearAll()
	assert.Empty(t, s.ExportAll())
	v, ok, _ := m.Get("unrelated")
	require.True(t, ok, "ClearAll must not touch keys outside the namespace")
	assert.Equal(t, "keep", v)

	require.True(t, s.ImportAll(exported))
	assert.Equal(t, 120, Get(s, "totalScore", 0))
	assert.Equal(t, map[string]int{"Happy": 2}, Get[map[string]int](s, "missedWords", nil))
	assert.Equal(t, []string{"Happy", "Brave"}, Get[[]string](s, "completedWords", nil))
}

func TestStore_ImportAllRejectsInvalidJSON(t *testing.T) {
	s := New(NewMemoryMedium())
	ok := s.ImportAll(map[string]json.RawMessage{
		"good": json.RawMessage(`1`),
		"bad":  json.RawMessage(`{`),
	})
	assert.False(t, ok)
	assert.Equal(t, 1, Get(s, "good", 0))
	assert.False(t, s.Has("bad"))
}

func TestStore_SizeInfo(t *testing.T) {
	s := New(NewMemoryMedium(), WithPrefix("p_"))
	require.True(t, s.Set("a", 1))    // "p_a" + "1" = 4
	require.True(t, s.Set("bb", "x")) // "p_bb" + `"x"` = 7
	assert.Equal(t, SizeInfo{ItemCount: 2, TotalBytes: 11}, s.SizeInfo())
}

func TestStore_SQLiteMedium(t *testing.T) {
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	defer conn.Close()

	s := New(db.NewKV(conn))
	require.True(t, s.Available())
	require.True(t, s.Set("wordAccuracy", map[string]map[string]int{"Brave": {"correct": 1, "total": 2}}))

	got := Get[map[string]map[string]int](s, "wordAccuracy", nil)
	assert.Equal(t, 2, got["Brave"]["total"])
	assert.Equal(t, 1, s.SizeInfo().ItemCount)
}
