package quiz

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuestionTimerFires(t *testing.T) {
	var q QuestionTimer
	done := make(chan struct{})
	q.Start(10*time.Millisecond, func() { close(done) })
	assert.True(t, q.Active())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
	}
	assert.False(t, q.Active())
}

func TestQuestionTimerStop(t *testing.T) {
	var q QuestionTimer
	var fired atomic.Int32
	q.Start(20*time.Millisecond, func() { fired.Add(1) })
	assert.True(t, q.Stop())
	assert.False(t, q.Stop())

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestQuestionTimerRestartSupersedes(t *testing.T) {
	var q QuestionTimer
	var first, second atomic.Int32
	g1 := q.Start(20*time.Millisecond, func() { first.Add(1) })
	g2 := q.Start(40*time.Millisecond, func() { second.Add(1) })
	assert.Greater(t, g2, g1)
	assert.Equal(t, g2, q.Generation())

	assert.Eventually(t, func() bool { return second.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, first.Load())

	q.Stop()
	assert.Greater(t, q.Generation(), g2)
}

func TestScoringRules(t *testing.T) {
	assert.Equal(t, 10, BasePoints("easy"))
	assert.Equal(t, 20, BasePoints("medium"))
	assert.Equal(t, 30, BasePoints("hard"))

	tests := []struct{ streak, bonus int }{
		{0, 0}, {1, 0}, {2, 5}, {3, 10}, {6, 25}, {7, 25}, {50, 25},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.bonus, StreakBonus(tt.streak), "streak=%d", tt.streak)
	}

	assert.Equal(t, 1, LevelFor(0))
	assert.Equal(t, 1, LevelFor(199))
	assert.Equal(t, 2, LevelFor(200))
	assert.Equal(t, 6, LevelFor(1000))
}
