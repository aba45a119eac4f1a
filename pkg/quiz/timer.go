package quiz

import (
	"sync"
	"time"
)

// QuestionTimer is a cancelable per-question countdown. Every Start and Stop
// advances a generation counter, and a callback only runs while its own
// generation is still current.
type QuestionTimer struct {
	mu  sync.Mutex
	gen uint64
	t   *time.Timer
}

// Start cancels any running countdown and calls fire after d.
// It returns the generation of the new countdown.
func (q *QuestionTimer) Start(d time.Duration, fire func()) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopLocked()
	q.gen++
	gen := q.gen
	q.t = time.AfterFunc(d, func() {
		q.mu.Lock()
		current := q.gen == gen
		if current {
			q.t = nil
		}
		q.mu.Unlock()
		if current {
			fire()
		}
	})
	return gen
}

// Stop cancels the running countdown. It reports whether one was running.
func (q *QuestionTimer) Stop() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	running := q.t != nil
	q.stopLocked()
	q.gen++
	return running
}

func (q *QuestionTimer) stopLocked() {
	if q.t != nil {
		q.t.Stop()
		q.t = nil
	}
}

// Active reports whether a countdown is running.
func (q *QuestionTimer) Active() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.t != nil
}

// Generation returns the current generation.
func (q *QuestionTimer) Generation() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.gen
}
