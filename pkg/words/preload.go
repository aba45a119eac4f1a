package words

import (
	"context"
	"sync"
)

// MaxPreloadWorkers caps simultaneous loads during PreloadAll.
const MaxPreloadWorkers = 3

// PairDetail is the preload outcome of one pair.
type PairDetail struct {
	Difficulty string
	Category   string
	Success    bool
	WordCount  int
	Err        error
}

// PreloadReport summarizes PreloadAll.
type PreloadReport struct {
	SuccessCount int
	FailedCount  int
	Details      []PairDetail
}

// PreloadAll loads every pair of the grid with bounded concurrency. A pair
// counts as successful only if it came from the source; fallbacks and errors
// are failures but never abort the batch. onProgress, if non-nil, is called
// after each pair with the number finished so far; calls are serialized.
// Details are in Grid order.
func (l *Loader) PreloadAll(ctx context.Context, onProgress func(done, total int)) PreloadReport {
	pairs := Grid()
	details := make([]PairDetail, len(pairs))
	finished := make([]bool, len(pairs))

	workers := min(max(l.preloadWorkers, 1), MaxPreloadWorkers)
	wp := NewWorkerPool(workers, len(pairs))
	wp.Start(ctx)

	var mu sync.Mutex
	done := 0
	for i, p := range pairs {
		err := wp.SubmitCtx(ctx, func(ctx context.Context) error {
			res, err := l.Load(ctx, p.Difficulty, p.Category)
			d := PairDetail{Difficulty: p.Difficulty, Category: p.Category}
			switch {
			case err != nil:
				d.Err = err
			default:
				d.WordCount = res.Bank.Len()
				d.Success = res.FromSource
				d.Err = res.Cause
			}

			mu.Lock()
			defer mu.Unlock()
			details[i] = d
			finished[i] = true
			done++
			if onProgress != nil {
				onProgress(done, len(pairs))
			}
			return d.Err
		})
		if err != nil {
			break
		}
	}
	wp.Close()

	var rep PreloadReport
	for i, d := range details {
		if !finished[i] {
			d = PairDetail{Difficulty: pairs[i].Difficulty, Category: pairs[i].Category, Err: ctx.Err()}
		}
		if d.Success {
			rep.SuccessCount++
		} else {
			rep.FailedCount++
		}
		rep.Details = append(rep.Details, d)
	}
	l.logger.Info("word banks preloaded", "success", rep.SuccessCount, "failed", rep.FailedCount)
	return rep
}
