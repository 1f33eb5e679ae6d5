// Package refresh runs deduplicated background jobs on a fixed worker pool.
package refresh

import (
	"context"
	"sync"
	"time"
)

type Job struct {
	Key string
}

type Refresher struct {
	ch      chan Job
	inFly   sync.Map // key -> struct{}
	workers int
	timeout time.Duration
	Do      func(ctx context.Context, j Job)
}

func New(capacity, workerCount int, do func(ctx context.Context, j Job)) *Refresher {
	if capacity <= 0 {
		capacity = 256
	}
	if workerCount <= 0 {
		workerCount = 2
	}
	return &Refresher{ch: make(chan Job, capacity), workers: workerCount, timeout: 15 * time.Second, Do: do}
}

// Enqueue schedules j unless a job with the same key is queued or running.
// It never blocks; a saturated queue drops the job.
func (r *Refresher) Enqueue(j Job) bool {
	if _, exists := r.inFly.LoadOrStore(j.Key, struct{}{}); exists {
		return false
	}
	select {
	case r.ch <- j:
		return true
	default:
		r.inFly.Delete(j.Key)
		return false
	}
}

// Serve runs the workers until ctx is cancelled.
func (r *Refresher) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx)
		}()
	}
	wg.Wait()
	return ctx.Err()
}

func (r *Refresher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-r.ch:
			r.run(ctx, j)
		}
	}
}

func (r *Refresher) run(parent context.Context, j Job) {
	ctx, cancel := context.WithTimeout(parent, r.timeout)
	defer func() {
		r.inFly.Delete(j.Key)
		cancel()
	}()
	if r.Do != nil {
		r.Do(ctx, j)
	}
}
