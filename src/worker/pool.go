package worker

import (
	"context"
	"log"
	"runtime"
	"sync"
)

// Job is a unit of background work. It runs on a worker goroutine and must
// post its outcome back to the event loop itself (typically via a channel).
type Job func(ctx context.Context)

// Pool is a fixed-size worker pool with a 1-slot input queue. The single
// slot is the back-pressure that keeps at most one trigger in flight.
type Pool struct {
	jobs chan job
	wg   sync.WaitGroup
}

type job struct {
	ctx context.Context
	fn  Job
}

// New creates a worker pool. Size defaults to NumCPU when size<=0.
func New(size int) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				if err := j.ctx.Err(); err != nil {
					log.Printf("Worker: dropping job, context done: %v", err)
					continue
				}
				j.fn(j.ctx)
			}
		}()
	}
}

// Submit enqueues a job if the single-slot queue is free. Returns false if
// the job was dropped.
func (p *Pool) Submit(ctx context.Context, fn Job) bool {
	if fn == nil {
		return false
	}
	select {
	case p.jobs <- job{ctx: ctx, fn: fn}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}
