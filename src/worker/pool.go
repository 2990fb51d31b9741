package worker

import (
	"context"
	"fmt"
	"log"
	"sync"

	"screen-snap/src/session"
)

// ResultCallback is invoked when a capture session ends (from a worker
// goroutine). The event loop should pass a closure that posts back into the
// event loop safely.
type ResultCallback func(res session.Result, err error)

// ExecuteFunc runs one session. It is session.Execute outside tests.
type ExecuteFunc func(ctx context.Context, opts session.Options) (session.Result, error)

// Pool is a fixed-size capture worker pool with a 1-slot input queue
// (strict back-pressure).
type Pool struct {
	jobs    chan job
	wg      sync.WaitGroup
	execute ExecuteFunc
}

type job struct {
	ctx  context.Context
	opts session.Options
	cb   ResultCallback
}

// New creates a worker pool. Size defaults to 1 when size<=0: only one
// overlay can be on screen at a time. Queue is 1 slot.
func New(size int) *Pool {
	return NewWithExecutor(size, session.Execute)
}

func NewWithExecutor(size int, execute ExecuteFunc) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{jobs: make(chan job, 1), execute: execute}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				p.run(j)
			}
		}()
	}
}

func (p *Pool) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in capture worker: %v", r)
			j.cb(session.Result{}, errPanic{r})
		}
	}()
	log.Printf("Worker: starting capture session")
	res, err := p.execute(j.ctx, j.opts)
	log.Printf("Worker: capture session ended, path=%q, err=%v", res.Path, err)
	j.cb(res, err)
}

// Submit enqueues a session if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, opts session.Options, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, opts: opts, cb: cb}:
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

type errPanic struct{ v interface{} }

func (e errPanic) Error() string { return fmt.Sprintf("capture worker panicked: %v", e.v) }
