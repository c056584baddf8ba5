package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// Pool is a bounded set of goroutines, each exclusively bound to one task
// for the task's lifetime, repeatedly invoking it until it returns
// restart=false. Because each task owns one goroutine for its whole life,
// no two invocations of the same task's callback ever run concurrently.
type Pool struct {
	sem    chan struct{}
	wg     sync.WaitGroup
	logger *log.Logger

	mu     sync.Mutex
	closed bool
}

// NewPool returns a pool that runs at most concurrency tasks' *scheduling
// slots* at a time; since each task is long-lived for as long as it keeps
// returning true, concurrency should generally be sized to the expected
// number of simultaneously open inspectors.
func NewPool(concurrency int, logger *log.Logger) *Pool {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pool{
		sem:    make(chan struct{}, concurrency),
		logger: logger,
	}
}

// PushTask schedules fn to run on its own goroutine, repeatedly, until it
// returns restart=false or ctx is done. It fails only if the pool has
// already been closed.
func (p *Pool) PushTask(ctx context.Context, fn TaskFunc) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("worker: pool is closed")
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()

		select {
		case p.sem <- struct{}{}:
			defer func() { <-p.sem }()
		case <-ctx.Done():
			return
		}

		for {
			restart := fn(ctx)
			if !restart {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()

	return nil
}

// Close marks the pool closed to new tasks and waits for in-flight tasks to
// observe ctx cancellation and return.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}
