package mq

import (
	"sync"

	"github.com/charmbracelet/log"
)

// PoolWarnThreshold is the growth increment at which a freelist logs a
// high-water warning.
const PoolWarnThreshold = 1000

// Pool is a process-wide optional freelist for queue nodes. It pools
// allocations across every Queue that opts in via WithPool, tracks a
// monotonic peak size, and logs a warning every PoolWarnThreshold units of
// growth.
type Pool struct {
	mu     sync.Mutex
	free   *node
	size   int
	peak   int
	logger *log.Logger
}

// NewPool returns an empty freelist. logger may be nil to disable warnings.
func NewPool(logger *log.Logger) *Pool {
	return &Pool{logger: logger}
}

func (p *Pool) get() *node {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.free == nil {
		return &node{}
	}
	n := p.free
	p.free = n.next
	p.size--
	n.next = nil
	return n
}

func (p *Pool) put(n *node) {
	p.mu.Lock()
	n.next = p.free
	p.free = n
	p.size++
	grew := p.size > p.peak
	if grew {
		p.peak = p.size
	}
	peak := p.peak
	p.mu.Unlock()

	if grew && p.logger != nil && peak%PoolWarnThreshold == 0 {
		p.logger.Warn("message pool freelist grew", "peak", peak)
	}
}

// Peak returns the largest freelist size observed so far.
func (p *Pool) Peak() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}
