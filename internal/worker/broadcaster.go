package worker

import (
	"context"
	"sync"
)

// sampleSource is the subset of source.Source a Broadcaster needs; kept
// narrow here so this package does not import internal/source.
type sampleSource interface {
	Read(buf []complex128) (n int, err error)
}

// Broadcaster reads one physical sample stream and fans it out to every
// registered Consumer view, each advancing through a shared batch at its
// own pace, satisfying the Consumer contract that every registered task
// sees the same stream in the same order.
type Broadcaster struct {
	src sampleSource

	mu     sync.Mutex
	cond   *sync.Cond
	batch  []complex128
	gen    uint64
	closed bool
}

// NewBroadcaster wraps src for fan-out to multiple Consumer views.
func NewBroadcaster(src sampleSource) *Broadcaster {
	b := &Broadcaster{src: src}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Run pulls batches from the source until ctx is done or the source
// returns an error, publishing each batch to every registered view.
func (b *Broadcaster) Run(ctx context.Context, batchSize int) error {
	buf := make([]complex128, batchSize)
	for {
		select {
		case <-ctx.Done():
			b.closeLocked()
			return nil
		default:
		}

		n, err := b.src.Read(buf)
		if err != nil {
			b.closeLocked()
			return err
		}
		if n == 0 {
			continue
		}

		batch := make([]complex128, n)
		copy(batch, buf[:n])

		b.mu.Lock()
		b.batch = batch
		b.gen++
		b.cond.Broadcast()
		b.mu.Unlock()
	}
}

func (b *Broadcaster) closeLocked() {
	b.mu.Lock()
	b.closed = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Register returns a fresh Consumer view into the broadcast stream,
// starting from the next batch published after this call.
func (b *Broadcaster) Register() Consumer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return &broadcastView{b: b, lastGen: b.gen}
}

type broadcastView struct {
	b       *Broadcaster
	lastGen uint64
	pos     int
	removed bool
}

// AssertSamples blocks until a new batch is published or the broadcaster
// is closed; it never returns ok=false while more data may still arrive,
// so the worker pool's restart=false contract on a false result means the
// stream is genuinely finished.
func (v *broadcastView) AssertSamples() ([]complex128, bool) {
	v.b.mu.Lock()
	defer v.b.mu.Unlock()

	for v.b.gen == v.lastGen && !v.b.closed && !v.removed {
		v.b.cond.Wait()
	}
	if v.removed || (v.b.closed && v.b.gen == v.lastGen) {
		return nil, false
	}
	if v.b.gen != v.lastGen {
		v.lastGen = v.b.gen
		v.pos = 0
	}
	if v.pos >= len(v.b.batch) {
		return nil, false
	}
	return v.b.batch[v.pos:], true
}

func (v *broadcastView) Advance(n int) {
	v.b.mu.Lock()
	v.pos += n
	v.b.mu.Unlock()
}

func (v *broadcastView) RemoveTask() {
	v.b.mu.Lock()
	v.removed = true
	v.b.cond.Broadcast()
	v.b.mu.Unlock()
}
