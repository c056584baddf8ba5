// Package registry implements the inspector handle table and lifecycle
// state machine: handle allocation, the CREATED/RUNNING/HALTING/HALTED
// state machine, and the handle-to-inspector map held by the analyzer.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/kc9xyz/suscan-inspector/internal/inspector"
)

// Handle is a dense non-negative integer indexing into the table. A handle
// is valid iff the corresponding slot holds a live inspector and that
// inspector is in state Running.
type Handle int

const InvalidHandle Handle = -1

type entry struct {
	insp  *inspector.Inspector
	state atomic.Int32 // mirrors insp.State() with release/acquire semantics
}

// Table is an append-only vector mapping handle to inspector-or-nil.
// Destroyed handles are nulled but the slot is never reused; reclaiming
// HALTED slots is left as a future optimization.
type Table struct {
	mu      sync.RWMutex
	entries []*entry
}

// New returns an empty handle table.
func New() *Table {
	return &Table{}
}

// Register appends insp to the table and transitions it CREATED->RUNNING.
// It fails if insp is not in state Created. The caller is expected to have
// already scheduled insp with the worker pool by the time lookups can
// observe it as Running; Register itself only performs the bookkeeping
// transition. The push-to-worker-pool step lives in the caller, the
// analyzer, so that a worker-pool failure can still roll the handle back.
func (t *Table) Register(insp *inspector.Inspector) (Handle, error) {
	if insp.State() != inspector.Created {
		return InvalidHandle, errNotCreated
	}

	e := &entry{insp: insp}
	e.state.Store(int32(inspector.Created))

	t.mu.Lock()
	t.entries = append(t.entries, e)
	h := Handle(len(t.entries) - 1)
	t.mu.Unlock()

	insp.SetState(inspector.Running)
	e.state.Store(int32(inspector.Running))

	return h, nil
}

// Unregister rolls back a Register call whose subsequent worker-pool
// scheduling failed: it nulls the slot without requiring the inspector to
// have reached Running.
func (t *Table) Unregister(h Handle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(h) >= 0 && int(h) < len(t.entries) {
		t.entries[h] = nil
	}
}

// Lookup returns the inspector at h iff the handle is in range, the slot is
// non-nil, and the inspector's published state is Running. No inspector in
// state Halting or Halted is ever returned here.
func (t *Table) Lookup(h Handle) *inspector.Inspector {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(h) < 0 || int(h) >= len(t.entries) {
		return nil
	}
	e := t.entries[h]
	if e == nil || inspector.State(e.state.Load()) != inspector.Running {
		return nil
	}
	return e.insp
}

// LookupRaw returns the inspector at h and its last-published state
// regardless of state, for CLOSE, which must see Halting/Halted entries
// directly rather than through the Running-only Lookup filter.
func (t *Table) LookupRaw(h Handle) (*inspector.Inspector, inspector.State, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(h) < 0 || int(h) >= len(t.entries) {
		return nil, 0, false
	}
	e := t.entries[h]
	if e == nil {
		return nil, 0, false
	}
	return e.insp, inspector.State(e.state.Load()), true
}

// MarkHalting transitions h's inspector Running->Halting. Only the analyzer
// goroutine calls this.
func (t *Table) MarkHalting(h Handle) {
	t.mu.RLock()
	e := t.entryAt(h)
	t.mu.RUnlock()
	if e == nil {
		return
	}
	e.insp.SetState(inspector.Halting)
	e.state.Store(int32(inspector.Halting))
}

// MarkHalted transitions h's inspector to Halted. Only the owning worker
// goroutine calls this.
func (t *Table) MarkHalted(h Handle) {
	t.mu.RLock()
	e := t.entryAt(h)
	t.mu.RUnlock()
	if e == nil {
		return
	}
	e.insp.SetState(inspector.Halted)
	e.state.Store(int32(inspector.Halted))
}

// Dispose nulls the slot. Idempotent: disposing an already-nil slot
// returns false.
func (t *Table) Dispose(h Handle) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(h) < 0 || int(h) >= len(t.entries) {
		return false
	}
	if t.entries[h] == nil {
		return false
	}
	t.entries[h] = nil
	return true
}

func (t *Table) entryAt(h Handle) *entry {
	if int(h) < 0 || int(h) >= len(t.entries) {
		return nil
	}
	return t.entries[h]
}

var errNotCreated = tableError("registry: inspector must be in state Created to register")

type tableError string

func (e tableError) Error() string { return string(e) }
