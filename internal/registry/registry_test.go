package registry

import (
	"testing"

	"github.com/kc9xyz/suscan-inspector/internal/channel"
	"github.com/kc9xyz/suscan-inspector/internal/inspector"
	"github.com/stretchr/testify/require"
)

func newInsp(t *testing.T) *inspector.Inspector {
	t.Helper()
	insp, err := inspector.New(250000, channel.Descriptor{BW: 5000})
	require.NoError(t, err)
	return insp
}

func TestRegisterLookup(t *testing.T) {
	tab := New()
	insp := newInsp(t)

	h, err := tab.Register(insp)
	require.NoError(t, err)
	require.GreaterOrEqual(t, int(h), 0)

	got := tab.Lookup(h)
	require.Same(t, insp, got)
}

func TestLookup_NotFoundOutOfRange(t *testing.T) {
	tab := New()
	require.Nil(t, tab.Lookup(Handle(0)))
	require.Nil(t, tab.Lookup(Handle(-1)))
}

// S4-analog for the lifecycle: after CLOSE (Dispose/MarkHalting), Lookup
// must never return the inspector again (spec property 4).
func TestLookup_HiddenOnceHalting(t *testing.T) {
	tab := New()
	insp := newInsp(t)
	h, err := tab.Register(insp)
	require.NoError(t, err)

	tab.MarkHalting(h)
	require.Nil(t, tab.Lookup(h))

	i, state, ok := tab.LookupRaw(h)
	require.True(t, ok)
	require.Same(t, insp, i)
	require.Equal(t, inspector.Halting, state)
}

// S6 (close-during-run): CLOSE observes RUNNING, marks HALTING; the next
// worker callback observes HALTING, marks HALTED; a second CLOSE observes
// HALTED and disposes.
func TestLifecycle_CloseDuringRun(t *testing.T) {
	tab := New()
	insp := newInsp(t)
	h, err := tab.Register(insp)
	require.NoError(t, err)

	tab.MarkHalting(h)
	_, state, _ := tab.LookupRaw(h)
	require.Equal(t, inspector.Halting, state)

	tab.MarkHalted(h)
	_, state, _ = tab.LookupRaw(h)
	require.Equal(t, inspector.Halted, state)

	require.True(t, tab.Dispose(h))
	_, _, ok := tab.LookupRaw(h)
	require.False(t, ok)

	require.False(t, tab.Dispose(h))
}

func TestRegister_RejectsNonCreated(t *testing.T) {
	tab := New()
	insp := newInsp(t)
	insp.SetState(inspector.Running)

	_, err := tab.Register(insp)
	require.Error(t, err)
}

func TestUnregister_RollsBackFailedSchedule(t *testing.T) {
	tab := New()
	insp := newInsp(t)
	h, err := tab.Register(insp)
	require.NoError(t, err)

	tab.Unregister(h)
	require.Nil(t, tab.Lookup(h))
	_, _, ok := tab.LookupRaw(h)
	require.False(t, ok)
}
