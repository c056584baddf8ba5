package worker

import (
	"context"
	"testing"

	"github.com/kc9xyz/suscan-inspector/internal/channel"
	"github.com/kc9xyz/suscan-inspector/internal/inspector"
	"github.com/kc9xyz/suscan-inspector/internal/inspmsg"
	"github.com/kc9xyz/suscan-inspector/internal/mq"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	samples   []complex128
	available bool
	advanced  int
	removed   bool
}

func (f *fakeConsumer) AssertSamples() ([]complex128, bool) {
	if !f.available {
		return nil, false
	}
	return f.samples, true
}

func (f *fakeConsumer) Advance(n int) { f.advanced += n }
func (f *fakeConsumer) RemoveTask()   { f.removed = true }

func newInsp(t *testing.T) *inspector.Inspector {
	t.Helper()
	insp, err := inspector.New(250000, channel.Descriptor{BW: 5000})
	require.NoError(t, err)
	require.NoError(t, insp.ApplyParams(inspector.Params{Baud: 1000, FcCtrl: inspector.Manual}))
	insp.SetState(inspector.Running)
	return insp
}

func TestCallback_HaltingDetaches(t *testing.T) {
	insp := newInsp(t)
	insp.SetState(inspector.Halting)

	consumer := &fakeConsumer{}
	var haltedCalled bool
	cb := Callback(insp, 0, consumer, mq.New(), nil, func() { haltedCalled = true })

	restart := cb(context.Background())
	require.False(t, restart)
	require.True(t, haltedCalled)
	require.True(t, consumer.removed)
}

func TestCallback_NoSamplesAvailableReturnsFalse(t *testing.T) {
	insp := newInsp(t)
	consumer := &fakeConsumer{available: false}
	cb := Callback(insp, 0, consumer, mq.New(), nil, func() {})

	restart := cb(context.Background())
	require.False(t, restart)
	require.False(t, consumer.removed)
}

func TestCallback_ProducesSampleBatchOnSymbolFire(t *testing.T) {
	insp := newInsp(t)
	samples := make([]complex128, 250) // exactly one symbol period at baud=1000, fs=250000
	for i := range samples {
		samples[i] = 1
	}
	consumer := &fakeConsumer{available: true, samples: samples}
	out := mq.New()
	cb := Callback(insp, 0, consumer, out, nil, func() {})

	restart := cb(context.Background())
	require.True(t, restart)
	require.Equal(t, 250, consumer.advanced)

	typ, payload, ok := out.Poll()
	require.True(t, ok)
	require.Equal(t, inspmsg.TypeSamples, typ)
	batch, ok := payload.(*SampleBatch)
	require.True(t, ok)
	require.Len(t, batch.Samples, 1)
}

func TestCallback_ShortFeedRestartsWithoutHalting(t *testing.T) {
	insp := newInsp(t)
	consumer := &fakeConsumer{available: true, samples: []complex128{1, 2, 3}}
	var haltedCalled bool
	cb := Callback(insp, 0, consumer, mq.New(), nil, func() { haltedCalled = true })

	// Three samples stay short of the 250-sample symbol period: the
	// callback feeds them, publishes nothing, and asks to be rescheduled
	// without halting.
	restart := cb(context.Background())
	require.True(t, restart)
	require.False(t, haltedCalled)
}
