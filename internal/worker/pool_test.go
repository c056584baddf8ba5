package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPool_RestartsUntilFalse(t *testing.T) {
	p := NewPool(2, nil)
	defer p.Close()

	var calls atomic.Int32
	done := make(chan struct{})

	err := p.PushTask(context.Background(), func(ctx context.Context) bool {
		n := calls.Add(1)
		if n >= 3 {
			close(done)
			return false
		}
		return true
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task never completed 3 calls")
	}
	require.Equal(t, int32(3), calls.Load())
}

func TestPool_ClosedRejectsNewTasks(t *testing.T) {
	p := NewPool(1, nil)
	p.Close()

	err := p.PushTask(context.Background(), func(ctx context.Context) bool { return false })
	require.Error(t, err)
}

func TestPool_ContextCancelStopsTask(t *testing.T) {
	p := NewPool(1, nil)
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	var calls atomic.Int32
	err := p.PushTask(ctx, func(ctx context.Context) bool {
		calls.Add(1)
		select {
		case <-started:
		default:
			close(started)
		}
		return true
	})
	require.NoError(t, err)

	<-started
	cancel()
	p.Close()

	require.Greater(t, calls.Load(), int32(0))
}
