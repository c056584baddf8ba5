package mq

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFIFOSameType(t *testing.T) {
	q := New()
	require.NoError(t, q.Push(1, "a"))
	require.NoError(t, q.Push(1, "b"))
	require.NoError(t, q.Push(1, "c"))

	for _, want := range []string{"a", "b", "c"} {
		_, got, err := q.Read(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

// S4 (urgent ordering): push non-urgent A,B,C; push urgent U; push
// non-urgent D. read x5 yields U,A,B,C,D.
func TestUrgentOrdering(t *testing.T) {
	q := New()
	require.NoError(t, q.Push(1, "A"))
	require.NoError(t, q.Push(1, "B"))
	require.NoError(t, q.Push(1, "C"))
	require.NoError(t, q.PushUrgent(1, "U"))
	require.NoError(t, q.Push(1, "D"))

	var got []string
	for i := 0; i < 5; i++ {
		_, v, err := q.Read(context.Background())
		require.NoError(t, err)
		got = append(got, v.(string))
	}
	assert.Equal(t, []string{"U", "A", "B", "C", "D"}, got)
}

// S5 (typed read skips): push type=1 "x", type=2 "y", type=1 "z".
// ReadTyped(2) returns "y"; subsequent Read returns "x" then "z".
func TestTypedReadSkips(t *testing.T) {
	q := New()
	require.NoError(t, q.Push(1, "x"))
	require.NoError(t, q.Push(2, "y"))
	require.NoError(t, q.Push(1, "z"))

	v, err := q.ReadTyped(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "y", v)

	_, v, err = q.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	_, v, err = q.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "z", v)
}

func TestPollNonBlocking(t *testing.T) {
	q := New()
	_, _, ok := q.Poll()
	assert.False(t, ok)

	require.NoError(t, q.Push(7, 42))
	typ, payload, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, uint32(7), typ)
	assert.Equal(t, 42, payload)
}

func TestPollTypedNonBlocking(t *testing.T) {
	q := New()
	require.NoError(t, q.Push(1, "a"))
	_, ok := q.PollTyped(2)
	assert.False(t, ok)

	v, ok := q.PollTyped(1)
	require.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestReadBlocksUntilPush(t *testing.T) {
	q := New()
	done := make(chan string, 1)
	go func() {
		_, v, err := q.Read(context.Background())
		if err == nil {
			done <- v.(string)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Push(1, "late"))

	select {
	case v := <-done:
		assert.Equal(t, "late", v)
	case <-time.After(time.Second):
		t.Fatal("reader never woke up")
	}
}

func TestReadCancelledByContext(t *testing.T) {
	q := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err := q.Read(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCloseWakesReaders(t *testing.T) {
	q := New()
	errs := make(chan error, 1)
	go func() {
		_, _, err := q.Read(context.Background())
		errs <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("reader never woke up on close")
	}

	assert.ErrorIs(t, q.Push(1, "x"), ErrClosed)
}

func TestPoolRoundTrips(t *testing.T) {
	p := NewPool(nil)
	q := New(WithPool(p))
	require.NoError(t, q.Push(1, "a"))
	_, _, err := q.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Peak())

	require.NoError(t, q.Push(1, "b"))
	require.NoError(t, q.Push(1, "c"))
	_, _, err = q.Read(context.Background())
	require.NoError(t, err)
	_, _, err = q.Read(context.Background())
	require.NoError(t, err)
}

// Property 1, one fixed trace: 200 non-urgent pushes of a single type are
// read back in enqueue order.
func TestProperty_FIFOPerType(t *testing.T) {
	assertFIFO(t)
}

func assertFIFO(t *testing.T) {
	t.Helper()
	const n = 200
	q := New()
	for i := 0; i < n; i++ {
		require.NoError(t, q.Push(1, i))
	}
	for i := 0; i < n; i++ {
		_, v, err := q.Read(context.Background())
		require.NoError(t, err)
		require.Equal(t, i, v)
	}
}

// Property 2, one fixed case: an urgent push made after ten non-urgent
// pushes is dequeued before all ten, which then follow in FIFO order.
func TestProperty_UrgentPrecedesResident(t *testing.T) {
	q := New()
	for i := 0; i < 10; i++ {
		require.NoError(t, q.Push(1, i))
	}
	require.NoError(t, q.PushUrgent(1, -1))

	var order []int
	for {
		_, p, ok := q.Poll()
		if !ok {
			break
		}
		order = append(order, p.(int))
	}
	require.Equal(t, []int{-1, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}
