package mq

import (
	"context"
	"testing"

	"pgregory.net/rapid"
)

// Property-based check of spec property 1 ("for every enqueue/dequeue trace
// on a single MQ with no urgent pushes, observed order is identical to
// enqueue order, per type") across randomly generated sequences of type
// tags: every message is pushed first, then each type is drained in turn
// with PollTyped.
func TestRapid_FIFOPerTypePreserved(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		numTypes := rapid.IntRange(1, 3).Draw(rt, "numTypes")
		ops := rapid.SliceOfN(rapid.IntRange(0, numTypes-1), 1, 40).Draw(rt, "pushTypes")

		q := New()
		expected := make(map[int][]int)
		seq := 0
		for _, typ := range ops {
			val := seq
			seq++
			expected[typ] = append(expected[typ], val)
			if err := q.Push(uint32(typ), val); err != nil {
				rt.Fatalf("push failed: %v", err)
			}
		}

		for typ := 0; typ < numTypes; typ++ {
			for _, want := range expected[typ] {
				got, ok := q.PollTyped(uint32(typ))
				if !ok {
					rt.Fatalf("expected a message of type %d, queue empty", typ)
				}
				if got.(int) != want {
					rt.Fatalf("type %d: got %v, want %v", typ, got, want)
				}
			}
		}
	})
}

// Property 2, generalized: an urgent push is always observed strictly
// before every message that was already resident, regardless of how many
// non-urgent messages are resident at the time.
func TestRapid_UrgentAlwaysPrecedesResident(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		residentCount := rapid.IntRange(0, 20).Draw(rt, "residentCount")
		q := New()
		for i := 0; i < residentCount; i++ {
			if err := q.Push(1, i); err != nil {
				rt.Fatalf("push: %v", err)
			}
		}

		if err := q.PushUrgent(1, -1); err != nil {
			rt.Fatalf("push urgent: %v", err)
		}

		_, v, err := q.Read(context.Background())
		if err != nil {
			rt.Fatalf("read: %v", err)
		}
		if v.(int) != -1 {
			rt.Fatalf("urgent message was not first out: got %v", v)
		}
	})
}
