// Package worker implements the worker-pool callback glue: the
// per-inspector task function invoked by the worker pool, which pulls
// samples from the consumer, drives FeedBulk, emits sample batches, and
// observes halting.
package worker

import "context"

// Consumer is the sample-source collaborator a task pulls from: it
// delivers the same sample stream, in the same order, to every task
// registered against it during a scheduling epoch.
type Consumer interface {
	// AssertSamples reports whether samples are currently available and,
	// if so, returns them without consuming them.
	AssertSamples() (samples []complex128, ok bool)
	// Advance marks n leading samples of the last AssertSamples result as
	// consumed.
	Advance(n int)
	// RemoveTask detaches this task from the consumer; called once, when
	// the task will not be rescheduled.
	RemoveTask()
}

// TaskFunc is the per-inspector worker callback. It returns restart=true to
// request rescheduling, false to detach from the pool.
type TaskFunc func(ctx context.Context) (restart bool)
