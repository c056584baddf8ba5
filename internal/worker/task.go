package worker

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/kc9xyz/suscan-inspector/internal/inspector"
	"github.com/kc9xyz/suscan-inspector/internal/inspmsg"
	"github.com/kc9xyz/suscan-inspector/internal/mq"
)

// SampleBatch accumulates symbol samples for one inspector between pushes
// to the output queue; it carries the inspector's client-chosen
// inspector_id, not its handle, since the handle is only meaningful to
// the analyzer that allocated it.
type SampleBatch struct {
	InspectorID string
	Samples     []complex128
}

// Callback returns the per-inspector task function the Pool schedules.
// onHalted is invoked once, synchronously, when the task halts (it observed
// Halting, or FeedBulk or the sample-batch push failed), so the caller (the
// analyzer/registry) can publish the Halted transition; the consumer task
// is removed on the same paths. When the consumer has no samples the task
// returns false without calling onHalted or RemoveTask.
func Callback(
	insp *inspector.Inspector,
	handle int,
	consumer Consumer,
	outQueue *mq.Queue,
	logger *log.Logger,
	onHalted func(),
) TaskFunc {
	return func(ctx context.Context) bool {
		if insp.State() == inspector.Halting {
			onHalted()
			consumer.RemoveTask()
			return false
		}

		samples, ok := consumer.AssertSamples()
		if !ok {
			return false
		}

		var batch *SampleBatch

		for len(samples) > 0 {
			fed, err := insp.FeedBulk(samples)
			if err != nil {
				if logger != nil {
					logger.Error("feed_bulk failed, halting inspector", "handle", handle, "err", err)
				}
				onHalted()
				consumer.RemoveTask()
				return false
			}

			if insp.SymNewSample() {
				if batch == nil {
					batch = &SampleBatch{InspectorID: insp.InspectorID()}
				}
				batch.Samples = append(batch.Samples, insp.SymSamplerOutput())
			}

			consumer.Advance(fed)
			samples = samples[fed:]

			if fed == 0 {
				// feed_bulk must always make progress on a non-empty
				// slice; bail rather than spin.
				break
			}
		}

		if batch != nil {
			if err := outQueue.Push(inspmsg.TypeSamples, batch); err != nil {
				if logger != nil {
					logger.Error("failed to publish sample batch, halting inspector", "handle", handle, "err", err)
				}
				onHalted()
				consumer.RemoveTask()
				return false
			}
		}

		return true
	}
}
