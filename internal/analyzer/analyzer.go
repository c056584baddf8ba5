// Package analyzer implements the analyzer message handler: it runs in
// its own goroutine, reads InspectorMsg requests off the input queue,
// mutates the handle table, and writes responses to the output queue.
package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/kc9xyz/suscan-inspector/internal/inspector"
	"github.com/kc9xyz/suscan-inspector/internal/inspmsg"
	"github.com/kc9xyz/suscan-inspector/internal/mq"
	"github.com/kc9xyz/suscan-inspector/internal/registry"
	"github.com/kc9xyz/suscan-inspector/internal/worker"
)

// Source is the effective-sample-rate source the inspector constructor
// needs.
type Source interface {
	SampleRate() float64
}

// Analyzer owns the handle table and is the sole mutator of inspector
// lifecycle state except through the worker callback.
type Analyzer struct {
	source Source
	table  *registry.Table
	pool   *worker.Pool
	in     *mq.Queue
	out    *mq.Queue
	logger *log.Logger

	newConsumer func(handle registry.Handle) worker.Consumer

	onEvent func(event string, handle registry.Handle, inspectorID string)
}

// New returns an analyzer wired to the given request/response queues. The
// two queues must be distinct: responses are written to out with the same
// TypeInspector tag that Run reads requests by, so on a shared queue Run
// would read its own responses back as requests. The out queue carries both
// control responses and sample batches, discriminated by message type.
// newConsumer builds the sample-consumer collaborator for a freshly
// registered handle.
func New(
	source Source,
	in, out *mq.Queue,
	pool *worker.Pool,
	newConsumer func(handle registry.Handle) worker.Consumer,
	logger *log.Logger,
) *Analyzer {
	return &Analyzer{
		source:      source,
		table:       registry.New(),
		pool:        pool,
		in:          in,
		out:         out,
		logger:      logger,
		newConsumer: newConsumer,
	}
}

// OnEvent registers a callback invoked for every lifecycle-relevant
// message the analyzer handles (open/close/params/halted), for the
// optional event log / discovery layers to observe without coupling the
// analyzer to them directly.
func (a *Analyzer) OnEvent(fn func(event string, handle registry.Handle, inspectorID string)) {
	a.onEvent = fn
}

func (a *Analyzer) emit(event string, h registry.Handle, inspectorID string) {
	if a.onEvent != nil {
		a.onEvent(event, h, inspectorID)
	}
}

// Run reads InspectorMsg requests off the input queue until ctx is done or
// the queue is closed.
func (a *Analyzer) Run(ctx context.Context) error {
	for {
		payload, err := a.in.ReadTyped(ctx, inspmsg.TypeInspector)
		if err != nil {
			if errors.Is(err, mq.ErrClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		msg, ok := payload.(*inspmsg.Msg)
		if !ok {
			if a.logger != nil {
				a.logger.Error("analyzer: non-InspectorMsg payload on inspector-typed message")
			}
			continue
		}

		a.handle(ctx, msg)
	}
}

// handle dispatches one request and writes the (possibly mutated) message
// to the output queue. Ownership of msg transfers to the queue on success;
// the handler never frees it itself.
func (a *Analyzer) handle(ctx context.Context, msg *inspmsg.Msg) {
	var activeInspectorID string
	hadInspector := false

	switch msg.Kind {
	case inspmsg.Open:
		h, err := a.openInspector(ctx, msg)
		if err != nil {
			if a.logger != nil {
				a.logger.Error("open failed", "err", err)
			}
			return
		}
		msg.Handle = int(h)

	case inspmsg.GetInfo:
		insp := a.table.Lookup(registry.Handle(msg.Handle))
		if insp == nil {
			msg.Kind = inspmsg.WrongHandle
		} else {
			fac, nln := insp.BaudEstimates()
			msg.Kind = inspmsg.Info
			msg.Baud = inspmsg.BaudEstimate{Fac: fac, Nln: nln}
			activeInspectorID, hadInspector = insp.InspectorID(), true
		}

	case inspmsg.GetParams:
		insp := a.table.Lookup(registry.Handle(msg.Handle))
		if insp == nil {
			msg.Kind = inspmsg.WrongHandle
		} else {
			msg.Kind = inspmsg.Params
			msg.Params = insp.Params()
			activeInspectorID, hadInspector = insp.InspectorID(), true
		}

	case inspmsg.Params:
		insp := a.table.Lookup(registry.Handle(msg.Handle))
		if insp == nil {
			msg.Kind = inspmsg.WrongHandle
		} else {
			if err := insp.ApplyParams(msg.Params); err != nil {
				if a.logger != nil {
					a.logger.Error("params apply failed", "handle", msg.Handle, "err", err)
				}
				msg.Kind = inspmsg.WrongHandle
				break
			}
			activeInspectorID, hadInspector = insp.InspectorID(), true
			a.emit("params", registry.Handle(msg.Handle), activeInspectorID)
		}

	case inspmsg.Close:
		a.closeInspector(msg)

	default:
		msg.Status = msg.Kind
		msg.Kind = inspmsg.WrongKind
	}

	if hadInspector {
		msg.InspectorID = activeInspectorID
	}

	if err := a.out.Push(inspmsg.TypeInspector, msg); err != nil {
		if a.logger != nil {
			a.logger.Error("failed to publish response", "err", err)
		}
	}
}

func (a *Analyzer) openInspector(ctx context.Context, msg *inspmsg.Msg) (registry.Handle, error) {
	insp, err := inspector.New(a.source.SampleRate(), msg.Channel)
	if err != nil {
		return registry.InvalidHandle, fmt.Errorf("analyzer: construct inspector: %w", err)
	}

	h, err := a.table.Register(insp)
	if err != nil {
		return registry.InvalidHandle, fmt.Errorf("analyzer: register inspector: %w", err)
	}

	consumer := a.newConsumer(h)
	handle := h
	task := worker.Callback(insp, int(handle), consumer, a.out, a.logger, func() {
		a.table.MarkHalted(handle)
		a.emit("halted", handle, insp.InspectorID())
	})

	if err := a.pool.PushTask(ctx, task); err != nil {
		a.table.Unregister(h)
		return registry.InvalidHandle, fmt.Errorf("analyzer: schedule worker task: %w", err)
	}

	a.emit("open", h, insp.InspectorID())
	return h, nil
}

// closeInspector handles a CLOSE request: it looks at the raw slot (not
// the Running-only Lookup) so it can authorize CLOSE against a HALTED
// inspector too.
func (a *Analyzer) closeInspector(msg *inspmsg.Msg) {
	h := registry.Handle(msg.Handle)
	insp, state, ok := a.table.LookupRaw(h)
	if !ok {
		msg.Kind = inspmsg.WrongHandle
		return
	}

	msg.InspectorID = insp.InspectorID()

	if state == inspector.Halted {
		a.table.Dispose(h)
	} else {
		a.table.MarkHalting(h)
	}

	a.emit("close", h, msg.InspectorID)
}
