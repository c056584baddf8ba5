// Package inspmsg defines the typed request/response envelope exchanged
// between clients and the analyzer thread over a mq.Queue, and the message
// queue type tags used to discriminate control traffic from sample-batch
// traffic on the same queues.
package inspmsg

import "github.com/kc9xyz/suscan-inspector/internal/channel"

// Queue type tags discriminating inspector control messages from sample
// batches on a shared queue.
const (
	TypeInspector uint32 = iota + 1
	TypeSamples
)

// Kind is the InspectorMsg discriminator.
type Kind int

const (
	Open Kind = iota
	Close
	GetInfo
	Info
	GetParams
	Params
	WrongHandle
	WrongKind
)

func (k Kind) String() string {
	switch k {
	case Open:
		return "OPEN"
	case Close:
		return "CLOSE"
	case GetInfo:
		return "GET_INFO"
	case Info:
		return "INFO"
	case GetParams:
		return "GET_PARAMS"
	case Params:
		return "PARAMS"
	case WrongHandle:
		return "WRONG_HANDLE"
	case WrongKind:
		return "WRONG_KIND"
	default:
		return "UNKNOWN"
	}
}

// FcCtrl selects how the pipeline recovers the carrier.
type FcCtrl int

const (
	Manual FcCtrl = iota
	Costas2
	Costas4
)

func (c FcCtrl) Valid() bool {
	return c == Manual || c == Costas2 || c == Costas4
}

// InspectorParams are the client-settable parameters of a running
// inspector.
type InspectorParams struct {
	InspectorID string
	Baud        float64
	FcOff       float64
	FcPhi       float64
	SymPhase    float64
	FcCtrl      FcCtrl
}

// BaudEstimate carries the two independent baud-rate estimates returned on
// GET_INFO.
type BaudEstimate struct {
	Fac float64
	Nln float64
}

// Msg is the InspectorMsg envelope exchanged between clients and the
// analyzer.
type Msg struct {
	Kind        Kind
	ReqID       uint32
	Handle      int
	Channel     channel.Descriptor
	Params      InspectorParams
	Baud        BaudEstimate
	InspectorID string
	Status      Kind
}
