package inspector

import "github.com/kc9xyz/suscan-inspector/internal/inspmsg"

// Params is an alias of the wire parameter struct so callers can write
// inspector.Params instead of reaching into inspmsg; the two are kept
// identical so PARAMS/GET_PARAMS round-trip without copying fields.
type Params = inspmsg.InspectorParams

// FcCtrl re-exports the carrier-control enum for the same reason.
type FcCtrl = inspmsg.FcCtrl

const (
	Manual  = inspmsg.Manual
	Costas2 = inspmsg.Costas2
	Costas4 = inspmsg.Costas4
)
