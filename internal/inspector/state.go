package inspector

// State is the inspector lifecycle state machine:
//
//	CREATED --register--> RUNNING --CLOSE-while-running--> HALTING --worker observes--> HALTED
//	RUNNING --feed or publish failure in the worker--> HALTED
//
// State is published through atomic.Int32 loads/stores on Inspector.state:
// the analyzer goroutine is the only writer of HALTING, the owning worker
// goroutine is the only writer of HALTED, and HALTED is terminal, so
// there is never a concurrent write once either side has written it.
type State int32

const (
	Created State = iota
	Running
	Halting
	Halted
)

func (s State) String() string {
	switch s {
	case Created:
		return "CREATED"
	case Running:
		return "RUNNING"
	case Halting:
		return "HALTING"
	case Halted:
		return "HALTED"
	default:
		return "UNKNOWN"
	}
}
