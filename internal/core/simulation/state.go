package simulation

// State is the controller lifecycle state.
type State uint32

const (
	// StateIdle means no match has been started yet.
	StateIdle State = iota
	// StateActive means the match is stepping.
	StateActive
	// StateStopped means the match was halted and cleared. Start reuses it.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Phase is the desired run state reported by the round backend.
type Phase struct {
	Live  bool
	Round int64
}
