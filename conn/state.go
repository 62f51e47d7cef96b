package conn

// State represents the lifecycle state of the database connection.
type State int

const (
	// StateDisconnected indicates no open connection. This is the
	// initial state.
	StateDisconnected State = iota
	// StateConnected indicates an open, verified connection.
	StateConnected
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnected:
		return "Connected"
	default:
		return "Unknown"
	}
}

// ActionLabel returns the label for the control that advances the
// state machine: it names the transition the next press performs,
// not the current state.
func (s State) ActionLabel() string {
	switch s {
	case StateConnected:
		return "Disconnect Me"
	default:
		return "Connect Me"
	}
}

// StatusLabel returns the label describing the current state.
// Display surfaces render it verbatim; it is always derived from
// the state, never stored on its own.
func (s State) StatusLabel() string {
	switch s {
	case StateConnected:
		return "Connected"
	default:
		return "Disconnected"
	}
}
