package conn

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateDisconnected, "Disconnected"},
		{StateConnected, "Connected"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("State.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_ActionLabel(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateDisconnected, "Connect Me"},
		{StateConnected, "Disconnect Me"},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.ActionLabel(); got != tt.expected {
				t.Errorf("State.ActionLabel() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_StatusLabel(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateDisconnected, "Disconnected"},
		{StateConnected, "Connected"},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.StatusLabel(); got != tt.expected {
				t.Errorf("State.StatusLabel() = %v, want %v", got, tt.expected)
			}
		})
	}
}
