package conn

import (
	"context"
	"fmt"
	"time"

	"github.com/steve-ongera/dbswitch/common"
)

// Common errors - re-exported from common package for convenience.
var (
	ErrConnectionOpen = common.ErrConnectionOpen
	ErrInvalidTarget  = common.ErrInvalidTarget
)

// Handle is an open session to a database server. The Toggle owns
// the handle exclusively: it is created on the transition into
// StateConnected and closed on the transition out, never retained
// past StateDisconnected.
type Handle interface {
	Close() error
}

// Opener establishes connections to a target. Implementations must
// honor the context deadline and return an error, not a handle, when
// the attempt fails.
type Opener interface {
	Open(ctx context.Context, target *Target) (Handle, error)
}

// ConnectionError reports a failed open or close attempt against a
// target. It wraps the underlying cause so callers can inspect it
// with errors.Is and errors.As.
type ConnectionError struct {
	// Op is the operation that failed: "open" or "close".
	Op string
	// Target describes the target without credentials.
	Target string
	// Err is the underlying cause.
	Err error
}

// Error returns a human-readable description of the failure.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Toggle is the two-state lifecycle controller around a database
// connection. Each Activate call flips the state: it opens a
// connection when disconnected and closes the held one when
// connected. The display labels are derived from the state and are
// consistent with it after every call.
//
// Toggle holds no lock. Activate runs synchronously on the calling
// goroutine and callers must not overlap invocations; display
// surfaces suppress re-entry (disabled button, ignored key) while a
// call is in flight.
type Toggle struct {
	opener   Opener
	target   *Target
	state    State
	handle   Handle
	timeout  time.Duration
	onChange func(State)
}

// NewToggle creates a toggle for the given target. The opener is the
// injected connection factory; state starts at StateDisconnected.
func NewToggle(opener Opener, target *Target) *Toggle {
	return &Toggle{
		opener:  opener,
		target:  target,
		state:   StateDisconnected,
		timeout: common.ConnectTimeout,
	}
}

// SetConnectTimeout overrides the bound on a single open attempt.
// Call it before the first Activate, never concurrently with one.
func (t *Toggle) SetConnectTimeout(timeout time.Duration) {
	if timeout > 0 {
		t.timeout = timeout
	}
}

// Activate advances the state machine by one step and returns the
// resulting state. From StateDisconnected it attempts a single open,
// bounded by the connect timeout; on failure the state stays
// StateDisconnected, no handle is retained, and a *ConnectionError
// carries the cause. From StateConnected it discards the handle and
// transitions to StateDisconnected unconditionally, then reports any
// close failure; the state is already StateDisconnected when a close
// error is returned.
func (t *Toggle) Activate(ctx context.Context) (State, error) {
	if t.state == StateConnected {
		return t.doClose()
	}
	return t.doOpen(ctx)
}

func (t *Toggle) doOpen(ctx context.Context) (State, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	common.LogInfo("Opening connection to %s", t.target.Redacted())

	handle, err := t.opener.Open(ctx, t.target)
	if err != nil {
		common.LogError("Open failed for %s: %v", t.target.Redacted(), err)
		return t.state, &ConnectionError{Op: "open", Target: t.target.Redacted(), Err: err}
	}

	t.handle = handle
	t.setState(StateConnected)
	common.LogInfo("Connected to %s", t.target.Redacted())

	return t.state, nil
}

func (t *Toggle) doClose() (State, error) {
	// Give up the handle and report Disconnected before attempting
	// the close: a close failure must not leave the controller
	// claiming a live connection it no longer trusts.
	handle := t.handle
	t.handle = nil
	t.setState(StateDisconnected)

	if handle == nil {
		return t.state, nil
	}

	if err := handle.Close(); err != nil {
		common.LogWarn("Close failed for %s: %v", t.target.Redacted(), err)
		return t.state, &ConnectionError{Op: "close", Target: t.target.Redacted(), Err: err}
	}

	common.LogInfo("Disconnected from %s", t.target.Redacted())
	return t.state, nil
}

// State returns the current state.
func (t *Toggle) State() State {
	return t.state
}

// ActionLabel returns the label for the control that triggers
// Activate, derived from the current state.
func (t *Toggle) ActionLabel() string {
	return t.state.ActionLabel()
}

// StatusLabel returns the label describing the current state.
func (t *Toggle) StatusLabel() string {
	return t.state.StatusLabel()
}

// Target returns the configured target.
func (t *Toggle) Target() *Target {
	return t.target
}

// SetTarget changes the configured target. Retargeting while a
// connection is open is rejected with ErrConnectionOpen; disconnect
// first.
func (t *Toggle) SetTarget(target *Target) error {
	if t.state == StateConnected {
		return ErrConnectionOpen
	}
	if err := target.Validate(); err != nil {
		return err
	}
	t.target = target
	return nil
}

// SetOnStateChange sets a callback invoked on every state
// transition. It runs synchronously on the goroutine driving
// Activate, after the state has changed.
func (t *Toggle) SetOnStateChange(callback func(State)) {
	t.onChange = callback
}

func (t *Toggle) setState(state State) {
	if t.state == state {
		return
	}
	t.state = state
	if t.onChange != nil {
		t.onChange(state)
	}
}
