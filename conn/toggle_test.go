package conn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/steve-ongera/dbswitch/common"
)

// fakeHandle counts Close calls and can simulate a close failure.
type fakeHandle struct {
	closed   int
	closeErr error
}

func (h *fakeHandle) Close() error {
	h.closed++
	return h.closeErr
}

// fakeOpener hands out a prepared handle or a prepared error.
type fakeOpener struct {
	handle  *fakeHandle
	openErr error
	opens   int
}

func (o *fakeOpener) Open(ctx context.Context, target *Target) (Handle, error) {
	o.opens++
	if o.openErr != nil {
		return nil, o.openErr
	}
	if o.handle == nil {
		o.handle = &fakeHandle{}
	}
	return o.handle, nil
}

// blockingOpener never returns until the context expires.
type blockingOpener struct{}

func (blockingOpener) Open(ctx context.Context, target *Target) (Handle, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func testTarget() *Target {
	return &Target{
		Name:     "test",
		Engine:   common.EngineMySQL,
		Host:     "localhost",
		Port:     3306,
		Database: "test",
		User:     "root",
	}
}

func TestToggle_ActivateParity(t *testing.T) {
	opener := &fakeOpener{}
	toggle := NewToggle(opener, testTarget())

	if toggle.State() != StateDisconnected {
		t.Fatalf("initial state = %v, want %v", toggle.State(), StateDisconnected)
	}

	// With opens always succeeding, state after N calls is Connected
	// for odd N and Disconnected for even N.
	for i := 1; i <= 6; i++ {
		state, err := toggle.Activate(context.Background())
		if err != nil {
			t.Fatalf("Activate() call %d error = %v", i, err)
		}

		want := StateDisconnected
		if i%2 == 1 {
			want = StateConnected
		}
		if state != want {
			t.Errorf("state after %d calls = %v, want %v", i, state, want)
		}
		if toggle.State() != state {
			t.Errorf("State() = %v, want returned state %v", toggle.State(), state)
		}
	}
}

func TestToggle_OpenFailure(t *testing.T) {
	cause := errors.New("connection refused")
	opener := &fakeOpener{openErr: cause}
	toggle := NewToggle(opener, testTarget())

	state, err := toggle.Activate(context.Background())

	if err == nil {
		t.Fatal("Activate() should fail when the open fails")
	}
	if state != StateDisconnected {
		t.Errorf("state after failed open = %v, want %v", state, StateDisconnected)
	}
	if toggle.handle != nil {
		t.Error("no handle should be retained after a failed open")
	}

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("error type = %T, want *ConnectionError", err)
	}
	if connErr.Op != "open" {
		t.Errorf("ConnectionError.Op = %q, want %q", connErr.Op, "open")
	}
	if !errors.Is(err, cause) {
		t.Error("ConnectionError should wrap the underlying cause")
	}

	// A failed open must not poison later calls.
	opener.openErr = nil
	state, err = toggle.Activate(context.Background())
	if err != nil {
		t.Fatalf("Activate() after recovery error = %v", err)
	}
	if state != StateConnected {
		t.Errorf("state after recovery = %v, want %v", state, StateConnected)
	}
}

func TestToggle_CloseExactlyOnce(t *testing.T) {
	handle := &fakeHandle{}
	opener := &fakeOpener{handle: handle}
	toggle := NewToggle(opener, testTarget())

	if _, err := toggle.Activate(context.Background()); err != nil {
		t.Fatalf("connect error = %v", err)
	}
	if _, err := toggle.Activate(context.Background()); err != nil {
		t.Fatalf("disconnect error = %v", err)
	}

	if handle.closed != 1 {
		t.Errorf("handle closed %d times, want exactly once", handle.closed)
	}
	if toggle.State() != StateDisconnected {
		t.Errorf("state = %v, want %v", toggle.State(), StateDisconnected)
	}
}

func TestToggle_CloseFailureStillDisconnects(t *testing.T) {
	cause := errors.New("broken pipe")
	handle := &fakeHandle{closeErr: cause}
	opener := &fakeOpener{handle: handle}
	toggle := NewToggle(opener, testTarget())

	if _, err := toggle.Activate(context.Background()); err != nil {
		t.Fatalf("connect error = %v", err)
	}

	state, err := toggle.Activate(context.Background())

	if err == nil {
		t.Fatal("Activate() should report the close failure")
	}
	if state != StateDisconnected {
		t.Errorf("state after failed close = %v, want %v", state, StateDisconnected)
	}
	if toggle.handle != nil {
		t.Error("handle should be discarded even when close fails")
	}

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("error type = %T, want *ConnectionError", err)
	}
	if connErr.Op != "close" {
		t.Errorf("ConnectionError.Op = %q, want %q", connErr.Op, "close")
	}
	if !errors.Is(err, cause) {
		t.Error("ConnectionError should wrap the underlying cause")
	}
}

func TestToggle_Labels(t *testing.T) {
	opener := &fakeOpener{}
	toggle := NewToggle(opener, testTarget())

	if got := toggle.ActionLabel(); got != "Connect Me" {
		t.Errorf("initial ActionLabel() = %q, want %q", got, "Connect Me")
	}
	if got := toggle.StatusLabel(); got != "Disconnected" {
		t.Errorf("initial StatusLabel() = %q, want %q", got, "Disconnected")
	}

	if _, err := toggle.Activate(context.Background()); err != nil {
		t.Fatalf("connect error = %v", err)
	}

	if got := toggle.ActionLabel(); got != "Disconnect Me" {
		t.Errorf("connected ActionLabel() = %q, want %q", got, "Disconnect Me")
	}
	if got := toggle.StatusLabel(); got != "Connected" {
		t.Errorf("connected StatusLabel() = %q, want %q", got, "Connected")
	}
}

func TestToggle_LabelsUnchangedOnOpenFailure(t *testing.T) {
	opener := &fakeOpener{openErr: errors.New("host unreachable")}
	toggle := NewToggle(opener, testTarget())

	_, _ = toggle.Activate(context.Background())

	if got := toggle.ActionLabel(); got != "Connect Me" {
		t.Errorf("ActionLabel() after failed open = %q, want %q", got, "Connect Me")
	}
	if got := toggle.StatusLabel(); got != "Disconnected" {
		t.Errorf("StatusLabel() after failed open = %q, want %q", got, "Disconnected")
	}
}

func TestToggle_OpenTimeout(t *testing.T) {
	toggle := NewToggle(blockingOpener{}, testTarget())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	state, err := toggle.Activate(ctx)

	if err == nil {
		t.Fatal("Activate() should fail when the open exceeds the deadline")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error should wrap context.DeadlineExceeded, got %v", err)
	}
	if state != StateDisconnected {
		t.Errorf("state after timed-out open = %v, want %v", state, StateDisconnected)
	}
}

func TestToggle_ConnectTimeoutBound(t *testing.T) {
	toggle := NewToggle(blockingOpener{}, testTarget())
	toggle.SetConnectTimeout(50 * time.Millisecond)

	start := time.Now()
	state, err := toggle.Activate(context.Background())

	if err == nil {
		t.Fatal("Activate() should fail when the open exceeds the connect timeout")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error should wrap context.DeadlineExceeded, got %v", err)
	}
	if state != StateDisconnected {
		t.Errorf("state after timed-out open = %v, want %v", state, StateDisconnected)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("Activate() returned after %v, the connect timeout did not bound it", elapsed)
	}
}

func TestToggle_StateChangeCallback(t *testing.T) {
	opener := &fakeOpener{}
	toggle := NewToggle(opener, testTarget())

	var transitions []State
	toggle.SetOnStateChange(func(s State) {
		transitions = append(transitions, s)
	})

	_, _ = toggle.Activate(context.Background())
	_, _ = toggle.Activate(context.Background())

	want := []State{StateConnected, StateDisconnected}
	if len(transitions) != len(want) {
		t.Fatalf("recorded %d transitions, want %d", len(transitions), len(want))
	}
	for i, s := range want {
		if transitions[i] != s {
			t.Errorf("transition %d = %v, want %v", i, transitions[i], s)
		}
	}
}

func TestToggle_SetTarget(t *testing.T) {
	opener := &fakeOpener{}
	toggle := NewToggle(opener, testTarget())

	other := testTarget()
	other.Name = "staging"
	other.Host = "db.internal"

	if err := toggle.SetTarget(other); err != nil {
		t.Fatalf("SetTarget() while disconnected error = %v", err)
	}
	if toggle.Target().Name != "staging" {
		t.Errorf("Target().Name = %q, want %q", toggle.Target().Name, "staging")
	}

	if _, err := toggle.Activate(context.Background()); err != nil {
		t.Fatalf("connect error = %v", err)
	}

	if err := toggle.SetTarget(testTarget()); !errors.Is(err, ErrConnectionOpen) {
		t.Errorf("SetTarget() while connected error = %v, want ErrConnectionOpen", err)
	}
	if toggle.Target().Name != "staging" {
		t.Error("target should not change while a connection is open")
	}
}

func TestToggle_SetTargetInvalid(t *testing.T) {
	toggle := NewToggle(&fakeOpener{}, testTarget())

	bad := testTarget()
	bad.Host = ""

	if err := toggle.SetTarget(bad); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("SetTarget() with invalid target error = %v, want ErrInvalidTarget", err)
	}
}

func TestConnectionError_Error(t *testing.T) {
	err := &ConnectionError{
		Op:     "open",
		Target: "mysql://root@localhost:3306/test",
		Err:    errors.New("access denied"),
	}

	msg := err.Error()
	if msg != "open mysql://root@localhost:3306/test: access denied" {
		t.Errorf("Error() = %q", msg)
	}
}
