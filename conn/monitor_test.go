package conn

import (
	"net"
	"testing"
	"time"

	"github.com/steve-ongera/dbswitch/common"
)

func TestProbeState_String(t *testing.T) {
	tests := []struct {
		state    ProbeState
		expected string
	}{
		{ProbeReachable, "Reachable"},
		{ProbeUnreachable, "Unreachable"},
		{ProbeUnknown, "Unknown"},
		{ProbeState(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("ProbeState.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDefaultMonitorConfig(t *testing.T) {
	config := DefaultMonitorConfig()

	if config.Interval != common.MonitorInterval {
		t.Errorf("Interval = %v, want %v", config.Interval, common.MonitorInterval)
	}

	if config.FailureThreshold != 3 {
		t.Errorf("FailureThreshold = %v, want 3", config.FailureThreshold)
	}

	if config.ProbeTimeout != common.ProbeTimeout {
		t.Errorf("ProbeTimeout = %v, want %v", config.ProbeTimeout, common.ProbeTimeout)
	}
}

func TestMonitor_StartStop(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig())

	if m.IsRunning() {
		t.Error("Monitor should not be running initially")
	}

	m.Start()
	time.Sleep(100 * time.Millisecond) // Give time for goroutine to start

	if !m.IsRunning() {
		t.Error("Monitor should be running after Start()")
	}

	m.Stop()
	time.Sleep(100 * time.Millisecond) // Give time for goroutine to stop

	if m.IsRunning() {
		t.Error("Monitor should not be running after Stop()")
	}
}

func TestMonitor_ProbeReachable(t *testing.T) {
	// A real local listener stands in for the database server.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	m := NewMonitor(MonitorConfig{
		Interval:         time.Second,
		FailureThreshold: 3,
		ProbeTimeout:     time.Second,
	})
	m.Watch(ln.Addr().String())

	m.check()

	status := m.Status()
	if status.State != ProbeReachable {
		t.Errorf("State = %v, want %v", status.State, ProbeReachable)
	}
	if status.ConsecutiveFails != 0 {
		t.Errorf("ConsecutiveFails = %d, want 0", status.ConsecutiveFails)
	}
	if status.LastSuccess.IsZero() {
		t.Error("LastSuccess should be set after a successful probe")
	}
}

func TestMonitor_ProbeUnreachable(t *testing.T) {
	// Grab a free port and close the listener so nothing answers.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	m := NewMonitor(MonitorConfig{
		Interval:         time.Second,
		FailureThreshold: 2,
		ProbeTimeout:     500 * time.Millisecond,
	})
	m.Watch(addr)

	// First failure stays below the threshold.
	m.check()
	status := m.Status()
	if status.ConsecutiveFails != 1 {
		t.Errorf("ConsecutiveFails = %d, want 1", status.ConsecutiveFails)
	}
	if status.State != ProbeUnknown {
		t.Errorf("State = %v, want %v before threshold", status.State, ProbeUnknown)
	}

	// Second failure crosses it.
	m.check()
	status = m.Status()
	if status.State != ProbeUnreachable {
		t.Errorf("State = %v, want %v", status.State, ProbeUnreachable)
	}
}

func TestMonitor_StateChangeCallback(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	m := NewMonitor(MonitorConfig{
		Interval:         time.Second,
		FailureThreshold: 1,
		ProbeTimeout:     time.Second,
	})

	changes := make(chan ProbeState, 1)
	m.SetOnStateChange(func(oldState, newState ProbeState) {
		changes <- newState
	})

	m.Watch(ln.Addr().String())
	m.check()

	select {
	case state := <-changes:
		if state != ProbeReachable {
			t.Errorf("callback state = %v, want %v", state, ProbeReachable)
		}
	case <-time.After(time.Second):
		t.Error("state change callback was not invoked")
	}
}

func TestMonitor_WatchResets(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	m := NewMonitor(DefaultMonitorConfig())
	m.Watch(ln.Addr().String())
	m.check()

	if m.Status().State != ProbeReachable {
		t.Fatal("expected reachable state before reset")
	}

	m.Watch("")

	status := m.Status()
	if status.State != ProbeUnknown {
		t.Errorf("State after Watch() = %v, want %v", status.State, ProbeUnknown)
	}
	if status.ConsecutiveFails != 0 {
		t.Errorf("ConsecutiveFails after Watch() = %d, want 0", status.ConsecutiveFails)
	}
}

func TestMonitor_EmptyAddrSkipsProbe(t *testing.T) {
	m := NewMonitor(DefaultMonitorConfig())

	m.check()

	status := m.Status()
	if !status.LastCheck.IsZero() {
		t.Error("check() with no address should not record a probe")
	}
}
