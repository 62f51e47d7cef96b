package conn

import (
	"net"
	"sync"
	"time"

	"github.com/steve-ongera/dbswitch/common"
)

// ProbeState represents the reachability of the configured server.
type ProbeState int

const (
	ProbeUnknown ProbeState = iota
	ProbeReachable
	ProbeUnreachable
)

// String returns a human-readable representation of the probe state.
func (p ProbeState) String() string {
	switch p {
	case ProbeReachable:
		return "Reachable"
	case ProbeUnreachable:
		return "Unreachable"
	default:
		return "Unknown"
	}
}

// MonitorConfig holds configuration for the reachability monitor.
type MonitorConfig struct {
	// Interval is how often to probe the server.
	Interval time.Duration
	// FailureThreshold is how many consecutive failures before
	// reporting unreachable.
	FailureThreshold int
	// ProbeTimeout bounds a single probe.
	ProbeTimeout time.Duration
}

// DefaultMonitorConfig returns sensible defaults for monitoring.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Interval:         common.MonitorInterval,
		FailureThreshold: 3,
		ProbeTimeout:     common.ProbeTimeout,
	}
}

// ProbeStatus is a snapshot of the monitor's view of the server.
type ProbeStatus struct {
	Addr             string
	State            ProbeState
	LastCheck        time.Time
	LastSuccess      time.Time
	ConsecutiveFails int
	Latency          time.Duration
}

// Monitor periodically probes the configured server's TCP endpoint
// and reports reachability changes. It informs the display surfaces
// only; it never touches the connection handle and never reconnects
// on its own. The toggle stays the single owner of the session.
type Monitor struct {
	mu            sync.RWMutex
	config        MonitorConfig
	running       bool
	stopChan      chan struct{}
	addr          string
	status        ProbeStatus
	onStateChange func(oldState, newState ProbeState)
}

// NewMonitor creates a monitor with the given configuration.
func NewMonitor(config MonitorConfig) *Monitor {
	return &Monitor{
		config:   config,
		stopChan: make(chan struct{}),
	}
}

// SetOnStateChange sets a callback for reachability changes.
func (m *Monitor) SetOnStateChange(callback func(oldState, newState ProbeState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onStateChange = callback
}

// UpdateConfig replaces the monitor configuration. It takes effect
// the next time the monitor starts.
func (m *Monitor) UpdateConfig(config MonitorConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = config
}

// Watch sets the address to probe and resets the tracked status.
// An empty address pauses probing until the next Watch.
func (m *Monitor) Watch(addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addr = addr
	m.status = ProbeStatus{Addr: addr, State: ProbeUnknown}
}

// Start begins the probe loop.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopChan = make(chan struct{})
	interval := m.config.Interval
	stop := m.stopChan
	m.mu.Unlock()

	common.LogInfo("Reachability monitor started (interval: %v)", interval)

	go m.runLoop(interval, stop)
}

// Stop stops the probe loop.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopChan)
	m.mu.Unlock()

	common.LogInfo("Reachability monitor stopped")
}

// IsRunning returns whether the monitor is currently running.
func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// Status returns the current view of the probed server.
// Returns a copy to prevent race conditions.
func (m *Monitor) Status() ProbeStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// runLoop is the main probe loop. The stop channel is captured at
// start so a later Start cannot revive a loop Stop already released.
func (m *Monitor) runLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			m.check()
		}
	}
}

// check performs one probe and updates the tracked status.
func (m *Monitor) check() {
	m.mu.RLock()
	addr := m.addr
	timeout := m.config.ProbeTimeout
	m.mu.RUnlock()

	if addr == "" {
		return
	}

	latency, err := Probe(addr, timeout)

	m.mu.Lock()

	m.status.LastCheck = time.Now()
	oldState := m.status.State

	if err != nil {
		m.status.ConsecutiveFails++
		m.status.Latency = 0
		common.LogWarn("Probe failed for %s (attempt %d/%d): %v",
			addr, m.status.ConsecutiveFails, m.config.FailureThreshold, err)

		if m.status.ConsecutiveFails >= m.config.FailureThreshold {
			m.status.State = ProbeUnreachable
		}
	} else {
		m.status.ConsecutiveFails = 0
		m.status.LastSuccess = time.Now()
		m.status.Latency = latency
		m.status.State = ProbeReachable
	}

	newState := m.status.State
	callback := m.onStateChange
	m.mu.Unlock()

	if oldState != newState {
		common.LogInfo("Server %s reachability changed: %s -> %s", addr, oldState, newState)
		if callback != nil {
			go callback(oldState, newState)
		}
	}
}

// Probe dials addr once and reports whether the server answers on
// its TCP port. It says nothing about authentication, only
// reachability.
func Probe(addr string, timeout time.Duration) (time.Duration, error) {
	start := time.Now()
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return 0, common.ErrUnreachable
	}
	c.Close()
	return time.Since(start), nil
}
