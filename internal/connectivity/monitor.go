// Package connectivity tracks remote reachability for the sync engine and
// maintains an informational backend-health sub-status.
package connectivity

import (
	"math/rand"
	"sync"
	"time"

	"github.com/plantboard/backend/internal/logging"
)

// HealthState is the observational backend-health sub-status. It represents
// backend-specific health distinct from raw reachability and never gates the
// sync queue.
type HealthState string

const (
	HealthConnecting   HealthState = "connecting"
	HealthConnected    HealthState = "connected"
	HealthDisconnected HealthState = "disconnected"
	HealthError        HealthState = "error"
)

// HealthConfig tunes the backend-health state machine.
type HealthConfig struct {
	SettleDelay   time.Duration // connecting -> connected
	CheckInterval time.Duration // how often a connected backend is probed
	RecoverDelay  time.Duration // error -> connected
	ErrorRate     float64       // probability a probe reports a transient error
}

// DefaultHealthConfig returns the default health machine tuning.
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		SettleDelay:   2 * time.Second,
		CheckInterval: 15 * time.Second,
		RecoverDelay:  5 * time.Second,
		ErrorRate:     0.05,
	}
}

// Monitor maintains the process-wide "is the remote reachable" signal. It is
// fed by platform connectivity events through SetOnline and read
// synchronously through Online. Subscribers receive a coalesced signal on
// every transition.
type Monitor struct {
	mu        sync.Mutex
	online    bool
	health    HealthState
	cfg       HealthConfig
	rng       *rand.Rand
	subs      []chan struct{}
	stopCh    chan struct{}
	wg        sync.WaitGroup
	isRunning bool
	log       *logging.Logger
}

// NewMonitor creates a monitor with the given initial reachability.
func NewMonitor(initialOnline bool, cfg HealthConfig, log *logging.Logger) *Monitor {
	if log == nil {
		log = logging.Get()
	}

	health := HealthDisconnected
	if initialOnline {
		health = HealthConnecting
	}

	return &Monitor{
		online: initialOnline,
		health: health,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		stopCh: make(chan struct{}),
		log:    log,
	}
}

// Online returns the current reachability signal.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Health returns the current backend-health sub-status.
func (m *Monitor) Health() HealthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health
}

// SetOnline records a platform connectivity transition. A drop forces the
// health machine to disconnected; a recovery restarts it at connecting.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	if online {
		m.health = HealthConnecting
	} else {
		m.health = HealthDisconnected
	}
	m.mu.Unlock()

	m.log.Info("connectivity changed", logging.Fields{"online": online})
	m.notify()
}

// Subscribe returns a channel signalled on every connectivity or health
// transition. Signals are coalesced.
func (m *Monitor) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Start runs the backend-health state machine until Stop is called. The
// machine settles connecting to connected after a fixed delay, probes a
// connected backend on an interval with a random chance of a transient
// error, and auto-recovers from errors after a fixed delay.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = true
	m.mu.Unlock()

	m.wg.Add(1)
	go m.healthLoop()
}

// Stop stops the health machine and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = false
	m.mu.Unlock()

	close(m.stopCh)
	m.wg.Wait()
}

func (m *Monitor) healthLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			if m.step() {
				m.notify()
			}
			ticker.Reset(m.tickInterval())
		}
	}
}

// tickInterval picks the next timer based on the current state.
func (m *Monitor) tickInterval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.health {
	case HealthConnecting:
		return m.cfg.SettleDelay
	case HealthError:
		return m.cfg.RecoverDelay
	default:
		return m.cfg.CheckInterval
	}
}

// step advances the health machine one transition. Returns true when the
// state changed.
func (m *Monitor) step() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.health {
	case HealthConnecting:
		if m.online {
			m.health = HealthConnected
			return true
		}
	case HealthConnected:
		if !m.online {
			m.health = HealthDisconnected
			return true
		}
		if m.rng.Float64() < m.cfg.ErrorRate {
			m.health = HealthError
			m.log.Warn("backend health probe failed, transient error", nil)
			return true
		}
	case HealthError:
		// Bounded auto-recovery after the recover delay.
		if m.online {
			m.health = HealthConnected
			m.log.Info("backend health recovered", nil)
			return true
		}
		m.health = HealthDisconnected
		return true
	case HealthDisconnected:
		if m.online {
			m.health = HealthConnecting
			return true
		}
	}
	return false
}

func (m *Monitor) notify() {
	m.mu.Lock()
	subs := append([]chan struct{}(nil), m.subs...)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
