package proctor

import (
	"sync"

	"go.uber.org/zap"
)

// Monitor accumulates page visibility transitions for one session.
// It is advisory telemetry only: it never gates submission or scoring.
type Monitor struct {
	mu       sync.Mutex
	hidden   bool
	switches int
	closed   bool

	onSwitch func(count int)
	logger   *zap.Logger
}

// NewMonitor creates a monitor. onSwitch is invoked after every
// transition to hidden with the updated counter; it may be nil.
func NewMonitor(logger *zap.Logger, onSwitch func(count int)) *Monitor {
	return &Monitor{
		onSwitch: onSwitch,
		logger:   logger,
	}
}

// ReportVisibility records one visibility transition. Only an actual
// visible-to-hidden edge increments the counter; repeated hidden
// reports are collapsed.
func (m *Monitor) ReportVisibility(hidden bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	wasHidden := m.hidden
	m.hidden = hidden

	if !hidden || wasHidden {
		m.mu.Unlock()
		return
	}

	m.switches++
	count := m.switches
	notify := m.onSwitch
	m.mu.Unlock()

	m.logger.Info("tab switch detected", zap.Int("tab_switches", count))
	if notify != nil {
		notify(count)
	}
}

// Switches returns the monotonic hidden-transition counter.
func (m *Monitor) Switches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.switches
}

// Close unsubscribes the monitor; later reports are dropped.
func (m *Monitor) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}
