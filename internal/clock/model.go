// ABOUTME: Synchronized clock model mapping local clock reads to corrected time
// ABOUTME: Holds offset, drift nudges, manual anchors, and the display timezone
package clock

import (
	"sync"
	"time"
)

// Mode selects the base the corrected time is derived from.
type Mode int

const (
	// ModeSystem ties corrected time to the live local clock.
	ModeSystem Mode = iota
	// ModeManual extrapolates forward from a frozen anchor pair, so a
	// manually set epoch keeps advancing in real time.
	ModeManual
)

func (m Mode) String() string {
	switch m {
	case ModeSystem:
		return "system"
	case ModeManual:
		return "manual"
	default:
		return "unknown"
	}
}

// Timezone display offset bounds, ±14 hours in minutes.
const (
	MinTimezoneOffsetMinutes = -840
	MaxTimezoneOffsetMinutes = 840
)

// UnixMs returns the local wall clock as fractional epoch milliseconds.
func UnixMs() float64 {
	return float64(time.Now().UnixNano()) / 1e6
}

// Model is the single owner of corrected-time state. Reads come from the
// render tick and the phase-correction tick concurrently, so state is
// guarded by a RWMutex. All setters take effect immediately; there is no
// queued state.
type Model struct {
	mu    sync.RWMutex
	nowMs func() float64

	mode           Mode
	manualEpochMs  float64
	manualAnchorMs float64
	driftMs        float64
	offsetMs       float64
	tzOffsetMin    int
}

// New creates a model in system mode with zero offset.
func New() *Model {
	return NewWithNow(UnixMs)
}

// NewWithNow creates a model reading the local clock through now.
func NewWithNow(now func() float64) *Model {
	return &Model{nowMs: now, mode: ModeSystem}
}

// CorrectedNow returns the current best estimate of true time in epoch
// milliseconds: base + driftMs + offsetMs.
func (m *Model) CorrectedNow() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.baseEpochLocked() + m.driftMs + m.offsetMs
}

// DisplayNow returns corrected time shifted by the display timezone.
// The timezone offset never feeds back into CorrectedNow.
func (m *Model) DisplayNow() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	base := m.baseEpochLocked() + m.driftMs + m.offsetMs
	return base + float64(m.tzOffsetMin)*60_000
}

func (m *Model) baseEpochLocked() float64 {
	if m.mode == ModeManual {
		return m.manualEpochMs + (m.nowMs() - m.manualAnchorMs)
	}
	return m.nowMs()
}

// SyncToSystemTime switches to system mode with the given offset and
// clears any accumulated drift nudges.
func (m *Model) SyncToSystemTime(offsetMs float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = ModeSystem
	m.offsetMs = offsetMs
	m.driftMs = 0
}

// SetEpoch switches to manual mode, anchored so that CorrectedNow reads
// epochMs right now and advances in real time from there.
func (m *Model) SetEpoch(epochMs, offsetMs float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = ModeManual
	m.manualEpochMs = epochMs
	m.manualAnchorMs = m.nowMs()
	m.offsetMs = offsetMs
	m.driftMs = 0
}

// AdjustBy accumulates a live nudge into the drift term without touching
// the base or the offset.
func (m *Model) AdjustBy(deltaMs float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.driftMs += deltaMs
}

// SetTimezoneOffset stores the display-only timezone shift, clamped to
// ±14 hours.
func (m *Model) SetTimezoneOffset(minutes int) {
	if minutes < MinTimezoneOffsetMinutes {
		minutes = MinTimezoneOffsetMinutes
	}
	if minutes > MaxTimezoneOffsetMinutes {
		minutes = MaxTimezoneOffsetMinutes
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tzOffsetMin = minutes
}

// TimezoneOffsetMinutes returns the display timezone shift.
func (m *Model) TimezoneOffsetMinutes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tzOffsetMin
}

// Mode returns the current mode.
func (m *Model) Mode() Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.mode
}

// Offset returns the installed offset in milliseconds.
func (m *Model) Offset() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.offsetMs
}
