// ABOUTME: Phase-lockable oscillators modeling continuously rotating clock hands
// ABOUTME: Cursors are re-phased from absolute corrected time, never accumulated
package widget

import (
	"math"
	"sync"
)

// Hand rotation periods, each spanning one full 360° turn.
const (
	SecondPeriodMs = 60_000.0
	MinutePeriodMs = 3_600_000.0
	HourPeriodMs   = 43_200_000.0

	// PassiveThresholdMs is how far the live cursor may drift from the
	// freshly computed phase before a passive correction rewrites it.
	// Below this, rewriting every tick would cause visible micro-jitter.
	PassiveThresholdMs = 12.0
)

// Oscillator is one hand's repeating linear rotation. Its live cursor
// advances on an animation clock (caller-supplied monotonic milliseconds)
// and is re-aligned by Rephase calls rather than restarted.
//
// An Oscillator on its own is not safe for concurrent use; HandSet
// serializes access for the three hands a session owns.
type Oscillator struct {
	periodMs      float64
	originPhaseMs float64 // phase at originAtMs
	originAtMs    float64 // animation-clock instant of the last rephase
	paused        bool
	pausedAtMs    float64
}

// NewOscillator creates an oscillator with the given rotation period.
func NewOscillator(periodMs float64) *Oscillator {
	return &Oscillator{periodMs: periodMs}
}

// PeriodMs returns the rotation period.
func (o *Oscillator) PeriodMs() float64 { return o.periodMs }

// CursorAt returns the live progress cursor at the given animation-clock
// instant, always in [0, period).
func (o *Oscillator) CursorAt(animMs float64) float64 {
	ref := animMs
	if o.paused {
		ref = o.pausedAtMs
	}
	return posMod(o.originPhaseMs+(ref-o.originAtMs), o.periodMs)
}

// Rephase unconditionally sets the cursor to the given phase (forced
// correction). Used on resync, config change, focus regain, manual time
// change, and resume.
func (o *Oscillator) Rephase(animMs, phaseMs float64) {
	o.originAtMs = animMs
	if o.paused {
		o.originAtMs = o.pausedAtMs
	}
	o.originPhaseMs = posMod(phaseMs, o.periodMs)
}

// RephaseIfDrifted rewrites the cursor only when its shortest circular
// distance to the target phase exceeds the threshold (passive correction).
// Reports whether a correction was applied.
func (o *Oscillator) RephaseIfDrifted(animMs, phaseMs, thresholdMs float64) bool {
	target := posMod(phaseMs, o.periodMs)
	if circularDistance(o.CursorAt(animMs), target, o.periodMs) <= thresholdMs {
		return false
	}
	o.Rephase(animMs, target)
	return true
}

// Pause freezes the cursor at the given animation instant. Pausing an
// already paused oscillator is a no-op.
func (o *Oscillator) Pause(animMs float64) {
	if o.paused {
		return
	}
	o.paused = true
	o.pausedAtMs = animMs
}

// Resume unfreezes the cursor without losing phase: the pause duration is
// folded into the origin so the cursor continues where it stopped.
func (o *Oscillator) Resume(animMs float64) {
	if !o.paused {
		return
	}
	o.originAtMs += animMs - o.pausedAtMs
	o.paused = false
}

// AngleDeg maps the cursor at animMs onto 0→360 degrees.
func (o *Oscillator) AngleDeg(animMs float64) float64 {
	return o.CursorAt(animMs) / o.periodMs * 360
}

// HandSet bundles the three hands so corrections, pause, and resume apply
// atomically. The mutex serializes the passive correction tick against
// forced re-phases and angle reads from other goroutines.
type HandSet struct {
	mu     sync.Mutex
	second *Oscillator
	minute *Oscillator
	hour   *Oscillator
}

// NewHandSet creates the second/minute/hour oscillator trio.
func NewHandSet() *HandSet {
	return &HandSet{
		second: NewOscillator(SecondPeriodMs),
		minute: NewOscillator(MinutePeriodMs),
		hour:   NewOscillator(HourPeriodMs),
	}
}

func (h *HandSet) each(fn func(*Oscillator)) {
	fn(h.second)
	fn(h.minute)
	fn(h.hour)
}

// Rephase force-aligns every hand to the given display time.
func (h *HandSet) Rephase(animMs, displayMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.each(func(o *Oscillator) { o.Rephase(animMs, displayMs) })
}

// Correct passively re-aligns hands that drifted past the threshold and
// returns how many were rewritten.
func (h *HandSet) Correct(animMs, displayMs, thresholdMs float64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	corrected := 0
	h.each(func(o *Oscillator) {
		if o.RephaseIfDrifted(animMs, displayMs, thresholdMs) {
			corrected++
		}
	})
	return corrected
}

// Pause freezes all three hands at the same instant.
func (h *HandSet) Pause(animMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.each(func(o *Oscillator) { o.Pause(animMs) })
}

// Resume unfreezes all three hands at the same instant.
func (h *HandSet) Resume(animMs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.each(func(o *Oscillator) { o.Resume(animMs) })
}

// Cursors returns the three live progress cursors in milliseconds.
func (h *HandSet) Cursors(animMs float64) (second, minute, hour float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.second.CursorAt(animMs), h.minute.CursorAt(animMs), h.hour.CursorAt(animMs)
}

// Angles returns the second, minute, and hour hand angles in degrees.
func (h *HandSet) Angles(animMs float64) (second, minute, hour float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.second.AngleDeg(animMs), h.minute.AngleDeg(animMs), h.hour.AngleDeg(animMs)
}

// posMod returns x mod m in [0, m).
func posMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

// circularDistance returns the shortest distance between two phases on a
// circle of the given period, so 59.999s and 0.001s are 2ms apart.
func circularDistance(a, b, periodMs float64) float64 {
	d := math.Abs(a - b)
	if d > periodMs/2 {
		d = periodMs - d
	}
	return d
}
