// ABOUTME: Widget session owning the clock model, oscillators, and timers
// ABOUTME: Explicit teardown releases every timer so instances never leak
package widget

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chronosync/chrono-go/internal/clock"
	"github.com/chronosync/chrono-go/internal/timesource"
)

// Frame is one render-ready snapshot pushed to the display.
type Frame struct {
	SessionID string
	State     SyncState
	Mode      clock.Mode

	// Last completed aggregate.
	OffsetMs float64
	RangeMs  float64

	// Display time (corrected + timezone + tick bias) at render.
	DisplayMs float64
	Hour      int
	Minute    int
	Second    int

	// Digital decorations.
	Highlight bool
	Dim       bool

	// Analogue hand angles, degrees clockwise from 12.
	SecondDeg float64
	MinuteDeg float64
	HourDeg   float64

	Paused  bool
	SyncErr string
}

// Session drives one widget instance: periodic resync passes, the
// boundary-aligned digital tick, and the passive phase correction tick.
// All three are independent cooperative timers; every correction is
// recomputed from absolute corrected time, so skipped or delayed ticks
// never corrupt state.
type Session struct {
	id        string
	cfg       Config
	model     *clock.Model
	hands     *HandSet
	sampler   timesource.Sampler
	notify    func(Frame)
	animStart time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	state       SyncState
	estimate    timesource.OffsetEstimate
	syncErr     error
	paused      bool
	renderTimer *time.Timer
}

// NewSession creates a session. notify receives every rendered frame and
// may be nil. The session owns its clock model; multiple sessions in one
// process are fully independent.
func NewSession(cfg Config, sampler timesource.Sampler, notify func(Frame)) *Session {
	cfg.Clamp()
	ctx, cancel := context.WithCancel(context.Background())

	model := clock.New()
	model.SetTimezoneOffset(cfg.TimezoneOffsetMinutes)

	s := &Session{
		id:        uuid.New().String(),
		cfg:       cfg,
		model:     model,
		hands:     NewHandSet(),
		sampler:   sampler,
		notify:    notify,
		animStart: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		state:     StateUninitialized,
		paused:    cfg.Paused,
	}
	return s
}

// ID returns the session's instance id.
func (s *Session) ID() string { return s.id }

// Model exposes the session's clock model for host code.
func (s *Session) Model() *clock.Model { return s.model }

// State returns the current sync state.
func (s *Session) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the resync, render tick, and phase correction loops.
func (s *Session) Start() {
	s.mu.Lock()
	s.state = StateSynchronizing
	s.mu.Unlock()

	s.ForceRephase()
	s.render()

	s.wg.Add(3)
	go s.resyncLoop()
	go s.tickLoop()
	go s.correctionLoop()
}

// Close tears the session down, releasing all timers. Safe to call once.
func (s *Session) Close() {
	s.cancel()

	s.mu.Lock()
	if s.renderTimer != nil {
		s.renderTimer.Stop()
		s.renderTimer = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// animMs is the session's monotonic animation clock in milliseconds.
func (s *Session) animMs() float64 {
	return float64(time.Since(s.animStart)) / float64(time.Millisecond)
}

// displayNowMs is display time: corrected time shifted by the timezone
// offset plus the operator tick bias.
func (s *Session) displayNowMs() float64 {
	return s.model.DisplayNow() + s.cfg.TickOffsetMs
}

// resyncLoop runs a full estimation pass immediately and then on the
// resync interval. The clock model is only mutated after a pass
// completes; an abandoned pass never touches shared state.
func (s *Session) resyncLoop() {
	defer s.wg.Done()

	s.Resync()

	ticker := time.NewTicker(s.cfg.ResyncInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Resync()
		}
	}
}

// Resync runs one aggregation pass and installs the result.
func (s *Session) Resync() {
	opts := timesource.EstimateOptions{
		Samples:  s.cfg.Samples,
		Interval: s.cfg.SampleInterval(),
		Trim:     s.cfg.Trim,
	}

	est, err := timesource.Estimate(s.ctx, s.sampler, opts)

	s.mu.Lock()
	if err != nil {
		s.syncErr = err
		if s.state == StateUninitialized {
			s.state = StateSynchronizing
		}
		s.mu.Unlock()
		log.Printf("Session %s: sync failed: %v", s.id, err)
		s.render()
		return
	}
	s.syncErr = nil
	s.estimate = est
	s.state = StateSynchronized
	s.mu.Unlock()

	log.Printf("Session %s: synced offset=%.1fms ±%.1fms", s.id, est.AverageMs, est.UncertaintyMs())

	s.model.SyncToSystemTime(est.AverageMs)
	s.ForceRephase()
	s.render()
}

// tickLoop fires every second and defers the actual render so the digit
// change lands on the next true second boundary.
func (s *Session) tickLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Duration(tickIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.scheduleRender()
		}
	}
}

func (s *Session) scheduleRender() {
	s.mu.Lock()
	paused := s.paused
	synced := s.state == StateSynchronized
	s.mu.Unlock()

	if paused {
		return
	}
	if !synced {
		// Not yet aligned to anything; render at tick phase, dimmed.
		s.render()
		return
	}

	delayMs := s.renderDelayMs()

	s.mu.Lock()
	if s.renderTimer != nil {
		s.renderTimer.Stop()
	}
	s.renderTimer = time.AfterFunc(time.Duration(delayMs*float64(time.Millisecond)), s.render)
	s.mu.Unlock()
}

// renderDelayMs is how long to defer the next render so the digit change
// lands on a display-time second boundary. Display time, not corrected
// time: the operator tick bias shifts where the boundary falls.
func (s *Session) renderDelayMs() float64 {
	delayMs, _ := NextRenderDelay(s.displayNowMs())
	return delayMs
}

// correctionLoop passively re-phases the hands on a frequent timer,
// bounding drift between the animation clock and corrected time without
// perceptible stutter.
func (s *Session) correctionLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			paused := s.paused
			s.mu.Unlock()
			if paused {
				continue
			}
			s.hands.Correct(s.animMs(), s.displayNowMs(), PassiveThresholdMs)
		}
	}
}

// ForceRephase unconditionally aligns all hands to current display time.
// Called on resync, manual time changes, focus regain, and resume.
func (s *Session) ForceRephase() {
	s.hands.Rephase(s.animMs(), s.displayNowMs())
}

// Pause freezes the hands and suspends rendering without losing phase.
func (s *Session) Pause() {
	s.mu.Lock()
	if s.paused {
		s.mu.Unlock()
		return
	}
	s.paused = true
	if s.renderTimer != nil {
		s.renderTimer.Stop()
		s.renderTimer = nil
	}
	s.mu.Unlock()

	s.hands.Pause(s.animMs())
	s.render()
}

// Resume unfreezes the hands and force-rephases them; the animation may
// have been throttled while paused.
func (s *Session) Resume() {
	s.mu.Lock()
	if !s.paused {
		s.mu.Unlock()
		return
	}
	s.paused = false
	s.mu.Unlock()

	s.hands.Resume(s.animMs())
	s.ForceRephase()
	s.render()
}

// Paused reports whether the session is paused.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// SyncToSystemTime installs a manual offset against the live local clock.
func (s *Session) SyncToSystemTime(offsetMs float64) {
	s.model.SyncToSystemTime(offsetMs)
	s.mu.Lock()
	s.state = StateSynchronized
	s.mu.Unlock()
	s.ForceRephase()
	s.render()
}

// SetEpoch freezes an anchor and lets virtual time advance from it.
func (s *Session) SetEpoch(epochMs, offsetMs float64) {
	s.model.SetEpoch(epochMs, offsetMs)
	s.mu.Lock()
	s.state = StateSynchronized
	s.mu.Unlock()
	s.ForceRephase()
	s.render()
}

// AdjustBy nudges corrected time by deltaMs.
func (s *Session) AdjustBy(deltaMs float64) {
	s.model.AdjustBy(deltaMs)
	s.ForceRephase()
	s.render()
}

// SetTimezoneOffset changes the display timezone and re-phases the hands.
func (s *Session) SetTimezoneOffset(minutes int) {
	s.model.SetTimezoneOffset(minutes)
	s.ForceRephase()
	s.render()
}

// render snapshots current state into a Frame and pushes it.
func (s *Session) render() {
	s.mu.Lock()
	state := s.state
	est := s.estimate
	paused := s.paused
	syncErr := s.syncErr
	s.mu.Unlock()

	displayMs := s.displayNowMs()
	t := time.UnixMilli(int64(displayMs)).UTC()
	animMs := s.animMs()
	secDeg, minDeg, hourDeg := s.hands.Angles(animMs)

	frame := Frame{
		SessionID: s.id,
		State:     state,
		Mode:      s.model.Mode(),
		OffsetMs:  est.AverageMs,
		RangeMs:   est.RangeMs,
		DisplayMs: displayMs,
		Hour:      t.Hour(),
		Minute:    t.Minute(),
		Second:    t.Second(),
		Highlight: HighlightSecond(t.Second()),
		Dim:       state != StateSynchronized,
		SecondDeg: secDeg,
		MinuteDeg: minDeg,
		HourDeg:   hourDeg,
		Paused:    paused,
	}
	if syncErr != nil {
		frame.SyncErr = syncErr.Error()
	}

	if s.notify != nil {
		s.notify(frame)
	}
}
