// ABOUTME: Digital render scheduling math and the widget sync state machine
// ABOUTME: Aligns visible digit changes with true second boundaries
package widget

// SyncState is the digital widget's state machine. Synchronized is
// re-entered (not re-created) on every resync.
type SyncState int

const (
	StateUninitialized SyncState = iota
	StateSynchronizing
	StateSynchronized
)

func (s SyncState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateSynchronizing:
		return "synchronizing"
	case StateSynchronized:
		return "synchronized"
	default:
		return "unknown"
	}
}

const tickIntervalMs = 1000.0

// NextRenderDelay computes how long to defer the render after a repeating
// 1s tick fires. The +1000ms look-ahead compensates for the tick always
// firing up to one interval late relative to the instant it was armed
// for. Deferring by 1000 - mod(target, 1000) lands the render within a
// few milliseconds of the next true second boundary.
//
// Returns the delay and the corrected-time boundary the render lands on.
func NextRenderDelay(correctedNowMs float64) (delayMs, boundaryMs float64) {
	target := correctedNowMs + tickIntervalMs
	delayMs = tickIntervalMs - posMod(target, tickIntervalMs)
	boundaryMs = target - posMod(target, tickIntervalMs)
	return delayMs, boundaryMs
}

// HighlightSecond reports whether the given display second gets the
// watch-sync highlight (every fifth second).
func HighlightSecond(second int) bool {
	return second%5 == 0
}
