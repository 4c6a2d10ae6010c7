// ABOUTME: Tests for boundary-aligned render scheduling
// ABOUTME: Verifies deferred renders land exactly on corrected second boundaries
package widget

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextRenderDelayLandsOnBoundary(t *testing.T) {
	cases := []float64{
		0.5,
		123_456_789.5,
		1_700_000_000_000,
		1_700_000_000_001,
		1_700_000_000_999.9,
	}

	for _, now := range cases {
		delay, boundary := NextRenderDelay(now)

		// The render fires delay ms from now; in corrected time that is a
		// whole-second instant. Epoch-scale floats carry sub-ms rounding,
		// so measure distance to the nearest boundary.
		renderAt := now + delay
		dist := math.Mod(renderAt, 1000)
		if dist > 500 {
			dist = 1000 - dist
		}
		assert.InDelta(t, 0, dist, 1e-3, "now=%v", now)
		assert.InDelta(t, renderAt, boundary, 1e-3, "now=%v", now)

		// Delay stays within one tick interval.
		assert.Greater(t, delay, 0.0, "now=%v", now)
		assert.LessOrEqual(t, delay, 1000.0, "now=%v", now)
	}
}

func TestNextRenderDelayLookAhead(t *testing.T) {
	// At 200ms past the second, the next boundary is 800ms away.
	delay, boundary := NextRenderDelay(5_200)
	assert.InDelta(t, 800, delay, 1e-9)
	assert.InDelta(t, 6_000, boundary, 1e-9)
}

func TestHighlightEveryFifthSecond(t *testing.T) {
	for sec := 0; sec < 60; sec++ {
		assert.Equal(t, sec%5 == 0, HighlightSecond(sec), "second %d", sec)
	}
}

func TestSyncStateStrings(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "synchronizing", StateSynchronizing.String())
	assert.Equal(t, "synchronized", StateSynchronized.String())
}
