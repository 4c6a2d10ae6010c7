// ABOUTME: Offset sample types and the Sampler interface
// ABOUTME: One sample is one latency-compensated reading of a reference clock
package timesource

import (
	"context"
	"errors"
	"time"
)

// TimeSample is a single estimate of (reference time - local time) at the
// instant it was measured. Positive means the local clock reads behind.
type TimeSample struct {
	OffsetMs float64
}

// OffsetEstimate aggregates a batch of samples. RangeMs (max-min) is the
// quality indicator; half of it is the reported ± uncertainty.
type OffsetEstimate struct {
	AverageMs float64
	RangeMs   float64
}

// UncertaintyMs returns the ± bound derived from the sample spread.
func (e OffsetEstimate) UncertaintyMs() float64 {
	return e.RangeMs / 2
}

// Sampler produces one offset sample per call. Implementations must not
// retry internally; retry policy belongs to the caller.
type Sampler interface {
	Sample(ctx context.Context) (TimeSample, error)
}

// Sentinel errors. Wrapped errors carry the transport detail; callers
// branch with errors.Is.
var (
	ErrNetwork = errors.New("time source unreachable")
	ErrParse   = errors.New("time source payload invalid")
)

// unixMs returns the local wall clock as fractional epoch milliseconds.
func unixMs() float64 {
	return float64(time.Now().UnixNano()) / 1e6
}
