// ABOUTME: NTP sampler for running the widgets against public pool servers
// ABOUTME: Wraps beevik/ntp behind the common Sampler interface
package timesource

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// NTPSampler queries an NTP server instead of a chrono time endpoint.
// The library already applies the same midpoint compensation, so the
// clock offset maps directly onto a TimeSample.
type NTPSampler struct {
	server  string
	timeout time.Duration
}

// NewNTPSampler creates a sampler for the given NTP server hostname.
func NewNTPSampler(server string) *NTPSampler {
	return &NTPSampler{
		server:  server,
		timeout: 5 * time.Second,
	}
}

// Sample runs one NTP query.
func (s *NTPSampler) Sample(ctx context.Context) (TimeSample, error) {
	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	resp, err := ntp.QueryWithOptions(s.server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return TimeSample{}, fmt.Errorf("%w: ntp %s: %v", ErrNetwork, s.server, err)
	}
	if err := resp.Validate(); err != nil {
		return TimeSample{}, fmt.Errorf("%w: ntp %s: %v", ErrParse, s.server, err)
	}

	return TimeSample{OffsetMs: float64(resp.ClockOffset) / float64(time.Millisecond)}, nil
}
