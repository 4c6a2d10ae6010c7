// ABOUTME: HTTP sampler for the {milliseconds, datetime} time endpoint
// ABOUTME: Computes one offset per round trip using midpoint latency compensation
package timesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/chronosync/chrono-go/internal/protocol"
)

// HTTPSampler reads a time echo endpoint. The server's instant is assumed
// to fall at the temporal midpoint of the round trip, so the offset is
// serverMs - (t0 + rtt/2).
type HTTPSampler struct {
	sourceURL string
	client    *http.Client
	nowMs     func() float64
}

// NewHTTPSampler creates a sampler for the given endpoint URL.
func NewHTTPSampler(sourceURL string) *HTTPSampler {
	return &HTTPSampler{
		sourceURL: sourceURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		nowMs:     unixMs,
	}
}

// Sample performs one timed round trip.
func (s *HTTPSampler) Sample(ctx context.Context) (TimeSample, error) {
	reqURL, err := cacheBust(s.sourceURL)
	if err != nil {
		return TimeSample{}, fmt.Errorf("%w: bad source url %q: %v", ErrNetwork, s.sourceURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return TimeSample{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	t0 := s.nowMs()
	resp, err := s.client.Do(req)
	if err != nil {
		return TimeSample{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	t1 := s.nowMs()
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return TimeSample{}, fmt.Errorf("%w: HTTP %d from %s", ErrNetwork, resp.StatusCode, s.sourceURL)
	}

	var body protocol.TimeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return TimeSample{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	serverMs, err := serverEpochMs(body)
	if err != nil {
		return TimeSample{}, err
	}

	return offsetSample(serverMs, t0, t1), nil
}

// offsetSample applies the symmetric-latency assumption to a send/receive
// timestamp pair.
func offsetSample(serverMs, t0, t1 float64) TimeSample {
	rtt := t1 - t0
	estimatedLocalInstant := t0 + rtt/2
	return TimeSample{OffsetMs: serverMs - estimatedLocalInstant}
}

// serverEpochMs validates a TimeResponse and extracts the reference
// instant. The datetime string is authoritative; milliseconds is required
// for conformance but not used for the math. Presence is checked on the
// pointer: an explicit zero is the epoch, not an omission.
func serverEpochMs(body protocol.TimeResponse) (float64, error) {
	if body.Datetime == "" || body.Milliseconds == nil {
		return 0, fmt.Errorf("%w: missing milliseconds or datetime field", ErrParse)
	}
	parsed, err := time.Parse(time.RFC3339Nano, body.Datetime)
	if err != nil {
		return 0, fmt.Errorf("%w: bad datetime %q: %v", ErrParse, body.Datetime, err)
	}
	return float64(parsed.UnixNano()) / 1e6, nil
}

// cacheBust appends a unique query parameter so no intermediary can serve
// a stale instant.
func cacheBust(sourceURL string) (string, error) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("_", strconv.FormatInt(time.Now().UnixNano(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
