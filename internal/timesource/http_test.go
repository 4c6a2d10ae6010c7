// ABOUTME: Tests for the HTTP offset sampler
// ABOUTME: Uses httptest servers and a scripted local clock for exact math
package timesource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronosync/chrono-go/internal/protocol"
)

// scriptedClock returns the given readings in order, one per call.
func scriptedClock(readings ...float64) func() float64 {
	i := 0
	return func() float64 {
		v := readings[i]
		i++
		return v
	}
}

func timeBody(instant time.Time) protocol.TimeResponse {
	return protocol.TimeResponse{
		Milliseconds: protocol.Millis(instant.UnixMilli()),
		Datetime:     instant.UTC().Format(protocol.TimeFormat),
	}
}

func serveJSON(t *testing.T, body protocol.TimeResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		writeJSON(t, w, body)
	}))
}

func writeJSON(t *testing.T, w http.ResponseWriter, body protocol.TimeResponse) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestSampleMidpointCompensation(t *testing.T) {
	// Server clock reads instant; local clock reads t0=1000, t1=1040.
	// Midpoint is 1020, so offset = serverMs - 1020.
	instant := time.Date(2026, 3, 1, 12, 0, 0, 250*int(time.Millisecond), time.UTC)
	srv := serveJSON(t, timeBody(instant))
	defer srv.Close()

	sampler := NewHTTPSampler(srv.URL)
	sampler.nowMs = scriptedClock(1000, 1040)

	sample, err := sampler.Sample(context.Background())
	require.NoError(t, err)

	serverMs := float64(instant.UnixNano()) / 1e6
	assert.InDelta(t, serverMs-1020, sample.OffsetMs, 1e-6)
}

func TestSampleFixedOffsetAndRTT(t *testing.T) {
	// End-to-end shape: server is +250ms ahead of local, RTT is 40ms.
	localAtSend := 1_700_000_000_000.0
	serverAtMidpoint := localAtSend + 20 + 250

	instant := time.UnixMilli(int64(serverAtMidpoint)).UTC()
	srv := serveJSON(t, timeBody(instant))
	defer srv.Close()

	sampler := NewHTTPSampler(srv.URL)
	sampler.nowMs = scriptedClock(localAtSend, localAtSend+40)

	sample, err := sampler.Sample(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 250, sample.OffsetMs, 1)
}

func TestSampleEpochZeroInstant(t *testing.T) {
	// A server pinned at the epoch is extreme but well-formed:
	// milliseconds 0 is a value, not a missing field.
	srv := serveJSON(t, timeBody(time.UnixMilli(0)))
	defer srv.Close()

	sampler := NewHTTPSampler(srv.URL)
	sampler.nowMs = scriptedClock(1000, 1040)

	sample, err := sampler.Sample(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, -1020, sample.OffsetMs, 1e-6)
}

func TestSampleSetsCacheBypassHeaders(t *testing.T) {
	var gotCacheControl string
	var gotBuster string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCacheControl = r.Header.Get("Cache-Control")
		gotBuster = r.URL.Query().Get("_")
		writeJSON(t, w, timeBody(time.Now()))
	}))
	defer srv.Close()

	_, err := NewHTTPSampler(srv.URL).Sample(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "no-cache", gotCacheControl)
	assert.NotEmpty(t, gotBuster)
}

func TestSampleNonSuccessStatusIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPSampler(srv.URL).Sample(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestSampleUnreachableHostIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := NewHTTPSampler(srv.URL).Sample(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
}

func TestSampleMalformedPayloadIsParseError(t *testing.T) {
	cases := map[string]string{
		"not json":         `tick tock`,
		"missing datetime": `{"milliseconds": 1700000000000}`,
		"missing millis":   `{"datetime": "2026-03-01T12:00:00.000Z"}`,
		"bad datetime":     `{"milliseconds": 1700000000000, "datetime": "yesterday"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewHTTPSampler(srv.URL).Sample(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrParse), "want ErrParse, got %v", err)
		})
	}
}
