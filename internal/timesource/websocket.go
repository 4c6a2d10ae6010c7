// ABOUTME: Websocket sampler speaking the time/query - time/announce exchange
// ABOUTME: Keeps one connection open and times each query round trip
package timesource

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chronosync/chrono-go/internal/protocol"
)

// WebSocketSampler samples a chrono time server over its websocket
// endpoint. The connection is dialed lazily on the first Sample and
// reused; a transport error tears it down so the next Sample redials.
type WebSocketSampler struct {
	endpointURL string
	nowMs       func() float64

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebSocketSampler creates a sampler for a ws:// or wss:// endpoint URL.
func NewWebSocketSampler(endpointURL string) *WebSocketSampler {
	return &WebSocketSampler{
		endpointURL: endpointURL,
		nowMs:       unixMs,
	}
}

// Sample sends one time/query and waits for the matching announce.
func (s *WebSocketSampler) Sample(ctx context.Context) (TimeSample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
		conn, _, err := dialer.DialContext(ctx, s.endpointURL, nil)
		if err != nil {
			return TimeSample{}, fmt.Errorf("%w: dial %s: %v", ErrNetwork, s.endpointURL, err)
		}
		s.conn = conn
	}

	t0 := s.nowMs()
	query := protocol.Message{
		Type:    protocol.TypeTimeQuery,
		Payload: protocol.TimeQuery{ClientSendMs: t0},
	}
	if err := s.conn.WriteJSON(query); err != nil {
		s.drop()
		return TimeSample{}, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.conn.SetReadDeadline(deadline)
	} else {
		_ = s.conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	}

	announce, err := s.readAnnounce(t0)
	if err != nil {
		s.drop()
		return TimeSample{}, err
	}
	t1 := s.nowMs()

	serverMs, err := serverEpochMs(protocol.TimeResponse{
		Milliseconds: announce.Milliseconds,
		Datetime:     announce.Datetime,
	})
	if err != nil {
		return TimeSample{}, err
	}

	return offsetSample(serverMs, t0, t1), nil
}

// readAnnounce reads frames until one matches the in-flight query. Stale
// announces from an abandoned pass are skipped, not treated as errors.
func (s *WebSocketSampler) readAnnounce(clientSendMs float64) (protocol.TimeAnnounce, error) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return protocol.TimeAnnounce{}, fmt.Errorf("%w: %v", ErrNetwork, err)
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return protocol.TimeAnnounce{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if env.Type != protocol.TypeTimeAnnounce {
			continue
		}

		var announce protocol.TimeAnnounce
		if err := json.Unmarshal(env.Payload, &announce); err != nil {
			return protocol.TimeAnnounce{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if announce.ClientSendMs != clientSendMs {
			continue
		}
		return announce, nil
	}
}

// Close releases the connection if one is open.
func (s *WebSocketSampler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

func (s *WebSocketSampler) drop() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}
