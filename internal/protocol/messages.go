// ABOUTME: Chrono time protocol message type definitions
// ABOUTME: Shared by the time server and the client-side samplers
package protocol

import "encoding/json"

// TimeFormat is the wire layout of the datetime field: RFC 3339 UTC
// with millisecond precision.
const TimeFormat = "2006-01-02T15:04:05.000Z07:00"

// TimeResponse is the payload of GET /api/time. Both fields encode the
// same instant. Milliseconds is a pointer so a missing field is
// distinguishable from a server pinned at the epoch.
type TimeResponse struct {
	Milliseconds *int64 `json:"milliseconds"`
	Datetime     string `json:"datetime"`
}

// Millis wraps an epoch-millisecond value for the wire structs.
func Millis(ms int64) *int64 { return &ms }

// Message is the top-level wrapper for websocket messages.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Envelope is the receive-side counterpart of Message; the payload is
// decoded in a second pass once the type is known.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// TimeQuery is sent by clients over the websocket endpoint to request a
// timestamped announce.
type TimeQuery struct {
	ClientSendMs float64 `json:"client_send_ms"`
}

// TimeAnnounce is the server's reply to a TimeQuery. ClientSendMs echoes
// the query so the client can match responses to requests.
type TimeAnnounce struct {
	ClientSendMs float64 `json:"client_send_ms"`
	Milliseconds *int64  `json:"milliseconds"`
	Datetime     string  `json:"datetime"`
}

// Message type identifiers.
const (
	TypeTimeQuery    = "time/query"
	TypeTimeAnnounce = "time/announce"
)
