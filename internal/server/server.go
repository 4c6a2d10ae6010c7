// ABOUTME: Reference time server for the chrono widgets
// ABOUTME: Serves the time echo over HTTP and query/announce over websocket
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/chronosync/chrono-go/internal/discovery"
	"github.com/chronosync/chrono-go/internal/protocol"
)

// Config holds server configuration.
type Config struct {
	Port       int
	Name       string
	EnableMDNS bool
}

// Server is the stateless time echo. Every handler reads the wall clock
// at request time; nothing is cached, by contract.
type Server struct {
	config   Config
	serverID string

	mux        *http.ServeMux
	httpServer *http.Server
	upgrader   websocket.Upgrader

	mdnsManager *discovery.Manager
}

// New creates a server instance and registers its routes.
func New(config Config) *Server {
	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			// Clock reads are harmless; widgets embed anywhere.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.mux.HandleFunc("/api/time", s.handleTime)
	s.mux.HandleFunc("/api/time/ws", s.handleTimeWS)
	s.mux.HandleFunc("/healthz", s.handleHealth)

	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins listening. Blocks until the listener fails or Stop runs.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			ServerMode:  true,
		})
		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("mDNS advertisement failed: %v", err)
		}
	}

	log.Printf("Time server %q starting on %s (ID: %s)", s.config.Name, addr, s.serverID)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// timeResponseNow snapshots the wall clock into the wire format. Both
// fields encode the same instant, truncated to milliseconds.
func timeResponseNow() protocol.TimeResponse {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return protocol.TimeResponse{
		Milliseconds: protocol.Millis(now.UnixMilli()),
		Datetime:     now.Format(protocol.TimeFormat),
	}
}

// handleTime is the GET {milliseconds, datetime} echo. Response caching
// is disabled so every round trip observes a fresh instant.
func (s *Server) handleTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("Pragma", "no-cache")

	if err := json.NewEncoder(w).Encode(timeResponseNow()); err != nil {
		log.Printf("time response write failed: %v", err)
	}
}

// handleTimeWS upgrades and answers time/query messages until the peer
// goes away.
func (s *Server) handleTimeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	for {
		var env protocol.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		if env.Type != protocol.TypeTimeQuery {
			continue
		}

		var query protocol.TimeQuery
		if err := json.Unmarshal(env.Payload, &query); err != nil {
			log.Printf("bad time/query payload: %v", err)
			continue
		}

		now := timeResponseNow()
		reply := protocol.Message{
			Type: protocol.TypeTimeAnnounce,
			Payload: protocol.TimeAnnounce{
				ClientSendMs: query.ClientSendMs,
				Milliseconds: now.Milliseconds,
				Datetime:     now.Datetime,
			},
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
