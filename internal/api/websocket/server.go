package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/fortuna/florbal-stats/internal/tracking"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server represents the WebSocket server
type Server struct {
	server   *http.Server
	hub      *Hub
	sessions *tracking.Registry
	log      logrus.FieldLogger
}

// NewServer creates a new WebSocket server around hub. sessions supplies the
// snapshot sent to a client on connect.
func NewServer(hub *Hub, sessions *tracking.Registry, log logrus.FieldLogger) *Server {
	return &Server{
		hub:      hub,
		sessions: sessions,
		log:      log.WithField("component", "ws-server"),
	}
}

// Handler returns the websocket routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/live/{sessionID}", s.handleLiveSession)
	mux.HandleFunc("GET /ws/health", s.handleHealth)
	return mux
}

// Start starts the WebSocket server
func (s *Server) Start(port string) error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: s.Handler(),
	}

	s.log.WithField("port", port).Info("websocket server listening")
	return s.server.ListenAndServe()
}

// handleLiveSession streams updates of one live session
func (s *Server) handleLiveSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if _, err := s.sessions.Get(sessionID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("failed to upgrade connection")
		return
	}

	client := &Client{
		hub:       s.hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
		snapshot: func() ([]byte, bool) {
			return s.snapshot(sessionID)
		},
	}

	select {
	case s.hub.register <- client:
	case <-s.hub.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// snapshot encodes the current state of a session. The hub calls it while
// registering, so no update queued after it can be overtaken.
func (s *Server) snapshot(sessionID string) ([]byte, bool) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, false
	}
	data, err := json.Marshal(tracking.Event{Type: tracking.EventUpdated, Session: session})
	if err != nil {
		s.log.WithError(err).WithField("session", sessionID).Error("failed to encode snapshot")
		return nil, false
	}
	return data, true
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
