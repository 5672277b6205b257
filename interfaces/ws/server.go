package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mindmapx/application/session"
	pkgerrors "mindmapx/pkg/errors"
)

// ServerConfig holds WebSocket server configuration
type ServerConfig struct {
	ReadBufferSize      int
	WriteBufferSize     int
	CheckOrigin         func(r *http.Request) bool
	MaxSessionObservers int
}

// DefaultServerConfig returns default WebSocket server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		MaxSessionObservers: 16,
	}
}

// Server upgrades observer connections for one session at a time
type Server struct {
	hub          *Hub
	sessions     session.Repository
	upgrader     websocket.Upgrader
	maxObservers int
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewServer creates a new WebSocket server
func NewServer(hub *Hub, sessions session.Repository, config *ServerConfig, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	return &Server{
		hub:      hub,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		maxObservers: config.MaxSessionObservers,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// HandleEvents upgrades GET /sessions/{id}/events. The first frame is the
// current session view, followed by every committed event.
func (s *Server) HandleEvents(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), sessionID)
	if err != nil {
		s.errorHandler.Handle(w, r, err)
		return
	}

	if s.maxObservers > 0 && s.hub.GetConnectionCount(sessionID) >= s.maxObservers {
		s.errorHandler.HandleStatus(w, r, http.StatusTooManyRequests, "observer limit reached for session")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Failed to upgrade connection",
			zap.Error(err),
			zap.String("remote_addr", r.RemoteAddr),
		)
		return
	}

	// The snapshot and the registration happen at one point in the event
	// stream, so the observer neither misses nor repeats an event.
	client := NewClient(sessionID, s.hub, conn, s.logger)
	sess.Observe(func(v session.View) {
		client.Start(mustJSON(Message{
			SessionID: sessionID,
			Type:      TypeSnapshot,
			Data:      mustJSON(v),
			Timestamp: time.Now().UnixMilli(),
		}))
	})
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return data
}
