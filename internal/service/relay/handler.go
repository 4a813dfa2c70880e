package relay

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"ai-interview-service/internal/agent"
	"ai-interview-service/internal/observability/logging"
	"ai-interview-service/internal/service/session"
)

// Close code sent when the requested session does not exist.
const closeUnknownSession = 4004

// AdapterFactory builds a fresh live adapter per connection.
type AdapterFactory func() agent.LiveAdapter

// Handler upgrades interview WebSocket connections and runs a relay per
// connection. One connection per session at a time is assumed; a second
// connection simply starts a second relay against the same state.
type Handler struct {
	store    Store
	adapters AdapterFactory
	upgrader websocket.Upgrader
}

// NewHandler creates the WebSocket endpoint handler.
func NewHandler(store Store, adapters AdapterFactory) *Handler {
	return &Handler{
		store:    store,
		adapters: adapters,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  32 * 1024,
			WriteBufferSize: 32 * 1024,
			// The browser client is served from a different origin in
			// development; session ids are unguessable capability tokens.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws/interview/{sessionID}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	logger := logging.WithSession(sessionID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	if _, err := h.store.Get(sessionID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			msg := websocket.FormatCloseMessage(closeUnknownSession, "unknown session")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
		logger.Error().Err(err).Msg("Session lookup failed")
		return
	}

	relay := New(sessionID, h.store, h.adapters(), conn)

	// Inbound pump: client frames to the model. A read error means the
	// client went away; closing the adapter ends the outbound loop.
	go func() {
		defer relay.adapter.Close()
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				logger.Info().Err(err).Msg("Client disconnected")
				return
			}
			relay.HandleInbound(messageType, data)
		}
	}()

	if err := relay.Run(r.Context()); err != nil {
		logger.Error().Err(err).Msg("Relay ended with error")
	}
}
