package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/shuttleclub/doubles-server/relay"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Any client holding the access code may connect; there is no other
	// authorization mechanism, so origins are not restricted either.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub    *relay.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *relay.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs handles GET /ws. A fresh connection has no room membership; the
// client creates or joins a tournament through relay messages.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade websocket connection", slog.Any("error", err))
		return
	}
	h.hub.Attach(conn)
}
