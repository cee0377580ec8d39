package ws

import (
	"log/slog"
	"net/http"

	"github.com/appareldesk/storefront/internal/hub"
	"github.com/gorilla/websocket"
)

const maxInboundMessageSize = 512

// Transport serves the stock update push channel. Each accepted
// connection becomes one hub subscriber; the connection only receives,
// inbound frames are read solely to detect disconnects.
type Transport struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewTransport creates a websocket transport bound to the hub.
func NewTransport(h *hub.Hub) *Transport {
	return &Transport{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleStockUpdates upgrades the request and streams stock change events
// until the observer disconnects or falls too far behind.
func (t *Transport) HandleStockUpdates(w http.ResponseWriter, r *http.Request) {
	conn, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Error upgrading stock observer connection", "error", err)

		return
	}

	sub := t.hub.Register()
	slog.Info("Stock observer connected", "remote", conn.RemoteAddr().String())

	go func() {
		for ev := range sub.Events() {
			if err := conn.WriteJSON(ev); err != nil {
				t.hub.Unregister(sub)

				break
			}
		}
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxInboundMessageSize)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	t.hub.Unregister(sub)
	slog.Info("Stock observer disconnected", "remote", conn.RemoteAddr().String())
}
