package ws

import (
	"log/slog"
	"net/http"
	"strconv"

	"nhooyr.io/websocket"
)

// ServeWS returns an HTTP handler that upgrades to WebSocket and registers
// the connection for the authenticated user. Token issuance and validation
// happen upstream; the gateway forwards the resolved user id in the
// X-User-ID header (or a user_id query param, since WebSocket clients
// can't always set headers).
func ServeWS(registry *Registry, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			raw = r.URL.Query().Get("user_id")
		}
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || userID == 0 {
			http.Error(w, "missing user id", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // origin checks happen at the gateway
		})
		if err != nil {
			logger.Debug("ws accept failed", "err", err)
			return
		}

		client := NewClient(registry, conn, userID, logger)
		registry.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
