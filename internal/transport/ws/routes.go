package ws

import (
	"log/slog"
	"net/http"
)

// Routes mounts the WebSocket endpoint.
type Routes struct {
	registry *Registry
	logger   *slog.Logger
}

func NewRoutes(registry *Registry, logger *slog.Logger) *Routes {
	return &Routes{registry: registry, logger: logger}
}

func (r *Routes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws", ServeWS(r.registry, r.logger))
}
