package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/moodpair/moodpair/internal/config"
)

// Registrar is a common interface for anything that mounts routes on the
// shared mux.
type Registrar interface {
	Register(mux *http.ServeMux)
}

// StartHTTPServer boots the HTTP server and registers all provided route
// registrars.
func StartHTTPServer(cfg *config.Config, registrars ...Registrar) error {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	})

	for _, r := range registrars {
		r.Register(mux)
	}

	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
