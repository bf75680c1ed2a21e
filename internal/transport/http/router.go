package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trail/pkg/platform/middleware/auth"
	"trail/pkg/platform/middleware/requestinfo"
)

// NewRouter wires the ingest API. Request metadata capture runs first so
// every record built downstream sees the URL, IP, and User-Agent; the
// bearer-token verifier is mounted only when a signing key is configured.
func NewRouter(h *Handler, jwtSigningKey string) http.Handler {
	r := chi.NewRouter()
	r.Use(requestinfo.Capture)
	if jwtSigningKey != "" {
		r.Use(auth.Verifier([]byte(jwtSigningKey)))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/audits", func(r chi.Router) {
		r.Post("/", h.handleIngest)
		r.Get("/{auditableType}/{auditableID}", h.handleList)
	})

	return r
}
