package httpapi

import (
	"github.com/go-chi/chi/v5"

	"github.com/northtrade/marketplace/ingestion-service/internal/platform/logger"
)

// NewRouter wires the ingestion routes. Only the ingestion endpoint sits
// behind the shared-secret check; health stays open for probes.
func NewRouter(handler *IngestHandler, sharedSecret string, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestLogger(log))

	r.Get("/healthz", handler.HandleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.With(SharedSecretAuth(sharedSecret, log)).Post("/external-listings", handler.HandleIngest)
	})

	return r
}
