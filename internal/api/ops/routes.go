package ops

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers ops routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)

	r.Route("/variants", func(r chi.Router) {
		r.Get("/", h.ListVariants)
		r.Post("/{name}/payload", h.BuildPayload)
	})
}
