package orders

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// MountRoutes attaches the lifecycle endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		// Transitions are interactive actions; cap bursts per client.
		r.Use(httprate.LimitByIP(60, time.Minute))
		r.Post("/orders/{id}/status", h.Transition)
	})
	r.Get("/orders/{id}/status/options", h.StatusOptions)
	r.Get("/orders/{id}/history", h.History)
}
