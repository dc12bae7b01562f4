package orders

import "github.com/go-chi/chi/v5"

// MountRoutes wires the order endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Post("/{id}/complete", h.Complete)
	})
}
