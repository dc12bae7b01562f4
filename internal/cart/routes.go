package cart

import "github.com/go-chi/chi/v5"

// MountRoutes wires the cart endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/carts", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Route("/{token}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Post("/complete", h.Complete)
			r.Post("/items", h.AddItem)
			r.Patch("/items/{itemID}", h.UpdateItem)
			r.Delete("/items/{itemID}", h.RemoveItem)
		})
	})
}
