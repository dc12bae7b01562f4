package products

import "github.com/go-chi/chi/v5"

// MountRoutes wires the product aggregate endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/on-sale", h.OnSale)
		r.Get("/new-arrivals", h.NewArrivals)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)

			r.Post("/images", h.AddImage)
			r.Put("/images/order", h.ReorderImages)
			r.Delete("/images/{imageID}", h.DeleteImage)

			r.Get("/variants", h.ListVariants)
			r.Post("/variants", h.CreateVariant)
		})
	})

	r.Route("/variants", func(r chi.Router) {
		r.Get("/low-stock", h.VariantsLowStock)
		r.Get("/out-of-stock", h.VariantsOutOfStock)
		r.Get("/by-attribute", h.VariantsByAttribute)
		r.Put("/{id}", h.UpdateVariant)
		r.Delete("/{id}", h.DeleteVariant)
	})
}
