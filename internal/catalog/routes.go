package catalog

import "github.com/go-chi/chi/v5"

func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Get("/with-products", h.CategoriesWithProducts)
		r.Get("/{id}", h.GetCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
		if h.CategoryProducts != nil {
			r.Get("/{id}/products", h.CategoryProducts)
		}
	})
	r.Route("/materials", func(r chi.Router) {
		r.Get("/", h.ListMaterials)
		r.Post("/", h.CreateMaterial)
		r.Get("/used-in-products", h.MaterialsUsedInProducts)
		r.Get("/{id}", h.GetMaterial)
		r.Put("/{id}", h.UpdateMaterial)
		r.Delete("/{id}", h.DeleteMaterial)
		if h.MaterialProducts != nil {
			r.Get("/{id}/products", h.MaterialProducts)
		}
	})
	r.Route("/colors", func(r chi.Router) {
		r.Get("/", h.ListColors)
		r.Post("/", h.CreateColor)
		r.Put("/{id}", h.UpdateColor)
		r.Delete("/{id}", h.DeleteColor)
	})
	r.Route("/talles", func(r chi.Router) {
		r.Get("/", h.ListTalles)
		r.Post("/", h.CreateTalle)
		r.Put("/{id}", h.UpdateTalle)
		r.Delete("/{id}", h.DeleteTalle)
	})
	r.Route("/variant-attributes", func(r chi.Router) {
		r.Get("/", h.ListAttributes)
		r.Post("/", h.CreateAttribute)
		r.Put("/{id}", h.UpdateAttribute)
		r.Delete("/{id}", h.DeleteAttribute)
	})
}
