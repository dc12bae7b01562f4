package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tienda-shop/tienda-shop/internal/cart"
	"github.com/tienda-shop/tienda-shop/internal/catalog"
	"github.com/tienda-shop/tienda-shop/internal/observability"
	"github.com/tienda-shop/tienda-shop/internal/orders"
	"github.com/tienda-shop/tienda-shop/internal/products"
	"github.com/tienda-shop/tienda-shop/internal/stock"
	"github.com/tienda-shop/tienda-shop/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Pool            *pgxpool.Pool
	Metrics         *observability.Metrics
	CatalogHandler  *catalog.Handler
	ProductsHandler *products.Handler
	StockHandler    *stock.Handler
	CartHandler     *cart.Handler
	OrdersHandler   *orders.Handler
	JobHandler      *jobs.Handler
}

// NewRouter assembles the HTTP surface: the JSON API under /api/v1 plus the
// operational endpoints.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config, Metrics: p.Metrics}) {
		r.Use(mw)
	}

	r.Get("/healthz", healthHandler(p.Pool))
	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		if p.CatalogHandler != nil {
			p.CatalogHandler.MountRoutes(api)
		}
		if p.ProductsHandler != nil {
			p.ProductsHandler.MountRoutes(api)
		}
		if p.StockHandler != nil {
			p.StockHandler.MountRoutes(api)
		}
		if p.CartHandler != nil {
			p.CartHandler.MountRoutes(api)
		}
		if p.OrdersHandler != nil {
			p.OrdersHandler.MountRoutes(api)
		}
		if p.JobHandler != nil {
			api.Route("/jobs", func(jr chi.Router) {
				p.JobHandler.MountRoutes(jr)
			})
		}
	})

	return r
}

func healthHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := pool.Ping(ctx); err != nil {
				http.Error(w, "database unreachable", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
