package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goliatone/go-inventory/pkg/di"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const DefaultCookieName = "inventory_session"

// Options configures NewRouter.
type Options struct {
	CookieName   string
	SecureCookie bool
	Logger       zerolog.Logger
	// Metrics is optional.
	Metrics HTTPObserver
	// Gatherer backs /metrics. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// NewRouter mounts the JSON API under /api/v1 together with /health and
// /metrics.
func NewRouter(c *di.Container, opts Options) http.Handler {
	if opts.CookieName == "" {
		opts.CookieName = DefaultCookieName
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	h := NewHandler(c, opts.CookieName, opts.SecureCookie)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(RequestLogger(opts.Logger))
	if opts.Metrics != nil {
		r.Use(Metrics(opts.Metrics))
	}
	r.Use(AccessToken(opts.CookieName))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireSession(c))

			r.Get("/dashboard/stats", h.Stats)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.ListProducts)
				r.Post("/", h.CreateProduct)
				r.Get("/{id}", h.GetProduct)
				r.Put("/{id}", h.UpdateProduct)
				r.Delete("/{id}", h.DeleteProduct)
				r.Patch("/{id}/stock", h.UpdateStock)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.ListCategories)
				r.Post("/", h.CreateCategory)
				r.Get("/options", h.CategoryOptions)
				r.Put("/{id}", h.UpdateCategory)
				r.Delete("/{id}", h.DeleteCategory)
			})
		})
	})
	return r
}
