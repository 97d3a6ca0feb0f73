package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/rogerio-castellano/inventory-app/docs"
	"github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	rl "github.com/rogerio-castellano/inventory-app/internal/http/rate_limiter"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type routerOptions struct {
	logger  *slog.Logger
	limiter *rl.RateLimiter
}

type Option func(*routerOptions)

// WithLogger sets the logger used by the request logging and recovery middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(o *routerOptions) {
		o.logger = logger
	}
}

// WithRateLimiter enables per-client rate limiting on the API routes.
func WithRateLimiter(limiter *rl.RateLimiter) Option {
	return func(o *routerOptions) {
		o.limiter = limiter
	}
}

func NewRouter(opts ...Option) http.Handler {
	o := routerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(StructuredLogger(o.logger))
	r.Use(Recoverer(o.logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		if o.limiter != nil {
			r.Use(o.limiter.Middleware)
		}
		r.Get("/health", handlers.HealthHandler)
		r.Get("/metrics", handlers.GetDashboardMetricsHandler)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", handlers.GetProductsHandler)
			r.Post("/", handlers.CreateProductHandler)
			r.Post("/import", handlers.ImportProductsHandler)
			r.Get("/search/{keyword}", handlers.SearchProductsHandler)
			r.Put("/{id}", handlers.UpdateProductHandler)
			r.Delete("/{id}", handlers.DeleteProductHandler)
		})
	})
	return r
}
