package api

import (
	"net/http"

	"age-checker-shopify-layer/internal/infrastructure/metrics"
	securitymiddleware "age-checker-shopify-layer/internal/infrastructure/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterOptions wires the handlers and shared infrastructure into the router
type RouterOptions struct {
	OAuth          *OAuthHandler
	Age            *AgeHandler
	Customers      *CustomerHandler
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	SwaggerFile    string
	Logger         zerolog.Logger
}

// NewRouter builds the HTTP surface of the service
func NewRouter(opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(securitymiddleware.SecurityHeadersMiddleware())
	r.Use(securitymiddleware.AuditLoggingMiddleware(opts.Logger))
	if opts.Metrics != nil {
		r.Use(securitymiddleware.MetricsMiddleware(opts.Metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	if opts.SwaggerFile != "" {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
		r.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.ServeFile(w, r, opts.SwaggerFile)
		})
	}

	r.Route("/shopify", func(r chi.Router) {
		r.Get("/", opts.OAuth.Install)
		r.Get("/callback", opts.OAuth.Callback)
		r.Get("/setAge/{shopDomain}", opts.Age.SetAge)
		r.Get("/getAge/{shopDomain}", opts.Age.GetAge)
	})

	r.Get("/customers/ageVerifier", opts.Customers.AgeVerifier)

	return r
}
