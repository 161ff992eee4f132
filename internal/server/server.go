// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"livejourney/internal/config"
	"livejourney/internal/domain/hotplace"
	"livejourney/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	detector hotplace.Detector,
	ingester handlers.Ingester,
	feed handlers.RankingFeed,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestMetrics)
	router.Use(middleware.Recoverer)

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Per-IP limit for write endpoints
	writeLimit := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimitRequests > 0 {
		writeLimit = httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow)
	}

	// Create handler dependencies
	hotPlaceHandler := handlers.NewHotPlaceHandler(detector)
	ingestHandler := handlers.NewIngestHandler(ingester)

	// Routes
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("OK"))
		})

		// API version
		r.Route("/v1", func(r chi.Router) {
			// Hot places API
			r.Route("/hotplaces", func(r chi.Router) {
				r.Get("/", hotPlaceHandler.ListHotPlaces)
				r.With(writeLimit).Post("/refresh", hotPlaceHandler.RefreshHotPlaces)
				r.Get("/{key}", hotPlaceHandler.GetHotPlace)
			})

			// Ingestion API
			r.Group(func(r chi.Router) {
				r.Use(writeLimit)
				r.Post("/observations", ingestHandler.CreateObservation)
				r.Post("/searches", ingestHandler.CreateSearch)
			})
		})
	})

	// Prometheus metrics
	router.Handle("/metrics", promhttp.Handler())

	// WebSocket endpoint for live ranking updates
	if feed != nil {
		router.Get("/ws/hotplaces", handlers.HotPlaceWebSocketHandler(
			detector, feed, cfg.CorsOrigins, handlers.DefaultWebSocketConfig(),
		))
	}

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
