package controller

import (
	"time"

	"github.com/cassiomorais/simplify-gateway/internal/infrastructure/config"
	"github.com/cassiomorais/simplify-gateway/internal/infrastructure/observability"
	customMW "github.com/cassiomorais/simplify-gateway/internal/middleware"
	"github.com/cassiomorais/simplify-gateway/internal/repository/postgres"
	"github.com/cassiomorais/simplify-gateway/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool            *pgxpool.Pool
	RedisClient     *redis.Client
	GatewayService  *service.GatewayService
	IdempotencyRepo *postgres.IdempotencyRepository
	Metrics         *observability.Metrics
	CORSConfig      config.CORSConfig

	// Admin credentials: the merchant's active API key pair.
	AdminPublicKey  string
	AdminPrivateKey string
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(customMW.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	gatewayH := NewGatewayController(deps.GatewayService)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	// Hosted payment page callback. Rate limited per IP; the page may
	// use either method depending on the integration mode.
	r.Group(func(r chi.Router) {
		r.Use(customMW.RateLimit(60))
		r.Get("/gateway/return", gatewayH.Return)
		r.Post("/gateway/return", gatewayH.Return)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating endpoints.
		idempotencyMW := customMW.Idempotency(deps.IdempotencyRepo)

		r.Post("/orders", gatewayH.CreateOrder)
		r.Get("/orders/{id}", gatewayH.GetOrder)
		r.Post("/orders/{id}/pay", gatewayH.Pay)
		r.With(idempotencyMW).Post("/orders/{id}/capture", gatewayH.Capture)
		r.With(idempotencyMW).Post("/orders/{id}/void", gatewayH.Void)
		r.With(idempotencyMW).Post("/orders/{id}/refund", gatewayH.Refund)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(customMW.BasicAuth(deps.AdminPublicKey, deps.AdminPrivateKey))
		r.Get("/log", gatewayH.AuditLog)
	})

	return r
}
