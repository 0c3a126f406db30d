package api

import (
	"hackboard/internal/api/handler"
	"hackboard/internal/common"
	"hackboard/internal/common/security"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

type Services struct {
	Auth         handler.AuthService
	Hackathons   handler.HackathonService
	Applications handler.ApplicationService
	Reviews      handler.ReviewService
	Rankings     handler.RankingService
}

type Options struct {
	AllowedOrigins       []string
	RankingWebhookSecret string
	// Health reports readiness details; nil means always healthy.
	Health func(r *http.Request) (map[string]any, error)
}

func NewRouter(svc Services, opts Options) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	// Searches for a token in "Authorization: Bearer T" and puts it in context.
	// Routes that need a caller add middleware.Authenticator.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if opts.Health == nil {
			common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
			return
		}
		details, err := opts.Health(r)
		if err != nil {
			common.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "error": err.Error()})
			return
		}
		details["status"] = "ok"
		common.RespondWithJSON(w, http.StatusOK, details)
	})
	r.Handle("/metrics", promhttp.Handler())

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public except /me)
		authHandler := handler.NewAuthHandler(svc.Auth)
		v1.Route("/auth", authHandler.RegisterRoutes)

		hackathonHandler := handler.NewHackathonHandler(svc.Hackathons, svc.Applications)
		v1.Route("/hackathons", hackathonHandler.RegisterRoutes)

		applicationHandler := handler.NewApplicationHandler(svc.Applications, svc.Reviews)
		v1.Route("/applications", applicationHandler.RegisterRoutes)

		// Secured with X-Webhook-Secret
		rankingHandler := handler.NewRankingHandler(svc.Rankings, opts.RankingWebhookSecret)
		v1.Route("/webhook", rankingHandler.RegisterRoutes)
	})

	return r
}
