package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/usecase"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/pkg/types"
	"github.com/vitor-afonso/iron-connections-server/shared/middleware"
)

// RouterParams holds everything the HTTP surface depends on.
type RouterParams struct {
	AuthUsecase    usecase.AuthUsecase
	UserUsecase    usecase.UserUsecase
	GraphReader    usecase.GraphReader
	Logger         *zerolog.Logger
	RequestTimeout time.Duration
	AllowedOrigin  string

	// HealthCheck reports whether the store is reachable. Nil means always healthy.
	HealthCheck func(ctx context.Context) error
}

// NewRouter builds the chi router for the user service.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(p.Logger))
	r.Use(chimiddleware.Recoverer)
	if p.AllowedOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{p.AllowedOrigin},
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
			ExposedHeaders:   []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/health", healthHandler(p.HealthCheck))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	authn := middleware.Authenticate[*types.SessionClaims](p.AuthUsecase.VerifySession, writeError)

	r.Group(func(r chi.Router) {
		if p.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(p.RequestTimeout))
		}

		r.Route("/auth", func(r chi.Router) {
			registerAuthRoutes(r, p.AuthUsecase, authn)
		})

		r.Route("/api/users", func(r chi.Router) {
			r.Use(authn)
			registerUserRoutes(r, p.UserUsecase, p.GraphReader)
		})
	})

	return r
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
