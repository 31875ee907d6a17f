package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/payload"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/usecase"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/pkg/types"
	"github.com/vitor-afonso/iron-connections-server/shared/middleware"
)

type authHTTPHandler struct {
	authUsecase usecase.AuthUsecase
}

// registerAuthRoutes mounts signup, login and verify on r. authn guards verify.
func registerAuthRoutes(r chi.Router, authUsecase usecase.AuthUsecase, authn func(http.Handler) http.Handler) {
	h := &authHTTPHandler{authUsecase: authUsecase}

	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.With(authn).Get("/verify", h.Verify)
}

func (h *authHTTPHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req payload.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.authUsecase.Signup(r.Context(), usecase.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *authHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

func (h *authHTTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.Claims[*types.SessionClaims](r.Context())
	if !ok {
		writeError(w, r, usecase.ErrInvalidToken)
		return
	}

	writeJSON(w, http.StatusOK, claims)
}
