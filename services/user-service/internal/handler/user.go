package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/payload"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/usecase"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/pkg/types"
	"github.com/vitor-afonso/iron-connections-server/shared/middleware"
)

type userHTTPHandler struct {
	userUsecase usecase.UserUsecase
	graphReader usecase.GraphReader
}

func registerUserRoutes(r chi.Router, userUsecase usecase.UserUsecase, graphReader usecase.GraphReader) {
	h := &userHTTPHandler{userUsecase: userUsecase, graphReader: graphReader}

	r.Get("/", h.ListUsers)
	r.Post("/", h.CreateUser)
	r.Route("/{userId}", func(r chi.Router) {
		r.Get("/", h.GetUser)
		r.Put("/", h.UpdateUser)
		r.Delete("/", h.DeleteUser)
		r.Put("/add-follower", h.AddFollower)
		r.Put("/remove-follower", h.RemoveFollower)
		r.Put("/add-like", h.AddLike)
		r.Put("/remove-like", h.RemoveLike)
		r.Put("/remove-notification", h.RemoveNotification)
		r.Post("/prune-references", h.PruneReferences)
	})
}

func (h *userHTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.graphReader.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// GetUser answers null with 200 when no user has the id.
func (h *userHTTPHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.graphReader.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *userHTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.userUsecase.CreateUser(r.Context(), usecase.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	logMutation(r, "create_user", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (h *userHTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	userID := chi.URLParam(r, "userId")
	user, err := h.userUsecase.UpdateUser(r.Context(), userID, usecase.UpdateUserParams{
		Username: req.Username,
		Email:    req.Email,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	logMutation(r, "update_user", userID)
	writeJSON(w, http.StatusOK, user)
}

func (h *userHTTPHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if err := h.userUsecase.DeleteUser(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}

	logMutation(r, "delete_user", userID)
	writeJSON(w, http.StatusOK, payload.MessageResponse{
		Message: fmt.Sprintf("User with id: %s was deleted.", userID),
	})
}

func (h *userHTTPHandler) PruneReferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	modified, err := h.userUsecase.PruneReferences(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logMutation(r, "prune_references", userID)
	writeJSON(w, http.StatusOK, payload.PruneResponse{Modified: modified})
}

func (h *userHTTPHandler) AddFollower(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "add_follower", func(userID string) (*types.User, error) {
		return h.userUsecase.AddFollower(r.Context(), userID, r.URL.Query().Get("followerId"))
	})
}

func (h *userHTTPHandler) RemoveFollower(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, "remove_follower", func(userID string) (*types.User, error) {
		return h.userUsecase.RemoveFollower(r.Context(), userID, r.URL.Query().Get("followerId"))
	})
}

func (h *userHTTPHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	var req payload.LikeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r, "add_like", func(userID string) (*types.User, error) {
		return h.userUsecase.AddLike(r.Context(), userID, req.PostID)
	})
}

func (h *userHTTPHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	var req payload.LikeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r, "remove_like", func(userID string) (*types.User, error) {
		return h.userUsecase.RemoveLike(r.Context(), userID, req.PostID)
	})
}

func (h *userHTTPHandler) RemoveNotification(w http.ResponseWriter, r *http.Request) {
	var req payload.NotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	h.respond(w, r, "remove_notification", func(userID string) (*types.User, error) {
		return h.userUsecase.RemoveNotification(r.Context(), userID, req.NotificationID)
	})
}

func (h *userHTTPHandler) respond(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	mutate func(userID string) (*types.User, error),
) {
	userID := chi.URLParam(r, "userId")
	user, err := mutate(userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logMutation(r, operation, userID)
	writeJSON(w, http.StatusOK, user)
}

// logMutation records which authenticated caller changed which user.
func logMutation(r *http.Request, operation, userID string) {
	event := zerolog.Ctx(r.Context()).Info().Str("operation", operation).Str("user_id", userID)
	if claims, ok := middleware.Claims[*types.SessionClaims](r.Context()); ok {
		event = event.Str("caller_id", claims.UserID)
	}
	event.Msg("user graph mutated")
}
