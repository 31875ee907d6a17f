package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/payload"
	"github.com/vitor-afonso/iron-connections-server/services/user-service/internal/usecase"
	"github.com/vitor-afonso/iron-connections-server/shared/middleware"
)

var errMalformedBody = errors.New("request body is not valid JSON")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errMalformedBody
}

// writeError maps err to its status and body. Unclassified errors are logged
// and reported as a generic failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, body)
}

func errorResponse(err error) (int, payload.ErrorResponse) {
	var validationErr *usecase.ValidationError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, payload.ErrorResponse{
			Kind:    "validation",
			Message: usecase.ErrValidation.Error(),
			Fields:  validationErr.Fields,
		}
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, payload.ErrorResponse{Kind: "validation", Message: err.Error()}
	case errors.Is(err, usecase.ErrDuplicateEmail):
		return http.StatusConflict, payload.ErrorResponse{Kind: "duplicate_email", Message: err.Error()}
	case errors.Is(err, usecase.ErrMissingCredentials):
		return http.StatusBadRequest, payload.ErrorResponse{Kind: "missing_credentials", Message: err.Error()}
	case errors.Is(err, usecase.ErrInvalidCredentials):
		return http.StatusUnauthorized, payload.ErrorResponse{Kind: "invalid_credentials", Message: err.Error()}
	case errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, middleware.ErrMissingAuthorization),
		errors.Is(err, middleware.ErrMalformedAuthorization):
		return http.StatusUnauthorized, payload.ErrorResponse{Kind: "invalid_token", Message: "invalid or missing token"}
	case errors.Is(err, usecase.ErrInvalidIdentifier):
		return http.StatusBadRequest, payload.ErrorResponse{Kind: "invalid_identifier", Message: err.Error()}
	case errors.Is(err, usecase.ErrUserNotFound):
		return http.StatusNotFound, payload.ErrorResponse{Kind: "not_found", Message: err.Error()}
	case errors.Is(err, usecase.ErrUserExists):
		return http.StatusConflict, payload.ErrorResponse{Kind: "conflict", Message: err.Error()}
	default:
		return http.StatusInternalServerError, payload.ErrorResponse{Kind: "internal", Message: "something went wrong"}
	}
}
