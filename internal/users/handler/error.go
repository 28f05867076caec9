package handler

import (
	"net/http"

	"github.com/manuscript-app/manuscript/internal/api"
	"github.com/manuscript-app/manuscript/internal/auth"
	"github.com/manuscript-app/manuscript/internal/users/domain"
)

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == domain.ErrInvalidUserData:
		api.RespondWithError(w, r, http.StatusBadRequest, "INVALID_USER_DATA", "invalid user data")
	case err == domain.ErrUserExists:
		api.RespondWithError(w, r, http.StatusConflict, "USER_EXISTS", "user already exists")
	case err == domain.ErrUserNotFound:
		api.RespondWithError(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
	case err == domain.ErrAuthentication, err == auth.ErrUnauthorized, err == auth.ErrInvalidToken:
		api.RespondWithError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	default:
		api.RespondWithError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
