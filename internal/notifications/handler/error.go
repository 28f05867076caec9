package handler

import (
	"net/http"

	"github.com/manuscript-app/manuscript/internal/api"
	"github.com/manuscript-app/manuscript/internal/auth"
	"github.com/manuscript-app/manuscript/internal/notifications/domain"
)

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == domain.ErrNotificationNotFound:
		api.RespondWithError(w, r, http.StatusNotFound, "NOT_FOUND", "notification not found")
	case err == domain.ErrUserIsNotNotificationOwner:
		api.RespondWithError(w, r, http.StatusForbidden, "NOT_NOTIFICATION_OWNER", "user is not notification owner")
	case err == auth.ErrUnauthorized, err == auth.ErrInvalidToken:
		api.RespondWithError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	default:
		api.RespondWithError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
