package handler

import (
	"net/http"

	"github.com/manuscript-app/manuscript/internal/api"
	"github.com/manuscript-app/manuscript/internal/auth"
	"github.com/manuscript-app/manuscript/internal/events/domain"
)

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == domain.ErrInvalidEventData:
		api.RespondWithError(w, r, http.StatusBadRequest, "INVALID_EVENT_DATA", "invalid event data")
	case err == domain.ErrEventNotFound:
		api.RespondWithError(w, r, http.StatusNotFound, "NOT_FOUND", "event not found")
	case err == domain.ErrUserNotFound:
		api.RespondWithError(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
	case err == domain.ErrUserIsNotEventAuthor:
		api.RespondWithError(w, r, http.StatusForbidden, "NOT_EVENT_AUTHOR", "user is not event author")
	case err == auth.ErrUnauthorized, err == auth.ErrInvalidToken:
		api.RespondWithError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	default:
		api.RespondWithError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
