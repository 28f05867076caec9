package handler

import (
	"net/http"

	"github.com/manuscript-app/manuscript/internal/api"
	"github.com/manuscript-app/manuscript/internal/auth"
	"github.com/manuscript-app/manuscript/internal/teams/domain"
)

// HandleError преобразует доменные ошибки в HTTP ответы
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == domain.ErrInvalidTeamData:
		api.RespondWithError(w, r, http.StatusBadRequest, "INVALID_TEAM_DATA", "invalid team data")
	case err == domain.ErrInvalidParticipantStatus:
		api.RespondWithError(w, r, http.StatusBadRequest, "INVALID_PARTICIPANT_STATUS", "invalid participant status")
	case err == domain.ErrParticipantAlreadyHasStatus:
		api.RespondWithError(w, r, http.StatusBadRequest, "PARTICIPANT_ALREADY_HAS_STATUS", "participant already has this status")
	case err == domain.ErrTeamNotFound:
		api.RespondWithError(w, r, http.StatusNotFound, "NOT_FOUND", "team not found")
	case err == domain.ErrEventNotFound:
		api.RespondWithError(w, r, http.StatusNotFound, "NOT_FOUND", "event not found")
	case err == domain.ErrUserNotFound:
		api.RespondWithError(w, r, http.StatusNotFound, "NOT_FOUND", "user not found")
	case err == domain.ErrParticipantNotFound:
		api.RespondWithError(w, r, http.StatusNotFound, "NOT_FOUND", "participant not found")
	case err == domain.ErrUserIsNotTeamLeader:
		api.RespondWithError(w, r, http.StatusForbidden, "NOT_TEAM_LEADER", "user is not team leader")
	case err == domain.ErrUserIsNotParticipant:
		api.RespondWithError(w, r, http.StatusForbidden, "NOT_PARTICIPANT", "user is not a participant of team")
	case err == domain.ErrUserAlreadyHasParticipation:
		api.RespondWithError(w, r, http.StatusConflict, "ALREADY_HAS_PARTICIPATION", "user already has participation in team")
	case err == auth.ErrUnauthorized, err == auth.ErrInvalidToken:
		api.RespondWithError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	default:
		api.RespondWithError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
