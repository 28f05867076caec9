package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/manuscript-app/manuscript/internal/api"
	"github.com/manuscript-app/manuscript/internal/auth"
	"github.com/manuscript-app/manuscript/internal/teams/domain"
	"github.com/manuscript-app/manuscript/internal/teams/repository"
	"github.com/manuscript-app/manuscript/internal/teams/service"
)

// TeamHandler обрабатывает эндпоинты команд и участия
type TeamHandler struct {
	teamService *service.TeamService
}

// NewTeamHandler создает новый TeamHandler
func NewTeamHandler(teamService *service.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// TeamRequest представляет тело запроса на создание/редактирование команды
type TeamRequest struct {
	Name    string `json:"name"`
	Image   string `json:"image"`
	EventID int64  `json:"event_id"`
}

// TeamResponse представляет команду вместе со списком участников
type TeamResponse struct {
	Team         *domain.Team          `json:"team"`
	Participants []*domain.Participant `json:"participants"`
}

func teamID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// Create обрабатывает POST /teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req TeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	team, participants, err := h.teamService.CreateTeam(
		r.Context(),
		auth.GetUserIDFromContext(r.Context()),
		req.EventID,
		repository.TeamInput{Name: req.Name, Image: req.Image},
	)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusCreated, TeamResponse{Team: team, Participants: participants})
}

// ListResponse представляет ответ со списком команд
type ListResponse struct {
	Teams []*domain.Team `json:"teams"`
}

// List обрабатывает GET /teams?only_active=...
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("only_active") == "true"

	teams, err := h.teamService.ListTeams(r.Context(), onlyActive)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, ListResponse{Teams: teams})
}

// GetByID обрабатывает GET /teams/{id}
func (h *TeamHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := teamID(r)
	if !ok {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid team id")
		return
	}

	team, participants, err := h.teamService.GetTeam(r.Context(), id)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, TeamResponse{Team: team, Participants: participants})
}

// Edit обрабатывает PUT /teams/{id}
func (h *TeamHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := teamID(r)
	if !ok {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid team id")
		return
	}

	var req TeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	team, err := h.teamService.EditTeam(
		r.Context(),
		id,
		auth.GetUserIDFromContext(r.Context()),
		repository.TeamInput{Name: req.Name, Image: req.Image},
	)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, team)
}

// Deactivate обрабатывает DELETE /teams/{id}
func (h *TeamHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := teamID(r)
	if !ok {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid team id")
		return
	}

	team, err := h.teamService.DeactivateTeam(r.Context(), id, auth.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, team)
}

// Join обрабатывает POST /teams/{id}/participants
func (h *TeamHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := teamID(r)
	if !ok {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid team id")
		return
	}

	participant, err := h.teamService.JoinTeamRequest(r.Context(), id, auth.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusCreated, participant)
}

// Leave обрабатывает DELETE /teams/{id}/participants
func (h *TeamHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := teamID(r)
	if !ok {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid team id")
		return
	}

	participant, err := h.teamService.LeaveTeam(r.Context(), id, auth.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, participant)
}

// StatusRequest представляет тело запроса на смену статуса участия
type StatusRequest struct {
	Status string `json:"status"`
}

// ChangeStatus обрабатывает PUT /teams/{id}/participants/{pid}
func (h *TeamHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := teamID(r)
	if !ok {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid team id")
		return
	}

	pid, err := strconv.ParseInt(chi.URLParam(r, "pid"), 10, 64)
	if err != nil {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid participant id")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	participant, err := h.teamService.ChangeParticipationStatus(r.Context(), id, pid, req.Status, auth.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, participant)
}

// Kick обрабатывает DELETE /teams/{id}/participants/{pid}
func (h *TeamHandler) Kick(w http.ResponseWriter, r *http.Request) {
	id, ok := teamID(r)
	if !ok {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid team id")
		return
	}

	pid, err := strconv.ParseInt(chi.URLParam(r, "pid"), 10, 64)
	if err != nil {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid participant id")
		return
	}

	participant, err := h.teamService.KickParticipant(r.Context(), id, pid, auth.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, participant)
}
