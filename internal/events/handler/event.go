package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/manuscript-app/manuscript/internal/api"
	"github.com/manuscript-app/manuscript/internal/auth"
	"github.com/manuscript-app/manuscript/internal/events/domain"
	"github.com/manuscript-app/manuscript/internal/events/repository"
	"github.com/manuscript-app/manuscript/internal/events/service"
)

// EventHandler обрабатывает эндпоинты мероприятий
type EventHandler struct {
	eventService *service.EventService
}

// NewEventHandler создает новый EventHandler
func NewEventHandler(eventService *service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// EventRequest представляет тело запроса на создание/редактирование мероприятия
type EventRequest struct {
	Name            string   `json:"name"`
	Image           string   `json:"image"`
	Location        string   `json:"location"`
	LocationURL     string   `json:"location_url"`
	Description     string   `json:"description"`
	FullDescription string   `json:"full_description"`
	StartDate       string   `json:"start_date"`
	EndDate         string   `json:"end_date"`
	Tags            []string `json:"tags"`
}

func (req EventRequest) toInput() repository.EventInput {
	return repository.EventInput{
		Name:            req.Name,
		Image:           req.Image,
		Location:        req.Location,
		LocationURL:     req.LocationURL,
		Description:     req.Description,
		FullDescription: req.FullDescription,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Tags:            req.Tags,
	}
}

// Create обрабатывает POST /events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	event, err := h.eventService.Create(r.Context(), auth.GetUserIDFromContext(r.Context()), req.toInput())
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusCreated, event)
}

// ListResponse представляет ответ со списком мероприятий
type ListResponse struct {
	Events []*domain.Event `json:"events"`
}

// List обрабатывает GET /events?only_active=...
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("only_active") == "true"

	events, err := h.eventService.List(r.Context(), onlyActive)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, ListResponse{Events: events})
}

// GetByID обрабатывает GET /events/{id}
func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid event id")
		return
	}

	event, err := h.eventService.GetByID(r.Context(), id)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, event)
}

// Edit обрабатывает PUT /events/{id}
func (h *EventHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid event id")
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	event, err := h.eventService.Edit(r.Context(), id, auth.GetUserIDFromContext(r.Context()), req.toInput())
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, event)
}

// Deactivate обрабатывает DELETE /events/{id}
func (h *EventHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid event id")
		return
	}

	event, err := h.eventService.Deactivate(r.Context(), id, auth.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, event)
}
