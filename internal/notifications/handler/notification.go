package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/manuscript-app/manuscript/internal/api"
	"github.com/manuscript-app/manuscript/internal/auth"
	"github.com/manuscript-app/manuscript/internal/notifications/domain"
	"github.com/manuscript-app/manuscript/internal/notifications/service"
)

// NotificationHandler обрабатывает эндпоинты уведомлений
type NotificationHandler struct {
	notificationService *service.NotificationService
}

// NewNotificationHandler создает новый NotificationHandler
func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// ListResponse представляет ответ со списком уведомлений
type ListResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
}

// List обрабатывает GET /notifications
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.notificationService.List(r.Context(), auth.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, ListResponse{Notifications: notifications})
}

// GetByID обрабатывает GET /notifications/{id}
func (h *NotificationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.RespondWithError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid notification id")
		return
	}

	notification, err := h.notificationService.Get(r.Context(), id, auth.GetUserIDFromContext(r.Context()))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	api.RespondWithJSON(w, r, http.StatusOK, notification)
}
