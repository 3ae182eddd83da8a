package services

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type NotificationEndpoints struct {
	notifications *NotificationService
}

func NewNotificationEndpoints(notifications *NotificationService) *NotificationEndpoints {
	return &NotificationEndpoints{notifications: notifications}
}

func (e *NotificationEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/", e.ListHandler)
		r.Post("/{id}/read", e.MarkReadHandler)
	})
}

func (e *NotificationEndpoints) ListHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	notifications, err := e.notifications.ListNotifications(r.Context(), caller.ID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

func (e *NotificationEndpoints) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFromContext(r)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	notificationID := chi.URLParam(r, "id")
	if notificationID == "" {
		http.Error(w, "Notification ID is required", http.StatusBadRequest)
		return
	}

	if err := e.notifications.MarkRead(r.Context(), caller.ID, notificationID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Notification marked read",
	})
}
