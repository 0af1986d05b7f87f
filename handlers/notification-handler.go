package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/TechSupportz/tasky-server/logging"
	"github.com/TechSupportz/tasky-server/models"
	"github.com/TechSupportz/tasky-server/repositories"
)

// NotificationHandler serves the persisted notification feed. Only wired
// when a Cassandra history store is configured.
type NotificationHandler struct {
	Repo *repositories.NotificationRepo
}

func NewNotificationHandler(repo *repositories.NotificationRepo) *NotificationHandler {
	return &NotificationHandler{Repo: repo}
}

func (h *NotificationHandler) GetNotificationsByUsername(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	if username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	notifications, err := h.Repo.GetNotificationsByUsername(username)
	if err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_FETCH_FAILED, Description: Failed to fetch notifications for %s: %v", username, err)
		http.Error(w, "Failed to retrieve notifications", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	username := vars["username"]
	notificationID := vars["id"]
	createdAt := r.URL.Query().Get("createdAt")

	if username == "" || notificationID == "" || createdAt == "" {
		http.Error(w, "Username, notification id and createdAt are required", http.StatusBadRequest)
		return
	}

	if err := h.Repo.MarkNotificationAsRead(username, notificationID, createdAt); err != nil {
		logging.Logger.Errorf("Event ID: NOTIFICATION_MARK_READ_FAILED, Description: Failed to mark notification %s as read: %v", notificationID, err)
		http.Error(w, "Failed to mark notification as read", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message": "Notification marked as read"}`))
}
