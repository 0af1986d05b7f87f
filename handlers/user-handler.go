package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TechSupportz/tasky-server/logging"
	"github.com/TechSupportz/tasky-server/services"
	"github.com/TechSupportz/tasky-server/utils"
)

type UserHandler struct {
	Users services.UserDirectory
}

func NewUserHandler(users services.UserDirectory) *UserHandler {
	return &UserHandler{Users: users}
}

// Login issues a token for a directory user. The source slice carries no
// credentials, so identity is asserted by username alone.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	user, err := h.Users.FindByUsername(r.Context(), payload.Username)
	if err != nil {
		if errors.Is(err, services.ErrUsernameNotFound) {
			http.Error(w, "No user found with that username", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to look up user", http.StatusInternalServerError)
		return
	}

	token, err := utils.GenerateToken(*user)
	if err != nil {
		logging.Logger.Errorf("Event ID: TOKEN_ISSUE_FAILED, Description: Failed to issue token for %s: %v", payload.Username, err)
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.AllUsers(r.Context())
	if err != nil {
		logging.Logger.Errorf("Event ID: USER_LIST_FAILED, Description: Failed to list users: %v", err)
		http.Error(w, "Failed to retrieve users", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}
