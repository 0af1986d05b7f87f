package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TechSupportz/tasky-server/logging"
	"github.com/TechSupportz/tasky-server/middleware"
	"github.com/TechSupportz/tasky-server/models"
	"github.com/TechSupportz/tasky-server/services"
)

type TaskHandler struct {
	Tasks      services.TaskStore
	Categories services.CategoryStore
}

func NewTaskHandler(tasks services.TaskStore, categories services.CategoryStore) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Categories: categories}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var payload struct {
		CategoryID int64           `json:"categoryId"`
		Name       string          `json:"name"`
		DueDate    string          `json:"dueDate"`
		Priority   models.Priority `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		http.Error(w, "Task name is required", http.StatusBadRequest)
		return
	}
	if !models.ValidPriority(payload.Priority) {
		http.Error(w, "Priority must be High, Medium or Low", http.StatusBadRequest)
		return
	}

	category, err := h.Categories.GetByID(r.Context(), payload.CategoryID)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching category", http.StatusInternalServerError)
		return
	}
	if !canView(category, user) {
		http.Error(w, "Access forbidden", http.StatusForbidden)
		return
	}

	task, err := h.Tasks.Add(r.Context(), payload.CategoryID, user.ID, payload.Name, payload.DueDate, payload.Priority)
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_CREATE_FAILED, Description: Failed to create task in category %d: %v", payload.CategoryID, err)
		http.Error(w, "Failed to create task", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
}

func (h *TaskHandler) AddSubTask(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	taskID, err := pathID(r, "taskID")
	if err != nil {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	var payload struct {
		Name     string          `json:"name"`
		DueDate  string          `json:"dueDate"`
		Priority models.Priority `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		http.Error(w, "Subtask name is required", http.StatusBadRequest)
		return
	}
	if !models.ValidPriority(payload.Priority) {
		http.Error(w, "Priority must be High, Medium or Low", http.StatusBadRequest)
		return
	}

	task, err := h.Tasks.AddSubTask(r.Context(), taskID, payload.Name, payload.DueDate, payload.Priority)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		logging.Logger.Errorf("Event ID: SUBTASK_CREATE_FAILED, Description: Failed to add subtask to task %d: %v", taskID, err)
		http.Error(w, "Failed to add subtask", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(task)
}
