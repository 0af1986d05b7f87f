package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/TechSupportz/tasky-server/logging"
	"github.com/TechSupportz/tasky-server/middleware"
	"github.com/TechSupportz/tasky-server/models"
	"github.com/TechSupportz/tasky-server/services"
)

type CategoryHandler struct {
	Categories services.CategoryStore
	Tasks      services.TaskStore
	Users      services.UserDirectory
}

func NewCategoryHandler(categories services.CategoryStore, tasks services.TaskStore, users services.UserDirectory) *CategoryHandler {
	return &CategoryHandler{Categories: categories, Tasks: tasks, Users: users}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// canView reports whether user may see the category: members of a group
// category plus its creator, or the creator of a personal one.
func canView(category *models.Category, user models.User) bool {
	if category.Type == models.CategoryGroup {
		return category.HasMember(user.ID) || category.CreatorID == user.ID
	}
	return category.CreatorID == user.ID
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	var payload struct {
		Name string              `json:"name"`
		Type models.CategoryType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Name == "" {
		http.Error(w, "Category name is required", http.StatusBadRequest)
		return
	}
	if payload.Type != models.CategoryPersonal && payload.Type != models.CategoryGroup {
		http.Error(w, "Category type must be personal or group", http.StatusBadRequest)
		return
	}

	category, err := h.Categories.Create(r.Context(), user.ID, payload.Name, payload.Type)
	if err != nil {
		logging.Logger.Errorf("Event ID: CATEGORY_CREATE_FAILED, Description: Failed to create category: %v", err)
		http.Error(w, "Failed to create category", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(category)
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	categories, err := h.Categories.ListForUser(r.Context(), user.ID)
	if err != nil {
		logging.Logger.Errorf("Event ID: CATEGORY_LIST_FAILED, Description: Failed to list categories for user %d: %v", user.ID, err)
		http.Error(w, "Failed to list categories", http.StatusInternalServerError)
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(categories)
}

func (h *CategoryHandler) GetCategoryByID(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	category, err := h.Categories.GetByID(r.Context(), id)
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

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(category)
}

// UpdateCategory renames a category. Creator-only.
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		http.Error(w, "Category name is required", http.StatusBadRequest)
		return
	}

	category, err := h.Categories.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching category", http.StatusInternalServerError)
		return
	}
	if category.CreatorID != user.ID {
		http.Error(w, "Only the creator can edit this category", http.StatusForbidden)
		return
	}

	category.Name = payload.Name
	updated, err := h.Categories.Update(r.Context(), *category)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		logging.Logger.Errorf("Event ID: CATEGORY_UPDATE_FAILED, Description: Failed to update category %d: %v", id, err)
		http.Error(w, "Failed to update category", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// DeleteCategory removes a category and cascades over its tasks.
// Creator-only.
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	category, err := h.Categories.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching category", http.StatusInternalServerError)
		return
	}
	if category.CreatorID != user.ID {
		http.Error(w, "Only the creator can delete this category", http.StatusForbidden)
		return
	}

	if err := h.Categories.Remove(r.Context(), id); err != nil {
		logging.Logger.Errorf("Event ID: CATEGORY_DELETE_FAILED, Description: Failed to delete category %d: %v", id, err)
		http.Error(w, "Failed to delete category", http.StatusInternalServerError)
		return
	}
	removed, err := h.Tasks.RemoveByCategoryID(r.Context(), id)
	if err != nil {
		logging.Logger.Warnf("Event ID: TASK_CASCADE_FAILED, Description: Failed to delete tasks of category %d: %v", id, err)
	} else if removed > 0 {
		logging.Logger.Infof("Event ID: TASK_CASCADE, Description: Removed %d tasks with category %d", removed, id)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message": "Category deleted successfully"}`))
}

func (h *CategoryHandler) GetCategoryMembers(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	category, err := h.Categories.GetByID(r.Context(), id)
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

	members := category.Members
	if members == nil {
		members = []models.Member{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(members)
}

// AddMemberToCategory adds a directory user to a group category by
// username. The store appends blindly, so the duplicate check happens
// here, before delegation.
func (h *CategoryHandler) AddMemberToCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	var payload struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}

	category, err := h.Categories.GetByID(r.Context(), id)
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
	if category.Type != models.CategoryGroup {
		http.Error(w, "Members can only be added to group categories", http.StatusBadRequest)
		return
	}

	newMember, err := h.Users.FindByUsername(r.Context(), payload.Username)
	if err != nil {
		if errors.Is(err, services.ErrUsernameNotFound) {
			http.Error(w, services.ErrUsernameNotFound.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to look up user", http.StatusInternalServerError)
		return
	}
	if category.HasMember(newMember.ID) {
		http.Error(w, services.ErrAlreadyMember.Error(), http.StatusBadRequest)
		return
	}
	if !newMember.EligibleForGroups() {
		http.Error(w, services.ErrIneligibleTier.Error(), http.StatusBadRequest)
		return
	}

	member := models.Member{UserID: newMember.ID, Username: newMember.Username}
	if err := h.Categories.AddMember(r.Context(), id, member); err != nil {
		logging.Logger.Errorf("Event ID: MEMBER_ADD_FAILED, Description: Failed to add %s to category %d: %v", payload.Username, id, err)
		http.Error(w, "Failed to add member to category", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message": "Member added successfully"}`))
}

// RemoveMemberFromCategory removes a member. Creator-only; the creator
// cannot be removed.
func (h *CategoryHandler) RemoveMemberFromCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}
	memberID, err := pathID(r, "memberId")
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}

	category, err := h.Categories.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			http.Error(w, "Category not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Error fetching category", http.StatusInternalServerError)
		return
	}
	if category.CreatorID != user.ID {
		http.Error(w, services.ErrNotCreator.Error(), http.StatusForbidden)
		return
	}
	if memberID == category.CreatorID {
		http.Error(w, services.ErrCannotRemoveCreator.Error(), http.StatusForbidden)
		return
	}

	if err := h.Categories.RemoveMember(r.Context(), id, memberID); err != nil {
		switch {
		case errors.Is(err, services.ErrMemberNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, services.ErrCategoryNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			logging.Logger.Errorf("Event ID: MEMBER_REMOVE_FAILED, Description: Failed to remove member %d from category %d: %v", memberID, id, err)
			http.Error(w, "Failed to remove member from category", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message": "Member removed successfully from category"}`))
}

func (h *CategoryHandler) GetTasksForCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	category, err := h.Categories.GetByID(r.Context(), id)
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

	tasks, err := h.Tasks.GetByCategoryID(r.Context(), id)
	if err != nil {
		logging.Logger.Errorf("Event ID: TASK_LIST_FAILED, Description: Failed to list tasks for category %d: %v", id, err)
		http.Error(w, "Failed to retrieve tasks", http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tasks)
}
