package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/TechSupportz/tasky-server/controllers"
	"github.com/TechSupportz/tasky-server/logging"
	"github.com/TechSupportz/tasky-server/middleware"
	"github.com/TechSupportz/tasky-server/models"
	"github.com/TechSupportz/tasky-server/repositories"
	"github.com/TechSupportz/tasky-server/services"
)

// PageHandler drives group-category page sessions over HTTP. A session is
// a server-held GroupCategoryPage per viewer and category; every call
// returns the view state the client should render.
type PageHandler struct {
	Categories services.CategoryStore
	Tasks      services.TaskStore
	Users      services.UserDirectory
	History    *repositories.NotificationRepo // optional

	mu       sync.Mutex
	sessions map[string]*pageSession
}

type pageSession struct {
	mu         sync.Mutex
	categoryID int64
	page       *controllers.GroupCategoryPage
	recorder   *services.NotificationRecorder
	nav        *controllers.NavigationRecorder
	confirm    *requestConfirm
}

// requestConfirm answers the confirmation prompt with whatever the current
// request declared.
type requestConfirm struct {
	accept bool
}

func (c *requestConfirm) Confirm(header, message string, onAccept func()) {
	if c.accept {
		onAccept()
	}
}

type pageViewState struct {
	State                  controllers.PageState `json:"state"`
	Category               *models.Category      `json:"category,omitempty"`
	Tasks                  []models.Task         `json:"tasks"`
	SettingsDialogVisible  bool                  `json:"settingsDialogVisible"`
	AddMemberDialogVisible bool                  `json:"addMemberDialogVisible"`
	AddTaskDialogVisible   bool                  `json:"addTaskDialogVisible"`
	Notifications          []models.Notification `json:"notifications"`
	RedirectTo             string                `json:"redirectTo,omitempty"`
}

func NewPageHandler(categories services.CategoryStore, tasks services.TaskStore, users services.UserDirectory, history *repositories.NotificationRepo) *PageHandler {
	return &PageHandler{
		Categories: categories,
		Tasks:      tasks,
		Users:      users,
		History:    history,
		sessions:   make(map[string]*pageSession),
	}
}

func sessionKey(userID, categoryID int64) string {
	return fmt.Sprintf("%d:%d", userID, categoryID)
}

// session returns the viewer's session for the category, creating and
// activating it on first use.
func (h *PageHandler) session(r *http.Request, user models.User, categoryID int64) (*pageSession, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	key := sessionKey(user.ID, categoryID)
	if s, ok := h.sessions[key]; ok {
		return s, nil
	}

	recorder := services.NewNotificationRecorder()
	nav := controllers.NewNavigationRecorder()
	confirm := &requestConfirm{}

	sink := services.MultiSink{recorder, services.LogNotificationSink{}}
	if h.History != nil {
		sink = append(sink, services.HistorySink{Repo: h.History, User: user})
	}

	page := controllers.NewGroupCategoryPage(
		h.Categories,
		h.Tasks,
		services.WithCurrentUser(h.Users, user),
		sink,
		confirm,
		nav,
	)
	if err := page.Activate(r.Context(), categoryID); err != nil {
		return nil, err
	}

	s := &pageSession{categoryID: categoryID, page: page, recorder: recorder, nav: nav, confirm: confirm}
	h.sessions[key] = s
	return s, nil
}

// evict drops the viewer's session; evictCategory drops every session on a
// category, regardless of viewer. Both keep the map from outliving the data
// the sessions cache.
func (h *PageHandler) evict(userID, categoryID int64) {
	h.mu.Lock()
	delete(h.sessions, sessionKey(userID, categoryID))
	h.mu.Unlock()
}

func (h *PageHandler) evictCategory(categoryID int64) {
	h.mu.Lock()
	for key, s := range h.sessions {
		if s.categoryID == categoryID {
			s.mu.Lock()
			s.page.Close()
			s.mu.Unlock()
			delete(h.sessions, key)
		}
	}
	h.mu.Unlock()
}

func (h *PageHandler) withSession(w http.ResponseWriter, r *http.Request, fn func(s *pageSession)) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	categoryID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	s, err := h.session(r, user, categoryID)
	if err != nil {
		logging.Logger.Errorf("Event ID: PAGE_SESSION_FAILED, Description: Failed to open page session for category %d: %v", categoryID, err)
		http.Error(w, "Failed to open page", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	fn(s)
	state := pageViewState{
		State:                  s.page.State(),
		Category:               s.page.Category(),
		Tasks:                  s.page.Tasks(),
		SettingsDialogVisible:  s.page.SettingsDialogVisible(),
		AddMemberDialogVisible: s.page.AddMemberDialogVisible(),
		AddTaskDialogVisible:   s.page.AddTaskDialogVisible(),
		Notifications:          s.recorder.Drain(),
		RedirectTo:             s.nav.Last(),
	}
	s.mu.Unlock()

	// A denied session has nothing worth caching.
	if state.State == controllers.StateDenied {
		h.evict(user.ID, categoryID)
	}

	if state.Tasks == nil {
		state.Tasks = []models.Task{}
	}
	if state.Notifications == nil {
		state.Notifications = []models.Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

// Open activates (or resumes) the page and returns its view state. A resumed
// session reloads from the stores, so edits made elsewhere show up and a
// deleted category denies the page instead of serving the cached copy.
func (h *PageHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *pageSession) {
		if err := s.page.Reload(r.Context()); err != nil {
			logging.Logger.Errorf("Event ID: PAGE_RELOAD_FAILED, Description: Failed to reload page session for category %d: %v", s.categoryID, err)
		}
	})
}

func (h *PageHandler) OpenSettings(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *pageSession) {
		s.page.OpenSettings()
	})
}

func (h *PageHandler) OpenAddMember(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *pageSession) {
		s.page.OpenAddMember()
	})
}

func (h *PageHandler) OpenAddTask(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *pageSession) {
		s.page.OpenAddTask()
	})
}

func (h *PageHandler) EditCategory(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Name == "" {
		http.Error(w, "Category name is required", http.StatusBadRequest)
		return
	}
	h.withSession(w, r, func(s *pageSession) {
		s.page.EditCategory(r.Context(), payload.Name)
	})
}

func (h *PageHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Username == "" {
		http.Error(w, "Username is required", http.StatusBadRequest)
		return
	}
	h.withSession(w, r, func(s *pageSession) {
		s.page.AddMember(r.Context(), payload.Username)
	})
}

func (h *PageHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := pathID(r, "memberId")
	if err != nil {
		http.Error(w, "Invalid member ID", http.StatusBadRequest)
		return
	}
	h.withSession(w, r, func(s *pageSession) {
		s.page.RemoveMember(r.Context(), memberID)
	})
}

// DeleteCategory forwards the client's confirm flag to the prompt; without
// it the delete never runs.
func (h *PageHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Confirm bool `json:"confirm"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	h.withSession(w, r, func(s *pageSession) {
		s.confirm.accept = payload.Confirm
		s.page.DeleteCategory(r.Context())
		s.confirm.accept = false
	})

	// Every viewer's session on a deleted category is dead weight now.
	if categoryID, err := pathID(r, "id"); err == nil {
		if _, err := h.Categories.GetByID(r.Context(), categoryID); errors.Is(err, services.ErrCategoryNotFound) {
			h.evictCategory(categoryID)
		}
	}
}

func (h *PageHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string          `json:"name"`
		DueDate  string          `json:"dueDate"`
		Priority models.Priority `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.Name == "" || payload.DueDate == "" || !models.ValidPriority(payload.Priority) {
		http.Error(w, "Task name, due date and a valid priority are required", http.StatusBadRequest)
		return
	}
	h.withSession(w, r, func(s *pageSession) {
		s.page.AddTask(r.Context(), payload.Name, payload.DueDate, payload.Priority)
	})
}

// Close destroys the viewer's session for the category.
func (h *PageHandler) Close(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}
	categoryID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid category ID", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	key := sessionKey(user.ID, categoryID)
	if s, ok := h.sessions[key]; ok {
		s.mu.Lock()
		s.page.Close()
		s.mu.Unlock()
		delete(h.sessions, key)
	}
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message": "Page closed"}`))
}
