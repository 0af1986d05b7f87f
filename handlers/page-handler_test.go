package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechSupportz/tasky-server/controllers"
	"github.com/TechSupportz/tasky-server/models"
)

type pageState struct {
	State                 controllers.PageState `json:"state"`
	Category              *models.Category      `json:"category"`
	Tasks                 []models.Task         `json:"tasks"`
	SettingsDialogVisible bool                  `json:"settingsDialogVisible"`
	AddTaskDialogVisible  bool                  `json:"addTaskDialogVisible"`
	Notifications         []models.Notification `json:"notifications"`
	RedirectTo            string                `json:"redirectTo"`
}

// seedGroup creates a group category owned by alice with bob as a member.
func seedGroup(t *testing.T, env *testEnv) models.Category {
	t.Helper()
	token := env.token(t, alice)

	w := env.do(t, http.MethodPost, "/api/categories", token, map[string]any{"name": "Roadtrip", "type": "group"})
	require.Equal(t, http.StatusCreated, w.Code)
	group := decodeBody[models.Category](t, w)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/categories/%d/members", group.ID), token, map[string]string{"username": "bob"})
	require.Equal(t, http.StatusOK, w.Code)
	return group
}

func TestPageOpenAsMember(t *testing.T) {
	env := setupEnv(t)
	group := seedGroup(t, env)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/pages/group-category/%d/open", group.ID), env.token(t, bob), nil)
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeBody[pageState](t, w)
	assert.Equal(t, controllers.StateReady, state.State)
	require.NotNil(t, state.Category)
	assert.Equal(t, "Roadtrip", state.Category.Name)
	assert.Empty(t, state.RedirectTo)
}

func TestPageOpenAsStrangerIsSoftDenied(t *testing.T) {
	env := setupEnv(t)
	group := seedGroup(t, env)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/pages/group-category/%d/open", group.ID), env.token(t, eve), nil)
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeBody[pageState](t, w)
	assert.Equal(t, controllers.StateDenied, state.State)
	assert.Equal(t, "/404", state.RedirectTo)
	assert.Empty(t, state.Notifications)
}

func TestPageOpenSettingsDeniedForNonCreator(t *testing.T) {
	env := setupEnv(t)
	group := seedGroup(t, env)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/pages/group-category/%d/settings/open", group.ID), env.token(t, bob), nil)
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeBody[pageState](t, w)
	assert.False(t, state.SettingsDialogVisible)
	require.Len(t, state.Notifications, 1)
	assert.Equal(t, models.SeverityError, state.Notifications[0].Severity)
}

func TestPageEditWithoutSettingsDialogDoesNotRename(t *testing.T) {
	env := setupEnv(t)
	group := seedGroup(t, env)

	// bob is a member but not the creator, so the settings dialog never
	// opens for him and the rename must be refused.
	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/pages/group-category/%d/edit", group.ID), env.token(t, bob), map[string]string{"name": "Hijacked"})
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeBody[pageState](t, w)
	require.NotNil(t, state.Category)
	assert.Equal(t, "Roadtrip", state.Category.Name)
	require.Len(t, state.Notifications, 1)
	assert.Equal(t, models.SeverityError, state.Notifications[0].Severity)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/categories/%d", group.ID), env.token(t, alice), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Roadtrip", decodeBody[models.Category](t, w).Name)
}

func TestPageEditViaSettingsDialog(t *testing.T) {
	env := setupEnv(t)
	group := seedGroup(t, env)
	token := env.token(t, alice)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/pages/group-category/%d/settings/open", group.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, decodeBody[pageState](t, w).SettingsDialogVisible)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/pages/group-category/%d/edit", group.ID), token, map[string]string{"name": "Summer trip"})
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeBody[pageState](t, w)
	require.NotNil(t, state.Category)
	assert.Equal(t, "Summer trip", state.Category.Name)
	assert.False(t, state.SettingsDialogVisible)
}

func TestPageDeleteRequiresConfirmation(t *testing.T) {
	env := setupEnv(t)
	group := seedGroup(t, env)
	token := env.token(t, alice)
	deletePath := fmt.Sprintf("/api/pages/group-category/%d/delete", group.ID)

	w := env.do(t, http.MethodPost, deletePath, token, map[string]bool{"confirm": false})
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeBody[pageState](t, w)
	assert.Empty(t, state.RedirectTo)

	// Still there.
	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/categories/%d", group.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, deletePath, token, map[string]bool{"confirm": true})
	require.Equal(t, http.StatusOK, w.Code)
	state = decodeBody[pageState](t, w)
	assert.Equal(t, "/home", state.RedirectTo)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/categories/%d", group.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPageOpenReloadsCurrentData(t *testing.T) {
	env := setupEnv(t)
	group := seedGroup(t, env)
	openPath := fmt.Sprintf("/api/pages/group-category/%d/open", group.ID)

	w := env.do(t, http.MethodPost, openPath, env.token(t, bob), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Roadtrip", decodeBody[pageState](t, w).Category.Name)

	// alice renames out of band; bob's next visit must not serve the
	// cached name.
	w = env.do(t, http.MethodPut, fmt.Sprintf("/api/categories/%d", group.ID), env.token(t, alice), map[string]any{"name": "Summer trip"})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, openPath, env.token(t, bob), nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeBody[pageState](t, w)
	assert.Equal(t, controllers.StateReady, state.State)
	require.NotNil(t, state.Category)
	assert.Equal(t, "Summer trip", state.Category.Name)
}

func TestPageSessionsDoNotSurviveDeletion(t *testing.T) {
	env := setupEnv(t)
	group := seedGroup(t, env)
	openPath := fmt.Sprintf("/api/pages/group-category/%d/open", group.ID)

	w := env.do(t, http.MethodPost, openPath, env.token(t, bob), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, controllers.StateReady, decodeBody[pageState](t, w).State)

	w = env.do(t, http.MethodPost, fmt.Sprintf("/api/pages/group-category/%d/delete", group.ID), env.token(t, alice), map[string]bool{"confirm": true})
	require.Equal(t, http.StatusOK, w.Code)

	// bob's old session must not keep serving the deleted category.
	w = env.do(t, http.MethodPost, openPath, env.token(t, bob), nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := decodeBody[pageState](t, w)
	assert.Equal(t, controllers.StateDenied, state.State)
	assert.Equal(t, "/404", state.RedirectTo)
}

func TestPageAddTask(t *testing.T) {
	env := setupEnv(t)
	group := seedGroup(t, env)

	w := env.do(t, http.MethodPost, fmt.Sprintf("/api/pages/group-category/%d/tasks", group.ID), env.token(t, bob), map[string]any{
		"name": "Pack bags", "dueDate": "2026-09-10", "priority": "Low",
	})
	require.Equal(t, http.StatusOK, w.Code)

	state := decodeBody[pageState](t, w)
	require.Len(t, state.Tasks, 1)
	assert.Equal(t, "Pack bags", state.Tasks[0].Name)
	assert.Equal(t, int64(2), state.Tasks[0].CreatorID)
	assert.False(t, state.AddTaskDialogVisible)
	require.Len(t, state.Notifications, 1)
	assert.Equal(t, models.SeveritySuccess, state.Notifications[0].Severity)
}
