package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/TechSupportz/tasky-server/logging"
	"github.com/TechSupportz/tasky-server/models"
	"github.com/TechSupportz/tasky-server/services"
)

// PageState tracks where a page session is in its lifecycle.
type PageState string

const (
	StateIdle      PageState = "idle"
	StateLoading   PageState = "loading"
	StateReady     PageState = "ready"
	StateDenied    PageState = "denied"
	StateDestroyed PageState = "destroyed"
)

// Navigator redirects the viewer to another route.
type Navigator interface {
	Navigate(path string)
}

// ConfirmationPrompt asks the viewer to confirm a destructive action.
// onAccept runs only when the viewer accepts; declining has no effect.
type ConfirmationPrompt interface {
	Confirm(header, message string, onAccept func())
}

// GroupCategoryPage mediates one viewer's session on a group category
// detail view: it loads the category and its tasks, guards access against
// membership, and performs the user-triggered mutations. A page serves one
// logical flow at a time; callers serialize access.
type GroupCategoryPage struct {
	categoryID int64
	category   *models.Category
	user       models.User
	taskList   []models.Task

	settingsDialogVisible  bool
	addMemberDialogVisible bool
	addTaskDialogVisible   bool

	state PageState

	categories services.CategoryStore
	tasks      services.TaskStore
	users      services.UserDirectory
	notifier   services.NotificationSink
	confirmer  ConfirmationPrompt
	router     Navigator
}

func NewGroupCategoryPage(
	categories services.CategoryStore,
	tasks services.TaskStore,
	users services.UserDirectory,
	notifier services.NotificationSink,
	confirmer ConfirmationPrompt,
	router Navigator,
) *GroupCategoryPage {
	return &GroupCategoryPage{
		state:      StateIdle,
		categories: categories,
		tasks:      tasks,
		users:      users,
		notifier:   notifier,
		confirmer:  confirmer,
		router:     router,
	}
}

// Activate resolves the route's category id: it fetches the category, the
// viewer and the task list, then authorizes the viewer. Unknown categories
// and non-members are soft-denied with a redirect, not an error.
func (p *GroupCategoryPage) Activate(ctx context.Context, categoryID int64) error {
	p.state = StateLoading
	p.categoryID = categoryID

	user, err := p.users.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve viewer: %w", err)
	}
	p.user = user

	category, err := p.categories.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) {
			p.deny()
			return nil
		}
		return fmt.Errorf("failed to load category %d: %w", categoryID, err)
	}

	// The creator is admitted even when absent from the member list; every
	// other viewer must appear in it. Personal categories admit only their
	// creator.
	if !category.HasMember(user.ID) && category.CreatorID != user.ID {
		p.deny()
		return nil
	}

	taskList, err := p.tasks.GetByCategoryID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to load tasks for category %d: %w", categoryID, err)
	}

	p.category = category
	p.taskList = taskList
	p.state = StateReady
	return nil
}

// Reload re-runs activation against the stores so a resumed session sees
// current data. A category deleted since the last visit denies the page; a
// destroyed session stays destroyed.
func (p *GroupCategoryPage) Reload(ctx context.Context) error {
	if p.state == StateDestroyed {
		return nil
	}
	return p.Activate(ctx, p.categoryID)
}

func (p *GroupCategoryPage) deny() {
	p.state = StateDenied
	p.router.Navigate("/404")
}

// OpenSettings opens the settings dialog for the creator; anyone else gets
// an error notification and the dialog stays closed.
func (p *GroupCategoryPage) OpenSettings() {
	if p.state != StateReady {
		return
	}
	if p.user.ID == p.category.CreatorID {
		p.settingsDialogVisible = true
		return
	}
	p.notifier.Notify(models.SeverityError, "Not allowed", "Only the creator can edit this category")
}

func (p *GroupCategoryPage) OpenAddMember() {
	if p.state != StateReady {
		return
	}
	p.addMemberDialogVisible = true
}

func (p *GroupCategoryPage) OpenAddTask() {
	if p.state != StateReady {
		return
	}
	p.addTaskDialogVisible = true
}

// EditCategory renames the category, keeping everything else intact. It
// only works while the settings dialog is open, and OpenSettings only opens
// it for the creator, so that check also carries the creator authorization.
func (p *GroupCategoryPage) EditCategory(ctx context.Context, newName string) {
	if p.state != StateReady {
		return
	}
	if !p.settingsDialogVisible {
		p.notifier.Notify(models.SeverityError, "Not allowed", "Open the category settings to edit it")
		return
	}

	updated := *p.category
	updated.Name = newName

	category, err := p.categories.Update(ctx, updated)
	if err != nil {
		logging.Logger.Warnf("Event ID: CATEGORY_EDIT_FAILED, Description: Failed to edit category %d: %v", p.categoryID, err)
		p.notifier.Notify(models.SeverityError, "Edit failed", "Category could not be updated")
		return
	}

	p.category = category
	p.settingsDialogVisible = false
	p.notifier.Notify(models.SeveritySuccess, "Updated!", "Category has been edited successfully")
}

// AddMember resolves username in the directory and appends the user to the
// member list. Duplicates, free-tier accounts and unknown usernames are
// rejected with distinct notifications; the store itself does not check.
func (p *GroupCategoryPage) AddMember(ctx context.Context, username string) {
	if p.state != StateReady {
		return
	}

	newMember, err := p.users.FindByUsername(ctx, username)
	if err != nil {
		p.notifier.Notify(models.SeverityError, "Who?", "No user found with that username")
		return
	}

	if p.category.HasMember(newMember.ID) {
		p.notifier.Notify(models.SeverityError, "Already a member", "This user is already a member of this category")
		return
	}
	if !newMember.EligibleForGroups() {
		p.notifier.Notify(models.SeverityError, "Upgrade required", "Only pro and pro+ users can be added to group categories")
		return
	}

	member := models.Member{UserID: newMember.ID, Username: newMember.Username}
	if err := p.categories.AddMember(ctx, p.categoryID, member); err != nil {
		logging.Logger.Warnf("Event ID: MEMBER_ADD_FAILED, Description: Failed to add %s to category %d: %v", username, p.categoryID, err)
		p.notifier.Notify(models.SeverityError, "Add failed", "User could not be added to this category")
		return
	}

	p.category.Members = append(p.category.Members, member)
	p.addMemberDialogVisible = false
	p.settingsDialogVisible = false
	p.notifier.Notify(models.SeveritySuccess, fmt.Sprintf("%s has joined", newMember.Username), "User has been added to this category")
}

// RemoveMember removes a member. Creator-only; the creator cannot remove
// themselves; the target must currently be a member.
func (p *GroupCategoryPage) RemoveMember(ctx context.Context, memberUserID int64) {
	if p.state != StateReady {
		return
	}

	if p.user.ID != p.category.CreatorID {
		p.notifier.Notify(models.SeverityError, "Not allowed", "Only the creator can remove members")
		return
	}
	if memberUserID == p.category.CreatorID {
		p.notifier.Notify(models.SeverityError, "Not allowed", "The creator cannot be removed from the category")
		return
	}

	if err := p.categories.RemoveMember(ctx, p.categoryID, memberUserID); err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			p.notifier.Notify(models.SeverityError, "Not a member", "That user is not a member of this category")
			return
		}
		logging.Logger.Warnf("Event ID: MEMBER_REMOVE_FAILED, Description: Failed to remove user %d from category %d: %v", memberUserID, p.categoryID, err)
		p.notifier.Notify(models.SeverityError, "Remove failed", "Member could not be removed")
		return
	}

	for i, m := range p.category.Members {
		if m.UserID == memberUserID {
			p.category.Members = append(p.category.Members[:i], p.category.Members[i+1:]...)
			break
		}
	}
	p.notifier.Notify(models.SeveritySuccess, "Member removed", "User has been removed from this category")
}

// DeleteCategory deletes the category after explicit confirmation, taking
// its tasks with it. Declining the prompt leaves everything untouched.
func (p *GroupCategoryPage) DeleteCategory(ctx context.Context) {
	if p.state != StateReady {
		return
	}

	p.confirmer.Confirm(
		"Delete category",
		"Are you sure you want to delete this category? This is NOT reversible",
		func() {
			if err := p.categories.Remove(ctx, p.categoryID); err != nil {
				logging.Logger.Warnf("Event ID: CATEGORY_DELETE_FAILED, Description: Failed to delete category %d: %v", p.categoryID, err)
				p.notifier.Notify(models.SeverityError, "Delete failed", "Category could not be deleted")
				return
			}
			if removed, err := p.tasks.RemoveByCategoryID(ctx, p.categoryID); err != nil {
				logging.Logger.Warnf("Event ID: TASK_CASCADE_FAILED, Description: Failed to delete tasks of category %d: %v", p.categoryID, err)
			} else if removed > 0 {
				logging.Logger.Infof("Event ID: TASK_CASCADE, Description: Removed %d tasks with category %d", removed, p.categoryID)
			}

			p.settingsDialogVisible = false
			p.router.Navigate("/home")
			p.notifier.Notify(models.SeveritySuccess, "Poof!", "Category deleted successfully")
		},
	)
}

// AddTask creates a task in this category with the viewer as creator and
// appends it to the cached list. A failure leaves the dialog open; nothing
// was applied optimistically, so there is no rollback.
func (p *GroupCategoryPage) AddTask(ctx context.Context, name, dueDate string, priority models.Priority) {
	if p.state != StateReady {
		return
	}

	task, err := p.tasks.Add(ctx, p.categoryID, p.user.ID, name, dueDate, priority)
	if err != nil {
		logging.Logger.Warnf("Event ID: TASK_ADD_FAILED, Description: Failed to add task to category %d: %v", p.categoryID, err)
		p.notifier.Notify(models.SeverityError, "Task not added", "Task could not be created")
		return
	}

	p.taskList = append(p.taskList, *task)
	p.addTaskDialogVisible = false
	p.notifier.Notify(models.SeveritySuccess, "Task added!", "More stuff to do now")
}

// Close tears the session down. Once destroyed, no action has any effect.
func (p *GroupCategoryPage) Close() {
	p.state = StateDestroyed
}

func (p *GroupCategoryPage) State() PageState { return p.state }

func (p *GroupCategoryPage) Category() *models.Category { return p.category }

func (p *GroupCategoryPage) Tasks() []models.Task { return p.taskList }

func (p *GroupCategoryPage) SettingsDialogVisible() bool { return p.settingsDialogVisible }

func (p *GroupCategoryPage) AddMemberDialogVisible() bool { return p.addMemberDialogVisible }

func (p *GroupCategoryPage) AddTaskDialogVisible() bool { return p.addTaskDialogVisible }
