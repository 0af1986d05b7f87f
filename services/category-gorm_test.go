package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/TechSupportz/tasky-server/models"
)

// newGormBackend opens a throwaway in-memory database, named after the test
// so parallel tests never share state.
func newGormBackend(t *testing.T) (*GormCategoryService, *GormTaskService) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Member{}, &models.Task{}, &models.SubTask{}))

	return NewGormCategoryService(db), NewGormTaskService(db)
}

func TestGormCreateThenGetByID(t *testing.T) {
	categories, _ := newGormBackend(t)
	ctx := context.Background()

	created, err := categories.Create(ctx, 1, "Chores", models.CategoryPersonal)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := categories.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CreatorID)
	assert.Equal(t, "Chores", got.Name)
	assert.Equal(t, models.CategoryPersonal, got.Type)
	assert.Nil(t, got.Members)
}

func TestGormGroupRoundTripsWithEmptyMembers(t *testing.T) {
	categories, _ := newGormBackend(t)
	ctx := context.Background()

	created, err := categories.Create(ctx, 1, "Roadtrip", models.CategoryGroup)
	require.NoError(t, err)
	require.NotNil(t, created.Members)

	// A fresh read must come back with an empty list, not nil.
	got, err := categories.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Members)
	assert.Empty(t, got.Members)

	listed, err := categories.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, listed) // creator without membership is not listed
}

func TestGormGetByIDNotFound(t *testing.T) {
	categories, _ := newGormBackend(t)

	_, err := categories.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestGormAddMember(t *testing.T) {
	categories, _ := newGormBackend(t)
	ctx := context.Background()

	group, err := categories.Create(ctx, 1, "Roadtrip", models.CategoryGroup)
	require.NoError(t, err)

	require.NoError(t, categories.AddMember(ctx, group.ID, models.Member{UserID: 2, Username: "bob"}))
	require.NoError(t, categories.AddMember(ctx, group.ID, models.Member{UserID: 2, Username: "bob"}))

	got, err := categories.GetByID(ctx, group.ID)
	require.NoError(t, err)
	// The store does not dedupe; that is the caller's job.
	require.Len(t, got.Members, 2)
	assert.Equal(t, int64(2), got.Members[0].UserID)
	assert.Equal(t, "bob", got.Members[0].Username)
}

func TestGormAddMemberNoOpOnPersonalAndMissing(t *testing.T) {
	categories, _ := newGormBackend(t)
	ctx := context.Background()

	personal, err := categories.Create(ctx, 1, "Chores", models.CategoryPersonal)
	require.NoError(t, err)

	require.NoError(t, categories.AddMember(ctx, personal.ID, models.Member{UserID: 2, Username: "bob"}))
	require.NoError(t, categories.AddMember(ctx, 42, models.Member{UserID: 2, Username: "bob"}))

	got, err := categories.GetByID(ctx, personal.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Members)
}

func TestGormRemoveMember(t *testing.T) {
	categories, _ := newGormBackend(t)
	ctx := context.Background()

	group, err := categories.Create(ctx, 1, "Roadtrip", models.CategoryGroup)
	require.NoError(t, err)
	require.NoError(t, categories.AddMember(ctx, group.ID, models.Member{UserID: 2, Username: "bob"}))

	assert.ErrorIs(t, categories.RemoveMember(ctx, 42, 2), ErrCategoryNotFound)
	assert.ErrorIs(t, categories.RemoveMember(ctx, group.ID, 3), ErrMemberNotFound)

	require.NoError(t, categories.RemoveMember(ctx, group.ID, 2))
	got, err := categories.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Members)
}

func TestGormUpdateReplacesAndPreservesMembers(t *testing.T) {
	categories, _ := newGormBackend(t)
	ctx := context.Background()

	group, err := categories.Create(ctx, 1, "Roadtrip", models.CategoryGroup)
	require.NoError(t, err)
	require.NoError(t, categories.AddMember(ctx, group.ID, models.Member{UserID: 1, Username: "alice"}))
	require.NoError(t, categories.AddMember(ctx, group.ID, models.Member{UserID: 2, Username: "bob"}))

	current, err := categories.GetByID(ctx, group.ID)
	require.NoError(t, err)
	current.Name = "Summer trip"

	updated, err := categories.Update(ctx, *current)
	require.NoError(t, err)
	assert.Equal(t, "Summer trip", updated.Name)

	got, err := categories.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summer trip", got.Name)
	require.Len(t, got.Members, 2)
	assert.Equal(t, "alice", got.Members[0].Username)
	assert.Equal(t, "bob", got.Members[1].Username)
}

func TestGormUpdateNotFoundDoesNotInsert(t *testing.T) {
	categories, _ := newGormBackend(t)
	ctx := context.Background()

	_, err := categories.Update(ctx, models.Category{ID: 99, CreatorID: 1, Name: "Ghost", Type: models.CategoryPersonal})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	_, err = categories.GetByID(ctx, 99)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestGormListForUser(t *testing.T) {
	categories, _ := newGormBackend(t)
	ctx := context.Background()

	mine, err := categories.Create(ctx, 1, "Chores", models.CategoryPersonal)
	require.NoError(t, err)
	_, err = categories.Create(ctx, 2, "Theirs", models.CategoryPersonal)
	require.NoError(t, err)

	group, err := categories.Create(ctx, 2, "Roadtrip", models.CategoryGroup)
	require.NoError(t, err)
	require.NoError(t, categories.AddMember(ctx, group.ID, models.Member{UserID: 1, Username: "alice"}))
	_, err = categories.Create(ctx, 2, "Not mine", models.CategoryGroup)
	require.NoError(t, err)

	listed, err := categories.ListForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	ids := []int64{listed[0].ID, listed[1].ID}
	assert.ElementsMatch(t, []int64{mine.ID, group.ID}, ids)
}

func TestGormRemoveCategory(t *testing.T) {
	categories, _ := newGormBackend(t)
	ctx := context.Background()

	group, err := categories.Create(ctx, 1, "Roadtrip", models.CategoryGroup)
	require.NoError(t, err)
	require.NoError(t, categories.AddMember(ctx, group.ID, models.Member{UserID: 2, Username: "bob"}))

	require.NoError(t, categories.Remove(ctx, group.ID))
	_, err = categories.GetByID(ctx, group.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	// Removing again is a no-op.
	require.NoError(t, categories.Remove(ctx, group.ID))
}

func TestGormTasksRoundTrip(t *testing.T) {
	categories, tasks := newGormBackend(t)
	ctx := context.Background()

	group, err := categories.Create(ctx, 1, "Roadtrip", models.CategoryGroup)
	require.NoError(t, err)

	task, err := tasks.Add(ctx, group.ID, 1, "Book hotel", "2026-09-01", models.PriorityHigh)
	require.NoError(t, err)
	assert.NotZero(t, task.ID)

	withSub, err := tasks.AddSubTask(ctx, task.ID, "Compare prices", "2026-08-31", models.PriorityLow)
	require.NoError(t, err)
	require.Len(t, withSub.SubTasks, 1)
	assert.Equal(t, "Compare prices", withSub.SubTasks[0].Name)

	_, err = tasks.AddSubTask(ctx, 42, "Orphan", "2026-08-31", models.PriorityLow)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	list, err := tasks.GetByCategoryID(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].SubTasks, 1)
}

func TestGormRemoveTasksByCategory(t *testing.T) {
	categories, tasks := newGormBackend(t)
	ctx := context.Background()

	group, err := categories.Create(ctx, 1, "Roadtrip", models.CategoryGroup)
	require.NoError(t, err)
	other, err := categories.Create(ctx, 1, "Chores", models.CategoryPersonal)
	require.NoError(t, err)

	doomed, err := tasks.Add(ctx, group.ID, 1, "Book hotel", "2026-09-01", models.PriorityHigh)
	require.NoError(t, err)
	_, err = tasks.AddSubTask(ctx, doomed.ID, "Compare prices", "2026-08-31", models.PriorityLow)
	require.NoError(t, err)
	_, err = tasks.Add(ctx, group.ID, 1, "Pack bags", "2026-09-10", models.PriorityLow)
	require.NoError(t, err)
	keep, err := tasks.Add(ctx, other.ID, 1, "Laundry", "2026-09-02", models.PriorityMedium)
	require.NoError(t, err)

	removed, err := tasks.RemoveByCategoryID(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	gone, err := tasks.GetByCategoryID(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, gone)

	remaining, err := tasks.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)
	assert.Empty(t, remaining[0].SubTasks)
}
