package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TechSupportz/tasky-server/models"
)

func TestTaskAddAndListByCategory(t *testing.T) {
	store := NewTaskService()
	ctx := context.Background()

	created, err := store.Add(ctx, 7, 1, "Buy snacks", "2026-09-01", models.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, int64(7), created.CategoryID)
	assert.Equal(t, int64(1), created.CreatorID)

	_, err = store.Add(ctx, 8, 1, "Other category", "2026-09-02", models.PriorityLow)
	require.NoError(t, err)

	tasks, err := store.GetByCategoryID(ctx, 7)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy snacks", tasks[0].Name)
}

func TestTaskAddSubTask(t *testing.T) {
	store := NewTaskService()
	ctx := context.Background()

	task, err := store.Add(ctx, 7, 1, "Plan trip", "2026-09-01", models.PriorityMedium)
	require.NoError(t, err)

	updated, err := store.AddSubTask(ctx, task.ID, "Book hotel", "2026-08-20", models.PriorityHigh)
	require.NoError(t, err)
	require.Len(t, updated.SubTasks, 1)
	assert.Equal(t, "Book hotel", updated.SubTasks[0].Name)
	// Subtask keeps its own due date and priority.
	assert.Equal(t, models.PriorityHigh, updated.SubTasks[0].Priority)
	assert.Equal(t, "2026-08-20", updated.SubTasks[0].DueDate)

	_, err = store.AddSubTask(ctx, 999, "Nope", "2026-08-20", models.PriorityLow)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestTaskRemoveByCategoryID(t *testing.T) {
	store := NewTaskService()
	ctx := context.Background()

	_, err := store.Add(ctx, 7, 1, "One", "2026-09-01", models.PriorityLow)
	require.NoError(t, err)
	_, err = store.Add(ctx, 7, 1, "Two", "2026-09-02", models.PriorityLow)
	require.NoError(t, err)
	keep, err := store.Add(ctx, 8, 1, "Keep", "2026-09-03", models.PriorityLow)
	require.NoError(t, err)

	removed, err := store.RemoveByCategoryID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	tasks, err := store.GetByCategoryID(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)
}
