package services

import (
	"context"
	"sync"

	"github.com/TechSupportz/tasky-server/models"
)

// TaskService is the in-memory TaskStore backend.
type TaskService struct {
	mu        sync.RWMutex
	tasks     []models.Task
	nextID    int64
	nextSubID int64
}

func NewTaskService() *TaskService {
	return &TaskService{nextID: 1, nextSubID: 1}
}

// Seed inserts tasks directly, keeping the id counters ahead of any seeded
// ids.
func (s *TaskService) Seed(tasks ...models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
		for _, st := range t.SubTasks {
			if st.ID >= s.nextSubID {
				s.nextSubID = st.ID + 1
			}
		}
		s.tasks = append(s.tasks, t)
	}
}

func (s *TaskService) GetByCategoryID(ctx context.Context, categoryID int64) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Task
	for _, t := range s.tasks {
		if t.CategoryID == categoryID {
			result = append(result, cloneTask(t))
		}
	}
	return result, nil
}

func (s *TaskService) Add(ctx context.Context, categoryID, creatorID int64, name, dueDate string, priority models.Priority) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := models.Task{
		ID:         s.nextID,
		CategoryID: categoryID,
		CreatorID:  creatorID,
		Name:       name,
		DueDate:    dueDate,
		Priority:   priority,
	}
	s.nextID++
	s.tasks = append(s.tasks, task)

	out := cloneTask(task)
	return &out, nil
}

func (s *TaskService) AddSubTask(ctx context.Context, taskID int64, name, dueDate string, priority models.Priority) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			sub := models.SubTask{
				ID:       s.nextSubID,
				TaskID:   taskID,
				Name:     name,
				DueDate:  dueDate,
				Priority: priority,
			}
			s.nextSubID++
			s.tasks[i].SubTasks = append(s.tasks[i].SubTasks, sub)
			out := cloneTask(s.tasks[i])
			return &out, nil
		}
	}
	return nil, ErrTaskNotFound
}

func (s *TaskService) RemoveByCategoryID(ctx context.Context, categoryID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []models.Task
	var removed int64
	for _, t := range s.tasks {
		if t.CategoryID == categoryID {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.tasks = kept
	return removed, nil
}

func (s *TaskService) ListAll(ctx context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		result = append(result, cloneTask(t))
	}
	return result, nil
}

func cloneTask(t models.Task) models.Task {
	if t.SubTasks != nil {
		subs := make([]models.SubTask, len(t.SubTasks))
		copy(subs, t.SubTasks)
		t.SubTasks = subs
	}
	return t
}
