package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/TechSupportz/tasky-server/models"
)

// GormTaskService is the SQLite-backed TaskStore.
type GormTaskService struct {
	db *gorm.DB
}

func NewGormTaskService(db *gorm.DB) *GormTaskService {
	return &GormTaskService{db: db}
}

func (s *GormTaskService) GetByCategoryID(ctx context.Context, categoryID int64) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).Preload("SubTasks").
		Where("category_id = ?", categoryID).Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *GormTaskService) Add(ctx context.Context, categoryID, creatorID int64, name, dueDate string, priority models.Priority) (*models.Task, error) {
	task := models.Task{
		CategoryID: categoryID,
		CreatorID:  creatorID,
		Name:       name,
		DueDate:    dueDate,
		Priority:   priority,
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

func (s *GormTaskService) AddSubTask(ctx context.Context, taskID int64, name, dueDate string, priority models.Priority) (*models.Task, error) {
	db := s.db.WithContext(ctx)

	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}

	sub := models.SubTask{
		TaskID:   taskID,
		Name:     name,
		DueDate:  dueDate,
		Priority: priority,
	}
	if err := db.Create(&sub).Error; err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}

	if err := db.Preload("SubTasks").First(&task, taskID).Error; err != nil {
		return nil, fmt.Errorf("reload task: %w", err)
	}
	return &task, nil
}

func (s *GormTaskService) RemoveByCategoryID(ctx context.Context, categoryID int64) (int64, error) {
	db := s.db.WithContext(ctx)

	err := db.Where("task_id IN (?)",
		db.Model(&models.Task{}).Select("id").Where("category_id = ?", categoryID),
	).Delete(&models.SubTask{}).Error
	if err != nil {
		return 0, fmt.Errorf("remove subtasks: %w", err)
	}

	result := db.Where("category_id = ?", categoryID).Delete(&models.Task{})
	if result.Error != nil {
		return 0, fmt.Errorf("remove tasks: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormTaskService) ListAll(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.db.WithContext(ctx).Preload("SubTasks").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}
