package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/TechSupportz/tasky-server/models"
)

// GormCategoryService is the SQLite-backed CategoryStore for single-binary
// deployments without a MongoDB instance.
type GormCategoryService struct {
	db *gorm.DB
}

func NewGormCategoryService(db *gorm.DB) *GormCategoryService {
	return &GormCategoryService{db: db}
}

func (s *GormCategoryService) ListForUser(ctx context.Context, userID int64) ([]models.Category, error) {
	db := s.db.WithContext(ctx)

	var categories []models.Category
	err := db.Preload("Members").
		Where("(type = ? AND id IN (?)) OR (type = ? AND creator_id = ?)",
			models.CategoryGroup,
			db.Model(&models.Member{}).Select("category_id").Where("user_id = ?", userID),
			models.CategoryPersonal,
			userID,
		).
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	for i := range categories {
		normalizeMembers(&categories[i])
	}
	return categories, nil
}

// normalizeMembers keeps an empty group member list non-nil; Preload leaves
// it nil when no member rows exist.
func normalizeMembers(c *models.Category) {
	if c.Type == models.CategoryGroup && c.Members == nil {
		c.Members = []models.Member{}
	}
}

func (s *GormCategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Preload("Members").First(&category, id).Error
	switch {
	case err == nil:
		normalizeMembers(&category)
		return &category, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrCategoryNotFound
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}

func (s *GormCategoryService) IsGroup(ctx context.Context, id int64) bool {
	var category models.Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return false
	}
	return category.Type == models.CategoryGroup
}

func (s *GormCategoryService) Create(ctx context.Context, creatorID int64, name string, categoryType models.CategoryType) (*models.Category, error) {
	category := models.Category{
		CreatorID: creatorID,
		Name:      name,
		Type:      categoryType,
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	if categoryType == models.CategoryGroup {
		category.Members = []models.Member{}
	}
	return &category, nil
}

func (s *GormCategoryService) AddMember(ctx context.Context, categoryID int64, member models.Member) error {
	db := s.db.WithContext(ctx)

	var category models.Category
	if err := db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find category: %w", err)
	}
	if category.Type != models.CategoryGroup {
		return nil
	}

	member.ID = 0
	member.CategoryID = categoryID
	if err := db.Create(&member).Error; err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *GormCategoryService) RemoveMember(ctx context.Context, categoryID int64, userID int64) error {
	db := s.db.WithContext(ctx)

	var category models.Category
	if err := db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("find category: %w", err)
	}

	var member models.Member
	err := db.Where("category_id = ? AND user_id = ?", categoryID, userID).
		Order("id ASC").First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMemberNotFound
	}
	if err != nil {
		return fmt.Errorf("find member: %w", err)
	}
	if err := db.Delete(&member).Error; err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *GormCategoryService) Update(ctx context.Context, category models.Category) (*models.Category, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Category
		if err := tx.First(&existing, category.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("find category: %w", err)
		}

		// Full replacement: the member list is rewritten alongside the row.
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.Member{}).Error; err != nil {
			return fmt.Errorf("clear members: %w", err)
		}
		for i := range category.Members {
			category.Members[i].ID = 0
			category.Members[i].CategoryID = category.ID
		}
		if err := tx.Omit("Members").Save(&category).Error; err != nil {
			return fmt.Errorf("save category: %w", err)
		}
		if len(category.Members) > 0 {
			if err := tx.Create(&category.Members).Error; err != nil {
				return fmt.Errorf("save members: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *GormCategoryService) Remove(ctx context.Context, id int64) error {
	db := s.db.WithContext(ctx)
	if err := db.Where("category_id = ?", id).Delete(&models.Member{}).Error; err != nil {
		return fmt.Errorf("remove members: %w", err)
	}
	if err := db.Delete(&models.Category{}, id).Error; err != nil {
		return fmt.Errorf("remove category: %w", err)
	}
	return nil
}
