package services

import (
	"context"
	"sync"

	"github.com/TechSupportz/tasky-server/models"
)

// CategoryService is the in-memory CategoryStore backend. Records live in a
// slice guarded by a RWMutex; ids come from a counter that only moves
// forward, so a deleted category's id is never handed out again.
type CategoryService struct {
	mu         sync.RWMutex
	categories []models.Category
	nextID     int64
}

func NewCategoryService() *CategoryService {
	return &CategoryService{nextID: 1}
}

// Seed inserts categories directly, keeping the id counter ahead of the
// highest seeded id. Used for fixtures and tests.
func (s *CategoryService) Seed(categories ...models.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range categories {
		if c.ID >= s.nextID {
			s.nextID = c.ID + 1
		}
		s.categories = append(s.categories, c)
	}
}

func (s *CategoryService) ListForUser(ctx context.Context, userID int64) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Category
	for _, c := range s.categories {
		if c.Type == models.CategoryGroup {
			if c.HasMember(userID) {
				result = append(result, cloneCategory(c))
			}
		} else if c.CreatorID == userID {
			result = append(result, cloneCategory(c))
		}
	}
	return result, nil
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.ID == id {
			out := cloneCategory(c)
			return &out, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (s *CategoryService) IsGroup(ctx context.Context, id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.categories {
		if c.ID == id {
			return c.Type == models.CategoryGroup
		}
	}
	return false
}

func (s *CategoryService) Create(ctx context.Context, creatorID int64, name string, categoryType models.CategoryType) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	category := models.Category{
		ID:        s.nextID,
		CreatorID: creatorID,
		Name:      name,
		Type:      categoryType,
	}
	if categoryType == models.CategoryGroup {
		category.Members = []models.Member{}
	}
	s.nextID++
	s.categories = append(s.categories, category)

	out := cloneCategory(category)
	return &out, nil
}

func (s *CategoryService) AddMember(ctx context.Context, categoryID int64, member models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.categories {
		if s.categories[i].ID == categoryID {
			// Personal categories have no member list; leave them alone.
			if s.categories[i].Members == nil {
				return nil
			}
			member.CategoryID = categoryID
			s.categories[i].Members = append(s.categories[i].Members, member)
			return nil
		}
	}
	return nil
}

func (s *CategoryService) RemoveMember(ctx context.Context, categoryID int64, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.categories {
		if s.categories[i].ID != categoryID {
			continue
		}
		for j, m := range s.categories[i].Members {
			if m.UserID == userID {
				s.categories[i].Members = append(s.categories[i].Members[:j], s.categories[i].Members[j+1:]...)
				return nil
			}
		}
		return ErrMemberNotFound
	}
	return ErrCategoryNotFound
}

func (s *CategoryService) Update(ctx context.Context, category models.Category) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.categories {
		if s.categories[i].ID == category.ID {
			s.categories[i] = cloneCategory(category)
			out := cloneCategory(s.categories[i])
			return &out, nil
		}
	}
	return nil, ErrCategoryNotFound
}

func (s *CategoryService) Remove(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.categories {
		if s.categories[i].ID == id {
			s.categories = append(s.categories[:i], s.categories[i+1:]...)
			return nil
		}
	}
	return nil
}

// cloneCategory copies the member slice so callers cannot mutate store
// state through returned records.
func cloneCategory(c models.Category) models.Category {
	if c.Members != nil {
		members := make([]models.Member, len(c.Members))
		copy(members, c.Members)
		c.Members = members
	}
	return c
}
