package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/TechSupportz/tasky-server/models"
)

// MongoCategoryService is the MongoDB-backed CategoryStore. Sequence ids
// come from a counters collection so they stay monotonic across restarts
// and deletions.
type MongoCategoryService struct {
	CategoriesCollection *mongo.Collection
	CountersCollection   *mongo.Collection
}

func NewMongoCategoryService(categories, counters *mongo.Collection) *MongoCategoryService {
	return &MongoCategoryService{
		CategoriesCollection: categories,
		CountersCollection:   counters,
	}
}

func (s *MongoCategoryService) nextSequence(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.CountersCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", name, err)
	}
	return counter.Seq, nil
}

func (s *MongoCategoryService) ListForUser(ctx context.Context, userID int64) ([]models.Category, error) {
	filter := bson.M{"$or": []bson.M{
		{"type": models.CategoryGroup, "members.user_id": userID},
		{"type": models.CategoryPersonal, "creator_id": userID},
	}}

	cursor, err := s.CategoriesCollection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}
	return categories, nil
}

func (s *MongoCategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var category models.Category
	err := s.CategoriesCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&category)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("error fetching category: %w", err)
	}
	return &category, nil
}

func (s *MongoCategoryService) IsGroup(ctx context.Context, id int64) bool {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return false
	}
	return category.Type == models.CategoryGroup
}

func (s *MongoCategoryService) Create(ctx context.Context, creatorID int64, name string, categoryType models.CategoryType) (*models.Category, error) {
	id, err := s.nextSequence(ctx, "categories")
	if err != nil {
		return nil, err
	}

	category := models.Category{
		ID:        id,
		CreatorID: creatorID,
		Name:      name,
		Type:      categoryType,
	}
	if categoryType == models.CategoryGroup {
		category.Members = []models.Member{}
	}

	if _, err := s.CategoriesCollection.InsertOne(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

func (s *MongoCategoryService) AddMember(ctx context.Context, categoryID int64, member models.Member) error {
	// Only group categories carry a members array; the filter makes the
	// call a no-op for personal or missing categories.
	filter := bson.M{"_id": categoryID, "type": models.CategoryGroup}
	update := bson.M{"$push": bson.M{"members": member}}

	if _, err := s.CategoriesCollection.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to add member to category: %w", err)
	}
	return nil
}

func (s *MongoCategoryService) RemoveMember(ctx context.Context, categoryID int64, userID int64) error {
	filter := bson.M{"_id": categoryID}
	update := bson.M{"$pull": bson.M{"members": bson.M{"user_id": userID}}}

	result, err := s.CategoriesCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to remove member from category: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrCategoryNotFound
	}
	if result.ModifiedCount == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (s *MongoCategoryService) Update(ctx context.Context, category models.Category) (*models.Category, error) {
	result, err := s.CategoriesCollection.ReplaceOne(ctx, bson.M{"_id": category.ID}, category)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrCategoryNotFound
	}
	return &category, nil
}

func (s *MongoCategoryService) Remove(ctx context.Context, id int64) error {
	if _, err := s.CategoriesCollection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
