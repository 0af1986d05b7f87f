package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/TechSupportz/tasky-server/models"
)

// MongoTaskService is the MongoDB-backed TaskStore.
type MongoTaskService struct {
	TasksCollection    *mongo.Collection
	CountersCollection *mongo.Collection
}

func NewMongoTaskService(tasks, counters *mongo.Collection) *MongoTaskService {
	return &MongoTaskService{
		TasksCollection:    tasks,
		CountersCollection: counters,
	}
}

func (s *MongoTaskService) nextSequence(ctx context.Context, name string) (int64, error) {
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

func (s *MongoTaskService) GetByCategoryID(ctx context.Context, categoryID int64) ([]models.Task, error) {
	cursor, err := s.TasksCollection.Find(ctx, bson.M{"category_id": categoryID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

func (s *MongoTaskService) Add(ctx context.Context, categoryID, creatorID int64, name, dueDate string, priority models.Priority) (*models.Task, error) {
	id, err := s.nextSequence(ctx, "tasks")
	if err != nil {
		return nil, err
	}

	task := models.Task{
		ID:         id,
		CategoryID: categoryID,
		CreatorID:  creatorID,
		Name:       name,
		DueDate:    dueDate,
		Priority:   priority,
	}
	if _, err := s.TasksCollection.InsertOne(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &task, nil
}

func (s *MongoTaskService) AddSubTask(ctx context.Context, taskID int64, name, dueDate string, priority models.Priority) (*models.Task, error) {
	subID, err := s.nextSequence(ctx, "subtasks")
	if err != nil {
		return nil, err
	}

	sub := models.SubTask{
		ID:       subID,
		TaskID:   taskID,
		Name:     name,
		DueDate:  dueDate,
		Priority: priority,
	}

	result, err := s.TasksCollection.UpdateOne(
		ctx,
		bson.M{"_id": taskID},
		bson.M{"$push": bson.M{"sub_tasks": sub}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add subtask: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, ErrTaskNotFound
	}

	var task models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}
	return &task, nil
}

func (s *MongoTaskService) RemoveByCategoryID(ctx context.Context, categoryID int64) (int64, error) {
	result, err := s.TasksCollection.DeleteMany(ctx, bson.M{"category_id": categoryID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks for category: %w", err)
	}
	return result.DeletedCount, nil
}

func (s *MongoTaskService) ListAll(ctx context.Context) ([]models.Task, error) {
	cursor, err := s.TasksCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}
