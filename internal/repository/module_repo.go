package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cnmaturity/internal/model"
)

// ModuleRepo handles MongoDB operations for question modules
type ModuleRepo interface {
	Upsert(ctx context.Context, module *model.QuestionModule) error
	List(ctx context.Context) ([]model.QuestionModule, error)
	Get(ctx context.Context, name string) (*model.QuestionModule, error)
	Drop(ctx context.Context) error
}

type moduleRepo struct {
	collection *mongo.Collection
}

// NewModuleRepo creates a new question module repository
func NewModuleRepo(db *mongo.Database) ModuleRepo {
	return &moduleRepo{
		collection: db.Collection("question_modules"),
	}
}

func (r *moduleRepo) Upsert(ctx context.Context, module *model.QuestionModule) error {
	module.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": module.Name}, module, opts)
	return err
}

// List returns every module ordered the way the catalog merges them
func (r *moduleRepo) List(ctx context.Context) ([]model.QuestionModule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var modules []model.QuestionModule
	if err := cursor.All(ctx, &modules); err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *moduleRepo) Get(ctx context.Context, name string) (*model.QuestionModule, error) {
	var module model.QuestionModule
	err := r.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&module)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepo) Drop(ctx context.Context) error {
	return r.collection.Drop(ctx)
}
