package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cnmaturity/internal/model"
)

// ResultRepo archives the outcome of completed assessments
type ResultRepo interface {
	Save(ctx context.Context, result *model.AssessmentResult) error
	GetBySession(ctx context.Context, sessionID string) (*model.AssessmentResult, error)
}

type resultRepo struct {
	collection *mongo.Collection
}

// NewResultRepo creates a new result repository
func NewResultRepo(db *mongo.Database) ResultRepo {
	return &resultRepo{
		collection: db.Collection("assessment_results"),
	}
}

// Save replaces any earlier archive of the same session
func (r *resultRepo) Save(ctx context.Context, result *model.AssessmentResult) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": result.SessionID}, result, opts)
	return err
}

func (r *resultRepo) GetBySession(ctx context.Context, sessionID string) (*model.AssessmentResult, error) {
	var result model.AssessmentResult
	err := r.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}
