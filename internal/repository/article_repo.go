package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cnmaturity/internal/model"
)

// ArticleRepo handles MongoDB operations for knowledge articles
type ArticleRepo interface {
	Upsert(ctx context.Context, article *model.Article) error
	List(ctx context.Context) ([]*model.Article, error)
	GetByID(ctx context.Context, id string) (*model.Article, error)
	Drop(ctx context.Context) error
}

type articleRepo struct {
	collection *mongo.Collection
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *mongo.Database) ArticleRepo {
	return &articleRepo{
		collection: db.Collection("knowledge_articles"),
	}
}

func (r *articleRepo) Upsert(ctx context.Context, article *model.Article) error {
	article.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": article.ID}, article, opts)
	return err
}

func (r *articleRepo) List(ctx context.Context) ([]*model.Article, error) {
	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var articles []*model.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *articleRepo) GetByID(ctx context.Context, id string) (*model.Article, error) {
	var article model.Article
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&article)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepo) Drop(ctx context.Context) error {
	return r.collection.Drop(ctx)
}
