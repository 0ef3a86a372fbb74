package app

import (
	"context"
	"fmt"
	"os"

	"go.mongodb.org/mongo-driver/mongo"

	"cnmaturity/internal/catalog"
	"cnmaturity/internal/config"
	"cnmaturity/internal/content"
	"cnmaturity/internal/knowledge"
	"cnmaturity/internal/model"
	"cnmaturity/internal/repository"
)

// LoadContent reads question modules and knowledge articles from the
// configured source and validates them together. db is only used by the
// mongo source.
func LoadContent(ctx context.Context, cfg config.CatalogConfig, db *mongo.Database) (*catalog.Catalog, *knowledge.Library, error) {
	modules, articles, err := ReadSource(ctx, cfg, db)
	if err != nil {
		return nil, nil, err
	}

	cat, err := catalog.Load(modules...)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid question catalog: %w", err)
	}
	lib, err := knowledge.Load(articles...)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid knowledge library: %w", err)
	}
	if err := knowledge.CheckReferences(cat, lib); err != nil {
		return nil, nil, err
	}
	return cat, lib, nil
}

// ReadSource returns the raw modules and articles of a source without validating them
func ReadSource(ctx context.Context, cfg config.CatalogConfig, db *mongo.Database) ([]model.QuestionModule, []*model.Article, error) {
	switch cfg.Source {
	case config.SourceEmbedded, "":
		modules, err := content.QuestionModules()
		if err != nil {
			return nil, nil, err
		}
		articles, err := content.Articles()
		return modules, articles, err

	case config.SourceDir:
		fsys := os.DirFS(cfg.Dir)
		modules, err := catalog.ReadModules(fsys, "questions")
		if err != nil {
			return nil, nil, fmt.Errorf("read %s: %w", cfg.Dir, err)
		}
		articles, err := knowledge.ReadArticles(fsys, "knowledge")
		return modules, articles, err

	case config.SourceMongo:
		if db == nil {
			return nil, nil, fmt.Errorf("catalog source mongo needs a database")
		}
		modules, err := repository.NewModuleRepo(db).List(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list question modules: %w", err)
		}
		if len(modules) == 0 {
			return nil, nil, fmt.Errorf("no question modules in database %s; run the seed command first", db.Name())
		}
		articles, err := repository.NewArticleRepo(db).List(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to list knowledge articles: %w", err)
		}
		return modules, articles, nil
	}
	return nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
}
