package service

import (
	"errors"

	"cnmaturity/internal/catalog"
	"cnmaturity/internal/engine"
	"cnmaturity/internal/knowledge"
	"cnmaturity/internal/model"
)

// CatalogService exposes the read-only question catalog and knowledge library
type CatalogService struct {
	cat *catalog.Catalog
	lib *knowledge.Library
}

// NewCatalogService creates a new catalog service
func NewCatalogService(cat *catalog.Catalog, lib *knowledge.Library) *CatalogService {
	return &CatalogService{cat: cat, lib: lib}
}

// Categories summarises each category in catalog order. Question counts per
// assessment type use the session compatibility table, so they match what a
// session of that type would draw from.
func (s *CatalogService) Categories() []model.CategorySummary {
	sessionTypes := []model.AssessmentType{model.AssessmentQuick, model.AssessmentStandard, model.AssessmentComprehensive}

	out := make([]model.CategorySummary, 0, len(s.cat.Categories()))
	for _, c := range s.cat.Categories() {
		qs := s.cat.InCategory(c)
		sum := model.CategorySummary{
			Category:         c,
			Questions:        len(qs),
			ByAssessmentType: make(map[model.AssessmentType]int, len(sessionTypes)),
			Articles:         len(s.lib.ByCategory(c)),
		}
		for _, t := range sessionTypes {
			sum.ByAssessmentType[t] = len(engine.InScope(qs, engine.Filter{AssessmentType: t}))
		}
		out = append(out, sum)
	}
	return out
}

// Question renders one catalog question in lang
func (s *CatalogService) Question(id, lang string) (*model.QuestionView, error) {
	q, err := s.cat.Get(id)
	if err != nil {
		return nil, err
	}
	v := q.View(lang)
	return &v, nil
}

// Articles lists article summaries, optionally for one category
func (s *CatalogService) Articles(category, lang string) []model.ArticleView {
	articles := s.lib.All()
	if category != "" {
		articles = s.lib.ByCategory(category)
	}
	out := make([]model.ArticleView, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.View(lang, false))
	}
	return out
}

// Article renders one full article in lang
func (s *CatalogService) Article(id, lang string) (*model.ArticleView, error) {
	a, err := s.lib.Get(id)
	if err != nil {
		return nil, err
	}
	v := a.View(lang, true)
	return &v, nil
}

// IsNotFound reports whether err means a catalog question or article is missing
func IsNotFound(err error) bool {
	return errors.Is(err, catalog.ErrNotFound) || errors.Is(err, knowledge.ErrArticleNotFound)
}
