// Package knowledge holds the long-form bilingual articles linked from
// question knowledge resources.
package knowledge

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"cnmaturity/internal/catalog"
	"cnmaturity/internal/model"
)

// Library is an immutable, indexed set of articles
type Library struct {
	articles   []*model.Article
	byID       map[string]*model.Article
	byCategory map[string][]*model.Article
}

// Load indexes articles, rejecting duplicate IDs and untitled articles.
// Articles keep the order they were given in.
func Load(articles ...*model.Article) (*Library, error) {
	l := &Library{
		byID:       make(map[string]*model.Article, len(articles)),
		byCategory: make(map[string][]*model.Article),
	}
	for _, a := range articles {
		if a == nil || a.ID == "" {
			return nil, fmt.Errorf("%w: article without id", ErrInvalidLibrary)
		}
		if _, dup := l.byID[a.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate article id %q", ErrInvalidLibrary, a.ID)
		}
		if a.Title.Empty() {
			return nil, fmt.Errorf("%w: article %q has no title", ErrInvalidLibrary, a.ID)
		}
		l.articles = append(l.articles, a)
		l.byID[a.ID] = a
		l.byCategory[a.Category] = append(l.byCategory[a.Category], a)
	}
	return l, nil
}

// Get returns the article with the given ID
func (l *Library) Get(id string) (*model.Article, error) {
	a, ok := l.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrArticleNotFound, id)
	}
	return a, nil
}

// ByCategory returns the articles of one category
func (l *Library) ByCategory(category string) []*model.Article {
	return l.byCategory[category]
}

// All returns every article
func (l *Library) All() []*model.Article {
	return l.articles
}

func (l *Library) Len() int {
	return len(l.articles)
}

// CheckReferences verifies that every article a question links to exists
func CheckReferences(cat *catalog.Catalog, l *Library) error {
	for _, q := range cat.Questions() {
		if !q.HasKnowledgeResource() {
			continue
		}
		for _, id := range q.Knowledge.ArticleIDs {
			if _, ok := l.byID[id]; !ok {
				return &MissingArticleError{QuestionID: q.ID, ArticleID: id}
			}
		}
	}
	return nil
}

type articleFile struct {
	Articles []*model.Article `yaml:"articles"`
}

// ParseArticles decodes one YAML file holding an articles list
func ParseArticles(name string, data []byte) ([]*model.Article, error) {
	var f articleFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse articles %s: %w", name, err)
	}
	return f.Articles, nil
}

// ReadArticles parses every *.yaml file under dir in fsys, in file name order
func ReadArticles(fsys fs.FS, dir string) ([]*model.Article, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var articles []*model.Article
	for _, p := range matches {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read articles %s: %w", p, err)
		}
		parsed, err := ParseArticles(path.Base(p), data)
		if err != nil {
			return nil, err
		}
		articles = append(articles, parsed...)
	}
	return articles, nil
}
