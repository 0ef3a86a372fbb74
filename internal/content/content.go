// Package content bundles the default question modules and knowledge
// articles into the binary.
package content

import (
	"embed"
	"io/fs"

	"cnmaturity/internal/catalog"
	"cnmaturity/internal/knowledge"
	"cnmaturity/internal/model"
)

//go:embed questions/*.yaml knowledge/*.yaml
var files embed.FS

// FS exposes the bundled files
func FS() fs.FS {
	return files
}

// QuestionModules parses the bundled question modules in merge order
func QuestionModules() ([]model.QuestionModule, error) {
	return catalog.ReadModules(files, "questions")
}

// Articles parses the bundled knowledge articles
func Articles() ([]*model.Article, error) {
	return knowledge.ReadArticles(files, "knowledge")
}
