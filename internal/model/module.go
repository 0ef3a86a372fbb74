package model

import "time"

// QuestionModule is one source unit of the question bank, usually one category
type QuestionModule struct {
	Name      string      `json:"module" yaml:"module" bson:"_id"`
	Category  string      `json:"category,omitempty" yaml:"category,omitempty" bson:"category,omitempty"` // default for its questions
	Order     int         `json:"order" yaml:"order" bson:"order"`
	Questions []*Question `json:"questions" yaml:"questions" bson:"questions"`
	UpdatedAt time.Time   `json:"updatedAt,omitempty" yaml:"-" bson:"updatedAt"`
}

// Article is a long-form bilingual educational article
type Article struct {
	ID        string    `json:"id" yaml:"id" bson:"_id"`
	Category  string    `json:"category" yaml:"category" bson:"category"`
	Title     Localized `json:"title" yaml:"title" bson:"title"`
	Summary   Localized `json:"summary,omitempty" yaml:"summary,omitempty" bson:"summary,omitempty"`
	Body      Localized `json:"body" yaml:"body" bson:"body"`
	Tags      []string  `json:"tags,omitempty" yaml:"tags,omitempty" bson:"tags,omitempty"`
	Links     []Link    `json:"links,omitempty" yaml:"links,omitempty" bson:"links,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" yaml:"-" bson:"updatedAt"`
}

// ArticleView is a single-language projection of an article
type ArticleView struct {
	ID       string     `json:"id"`
	Category string     `json:"category"`
	Title    string     `json:"title"`
	Summary  string     `json:"summary,omitempty"`
	Body     string     `json:"body,omitempty"`
	Tags     []string   `json:"tags,omitempty"`
	Links    []LinkView `json:"links,omitempty"`
}

// View projects the article into lang; withBody=false omits the body for listings
func (a *Article) View(lang string, withBody bool) ArticleView {
	v := ArticleView{
		ID:       a.ID,
		Category: a.Category,
		Title:    a.Title.Get(lang),
		Summary:  a.Summary.Get(lang),
		Tags:     a.Tags,
	}
	if withBody {
		v.Body = a.Body.Get(lang)
	}
	for _, l := range a.Links {
		v.Links = append(v.Links, LinkView{Title: l.Title.Get(lang), URL: l.URL})
	}
	return v
}

// CategorySummary describes one catalog category for browsing
type CategorySummary struct {
	Category         string                 `json:"category"`
	Questions        int                    `json:"questions"`
	ByAssessmentType map[AssessmentType]int `json:"byAssessmentType"`
	Articles         int                    `json:"articles"`
}
