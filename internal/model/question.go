package model

import "sort"

// DefaultLanguage is used when a requested language has no translation
const DefaultLanguage = "en"

// DontKnowValue is the option value reserved for "don't know" options
const DontKnowValue = -1

// Localized maps a language code to display text
type Localized map[string]string

// Get returns the text for lang, falling back to English and then to any translation
func (l Localized) Get(lang string) string {
	if s, ok := l[lang]; ok && s != "" {
		return s
	}
	if s, ok := l[DefaultLanguage]; ok && s != "" {
		return s
	}
	langs := make([]string, 0, len(l))
	for k, v := range l {
		if v != "" {
			langs = append(langs, k)
		}
	}
	if len(langs) == 0 {
		return ""
	}
	sort.Strings(langs)
	return l[langs[0]]
}

// Empty reports whether no language carries text
func (l Localized) Empty() bool {
	for _, v := range l {
		if v != "" {
			return false
		}
	}
	return true
}

// MaturityLevel is an ordinal maturity bucket
type MaturityLevel string

const (
	LevelBeginner     MaturityLevel = "beginner"
	LevelIntermediate MaturityLevel = "intermediate"
	LevelAdvanced     MaturityLevel = "advanced"
)

// Importance is the informational weighting hint of a question
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

// Role is the respondent role a session is scoped to
type Role string

const (
	RoleExecutive    Role = "executive"
	RoleManager      Role = "manager"
	RolePractitioner Role = "practitioner"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	switch r {
	case RoleExecutive, RoleManager, RolePractitioner:
		return true
	}
	return false
}

// Relevance is how relevant a question is to a role
type Relevance string

const (
	RelevanceNone   Relevance = "none"
	RelevanceLow    Relevance = "low"
	RelevanceMedium Relevance = "medium"
	RelevanceHigh   Relevance = "high"
)

// AssessmentType tags which assessment modes a question belongs to
type AssessmentType string

const (
	AssessmentQuick         AssessmentType = "quick"
	AssessmentStandard      AssessmentType = "standard"
	AssessmentComprehensive AssessmentType = "comprehensive"
	AssessmentOptional      AssessmentType = "optional"
)

// Dependency gates a question on a prior answer
type Dependency struct {
	QuestionID string `json:"questionId" yaml:"questionId" bson:"questionId"`
	MinValue   int    `json:"minValue" yaml:"minValue" bson:"minValue"`
}

// Option is a selectable answer with its score contribution
type Option struct {
	Value       int       `json:"value" yaml:"value" bson:"value"`
	Label       Localized `json:"label" yaml:"label" bson:"label"`
	IsDontKnow  bool      `json:"isDontKnow,omitempty" yaml:"isDontKnow,omitempty" bson:"isDontKnow,omitempty"`
	Description Localized `json:"description,omitempty" yaml:"description,omitempty" bson:"description,omitempty"`
}

// Link is an external reference attached to knowledge content
type Link struct {
	Title Localized `json:"title" yaml:"title" bson:"title"`
	URL   string    `json:"url" yaml:"url" bson:"url"`
}

// KnowledgeResource is explanatory content bundled with a question.
// It is metadata only and never feeds scoring.
type KnowledgeResource struct {
	Summary    Localized `json:"summary,omitempty" yaml:"summary,omitempty" bson:"summary,omitempty"`
	Links      []Link    `json:"links,omitempty" yaml:"links,omitempty" bson:"links,omitempty"`
	ArticleIDs []string  `json:"articleIds,omitempty" yaml:"articleIds,omitempty" bson:"articleIds,omitempty"`
}

// Question is one catalog item
type Question struct {
	ID                 string             `json:"id" yaml:"id" bson:"id"`
	Category           string             `json:"category" yaml:"category" bson:"category"`
	Text               Localized          `json:"text" yaml:"text" bson:"text"`
	Weight             float64            `json:"weight,omitempty" yaml:"weight,omitempty" bson:"weight,omitempty"` // 0 means 1
	MaturityLevel      MaturityLevel      `json:"maturityLevel,omitempty" yaml:"maturityLevel,omitempty" bson:"maturityLevel,omitempty"`
	MaturityImportance Importance         `json:"maturityImportance,omitempty" yaml:"maturityImportance,omitempty" bson:"maturityImportance,omitempty"`
	RoleRelevance      map[Role]Relevance `json:"roleRelevance,omitempty" yaml:"roleRelevance,omitempty" bson:"roleRelevance,omitempty"`
	AssessmentTypes    []AssessmentType   `json:"assessmentType" yaml:"assessmentType" bson:"assessmentType"`
	BaseQuestion       bool               `json:"baseQuestion,omitempty" yaml:"baseQuestion,omitempty" bson:"baseQuestion,omitempty"`
	Dependencies       []Dependency       `json:"dependencies,omitempty" yaml:"dependencies,omitempty" bson:"dependencies,omitempty"`
	Options            []Option           `json:"options" yaml:"options" bson:"options"`
	Knowledge          *KnowledgeResource `json:"knowledge,omitempty" yaml:"knowledge,omitempty" bson:"knowledge,omitempty"`
}

// EffectiveWeight returns the scoring weight, defaulting to 1
func (q *Question) EffectiveWeight() float64 {
	if q.Weight == 0 {
		return 1
	}
	return q.Weight
}

// HasKnowledgeResource reports whether explanatory content is attached
func (q *Question) HasKnowledgeResource() bool {
	return q.Knowledge != nil
}

// Option returns the declared option with the given value
func (q *Question) Option(value int) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// RelevantTo reports whether the question may be shown to role.
// A missing entry counts as relevant.
func (q *Question) RelevantTo(role Role) bool {
	if role == "" {
		return true
	}
	rel, ok := q.RoleRelevance[role]
	return !ok || rel != RelevanceNone
}

// OptionView is a single-language projection of an option
type OptionView struct {
	Value       int    `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	IsDontKnow  bool   `json:"isDontKnow,omitempty"`
}

// KnowledgeView is a single-language projection of a knowledge resource
type KnowledgeView struct {
	Summary    string     `json:"summary,omitempty"`
	Links      []LinkView `json:"links,omitempty"`
	ArticleIDs []string   `json:"articleIds,omitempty"`
}

// LinkView is a single-language projection of a link
type LinkView struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// QuestionView is what the UI layer renders
type QuestionView struct {
	ID            string         `json:"id"`
	Category      string         `json:"category"`
	Text          string         `json:"text"`
	MaturityLevel MaturityLevel  `json:"maturityLevel,omitempty"`
	BaseQuestion  bool           `json:"baseQuestion"`
	Options       []OptionView   `json:"options"`
	Knowledge     *KnowledgeView `json:"knowledge,omitempty"`
}

// View projects the question into lang
func (q *Question) View(lang string) QuestionView {
	v := QuestionView{
		ID:            q.ID,
		Category:      q.Category,
		Text:          q.Text.Get(lang),
		MaturityLevel: q.MaturityLevel,
		BaseQuestion:  q.BaseQuestion,
		Options:       make([]OptionView, 0, len(q.Options)),
	}
	for _, o := range q.Options {
		v.Options = append(v.Options, OptionView{
			Value:       o.Value,
			Label:       o.Label.Get(lang),
			Description: o.Description.Get(lang),
			IsDontKnow:  o.IsDontKnow,
		})
	}
	if q.Knowledge != nil {
		kv := &KnowledgeView{
			Summary:    q.Knowledge.Summary.Get(lang),
			ArticleIDs: q.Knowledge.ArticleIDs,
		}
		for _, l := range q.Knowledge.Links {
			kv.Links = append(kv.Links, LinkView{Title: l.Title.Get(lang), URL: l.URL})
		}
		v.Knowledge = kv
	}
	return v
}

// Views projects a list of questions into lang
func Views(qs []*Question, lang string) []QuestionView {
	out := make([]QuestionView, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.View(lang))
	}
	return out
}
