package catalog

import (
	"fmt"

	"cnmaturity/internal/model"
)

var (
	knownTypes = map[model.AssessmentType]bool{
		model.AssessmentQuick:         true,
		model.AssessmentStandard:      true,
		model.AssessmentComprehensive: true,
		model.AssessmentOptional:      true,
	}
	knownRelevance = map[model.Relevance]bool{
		model.RelevanceNone:   true,
		model.RelevanceLow:    true,
		model.RelevanceMedium: true,
		model.RelevanceHigh:   true,
	}
	knownLevels = map[model.MaturityLevel]bool{
		model.LevelBeginner:     true,
		model.LevelIntermediate: true,
		model.LevelAdvanced:     true,
	}
	knownImportance = map[model.Importance]bool{
		model.ImportanceLow:    true,
		model.ImportanceMedium: true,
		model.ImportanceHigh:   true,
	}
)

// Scored option values must stay inside the score range.
const (
	minOptionValue = 0
	maxOptionValue = 100
)

func validateQuestion(module string, q *model.Question) error {
	invalid := func(format string, args ...interface{}) error {
		return &InvalidQuestionError{Module: module, QuestionID: q.ID, Reason: fmt.Sprintf(format, args...)}
	}

	if q.ID == "" {
		return invalid("missing id")
	}
	if q.Category == "" {
		return invalid("missing category")
	}
	if q.Text.Empty() {
		return invalid("text needs at least one language")
	}
	if q.Weight < 0 {
		return invalid("weight must be positive, got %v", q.Weight)
	}
	if q.MaturityLevel != "" && !knownLevels[q.MaturityLevel] {
		return invalid("unknown maturity level %q", q.MaturityLevel)
	}
	if q.MaturityImportance != "" && !knownImportance[q.MaturityImportance] {
		return invalid("unknown maturity importance %q", q.MaturityImportance)
	}

	if len(q.AssessmentTypes) == 0 {
		return invalid("needs at least one assessment type")
	}
	for _, t := range q.AssessmentTypes {
		if !knownTypes[t] {
			return invalid("unknown assessment type %q", t)
		}
	}

	for role, rel := range q.RoleRelevance {
		if !role.Valid() {
			return invalid("unknown role %q", role)
		}
		if !knownRelevance[rel] {
			return invalid("unknown relevance %q for role %s", rel, role)
		}
	}

	if len(q.Options) == 0 {
		return invalid("needs at least one option")
	}
	seen := make(map[int]bool, len(q.Options))
	for _, o := range q.Options {
		if seen[o.Value] {
			return invalid("duplicate option value %d", o.Value)
		}
		seen[o.Value] = true
		if o.Label.Empty() {
			return invalid("option %d has no label", o.Value)
		}
		switch {
		case o.IsDontKnow && o.Value != model.DontKnowValue:
			return invalid("don't-know option must use value %d, got %d", model.DontKnowValue, o.Value)
		case !o.IsDontKnow && o.Value == model.DontKnowValue:
			return invalid("value %d is reserved for the don't-know option", model.DontKnowValue)
		case !o.IsDontKnow && (o.Value < minOptionValue || o.Value > maxOptionValue):
			return invalid("option value %d outside [%d, %d]", o.Value, minOptionValue, maxOptionValue)
		}
	}

	for _, dep := range q.Dependencies {
		if dep.QuestionID == "" {
			return invalid("dependency without questionId")
		}
	}
	return nil
}
