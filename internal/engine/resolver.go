// Package engine decides which questions a respondent sees next and turns
// recorded answers into maturity scores. Everything here is a pure function
// over the catalog and an answer set.
package engine

import "cnmaturity/internal/model"

// Compatibility lists, per session assessment type, the question tags it includes
var Compatibility = map[model.AssessmentType][]model.AssessmentType{
	model.AssessmentQuick:    {model.AssessmentQuick},
	model.AssessmentStandard: {model.AssessmentQuick, model.AssessmentStandard},
	model.AssessmentComprehensive: {
		model.AssessmentQuick,
		model.AssessmentStandard,
		model.AssessmentComprehensive,
		model.AssessmentOptional,
	},
}

// SessionType reports whether t can configure a session
func SessionType(t model.AssessmentType) bool {
	_, ok := Compatibility[t]
	return ok
}

// Includes reports whether a session of type session shows questions tagged tag
func Includes(session, tag model.AssessmentType) bool {
	for _, t := range Compatibility[session] {
		if t == tag {
			return true
		}
	}
	return false
}

// Filter scopes the catalog to one session's configuration
type Filter struct {
	AssessmentType model.AssessmentType
	Role           model.Role
}

// Matches reports whether q passes the assessment type and role filters
func (f Filter) Matches(q *model.Question) bool {
	if !q.RelevantTo(f.Role) {
		return false
	}
	for _, tag := range q.AssessmentTypes {
		if Includes(f.AssessmentType, tag) {
			return true
		}
	}
	return false
}

// InScope returns the questions that pass the filter, in catalog order
func InScope(questions []*model.Question, f Filter) []*model.Question {
	out := make([]*model.Question, 0, len(questions))
	for _, q := range questions {
		if f.Matches(q) {
			out = append(out, q)
		}
	}
	return out
}

// Unlocked reports whether q may be shown given answers, ignoring filters
// and whether q itself is answered.
func Unlocked(q *model.Question, answers map[string]model.Answer) bool {
	if q.BaseQuestion {
		return true
	}
	for _, dep := range q.Dependencies {
		a, ok := answers[dep.QuestionID]
		if !ok || !a.Satisfies(dep.MinValue) {
			return false
		}
	}
	return true
}

// Eligible returns the unanswered questions a respondent can answer now,
// in catalog order. The result only depends on its inputs.
func Eligible(questions []*model.Question, f Filter, answers map[string]model.Answer) []*model.Question {
	var out []*model.Question
	for _, q := range questions {
		if !f.Matches(q) {
			continue
		}
		if _, answered := answers[q.ID]; answered {
			continue
		}
		if Unlocked(q, answers) {
			out = append(out, q)
		}
	}
	return out
}

// Prune removes answers whose question is no longer reachable and returns
// the removed IDs in removal order. Removal repeats until stable, so a
// dependent of a dropped answer is dropped in turn.
func Prune(questions []*model.Question, f Filter, answers map[string]model.Answer) []string {
	var removed []string
	for {
		changed := false
		for _, q := range questions {
			if _, ok := answers[q.ID]; !ok {
				continue
			}
			if f.Matches(q) && Unlocked(q, answers) {
				continue
			}
			delete(answers, q.ID)
			removed = append(removed, q.ID)
			changed = true
		}
		if !changed {
			return removed
		}
	}
}
