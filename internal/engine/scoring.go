package engine

import (
	"fmt"

	"cnmaturity/internal/model"
)

// Thresholds are the cutoffs between maturity levels.
// Scores below Intermediate are beginner, scores up to and including
// Advanced are intermediate, anything above is advanced.
type Thresholds struct {
	Intermediate float64 `mapstructure:"intermediate" json:"intermediate"`
	Advanced     float64 `mapstructure:"advanced" json:"advanced"`
}

// DefaultThresholds splits the 0-100 range in thirds
var DefaultThresholds = Thresholds{Intermediate: 33, Advanced: 66}

// Validate checks the cutoffs are ordered and inside the score range
func (t Thresholds) Validate() error {
	if t.Intermediate <= 0 || t.Advanced >= 100 || t.Intermediate >= t.Advanced {
		return fmt.Errorf("thresholds must satisfy 0 < intermediate < advanced < 100, got %v/%v", t.Intermediate, t.Advanced)
	}
	return nil
}

// Level buckets a score
func (t Thresholds) Level(score float64) model.MaturityLevel {
	switch {
	case score < t.Intermediate:
		return model.LevelBeginner
	case score <= t.Advanced:
		return model.LevelIntermediate
	default:
		return model.LevelAdvanced
	}
}

// Aggregate computes per-category and overall scores.
//
// scope lists the questions the session can see; categories appear in the
// order of their first question in scope. Within a category the score is the
// weight-averaged value of scored answers. Don't-know answers are left out of
// numerator and denominator. Categories without scored answers stay nil and
// are left out of the overall score, which weights every defined category
// equally.
func Aggregate(scope []*model.Question, answers map[string]model.Answer, t Thresholds) model.ScoreResult {
	type acc struct {
		sum, weight float64
		answered    int
		dontKnow    int
	}
	var order []string
	accs := make(map[string]*acc)

	for _, q := range scope {
		a, ok := accs[q.Category]
		if !ok {
			a = &acc{}
			accs[q.Category] = a
			order = append(order, q.Category)
		}
		ans, answered := answers[q.ID]
		if !answered {
			continue
		}
		a.answered++
		if ans.DontKnow {
			a.dontKnow++
			continue
		}
		w := q.EffectiveWeight()
		a.sum += float64(ans.Value) * w
		a.weight += w
	}

	res := model.ScoreResult{Categories: make([]model.CategoryScore, 0, len(order))}
	var total float64
	var defined int
	for _, cat := range order {
		a := accs[cat]
		cs := model.CategoryScore{Category: cat, Answered: a.answered, DontKnow: a.dontKnow}
		if a.weight > 0 {
			score := a.sum / a.weight
			cs.Score = &score
			total += score
			defined++
		}
		res.Categories = append(res.Categories, cs)
	}

	if defined > 0 {
		overall := total / float64(defined)
		level := t.Level(overall)
		res.Overall = &overall
		res.Level = &level
	}
	return res
}
