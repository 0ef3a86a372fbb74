package model

import "time"

// Answer is a respondent's selection for one question.
// DontKnow answers carry no numeric value and never contribute to scores.
type Answer struct {
	QuestionID string    `json:"questionId" bson:"questionId"`
	Value      int       `json:"value" bson:"value"` // meaningless when DontKnow
	DontKnow   bool      `json:"dontKnow,omitempty" bson:"dontKnow,omitempty"`
	Revision   int       `json:"revision,omitempty" bson:"revision,omitempty"`
	AnsweredAt time.Time `json:"answeredAt" bson:"answeredAt"`
}

// ScoredAnswer builds an answer with a numeric value
func ScoredAnswer(questionID string, value int, at time.Time) Answer {
	return Answer{QuestionID: questionID, Value: value, AnsweredAt: at}
}

// DontKnowAnswer builds a "don't know" answer
func DontKnowAnswer(questionID string, at time.Time) Answer {
	return Answer{QuestionID: questionID, Value: DontKnowValue, DontKnow: true, AnsweredAt: at}
}

// AnswerFor maps a selected option onto the matching answer variant
func AnswerFor(q *Question, opt Option, at time.Time) Answer {
	if opt.IsDontKnow {
		return DontKnowAnswer(q.ID, at)
	}
	return ScoredAnswer(q.ID, opt.Value, at)
}

// Satisfies reports whether the answer meets a dependency threshold
func (a Answer) Satisfies(minValue int) bool {
	return !a.DontKnow && a.Value >= minValue
}

// SelectedValue is the option value the respondent picked, -1 for don't know
func (a Answer) SelectedValue() int {
	if a.DontKnow {
		return DontKnowValue
	}
	return a.Value
}
