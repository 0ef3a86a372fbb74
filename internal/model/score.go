package model

import "time"

// CategoryScore is the weighted score of one category.
// Score is nil when the category has no scored answers.
type CategoryScore struct {
	Category string   `json:"category" bson:"category"`
	Score    *float64 `json:"score" bson:"score"`
	Answered int      `json:"answered" bson:"answered"`
	DontKnow int      `json:"dontKnow" bson:"dontKnow"`
}

// ScoreResult is the derived maturity score of a session.
// Overall and Level are nil when no category has a score.
type ScoreResult struct {
	Overall    *float64        `json:"overall" bson:"overall"`
	Level      *MaturityLevel  `json:"maturityLevel" bson:"maturityLevel"`
	Categories []CategoryScore `json:"categories" bson:"categories"`
}

// Available reports whether an overall score exists
func (r ScoreResult) Available() bool {
	return r.Overall != nil
}

// ByCategory flattens the category scores, keeping nil for undefined categories
func (r ScoreResult) ByCategory() map[string]*float64 {
	out := make(map[string]*float64, len(r.Categories))
	for _, c := range r.Categories {
		out[c.Category] = c.Score
	}
	return out
}

// AssessmentResult is the archived outcome of a completed session
type AssessmentResult struct {
	SessionID      string            `json:"sessionId" bson:"_id"`
	AssessmentType AssessmentType    `json:"assessmentType" bson:"assessmentType"`
	RespondentRole Role              `json:"respondentRole" bson:"respondentRole"`
	Answers        map[string]Answer `json:"answers" bson:"answers"`
	Score          ScoreResult       `json:"score" bson:"score"`
	CompletedAt    time.Time         `json:"completedAt" bson:"completedAt"`
}
