package model

import "time"

// SessionState is the lifecycle state of an assessment session
type SessionState string

const (
	SessionNotStarted SessionState = "not_started"
	SessionInProgress SessionState = "in_progress"
	SessionComplete   SessionState = "complete"
)

// SessionRecord is the persisted state of one respondent's run.
// Eligibility, state and scores are derived from it on demand.
type SessionRecord struct {
	ID             string            `json:"id" bson:"_id"`
	AssessmentType AssessmentType    `json:"assessmentType" bson:"assessmentType"`
	RespondentRole Role              `json:"respondentRole" bson:"respondentRole"`
	Language       string            `json:"language" bson:"language"`
	Answers        map[string]Answer `json:"answers" bson:"answers"`
	Version        int64             `json:"version" bson:"version"`
	CreatedAt      time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// Clone returns a deep copy safe to mutate
func (r *SessionRecord) Clone() *SessionRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Answers = make(map[string]Answer, len(r.Answers))
	for k, v := range r.Answers {
		c.Answers[k] = v
	}
	return &c
}

// SessionSnapshot is the caller-facing summary returned after every operation
type SessionSnapshot struct {
	ID             string         `json:"id"`
	AssessmentType AssessmentType `json:"assessmentType"`
	RespondentRole Role           `json:"respondentRole"`
	Language       string         `json:"language"`
	State          SessionState   `json:"state"`
	IsComplete     bool           `json:"isComplete"`
	Answered       int            `json:"answered"`
	Eligible       []string       `json:"eligible"`             // question IDs in display order
	Discarded      []string       `json:"discarded,omitempty"` // answers dropped by a revision
	Version        int64          `json:"version"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
