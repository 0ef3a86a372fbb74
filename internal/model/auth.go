package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are JWT claims for a respondent's session-scoped token
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// CreateSessionRequest is the request body for starting an assessment
type CreateSessionRequest struct {
	AssessmentType AssessmentType `json:"assessmentType"`
	RespondentRole Role           `json:"respondentRole"`
	Language       string         `json:"language,omitempty"`
}

// CreateSessionResponse is returned when a session starts
type CreateSessionResponse struct {
	Session  *SessionSnapshot `json:"session"`
	Token    string           `json:"token"`
	Eligible []QuestionView   `json:"eligible"`
}

// SubmitAnswerRequest is the request body for answering or revising a question
type SubmitAnswerRequest struct {
	QuestionID string `json:"questionId,omitempty"`
	Value      *int   `json:"value"`
}
