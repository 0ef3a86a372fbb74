package session

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrQuestionNotAnswered = errors.New("question has not been answered")
	ErrInvalidConfig       = errors.New("invalid session config")
	// ErrVersionConflict is returned by Store.Save when the stored record moved
	// on since it was loaded
	ErrVersionConflict = errors.New("session was modified concurrently")
)

// QuestionNotEligibleError is returned when submitting an answer for a
// question that is unknown, already answered, filtered out or still locked.
type QuestionNotEligibleError struct {
	QuestionID string
	Reason     string
}

func (e *QuestionNotEligibleError) Error() string {
	return fmt.Sprintf("question %q is not eligible: %s", e.QuestionID, e.Reason)
}

// InvalidOptionValueError is returned when a value is not a declared option
type InvalidOptionValueError struct {
	QuestionID string
	Value      int
	Allowed    []int
}

func (e *InvalidOptionValueError) Error() string {
	return fmt.Sprintf("value %d is not an option of question %q (allowed %v)", e.Value, e.QuestionID, e.Allowed)
}
