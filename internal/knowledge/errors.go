package knowledge

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidLibrary  = errors.New("invalid knowledge library")
	ErrArticleNotFound = errors.New("article not found")
)

// MissingArticleError is returned when a question references an article
// the library does not contain
type MissingArticleError struct {
	QuestionID string
	ArticleID  string
}

func (e *MissingArticleError) Error() string {
	return fmt.Sprintf("question %q references unknown article %q", e.QuestionID, e.ArticleID)
}

func (e *MissingArticleError) Unwrap() error { return ErrInvalidLibrary }
