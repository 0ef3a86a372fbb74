package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCatalog is wrapped by every load-time validation failure
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrNotFound is returned when a question ID is unknown
	ErrNotFound = errors.New("question not found")
)

// DuplicateQuestionIDError reports two questions sharing an ID
type DuplicateQuestionIDError struct {
	ID      string
	Modules [2]string
}

func (e *DuplicateQuestionIDError) Error() string {
	return fmt.Sprintf("duplicate question id %q (modules %s and %s)", e.ID, e.Modules[0], e.Modules[1])
}

func (e *DuplicateQuestionIDError) Unwrap() error { return ErrInvalidCatalog }

// DanglingDependencyError reports a dependency on a question that does not exist
type DanglingDependencyError struct {
	QuestionID string
	DependsOn  string
}

func (e *DanglingDependencyError) Error() string {
	return fmt.Sprintf("question %q depends on unknown question %q", e.QuestionID, e.DependsOn)
}

func (e *DanglingDependencyError) Unwrap() error { return ErrInvalidCatalog }

// DependencyCycleError reports a dependency chain that loops back on itself.
// Path starts and ends with the same question ID.
type DependencyCycleError struct {
	Path []string
}

func (e *DependencyCycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Path, " -> ")
}

func (e *DependencyCycleError) Unwrap() error { return ErrInvalidCatalog }

// InvalidQuestionError reports a malformed question definition
type InvalidQuestionError struct {
	Module     string
	QuestionID string
	Reason     string
}

func (e *InvalidQuestionError) Error() string {
	if e.QuestionID == "" {
		return fmt.Sprintf("module %s: invalid question: %s", e.Module, e.Reason)
	}
	return fmt.Sprintf("module %s: question %q: %s", e.Module, e.QuestionID, e.Reason)
}

func (e *InvalidQuestionError) Unwrap() error { return ErrInvalidCatalog }

// NotFoundError carries the missing question ID
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("question %q not found", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
