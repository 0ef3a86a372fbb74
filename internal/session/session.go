// Package session runs one respondent's assessment: it records answers,
// derives the eligible question set and scores, and serialises concurrent
// mutations of the same session.
package session

import (
	"fmt"
	"time"

	"cnmaturity/internal/catalog"
	"cnmaturity/internal/engine"
	"cnmaturity/internal/model"
)

// Session is the state machine over a single record.
// It is not safe for concurrent use; Manager provides the locking.
type Session struct {
	rec *model.SessionRecord
	cat *catalog.Catalog
}

// New wraps rec. The record is mutated in place by Submit and Revise.
func New(cat *catalog.Catalog, rec *model.SessionRecord) *Session {
	if rec.Answers == nil {
		rec.Answers = make(map[string]model.Answer)
	}
	return &Session{rec: rec, cat: cat}
}

// Record returns the underlying record
func (s *Session) Record() *model.SessionRecord {
	return s.rec
}

func (s *Session) filter() engine.Filter {
	return engine.Filter{AssessmentType: s.rec.AssessmentType, Role: s.rec.RespondentRole}
}

// Eligible returns the questions that can be answered now, in catalog order
func (s *Session) Eligible() []*model.Question {
	return engine.Eligible(s.cat.Questions(), s.filter(), s.rec.Answers)
}

// Scope returns every question this session's filters admit
func (s *Session) Scope() []*model.Question {
	return engine.InScope(s.cat.Questions(), s.filter())
}

// State derives the lifecycle state. A session with nothing left to answer
// is complete even when many catalog questions never unlocked.
func (s *Session) State() model.SessionState {
	return stateOf(len(s.Eligible()), len(s.rec.Answers))
}

func stateOf(eligible, answered int) model.SessionState {
	switch {
	case eligible == 0:
		return model.SessionComplete
	case answered == 0:
		return model.SessionNotStarted
	default:
		return model.SessionInProgress
	}
}

// IsComplete reports whether no eligible unanswered questions remain
func (s *Session) IsComplete() bool {
	return s.State() == model.SessionComplete
}

// Submit records a first answer to an eligible question
func (s *Session) Submit(questionID string, value int, now time.Time) error {
	q, err := s.cat.Get(questionID)
	if err != nil {
		return &QuestionNotEligibleError{QuestionID: questionID, Reason: "unknown question"}
	}
	if _, answered := s.rec.Answers[questionID]; answered {
		return &QuestionNotEligibleError{QuestionID: questionID, Reason: "already answered"}
	}
	if !s.filter().Matches(q) {
		return &QuestionNotEligibleError{QuestionID: questionID, Reason: "not part of this assessment"}
	}
	if !engine.Unlocked(q, s.rec.Answers) {
		return &QuestionNotEligibleError{QuestionID: questionID, Reason: "prerequisites not met"}
	}
	opt, err := optionFor(q, value)
	if err != nil {
		return err
	}

	s.rec.Answers[questionID] = model.AnswerFor(q, opt, now)
	s.touch(now)
	return nil
}

// Revise overwrites an existing answer and discards every answer that is no
// longer reachable as a result. It returns the discarded question IDs.
func (s *Session) Revise(questionID string, value int, now time.Time) ([]string, error) {
	prev, answered := s.rec.Answers[questionID]
	if !answered {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotAnswered, questionID)
	}
	q, err := s.cat.Get(questionID)
	if err != nil {
		return nil, err
	}
	opt, err := optionFor(q, value)
	if err != nil {
		return nil, err
	}

	next := model.AnswerFor(q, opt, now)
	next.Revision = prev.Revision + 1
	s.rec.Answers[questionID] = next
	discarded := engine.Prune(s.cat.Questions(), s.filter(), s.rec.Answers)
	s.touch(now)
	return discarded, nil
}

// Score recomputes the maturity score from the recorded answers
func (s *Session) Score(t engine.Thresholds) model.ScoreResult {
	return engine.Aggregate(s.Scope(), s.rec.Answers, t)
}

// Snapshot summarises the session for callers
func (s *Session) Snapshot() *model.SessionSnapshot {
	eligible := s.Eligible()
	ids := make([]string, 0, len(eligible))
	for _, q := range eligible {
		ids = append(ids, q.ID)
	}
	state := stateOf(len(eligible), len(s.rec.Answers))
	return &model.SessionSnapshot{
		ID:             s.rec.ID,
		AssessmentType: s.rec.AssessmentType,
		RespondentRole: s.rec.RespondentRole,
		Language:       s.rec.Language,
		State:          state,
		IsComplete:     state == model.SessionComplete,
		Answered:       len(s.rec.Answers),
		Eligible:       ids,
		Version:        s.rec.Version,
		UpdatedAt:      s.rec.UpdatedAt,
	}
}

func (s *Session) touch(now time.Time) {
	s.rec.Version++
	s.rec.UpdatedAt = now
}

func optionFor(q *model.Question, value int) (model.Option, error) {
	if opt, ok := q.Option(value); ok {
		return opt, nil
	}
	allowed := make([]int, 0, len(q.Options))
	for _, o := range q.Options {
		allowed = append(allowed, o.Value)
	}
	return model.Option{}, &InvalidOptionValueError{QuestionID: q.ID, Value: value, Allowed: allowed}
}
