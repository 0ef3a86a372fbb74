package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"cnmaturity/internal/catalog"
	"cnmaturity/internal/engine"
	"cnmaturity/internal/model"
)

// Config selects which questions a new session covers
type Config struct {
	AssessmentType model.AssessmentType
	RespondentRole model.Role
	Language       string
}

// Validate checks the assessment type and role are known
func (c Config) Validate() error {
	if !engine.SessionType(c.AssessmentType) {
		return fmt.Errorf("%w: unsupported assessment type %q", ErrInvalidConfig, c.AssessmentType)
	}
	if !c.RespondentRole.Valid() {
		return fmt.Errorf("%w: unsupported respondent role %q", ErrInvalidConfig, c.RespondentRole)
	}
	return nil
}

// Outcome is the result of a mutation
type Outcome struct {
	Snapshot *model.SessionSnapshot
	// Completed is set when this mutation moved the session into complete.
	Completed bool
	// Result is the scored outcome, only set when Completed.
	Result *model.AssessmentResult
}

// Manager owns every live session. Mutations of one session are serialised;
// different sessions proceed in parallel over the shared catalog.
type Manager struct {
	cat        *catalog.Catalog
	store      Store
	thresholds engine.Thresholds
	locks      *keyedMutex
	now        func() time.Time
}

// NewManager creates a manager evaluating sessions against cat
func NewManager(cat *catalog.Catalog, store Store, thresholds engine.Thresholds) *Manager {
	return &Manager{
		cat:        cat,
		store:      store,
		thresholds: thresholds,
		locks:      newKeyedMutex(),
		now:        time.Now,
	}
}

// Catalog returns the catalog sessions are evaluated against
func (m *Manager) Catalog() *catalog.Catalog {
	return m.cat
}

// Create starts a session with no answers
func (m *Manager) Create(ctx context.Context, cfg Config) (*model.SessionSnapshot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lang := cfg.Language
	if lang == "" {
		lang = model.DefaultLanguage
	}

	now := m.now().UTC()
	rec := &model.SessionRecord{
		ID:             uuid.New().String(),
		AssessmentType: cfg.AssessmentType,
		RespondentRole: cfg.RespondentRole,
		Language:       lang,
		Answers:        make(map[string]model.Answer),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := m.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return New(m.cat, rec).Snapshot(), nil
}

// Get returns a snapshot of the session
func (m *Manager) Get(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

// Record returns a copy of the stored record
func (m *Manager) Record(ctx context.Context, id string) (*model.SessionRecord, error) {
	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Record(), nil
}

// Eligible returns the questions currently open for an answer
func (m *Manager) Eligible(ctx context.Context, id string) ([]*model.Question, error) {
	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Eligible(), nil
}

// Submit records the first answer to an eligible question
func (m *Manager) Submit(ctx context.Context, id, questionID string, value int) (*Outcome, error) {
	return m.mutate(ctx, id, func(s *Session, now time.Time) ([]string, error) {
		return nil, s.Submit(questionID, value, now)
	})
}

// Revise changes an existing answer; answers that lose their prerequisites
// are discarded and listed in the snapshot.
func (m *Manager) Revise(ctx context.Context, id, questionID string, value int) (*Outcome, error) {
	return m.mutate(ctx, id, func(s *Session, now time.Time) ([]string, error) {
		return s.Revise(questionID, value, now)
	})
}

// Score recomputes the session score from its answers
func (m *Manager) Score(ctx context.Context, id string) (model.ScoreResult, error) {
	s, err := m.load(ctx, id)
	if err != nil {
		return model.ScoreResult{}, err
	}
	return s.Score(m.thresholds), nil
}

// IsComplete reports whether the session has nothing left to answer
func (m *Manager) IsComplete(ctx context.Context, id string) (bool, error) {
	s, err := m.load(ctx, id)
	if err != nil {
		return false, err
	}
	return s.IsComplete(), nil
}

// Delete drops a session. Only the first of concurrent deletes succeeds;
// the others get ErrSessionNotFound.
func (m *Manager) Delete(ctx context.Context, id string) error {
	unlock := m.locks.Lock(id)
	defer unlock()

	if _, err := m.load(ctx, id); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (m *Manager) mutate(ctx context.Context, id string, fn func(*Session, time.Time) ([]string, error)) (*Outcome, error) {
	unlock := m.locks.Lock(id)
	defer unlock()

	s, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	wasComplete := s.IsComplete()

	now := m.now().UTC()
	discarded, err := fn(s, now)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, s.Record()); err != nil {
		return nil, fmt.Errorf("save session %s: %w", id, err)
	}

	snap := s.Snapshot()
	snap.Discarded = discarded
	out := &Outcome{Snapshot: snap, Completed: !wasComplete && snap.IsComplete}
	if out.Completed {
		out.Result = m.result(s, now)
	}
	return out, nil
}

func (m *Manager) result(s *Session, at time.Time) *model.AssessmentResult {
	rec := s.Record().Clone()
	return &model.AssessmentResult{
		SessionID:      rec.ID,
		AssessmentType: rec.AssessmentType,
		RespondentRole: rec.RespondentRole,
		Answers:        rec.Answers,
		Score:          s.Score(m.thresholds),
		CompletedAt:    at,
	}
}

func (m *Manager) load(ctx context.Context, id string) (*Session, error) {
	rec, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return New(m.cat, rec), nil
}
