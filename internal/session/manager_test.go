package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cnmaturity/internal/engine"
	"cnmaturity/internal/model"
)

var engineDefaults = engine.DefaultThresholds

func newManager(t *testing.T) *Manager {
	m := NewManager(testCatalog(t), NewMemoryStore(16, 0), engineDefaults)
	m.now = func() time.Time { return at }
	return m
}

func createQuick(t *testing.T, m *Manager) string {
	snap, err := m.Create(context.Background(), Config{
		AssessmentType: model.AssessmentQuick,
		RespondentRole: model.RolePractitioner,
	})
	require.NoError(t, err)
	return snap.ID
}

func TestManager_Create(t *testing.T) {
	m := newManager(t)
	snap, err := m.Create(context.Background(), Config{
		AssessmentType: model.AssessmentQuick,
		RespondentRole: model.RoleExecutive,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "en", snap.Language)
	assert.Equal(t, model.SessionNotStarted, snap.State)
	assert.Equal(t, []string{"q1", "q4"}, snap.Eligible)
	assert.Zero(t, snap.Answered)
}

func TestManager_CreateRejectsBadConfig(t *testing.T) {
	m := newManager(t)
	cases := []Config{
		{AssessmentType: model.AssessmentOptional, RespondentRole: model.RoleManager},
		{AssessmentType: "exhaustive", RespondentRole: model.RoleManager},
		{AssessmentType: model.AssessmentQuick, RespondentRole: "intern"},
		{AssessmentType: model.AssessmentQuick},
	}
	for _, cfg := range cases {
		_, err := m.Create(context.Background(), cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig, "%+v", cfg)
	}
}

func TestManager_UnknownSession(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, err := m.Eligible(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Submit(ctx, "missing", "q1", 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Revise(ctx, "missing", "q1", 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Score(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.IsComplete(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_SubmitAndComplete(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	id := createQuick(t, m)

	out, err := m.Submit(ctx, id, "q1", 0)
	require.NoError(t, err)
	assert.False(t, out.Completed)
	assert.Nil(t, out.Result)
	assert.Equal(t, model.SessionInProgress, out.Snapshot.State)

	out, err = m.Submit(ctx, id, "q4", 100)
	require.NoError(t, err)
	require.True(t, out.Completed)
	require.NotNil(t, out.Result)
	assert.Equal(t, id, out.Result.SessionID)
	assert.Equal(t, 50.0, *out.Result.Score.Overall)
	assert.Equal(t, at, out.Result.CompletedAt)

	done, err := m.IsComplete(ctx, id)
	require.NoError(t, err)
	assert.True(t, done)

	// already complete, so a revision does not complete it again
	out, err = m.Revise(ctx, id, "q4", 66)
	require.NoError(t, err)
	assert.False(t, out.Completed)
	assert.True(t, out.Snapshot.IsComplete)
}

func TestManager_ReviseReportsDiscarded(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	id := createQuick(t, m)

	_, err := m.Submit(ctx, id, "q1", 100)
	require.NoError(t, err)
	_, err = m.Submit(ctx, id, "q2", 66)
	require.NoError(t, err)

	out, err := m.Revise(ctx, id, "q1", model.DontKnowValue)
	require.NoError(t, err)
	assert.Equal(t, []string{"q2"}, out.Snapshot.Discarded)
	assert.Equal(t, 1, out.Snapshot.Answered)

	eligible, err := m.Eligible(ctx, id)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "q4", eligible[0].ID)
}

func TestManager_FailedMutationIsNotSaved(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	id := createQuick(t, m)

	_, err := m.Submit(ctx, id, "q1", 42)
	var oerr *InvalidOptionValueError
	require.ErrorAs(t, err, &oerr)

	rec, err := m.Record(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, rec.Answers)
	assert.Zero(t, rec.Version)
}

func TestManager_ConcurrentSubmitsOfSameQuestion(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	id := createQuick(t, m)

	const workers = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Submit(ctx, id, "q1", 33)
			mu.Lock()
			defer mu.Unlock()
			var nerr *QuestionNotEligibleError
			switch {
			case err == nil:
				ok++
			case errors.As(err, &nerr):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, rejected)
	assert.Zero(t, m.locks.size())

	rec, err := m.Record(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Version)
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	a := createQuick(t, m)
	b := createQuick(t, m)

	_, err := m.Submit(ctx, a, "q1", 100)
	require.NoError(t, err)

	score, err := m.Score(ctx, b)
	require.NoError(t, err)
	assert.False(t, score.Available())
}

func TestManager_Delete(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	id := createQuick(t, m)

	require.NoError(t, m.Delete(ctx, id))
	_, err := m.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_ConcurrentDeletesOnlyOneWins(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()
	id := createQuick(t, m)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.Delete(ctx, id)
		}(i)
	}
	wg.Wait()

	var ok, missing int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrSessionNotFound):
			missing++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, len(errs)-1, missing)
}

// staleStore lets another writer save between the manager's load and save
type staleStore struct {
	*MemoryStore
	interleave func()
}

func (s *staleStore) Save(ctx context.Context, rec *model.SessionRecord) error {
	if s.interleave != nil {
		s.interleave()
		s.interleave = nil
	}
	return s.MemoryStore.Save(ctx, rec)
}

func TestManager_SaveConflictIsSurfaced(t *testing.T) {
	store := &staleStore{MemoryStore: NewMemoryStore(4, 0)}
	m := NewManager(testCatalog(t), store, engineDefaults)
	m.now = func() time.Time { return at }
	ctx := context.Background()
	id := createQuick(t, m)

	store.interleave = func() {
		rec, err := store.Get(ctx, id)
		require.NoError(t, err)
		rec.Answers["q4"] = model.ScoredAnswer("q4", 100, at)
		rec.Version++
		require.NoError(t, store.MemoryStore.Save(ctx, rec))
	}

	_, err := m.Submit(ctx, id, "q1", 66)
	assert.ErrorIs(t, err, ErrVersionConflict)

	rec, err := m.Record(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, rec.Answers, "q1")
	assert.Contains(t, rec.Answers, "q4")
}

func TestMemoryStore_CopiesRecords(t *testing.T) {
	s := NewMemoryStore(4, 0)
	ctx := context.Background()
	rec := &model.SessionRecord{ID: "a", Answers: map[string]model.Answer{}}
	require.NoError(t, s.Create(ctx, rec))

	rec.Answers["q1"] = model.ScoredAnswer("q1", 100, at)
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got.Answers)

	got.Answers["q2"] = model.ScoredAnswer("q2", 0, at)
	again, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, again.Answers)
}

func TestMemoryStore_SaveChecksVersion(t *testing.T) {
	s := NewMemoryStore(4, 0)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &model.SessionRecord{ID: "a", Answers: map[string]model.Answer{}}))

	first, err := s.Get(ctx, "a")
	require.NoError(t, err)
	second, err := s.Get(ctx, "a")
	require.NoError(t, err)
	first.Version++
	second.Version++

	require.NoError(t, s.Save(ctx, first))
	assert.ErrorIs(t, s.Save(ctx, second), ErrVersionConflict)
	assert.ErrorIs(t, s.Save(ctx, &model.SessionRecord{ID: "b", Version: 1}), ErrSessionNotFound)
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	s := NewMemoryStore(2, 0)
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Create(ctx, &model.SessionRecord{ID: id}))
	}

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 2, s.Len())
}
