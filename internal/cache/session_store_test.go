package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cnmaturity/internal/model"
	"cnmaturity/internal/session"
)

var _ session.Store = (*SessionStore)(nil)

func newTestStore(t *testing.T, ttl time.Duration) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, ttl), mr
}

func record() *model.SessionRecord {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &model.SessionRecord{
		ID:             "abc",
		AssessmentType: model.AssessmentStandard,
		RespondentRole: model.RoleManager,
		Language:       "ja",
		Answers: map[string]model.Answer{
			"q1": model.ScoredAnswer("q1", 66, at),
			"q2": model.DontKnowAnswer("q2", at),
		},
		Version:   2,
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, record()))
	assert.True(t, mr.Exists("session:abc"))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, record(), got)
}

func TestSessionStore_CreateTwiceFails(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, record()))
	assert.ErrorIs(t, store.Create(ctx, record()), ErrSessionExists)
}

func TestSessionStore_MissingIsNil(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	got, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_SaveRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()
	rec := record()
	require.NoError(t, store.Create(ctx, rec))

	mr.FastForward(50 * time.Second)
	rec.Version++
	require.NoError(t, store.Save(ctx, rec))
	mr.FastForward(50 * time.Second)

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.Version)

	mr.FastForward(time.Minute)
	got, err = store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_StaleSaveConflicts(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, record()))

	first, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	second, err := store.Get(ctx, "abc")
	require.NoError(t, err)

	first.Answers["q3"] = model.ScoredAnswer("q3", 100, first.UpdatedAt)
	first.Version++
	second.Answers["q3"] = model.ScoredAnswer("q3", 0, second.UpdatedAt)
	second.Version++

	require.NoError(t, store.Save(ctx, first))
	assert.ErrorIs(t, store.Save(ctx, second), session.ErrVersionConflict)

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.Version)
	assert.Equal(t, 100, got.Answers["q3"].Value)
}

func TestSessionStore_SaveMissingSession(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	rec := record()
	rec.Version++
	assert.ErrorIs(t, store.Save(context.Background(), rec), session.ErrSessionNotFound)
}

func TestSessionStore_Delete(t *testing.T) {
	store, mr := newTestStore(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, record()))

	require.NoError(t, store.Delete(ctx, "abc"))
	assert.False(t, mr.Exists("session:abc"))
}

func TestSessionStore_NilAnswersDecodeToEmptyMap(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()
	rec := record()
	rec.Answers = nil
	require.NoError(t, store.Create(ctx, rec))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.NotNil(t, got.Answers)
}
