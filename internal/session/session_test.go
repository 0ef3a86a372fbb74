package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"cnmaturity/internal/catalog"
	"cnmaturity/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var at = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func options() []model.Option {
	return []model.Option{
		{Value: 0, Label: model.Localized{"en": "None"}},
		{Value: 33, Label: model.Localized{"en": "Some"}},
		{Value: 66, Label: model.Localized{"en": "Most"}},
		{Value: 100, Label: model.Localized{"en": "All"}},
		{Value: model.DontKnowValue, Label: model.Localized{"en": "Don't know"}, IsDontKnow: true},
	}
}

func question(id string, types []model.AssessmentType, deps ...model.Dependency) *model.Question {
	return &model.Question{
		ID:              id,
		Text:            model.Localized{"en": "Question " + id},
		AssessmentTypes: types,
		BaseQuestion:    len(deps) == 0,
		Dependencies:    deps,
		Options:         options(),
	}
}

var quick = []model.AssessmentType{model.AssessmentQuick}

// arch: q1 -> q2 (>=33) -> q3 (>=66); sec: q4, plus optional q5
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(
		model.QuestionModule{Name: "arch", Category: "arch", Questions: []*model.Question{
			question("q1", quick),
			question("q2", quick, model.Dependency{QuestionID: "q1", MinValue: 33}),
			question("q3", quick, model.Dependency{QuestionID: "q2", MinValue: 66}),
		}},
		model.QuestionModule{Name: "sec", Category: "sec", Questions: []*model.Question{
			question("q4", quick),
			question("q5", []model.AssessmentType{model.AssessmentOptional}),
		}},
	)
	require.NoError(t, err)
	return cat
}

func newSession(t *testing.T) *Session {
	return New(testCatalog(t), &model.SessionRecord{
		ID:             "s1",
		AssessmentType: model.AssessmentQuick,
		RespondentRole: model.RolePractitioner,
	})
}

func eligibleIDs(s *Session) []string {
	return s.Snapshot().Eligible
}

func TestSession_InitialState(t *testing.T) {
	s := newSession(t)
	assert.Equal(t, []string{"q1", "q4"}, eligibleIDs(s))
	assert.Equal(t, model.SessionNotStarted, s.State())
	assert.False(t, s.IsComplete())
}

func TestSession_SubmitUnlocksDependents(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Submit("q1", 33, at))

	assert.Equal(t, []string{"q2", "q4"}, eligibleIDs(s))
	assert.Equal(t, model.SessionInProgress, s.State())
	assert.Equal(t, int64(1), s.Record().Version)
	assert.Equal(t, at, s.Record().UpdatedAt)
}

func TestSession_SubmitRejections(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Submit("q1", 0, at))

	cases := []struct {
		name   string
		qid    string
		reason string
	}{
		{"unknown", "nope", "unknown question"},
		{"already answered", "q1", "already answered"},
		{"filtered out", "q5", "not part of this assessment"},
		{"locked", "q2", "prerequisites not met"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Submit(tc.qid, 100, at)
			var nerr *QuestionNotEligibleError
			require.ErrorAs(t, err, &nerr)
			assert.Equal(t, tc.qid, nerr.QuestionID)
			assert.Equal(t, tc.reason, nerr.Reason)
		})
	}
	assert.Equal(t, int64(1), s.Record().Version, "rejections leave the record untouched")
}

func TestSession_SubmitInvalidOption(t *testing.T) {
	s := newSession(t)
	err := s.Submit("q1", 50, at)

	var oerr *InvalidOptionValueError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, 50, oerr.Value)
	assert.Equal(t, []int{0, 33, 66, 100, -1}, oerr.Allowed)
	assert.Empty(t, s.Record().Answers)
}

func TestSession_DontKnowNeverUnlocks(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Submit("q1", model.DontKnowValue, at))

	ans := s.Record().Answers["q1"]
	assert.True(t, ans.DontKnow)
	assert.Equal(t, []string{"q4"}, eligibleIDs(s))
}

func TestSession_ReviseCascades(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Submit("q1", 66, at))
	require.NoError(t, s.Submit("q2", 100, at))
	require.NoError(t, s.Submit("q3", 0, at))

	discarded, err := s.Revise("q1", 0, at.Add(time.Minute))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q2", "q3"}, discarded)

	answers := s.Record().Answers
	assert.Len(t, answers, 1)
	assert.Equal(t, 0, answers["q1"].Value)
	assert.Equal(t, 1, answers["q1"].Revision)
	assert.Equal(t, []string{"q4"}, eligibleIDs(s))
}

func TestSession_ReviseKeepsStillReachableAnswers(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Submit("q1", 66, at))
	require.NoError(t, s.Submit("q2", 100, at))

	discarded, err := s.Revise("q1", 33, at)
	require.NoError(t, err)
	assert.Empty(t, discarded)
	assert.Contains(t, s.Record().Answers, "q2")
}

func TestSession_ReviseRequiresExistingAnswer(t *testing.T) {
	s := newSession(t)
	_, err := s.Revise("q1", 33, at)
	assert.True(t, errors.Is(err, ErrQuestionNotAnswered))

	require.NoError(t, s.Submit("q1", 33, at))
	_, err = s.Revise("q1", 7, at)
	var oerr *InvalidOptionValueError
	assert.ErrorAs(t, err, &oerr)
	assert.Equal(t, 33, s.Record().Answers["q1"].Value)
}

func TestSession_CompletesWhenNothingEligible(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Submit("q1", 0, at))
	require.NoError(t, s.Submit("q4", 100, at))

	assert.True(t, s.IsComplete())
	assert.Empty(t, eligibleIDs(s))

	res := s.Score(engineDefaults)
	require.True(t, res.Available())
	assert.Equal(t, 50.0, *res.Overall)
	assert.Equal(t, model.LevelIntermediate, *res.Level)
}

func TestSession_AllDontKnowCompletesWithoutScore(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Submit("q1", model.DontKnowValue, at))
	require.NoError(t, s.Submit("q4", model.DontKnowValue, at))

	assert.True(t, s.IsComplete())
	assert.Empty(t, eligibleIDs(s))

	res := s.Score(engineDefaults)
	assert.False(t, res.Available())
	assert.Nil(t, res.Overall)
	assert.Nil(t, res.Level)
}

func TestSession_ReviseCanReopen(t *testing.T) {
	s := newSession(t)
	require.NoError(t, s.Submit("q1", 0, at))
	require.NoError(t, s.Submit("q4", 100, at))
	require.True(t, s.IsComplete())

	_, err := s.Revise("q1", 33, at)
	require.NoError(t, err)
	assert.False(t, s.IsComplete())
	assert.Equal(t, []string{"q2"}, eligibleIDs(s))
}
