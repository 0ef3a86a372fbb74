package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cnmaturity/internal/model"
)

func TestAggregate_WeightedCategory(t *testing.T) {
	light := q("light", "foo", quick)
	heavy := q("heavy", "foo", quick)
	heavy.Weight = 2
	answers := map[string]model.Answer{
		"light": scored("light", 0),
		"heavy": scored("heavy", 100),
	}

	res := Aggregate([]*model.Question{light, heavy}, answers, DefaultThresholds)
	require.Len(t, res.Categories, 1)
	require.NotNil(t, res.Categories[0].Score)
	assert.InDelta(t, 66.67, *res.Categories[0].Score, 0.01)
	require.True(t, res.Available())
	assert.InDelta(t, 66.67, *res.Overall, 0.01)
	assert.Equal(t, model.LevelAdvanced, *res.Level)
}

func TestAggregate_DontKnowExcludedFromBothSides(t *testing.T) {
	a := q("a", "foo", quick)
	b := q("b", "foo", quick)
	b.Weight = 5
	answers := map[string]model.Answer{
		"a": scored("a", 66),
		"b": model.DontKnowAnswer("b", at),
	}

	res := Aggregate([]*model.Question{a, b}, answers, DefaultThresholds)
	require.NotNil(t, res.Categories[0].Score)
	assert.Equal(t, 66.0, *res.Categories[0].Score)
	assert.Equal(t, 2, res.Categories[0].Answered)
	assert.Equal(t, 1, res.Categories[0].DontKnow)
}

func TestAggregate_OnlyDontKnowIsUndefinedNotZero(t *testing.T) {
	a := q("a", "foo", quick)
	b := q("b", "bar", quick)
	answers := map[string]model.Answer{
		"a": model.DontKnowAnswer("a", at),
		"b": scored("b", 0),
	}

	res := Aggregate([]*model.Question{a, b}, answers, DefaultThresholds)
	byCat := res.ByCategory()
	assert.Nil(t, byCat["foo"])
	require.NotNil(t, byCat["bar"])
	assert.Equal(t, 0.0, *byCat["bar"])
	require.NotNil(t, res.Overall)
	assert.Equal(t, 0.0, *res.Overall, "undefined categories stay out of the overall mean")
}

func TestAggregate_AllDontKnowHasNoScore(t *testing.T) {
	a := q("a", "foo", quick)
	b := q("b", "bar", quick)
	answers := map[string]model.Answer{
		"a": model.DontKnowAnswer("a", at),
		"b": model.DontKnowAnswer("b", at),
	}

	res := Aggregate([]*model.Question{a, b}, answers, DefaultThresholds)
	assert.False(t, res.Available())
	assert.Nil(t, res.Overall)
	assert.Nil(t, res.Level)
	assert.Len(t, res.Categories, 2)
}

func TestAggregate_NoAnswers(t *testing.T) {
	res := Aggregate([]*model.Question{q("a", "foo", quick)}, map[string]model.Answer{}, DefaultThresholds)
	assert.False(t, res.Available())
	require.Len(t, res.Categories, 1)
	assert.Nil(t, res.Categories[0].Score)
	assert.Equal(t, 0, res.Categories[0].Answered)
}

func TestAggregate_CategoriesWeightedEqually(t *testing.T) {
	qs := []*model.Question{
		q("a1", "a", quick), q("a2", "a", quick), q("a3", "a", quick),
		q("b1", "b", quick),
	}
	answers := map[string]model.Answer{
		"a1": scored("a1", 100), "a2": scored("a2", 100), "a3": scored("a3", 100),
		"b1": scored("b1", 0),
	}

	res := Aggregate(qs, answers, DefaultThresholds)
	assert.Equal(t, 50.0, *res.Overall)
	assert.Equal(t, model.LevelIntermediate, *res.Level)
	assert.Equal(t, []string{"a", "b"}, []string{res.Categories[0].Category, res.Categories[1].Category})
}

func TestAggregate_IgnoresAnswersOutsideScope(t *testing.T) {
	in := q("in", "a", quick)
	answers := map[string]model.Answer{"in": scored("in", 33), "stray": scored("stray", 100)}

	res := Aggregate([]*model.Question{in}, answers, DefaultThresholds)
	assert.Equal(t, 33.0, *res.Overall)
}

func TestThresholds_Level(t *testing.T) {
	th := DefaultThresholds
	assert.Equal(t, model.LevelBeginner, th.Level(0))
	assert.Equal(t, model.LevelBeginner, th.Level(32.99))
	assert.Equal(t, model.LevelIntermediate, th.Level(33))
	assert.Equal(t, model.LevelIntermediate, th.Level(66))
	assert.Equal(t, model.LevelAdvanced, th.Level(66.01))
	assert.Equal(t, model.LevelAdvanced, th.Level(100))

	custom := Thresholds{Intermediate: 50, Advanced: 80}
	assert.Equal(t, model.LevelBeginner, custom.Level(40))
	assert.Equal(t, model.LevelIntermediate, custom.Level(80))
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds.Validate())
	assert.Error(t, Thresholds{Intermediate: 70, Advanced: 60}.Validate())
	assert.Error(t, Thresholds{Intermediate: 0, Advanced: 60}.Validate())
	assert.Error(t, Thresholds{Intermediate: 30, Advanced: 100}.Validate())
}
