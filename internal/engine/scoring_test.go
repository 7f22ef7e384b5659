package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirestack/assessment-engine/internal/model"
)

func mcQuestion(points float64, correct ...string) *model.Question {
	set := make(map[string]bool, len(correct))
	for _, id := range correct {
		set[id] = true
	}
	q := &model.Question{Type: model.QuestionTypeMultipleChoice, Points: points}
	for _, id := range []string{"a", "b", "c", "d"} {
		q.Options = append(q.Options, model.Option{ID: id, Correct: set[id]})
	}
	return q
}

func TestScoreSingleChoice(t *testing.T) {
	q := mcQuestion(5, "b")

	verdict, points := scoreAnswer(q, json.RawMessage(`"b"`))
	require.NotNil(t, verdict)
	assert.True(t, *verdict)
	assert.Equal(t, 5.0, points)

	verdict, points = scoreAnswer(q, json.RawMessage(`"a"`))
	require.NotNil(t, verdict)
	assert.False(t, *verdict)
	assert.Equal(t, 0.0, points)
}

func TestScoreMultiSelectExactSet(t *testing.T) {
	q := mcQuestion(4, "a", "c")

	cases := []struct {
		value   string
		correct bool
	}{
		{`["a","c"]`, true},
		{`["c","a"]`, true},
		{`["a"]`, false},
		{`["a","c","d"]`, false},
		{`["a","a"]`, false},
		{`[]`, false},
	}
	for _, tc := range cases {
		verdict, points := scoreAnswer(q, json.RawMessage(tc.value))
		require.NotNil(t, verdict, tc.value)
		assert.Equal(t, tc.correct, *verdict, tc.value)
		if tc.correct {
			assert.Equal(t, 4.0, points, tc.value)
		} else {
			assert.Equal(t, 0.0, points, tc.value)
		}
	}
}

func TestScoreTrueFalse(t *testing.T) {
	q := &model.Question{
		Type:   model.QuestionTypeTrueFalse,
		Points: 2,
		Options: []model.Option{
			{ID: "true", Correct: true},
			{ID: "false"},
		},
	}

	verdict, points := scoreAnswer(q, json.RawMessage(`true`))
	require.NotNil(t, verdict)
	assert.True(t, *verdict)
	assert.Equal(t, 2.0, points)

	verdict, _ = scoreAnswer(q, json.RawMessage(`false`))
	require.NotNil(t, verdict)
	assert.False(t, *verdict)

	// Option id form is accepted too.
	verdict, _ = scoreAnswer(q, json.RawMessage(`"true"`))
	require.NotNil(t, verdict)
	assert.True(t, *verdict)
}

func TestScoreEssayHasNoVerdict(t *testing.T) {
	q := &model.Question{Type: model.QuestionTypeEssay, Points: 10}

	verdict, points := scoreAnswer(q, json.RawMessage(`"my essay text"`))
	assert.Nil(t, verdict)
	assert.Equal(t, 0.0, points)
}

func TestScoreMalformedValueIsIncorrect(t *testing.T) {
	q := mcQuestion(3, "a")

	verdict, points := scoreAnswer(q, json.RawMessage(`{"unexpected":1}`))
	require.NotNil(t, verdict)
	assert.False(t, *verdict)
	assert.Equal(t, 0.0, points)
}
