package engine

import (
	"encoding/json"
	"strconv"

	"github.com/hirestack/assessment-engine/internal/model"
)

// scoreAnswer grades a non-coding answer value against the question's key.
// Returns the correctness verdict (nil for questions that are not
// auto-scored) and the points awarded. Malformed values grade as incorrect
// rather than failing the submission: the answer is still recorded.
func scoreAnswer(q *model.Question, value json.RawMessage) (*bool, float64) {
	switch q.Type {
	case model.QuestionTypeEssay:
		// Essays await human review; no verdict, no auto points.
		return nil, 0
	case model.QuestionTypeMultipleChoice:
		correct := choiceMatches(q.CorrectOptionIDs(), value)
		return &correct, awarded(correct, q.Points)
	case model.QuestionTypeTrueFalse:
		correct := trueFalseMatches(q, value)
		return &correct, awarded(correct, q.Points)
	default:
		incorrect := false
		return &incorrect, 0
	}
}

func awarded(correct bool, points float64) float64 {
	if correct {
		return points
	}
	return 0
}

// choiceMatches compares the submitted option id(s) against the key as a
// set: every correct option selected and nothing else. Accepts a single
// string or an array of strings.
func choiceMatches(correctIDs []string, value json.RawMessage) bool {
	var selected []string
	var single string
	if err := json.Unmarshal(value, &single); err == nil {
		selected = []string{single}
	} else if err := json.Unmarshal(value, &selected); err != nil {
		return false
	}

	if len(selected) != len(correctIDs) || len(correctIDs) == 0 {
		return false
	}
	want := make(map[string]bool, len(correctIDs))
	for _, id := range correctIDs {
		want[id] = true
	}
	seen := make(map[string]bool, len(selected))
	for _, id := range selected {
		if !want[id] || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

// trueFalseMatches accepts either a bare boolean or an option id string.
// A boolean matches when the option named "true"/"false" is the key.
func trueFalseMatches(q *model.Question, value json.RawMessage) bool {
	correctIDs := q.CorrectOptionIDs()
	if len(correctIDs) != 1 {
		return false
	}

	var b bool
	if err := json.Unmarshal(value, &b); err == nil {
		return correctIDs[0] == strconv.FormatBool(b)
	}

	var id string
	if err := json.Unmarshal(value, &id); err == nil {
		return id == correctIDs[0]
	}
	return false
}
