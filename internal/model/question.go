package model

import (
	"github.com/google/uuid"
)

// QuestionType enumerates supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeCoding         QuestionType = "coding"
	QuestionTypeEssay          QuestionType = "essay"
)

// Option is one selectable answer option for choice questions.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct,omitempty"`
}

// TestCase is one input/expected-output pair for a coding question.
// Hidden cases are executed but their expected output is never shown to
// the candidate.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Hidden         bool   `json:"hidden,omitempty"`
}

// Question is a single catalog question. Owned by the question catalog and
// read-only to the engine.
type Question struct {
	ID               uuid.UUID    `json:"id"`
	TestID           uuid.UUID    `json:"test_id"`
	Type             QuestionType `json:"type"`
	Prompt           string       `json:"prompt"`
	Difficulty       float64      `json:"difficulty"`
	Options          []Option     `json:"options,omitempty"`
	TestCases        []TestCase   `json:"test_cases,omitempty"`
	Points           float64      `json:"points"`
	TimeLimitSeconds int          `json:"time_limit_seconds,omitempty"`
	OrderNum         int          `json:"order_num"`
}

// CorrectOptionIDs returns the ids of the marked-correct options.
func (q *Question) CorrectOptionIDs() []string {
	var ids []string
	for _, o := range q.Options {
		if o.Correct {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// AdaptiveSettings configures the adaptive selector for one test.
// Zero values fall back to the selector defaults.
type AdaptiveSettings struct {
	StartAbility        float64 `json:"start_ability,omitempty"`
	AdjustmentFactor    float64 `json:"adjustment_factor,omitempty"`
	MinDifficulty       float64 `json:"min_difficulty,omitempty"`
	MaxDifficulty       float64 `json:"max_difficulty,omitempty"`
	MinQuestions        int     `json:"min_questions,omitempty"`
	MaxQuestions        int     `json:"max_questions,omitempty"`
	ConfidenceThreshold float64 `json:"confidence_threshold,omitempty"`
}

// TestDefinition describes one assessment test as authored in the catalog.
type TestDefinition struct {
	ID                 uuid.UUID         `json:"id"`
	Title              string            `json:"title"`
	TimeLimitSeconds   int               `json:"time_limit_seconds"`
	RandomizeQuestions bool              `json:"randomize_questions"`
	RandomizeOptions   bool              `json:"randomize_options"`
	Adaptive           *AdaptiveSettings `json:"adaptive,omitempty"`
}
