package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/hirestack/assessment-engine/internal/model"
)

// OptionView is an answer option with the correctness marking stripped.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// TestCaseView is a visible (non-hidden) test case shown to the candidate.
type TestCaseView struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// SanitizedQuestion is a catalog question with the answer key removed:
// no correct-option flags, no hidden test cases.
type SanitizedQuestion struct {
	ID               uuid.UUID          `json:"id"`
	Type             model.QuestionType `json:"type"`
	Prompt           string             `json:"prompt"`
	Options          []OptionView       `json:"options,omitempty"`
	TestCases        []TestCaseView     `json:"test_cases,omitempty"`
	Points           float64            `json:"points"`
	TimeLimitSeconds int                `json:"time_limit_seconds,omitempty"`
}

// QuestionView is the response to a next-question request.
type QuestionView struct {
	Question SanitizedQuestion `json:"question"`
	Index    int               `json:"index"`
	// Total is the question count for fixed tests and the configured
	// maximum for adaptive tests.
	Total                int     `json:"total"`
	TimeRemainingSeconds float64 `json:"time_remaining_seconds"`
}

// SubmitResult is the response to an answer submission.
type SubmitResult struct {
	IsCorrect            *bool   `json:"is_correct,omitempty"`
	PointsAwarded        float64 `json:"points_awarded"`
	RunningTotal         float64 `json:"running_total"`
	Completed            bool    `json:"completed"`
	CompletionReason     string  `json:"completion_reason,omitempty"`
	TimeRemainingSeconds float64 `json:"time_remaining_seconds"`
}

// FinalResult is the scored outcome of a session in a terminal state.
type FinalResult struct {
	SessionID         uuid.UUID           `json:"session_id"`
	Status            model.SessionStatus `json:"status"`
	Reason            string              `json:"reason,omitempty"`
	TotalScore        float64             `json:"total_score"`
	MaxScore          float64             `json:"max_score"`
	Percentage        float64             `json:"percentage"`
	QuestionsAnswered int                 `json:"questions_answered"`
	CompletedAt       *time.Time          `json:"completed_at,omitempty"`
}

// RecoveredState is the full session state returned after an interruption.
type RecoveredState struct {
	Session              *model.Session `json:"session"`
	TimeRemainingSeconds float64        `json:"time_remaining_seconds"`
}

// SessionStats is a lightweight progress snapshot of a session.
type SessionStats struct {
	Status            model.SessionStatus `json:"status"`
	DurationSeconds   float64             `json:"duration_seconds"`
	QuestionsAnswered int                 `json:"questions_answered"`
	ViolationCount    int                 `json:"violation_count"`
	TotalScore        float64             `json:"total_score"`
	Percentage        float64             `json:"percentage"`
}

func finalResult(sess *model.Session) *FinalResult {
	return &FinalResult{
		SessionID:         sess.ID,
		Status:            sess.Status,
		Reason:            sess.CompletionReason,
		TotalScore:        sess.TotalScore,
		MaxScore:          sess.MaxScore,
		Percentage:        sess.Percentage(),
		QuestionsAnswered: len(sess.Answers),
		CompletedAt:       sess.CompletedAt,
	}
}
