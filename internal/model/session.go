package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates assessment session lifecycle states.
type SessionStatus string

const (
	SessionStatusNotStarted SessionStatus = "not_started"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusPaused     SessionStatus = "paused"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusExpired    SessionStatus = "expired"
	SessionStatusTerminated SessionStatus = "terminated"
)

// Terminal reports whether the status admits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusExpired || s == SessionStatusTerminated
}

// Completion reason codes recorded alongside terminal transitions.
const (
	ReasonSubmitted           = "submitted"
	ReasonAllQuestionsDone    = "all_questions_answered"
	ReasonMaxQuestionsReached = "maximum_questions_reached"
	ReasonConfidenceMet       = "confidence_threshold_met"
	ReasonAbilityStabilized   = "ability_estimate_stabilized"
	ReasonTimeLimitExceeded   = "time_limit_exceeded"
	ReasonViolationThreshold  = "violation_threshold_exceeded"
)

// Session is one candidate's attempt at one test, from creation to a
// terminal state. It is the unit of persistence: the whole struct is
// serialized as the durable snapshot.
type Session struct {
	ID          uuid.UUID     `json:"id"`
	CandidateID string        `json:"candidate_id"`
	TestID      uuid.UUID     `json:"test_id"`
	Status      SessionStatus `json:"status"`

	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	TimeLimitSeconds int        `json:"time_limit_seconds"`

	// CurrentQuestionIndex points at the next unanswered position in
	// QuestionOrder. It never decreases.
	CurrentQuestionIndex int         `json:"current_question_index"`
	QuestionOrder        []uuid.UUID `json:"question_order"`
	// OptionOrders holds the per-session option permutation for each
	// question when option randomization is enabled.
	OptionOrders map[uuid.UUID][]string `json:"option_orders,omitempty"`

	Answers         map[uuid.UUID]AnswerRecord `json:"answers"`
	CodeSubmissions map[uuid.UUID]CodeRecord   `json:"code_submissions"`
	Violations      []ViolationRecord          `json:"violations"`

	TotalScore float64 `json:"total_score"`
	// MaxScore sums points of questions actually presented, which for
	// adaptive tests is a variable subset of the catalog.
	MaxScore float64 `json:"max_score"`

	LastActivityAt time.Time  `json:"last_activity_at"`
	LastAutoSaveAt *time.Time `json:"last_auto_save_at,omitempty"`

	// PausedAt is set while the session is paused; PausedSeconds
	// accumulates completed pause intervals. Both feed the time-limit
	// countdown so that pausing freezes it.
	PausedAt      *time.Time `json:"paused_at,omitempty"`
	PausedSeconds float64    `json:"paused_seconds"`

	RandomizeQuestions bool `json:"randomize_questions"`
	RandomizeOptions   bool `json:"randomize_options"`

	// CompletionReason records why the session reached its terminal state.
	CompletionReason string `json:"completion_reason,omitempty"`

	// Adaptive is present iff the test is adaptive.
	Adaptive *AdaptiveState `json:"adaptive,omitempty"`
}

// ActiveElapsed returns wall-clock time spent in the session excluding
// paused intervals.
func (s *Session) ActiveElapsed(now time.Time) time.Duration {
	if s.StartedAt == nil {
		return 0
	}
	elapsed := now.Sub(*s.StartedAt) - time.Duration(s.PausedSeconds*float64(time.Second))
	if s.PausedAt != nil {
		elapsed -= now.Sub(*s.PausedAt)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	return elapsed
}

// TimeRemaining returns how much of the time limit is left, floored at zero.
func (s *Session) TimeRemaining(now time.Time) time.Duration {
	if s.StartedAt == nil {
		return time.Duration(s.TimeLimitSeconds) * time.Second
	}
	remaining := time.Duration(s.TimeLimitSeconds)*time.Second - s.ActiveElapsed(now)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// TimeLimitExceeded reports whether the countdown has run out. Sessions
// without a started clock never expire.
func (s *Session) TimeLimitExceeded(now time.Time) bool {
	if s.StartedAt == nil || s.TimeLimitSeconds <= 0 {
		return false
	}
	return s.ActiveElapsed(now) >= time.Duration(s.TimeLimitSeconds)*time.Second
}

// Percentage returns the aggregate score as a fraction of the maximum for
// the questions presented, in [0,100].
func (s *Session) Percentage() float64 {
	if s.MaxScore <= 0 {
		return 0
	}
	return s.TotalScore / s.MaxScore * 100
}

// AnswerRecord is one scored (or pending-review) answer to one question.
type AnswerRecord struct {
	QuestionID uuid.UUID       `json:"question_id"`
	Value      json.RawMessage `json:"value"`
	// IsCorrect is nil for answers that are never auto-scored (essay).
	IsCorrect       *bool     `json:"is_correct,omitempty"`
	PointsAwarded   float64   `json:"points_awarded"`
	SubmittedAt     time.Time `json:"submitted_at"`
	ResponseSeconds float64   `json:"response_seconds"`
}

// CodeRecord is the latest code submission for a coding question.
type CodeRecord struct {
	QuestionID          uuid.UUID         `json:"question_id"`
	SourceCode          string            `json:"source_code"`
	Language            string            `json:"language"`
	SubmittedAt         time.Time         `json:"submitted_at"`
	LastExecutionResult *ExecutionSummary `json:"last_execution_result,omitempty"`
}

// ViolationRecord is one proctoring violation reported against a session.
type ViolationRecord struct {
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

// AdaptiveState is the adaptive selector's working state for one session.
// Created when an adaptive session starts, mutated only by the selector.
type AdaptiveState struct {
	AbilityEstimate   float64 `json:"ability_estimate"`
	CurrentDifficulty float64 `json:"current_difficulty"`
	ConfidenceLevel   float64 `json:"confidence_level"`
	QuestionsAnswered int     `json:"questions_answered"`
	CorrectAnswers    int     `json:"correct_answers"`

	DifficultyHistory []float64 `json:"difficulty_history"`
	AbilityHistory    []float64 `json:"ability_history"`

	// RecentQuestions holds the last few selected question ids, used as an
	// anti-repetition penalty during selection.
	RecentQuestions []uuid.UUID `json:"recent_questions,omitempty"`
	// Outcomes records, per answer, whether it was correct and what the
	// logistic model predicted. Feeds the confidence computation.
	Outcomes []AnswerOutcome `json:"outcomes"`

	StopReason string `json:"stop_reason,omitempty"`
}

// AnswerOutcome pairs an observed answer result with the model's prediction.
type AnswerOutcome struct {
	Correct   bool    `json:"correct"`
	Predicted float64 `json:"predicted"`
}
