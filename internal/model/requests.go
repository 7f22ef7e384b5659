package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// CreateSessionRequest is the payload for starting a new assessment session.
// Unset options inherit the test definition's defaults.
type CreateSessionRequest struct {
	CandidateID        string    `json:"candidate_id" binding:"required,min=1,max=255"`
	TestID             uuid.UUID `json:"test_id" binding:"required"`
	TimeLimitSeconds   *int      `json:"time_limit_seconds" binding:"omitempty,min=1,max=86400"`
	RandomizeQuestions *bool     `json:"randomize_questions" binding:"omitempty"`
	RandomizeOptions   *bool     `json:"randomize_options" binding:"omitempty"`
}

// SubmitAnswerRequest is the payload for answering a non-coding question.
type SubmitAnswerRequest struct {
	QuestionID uuid.UUID       `json:"question_id" binding:"required"`
	Value      json.RawMessage `json:"value" binding:"required"`
}

// SubmitCodeRequest is the payload for a coding-question submission.
type SubmitCodeRequest struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	SourceCode string    `json:"source_code" binding:"required,max=65536"`
	Language   string    `json:"language" binding:"required,min=1,max=32"`
}

// ReportViolationRequest is the payload sent by the proctoring collaborator.
type ReportViolationRequest struct {
	Type     string `json:"type" binding:"required,min=1,max=64"`
	Severity string `json:"severity" binding:"required,oneof=low medium high"`
	Details  string `json:"details" binding:"omitempty,max=2000"`
}

// TerminateSessionRequest is the payload for an administrative hard stop.
type TerminateSessionRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}
