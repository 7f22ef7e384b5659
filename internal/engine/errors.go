package engine

import (
	"errors"
	"fmt"

	"github.com/hirestack/assessment-engine/internal/model"
)

// Sentinel errors of the session engine. Handlers map these onto wire
// error codes.
var (
	// ErrInvalidSession means no session exists for the given id.
	ErrInvalidSession = errors.New("invalid session")
	// ErrTestNotFound means the referenced test is absent from the catalog.
	ErrTestNotFound = errors.New("test not found")
	// ErrQuestionNotFound means the question is not part of this session.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrPersistenceConflict means a stale write was refused by the store.
	// The caller must re-read and retry.
	ErrPersistenceConflict = errors.New("persistence conflict")
	// ErrSessionNotStarted means an answer arrived before the first
	// question was fetched.
	ErrSessionNotStarted = errors.New("session not started")
	// ErrSessionPaused means the operation requires a running countdown.
	ErrSessionPaused = errors.New("session is paused")
	// ErrNotPaused means resume was called on a session that is not paused.
	ErrNotPaused = errors.New("session is not paused")
	// ErrInvalidQuestionType means the submission kind does not match the
	// question (code for a choice question, answer for a coding question).
	ErrInvalidQuestionType = errors.New("submission does not match question type")
)

// SessionClosedError reports an operation against a terminal-state session.
// The final scored result is attached so the client can still render it.
type SessionClosedError struct {
	Status model.SessionStatus
	Result *FinalResult
}

func (e *SessionClosedError) Error() string {
	return fmt.Sprintf("session closed: %s", e.Status)
}

// SessionExpiredError reports that the time limit ran out. The best-effort
// final state is attached, not discarded: to the candidate this is "time's
// up, here is your score", not a generic failure.
type SessionExpiredError struct {
	Result *FinalResult
}

func (e *SessionExpiredError) Error() string {
	return "session time limit exceeded"
}
