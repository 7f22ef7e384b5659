package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"
	ErrForbidden     ErrCode = "FORBIDDEN"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Session-specific ──────────────────────────────────────────────
	ErrInvalidSession       ErrCode = "INVALID_SESSION"
	ErrTestNotFound         ErrCode = "TEST_NOT_FOUND"
	ErrQuestionNotFound     ErrCode = "QUESTION_NOT_FOUND"
	ErrSessionClosed        ErrCode = "SESSION_CLOSED"
	ErrSessionExpired       ErrCode = "SESSION_EXPIRED"
	ErrSessionPaused        ErrCode = "SESSION_PAUSED"
	ErrSessionNotPaused     ErrCode = "SESSION_NOT_PAUSED"
	ErrSessionNotStarted    ErrCode = "SESSION_NOT_STARTED"
	ErrInvalidQuestionType  ErrCode = "INVALID_QUESTION_TYPE"
	ErrUnsupportedLanguage  ErrCode = "UNSUPPORTED_LANGUAGE"
	ErrPersistenceConflict  ErrCode = "PERSISTENCE_CONFLICT"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."
	case ErrTokenExpired:
		return "The authentication token has expired."
	case ErrForbidden:
		return "You do not have permission to access this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Session-specific ──────────────────────────────────────────────
	case ErrInvalidSession:
		return "No session exists for the given ID."
	case ErrTestNotFound:
		return "The referenced test does not exist."
	case ErrQuestionNotFound:
		return "The question is not part of this session."
	case ErrSessionClosed:
		return "The session has already ended."
	case ErrSessionExpired:
		return "The session time limit has been exceeded."
	case ErrSessionPaused:
		return "The session is paused. Resume it first."
	case ErrSessionNotPaused:
		return "The session is not paused."
	case ErrSessionNotStarted:
		return "The session has not been started yet."
	case ErrInvalidQuestionType:
		return "The submission kind does not match the question type."
	case ErrUnsupportedLanguage:
		return "The submission language is not supported."
	case ErrPersistenceConflict:
		return "The session was modified concurrently. Please retry."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
