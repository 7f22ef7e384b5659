// Package handler exposes the session engine over HTTP. Handlers bind and
// validate requests, call the engine, and translate its errors onto the
// response envelope; they contain no business rules of their own.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hirestack/assessment-engine/internal/engine"
	"github.com/hirestack/assessment-engine/internal/model"
	"github.com/hirestack/assessment-engine/internal/response"
	"github.com/hirestack/assessment-engine/internal/sandbox"
	"github.com/hirestack/assessment-engine/internal/validator"
)

// SessionHandler handles candidate-facing session endpoints.
type SessionHandler struct {
	engine *engine.Engine
	log    zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(eng *engine.Engine, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		engine: eng,
		log:    log.With().Str("component", "session_handler").Logger(),
	}
}

// CreateSession godoc
// POST /api/v1/sessions
// Creates a not_started session. The countdown starts on the first
// question request, not here.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.engine.CreateSession(c.Request.Context(), &req)
	if err != nil {
		h.failFromEngine(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": sess})
}

// NextQuestion godoc
// GET /api/v1/sessions/:session_id/next
// Returns the current question, starting the session on the first call.
func (h *SessionHandler) NextQuestion(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	view, err := h.engine.GetNextQuestion(c.Request.Context(), sessionID)
	if err != nil {
		h.failFromEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"question": view})
}

// SubmitAnswer godoc
// POST /api/v1/sessions/:session_id/answers
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.engine.SubmitAnswer(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.failFromEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// SubmitCode godoc
// POST /api/v1/sessions/:session_id/code
// Records and executes a coding submission. The execution summary rides
// along with the scored result.
func (h *SessionHandler) SubmitCode(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req model.SubmitCodeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, summary, err := h.engine.SubmitCode(c.Request.Context(), sessionID, &req)
	if err != nil {
		h.failFromEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result, "execution": summary})
}

// PauseSession godoc
// POST /api/v1/sessions/:session_id/pause
func (h *SessionHandler) PauseSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	sess, err := h.engine.PauseSession(c.Request.Context(), sessionID)
	if err != nil {
		h.failFromEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// ResumeSession godoc
// POST /api/v1/sessions/:session_id/resume
func (h *SessionHandler) ResumeSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	sess, err := h.engine.ResumeSession(c.Request.Context(), sessionID)
	if err != nil {
		h.failFromEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// CompleteSession godoc
// POST /api/v1/sessions/:session_id/complete
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	result, err := h.engine.CompleteSession(c.Request.Context(), sessionID)
	if err != nil {
		h.failFromEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// RecoverSession godoc
// GET /api/v1/sessions/:session_id/recover
// Returns the full state a reconnecting client needs to continue.
func (h *SessionHandler) RecoverSession(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	state, err := h.engine.ResumeAfterInterruption(c.Request.Context(), sessionID)
	if err != nil {
		h.failFromEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"state": state})
}

// SessionStats godoc
// GET /api/v1/sessions/:session_id/stats
func (h *SessionHandler) SessionStats(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}

	stats, err := h.engine.GetSessionStats(c.Request.Context(), sessionID)
	if err != nil {
		h.failFromEngine(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *SessionHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

// failFromEngine maps engine errors onto wire error codes. Shared with
// the proctoring handler.
func (h *SessionHandler) failFromEngine(c *gin.Context, err error) {
	failFromEngine(c, h.log, err)
}

func failFromEngine(c *gin.Context, log zerolog.Logger, err error) {
	var closed *engine.SessionClosedError
	var expired *engine.SessionExpiredError

	switch {
	case errors.As(err, &expired):
		// Time ran out mid-request. The final result still reaches the
		// client so it can show the score screen.
		response.FailWithDetails(c, http.StatusGone, response.ErrSessionExpired, gin.H{"result": expired.Result})
	case errors.As(err, &closed):
		response.FailWithDetails(c, http.StatusConflict, response.ErrSessionClosed, gin.H{"result": closed.Result})
	case errors.Is(err, engine.ErrInvalidSession):
		response.Fail(c, http.StatusNotFound, response.ErrInvalidSession)
	case errors.Is(err, engine.ErrTestNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrTestNotFound)
	case errors.Is(err, engine.ErrQuestionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrQuestionNotFound)
	case errors.Is(err, engine.ErrSessionPaused):
		response.Fail(c, http.StatusConflict, response.ErrSessionPaused)
	case errors.Is(err, engine.ErrNotPaused):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotPaused)
	case errors.Is(err, engine.ErrSessionNotStarted):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotStarted)
	case errors.Is(err, engine.ErrInvalidQuestionType):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuestionType)
	case errors.Is(err, engine.ErrPersistenceConflict):
		response.Fail(c, http.StatusConflict, response.ErrPersistenceConflict)
	case errors.Is(err, sandbox.ErrUnsupportedLanguage):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrUnsupportedLanguage)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled engine error")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
