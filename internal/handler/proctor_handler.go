package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hirestack/assessment-engine/internal/engine"
	"github.com/hirestack/assessment-engine/internal/model"
	"github.com/hirestack/assessment-engine/internal/response"
	"github.com/hirestack/assessment-engine/internal/validator"
)

// ProctorHandler handles endpoints restricted to the proctoring service
// and admin tooling, behind the service token middleware.
type ProctorHandler struct {
	engine *engine.Engine
	log    zerolog.Logger
}

// NewProctorHandler creates a new ProctorHandler.
func NewProctorHandler(eng *engine.Engine, log zerolog.Logger) *ProctorHandler {
	return &ProctorHandler{
		engine: eng,
		log:    log.With().Str("component", "proctor_handler").Logger(),
	}
}

// ReportViolation godoc
// POST /api/v1/proctor/sessions/:session_id/violations
// Records a violation. If the session crossed the violation limit, the
// termination result is included in the response.
func (h *ProctorHandler) ReportViolation(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ReportViolationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, final, err := h.engine.ReportViolation(c.Request.Context(), sessionID, &req)
	if err != nil {
		failFromEngine(c, h.log, err)
		return
	}

	body := gin.H{
		"violation_count": len(sess.Violations),
		"status":          sess.Status,
	}
	if final != nil {
		body["result"] = final
	}
	response.Success(c, http.StatusOK, body)
}

// TerminateSession godoc
// POST /api/v1/proctor/sessions/:session_id/terminate
// Administrative hard stop from any non-terminal state.
func (h *ProctorHandler) TerminateSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.TerminateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.engine.TerminateSession(c.Request.Context(), sessionID, req.Reason)
	if err != nil {
		failFromEngine(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}
