package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examhall/backend/internal/model"
	"github.com/examhall/backend/internal/response"
	"github.com/examhall/backend/internal/session"
	"github.com/examhall/backend/internal/validator"
)

// SessionHandler exposes the assessment session lifecycle over HTTP.
type SessionHandler struct {
	manager *session.Manager
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// Enter godoc
// POST /api/v1/sessions/:session_id/enter
// Constructs or re-enters the session for this id. A persisted snapshot is
// recovered; otherwise the session waits for a participant name.
func (h *SessionHandler) Enter(c *gin.Context) {
	sessionID := c.Param("session_id")
	if sessionID == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.EnterSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	s, err := h.manager.Enter(c.Request.Context(), sessionID, req.ExamName, req.Duration)
	if err != nil {
		var ve *session.ValidationError
		if errors.As(err, &ve) {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"duration": ve.Reason})
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": s.View()})
}

// SubmitParticipant godoc
// POST /api/v1/sessions/:session_id/participant
// Sets the participant name and starts the countdown.
func (h *SessionHandler) SubmitParticipant(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("session_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	var req model.SubmitNameRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := s.SubmitParticipantName(c.Request.Context(), req.Name); err != nil {
		var ve *session.ValidationError
		switch {
		case errors.As(err, &ve):
			response.Fail(c, http.StatusBadRequest, response.ErrNameRequired)
		case errors.Is(err, session.ErrNotAwaitingParticipant):
			response.Fail(c, http.StatusConflict, response.ErrParticipantAlready)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": s.View()})
}

// RecordAnswer godoc
// POST /api/v1/sessions/:session_id/answers
// Records a choice for one question. Repeats are no-ops reporting the
// original choice.
func (h *SessionHandler) RecordAnswer(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("session_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := s.SelectAnswer(c.Request.Context(), req.QuestionID, *req.ChosenIndex, *req.CorrectIndex)
	if err != nil {
		var ve *session.ValidationError
		switch {
		case errors.As(err, &ve):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"answer": ve.Reason})
		case errors.Is(err, session.ErrNotRunning):
			response.Fail(c, http.StatusConflict, response.ErrSessionNotRunning)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": result})
}

// Finalize godoc
// POST /api/v1/sessions/:session_id/finalize
// Explicit learner submission. Single-flight with timer expiry: if the
// session is already finalizing or finished this is a no-op.
func (h *SessionHandler) Finalize(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("session_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}

	if err := s.RequestFinalize(c.Request.Context()); err != nil {
		var fe *session.FinalizeError
		switch {
		case errors.As(err, &fe):
			response.Fail(c, http.StatusBadGateway, response.ErrFinalizeFailed)
		case errors.Is(err, session.ErrNotRunning):
			response.Fail(c, http.StatusConflict, response.ErrSessionNotRunning)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": s.View()})
}

// GetState godoc
// GET /api/v1/sessions/:session_id
func (h *SessionHandler) GetState(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("session_id"))
	if !ok {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": s.View()})
}

// Abandon godoc
// DELETE /api/v1/sessions/:session_id
// Stops the countdown and releases the in-process machine. Persisted keys
// stay, so re-entering the id later recovers the attempt.
func (h *SessionHandler) Abandon(c *gin.Context) {
	if !h.manager.Abandon(c.Param("session_id")) {
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"abandoned": true})
}
