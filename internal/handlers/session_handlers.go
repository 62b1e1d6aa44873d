package handlers

import (
	"errors"
	"net/http"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler holds the session service.
type SessionHandler struct {
	sessionService services.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(ss services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: ss}
}

// StartSession opens a session on a table.
func (h *SessionHandler) StartSession(c *gin.Context) {
	tableID, err := uuid.Parse(c.Param("tableId"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid table ID format.", err.Error()))
		return
	}

	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	session, err := h.sessionService.StartSession(tableID, req)
	if err != nil {
		utils.LogError(err, "StartSession: Error from sessionService.StartSession")
		switch {
		case errors.Is(err, services.ErrAlreadyOccupied):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		case errors.Is(err, services.ErrTableNotFound), errors.Is(err, services.ErrTariffNotFound), errors.Is(err, services.ErrMemberNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
		case errors.Is(err, services.ErrTariffInactive):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to start session.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetSession fetches one session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	session, err := h.sessionService.GetSession(sessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session not found.", ""))
			return
		}
		utils.LogError(err, "GetSession: Error from sessionService.GetSession")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch session.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSessionCharge returns the amount owed so far, without mutating the session.
func (h *SessionHandler) GetSessionCharge(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	charge, err := h.sessionService.QuoteSession(sessionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session not found.", ""))
		case errors.Is(err, services.ErrMemberNotFound), errors.Is(err, services.ErrTariffNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), ""))
		default:
			utils.LogError(err, "GetSessionCharge: Error from sessionService.QuoteSession")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute charge.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, charge)
}

// PauseSession pauses an active session.
func (h *SessionHandler) PauseSession(c *gin.Context) {
	h.transition(c, h.sessionService.PauseSession, "PauseSession")
}

// ResumeSession resumes a paused session.
func (h *SessionHandler) ResumeSession(c *gin.Context) {
	h.transition(c, h.sessionService.ResumeSession, "ResumeSession")
}

func (h *SessionHandler) transition(c *gin.Context, op func(uuid.UUID) (*models.TableSession, error), opName string) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	session, err := op(sessionID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session not found.", ""))
		case errors.Is(err, services.ErrNotActive), errors.Is(err, services.ErrNotPaused), errors.Is(err, services.ErrAlreadyEnded):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.LogError(err, opName+": Error from sessionService")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update session.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, session)
}

// EndSession finalizes a session and, for cash payments, credits the drawer.
func (h *SessionHandler) EndSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid session ID format.", err.Error()))
		return
	}

	var req services.EndSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	session, err := h.sessionService.EndSession(sessionID, req)
	if err != nil {
		utils.LogError(err, "EndSession: Error from sessionService.EndSession")
		switch {
		case errors.Is(err, services.ErrSessionNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Session not found.", ""))
		case errors.Is(err, services.ErrAlreadyEnded):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		case errors.Is(err, services.ErrInvalidPayment):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		case session != nil:
			// Finalized but a follow-up step failed (drawer credit, free-hours
			// write-back or table release). Surface the error with the ended
			// session so the client can retry the credit.
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   gin.H{"code": utils.ErrCodeInternalServerError, "message": err.Error()},
				"session": session,
			})
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to end session.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, session)
}
