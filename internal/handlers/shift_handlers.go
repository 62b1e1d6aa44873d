package handlers

import (
	"errors"
	"net/http"

	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ShiftHandler holds the shift service.
type ShiftHandler struct {
	shiftService services.ShiftService
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(ss services.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: ss}
}

// authenticatedUserID pulls the staff user ID set by the auth middleware.
func authenticatedUserID(c *gin.Context) *int64 {
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(int64); ok {
			return &id
		}
	}
	return nil
}

// OpenShift opens a cash-drawer shift.
func (h *ShiftHandler) OpenShift(c *gin.Context) {
	var req services.OpenShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	shift, err := h.shiftService.OpenShift(req, authenticatedUserID(c))
	if err != nil {
		utils.LogError(err, "OpenShift: Error from shiftService.OpenShift")
		switch {
		case errors.Is(err, services.ErrShiftAlreadyOpen):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		case errors.Is(err, services.ErrInvalidAmount):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to open shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// GetShift fetches a shift with its movements.
func (h *ShiftHandler) GetShift(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid shift ID format.", err.Error()))
		return
	}

	shift, err := h.shiftService.GetShift(shiftID)
	if err != nil {
		if errors.Is(err, services.ErrShiftNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", ""))
			return
		}
		utils.LogError(err, "GetShift: Error from shiftService.GetShift")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch shift.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, shift)
}

// GetShiftSummary returns the drawer projection (expected cash, totals, movements).
func (h *ShiftHandler) GetShiftSummary(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid shift ID format.", err.Error()))
		return
	}

	summary, err := h.shiftService.GetSummary(shiftID)
	if err != nil {
		if errors.Is(err, services.ErrShiftNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", ""))
			return
		}
		utils.LogError(err, "GetShiftSummary: Error from shiftService.GetSummary")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch shift summary.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RecordMovement appends a drop, payout or adjustment to an open shift.
func (h *ShiftHandler) RecordMovement(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid shift ID format.", err.Error()))
		return
	}

	var req services.RecordMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	movement, err := h.shiftService.RecordMovement(shiftID, req)
	if err != nil {
		utils.LogError(err, "RecordMovement: Error from shiftService.RecordMovement")
		switch {
		case errors.Is(err, services.ErrShiftNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", ""))
		case errors.Is(err, services.ErrShiftClosed):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		case errors.Is(err, services.ErrInvalidAmount), errors.Is(err, services.ErrInvalidMovement):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record movement.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, movement)
}

// CloseShift counts the drawer and closes the shift.
func (h *ShiftHandler) CloseShift(c *gin.Context) {
	shiftID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid shift ID format.", err.Error()))
		return
	}

	var req services.CloseShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	shift, err := h.shiftService.CloseShift(shiftID, req, authenticatedUserID(c))
	if err != nil {
		utils.LogError(err, "CloseShift: Error from shiftService.CloseShift")
		switch {
		case errors.Is(err, services.ErrShiftNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", ""))
		case errors.Is(err, services.ErrShiftClosed):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		case errors.Is(err, services.ErrInvalidAmount):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		default:
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to close shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, shift)
}
