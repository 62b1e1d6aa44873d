package handlers

import (
	"errors"
	"net/http"

	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TariffHandler holds the tariff service.
type TariffHandler struct {
	tariffService services.TariffService
}

// NewTariffHandler creates a new TariffHandler.
func NewTariffHandler(ts services.TariffService) *TariffHandler {
	return &TariffHandler{tariffService: ts}
}

// CreateTariff handles the creation of a new tariff.
func (h *TariffHandler) CreateTariff(c *gin.Context) {
	var req services.CreateTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	tariff, err := h.tariffService.CreateTariff(req)
	if err != nil {
		if errors.Is(err, services.ErrTariffValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
			return
		}
		utils.LogError(err, "CreateTariff: Error from tariffService.CreateTariff")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create tariff.", "Internal error"))
		return
	}
	c.JSON(http.StatusCreated, tariff)
}

// GetTariffs handles listing tariffs, optionally only active ones.
func (h *TariffHandler) GetTariffs(c *gin.Context) {
	onlyActive := c.DefaultQuery("active", "true") == "true"

	tariffs, err := h.tariffService.GetTariffs(onlyActive)
	if err != nil {
		utils.LogError(err, "GetTariffs: Error from tariffService.GetTariffs")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch tariffs.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tariffs})
}

// GetTariffByID handles fetching one tariff.
func (h *TariffHandler) GetTariffByID(c *gin.Context) {
	tariffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid tariff ID format.", err.Error()))
		return
	}

	tariff, err := h.tariffService.GetTariffByID(tariffID)
	if err != nil {
		if errors.Is(err, services.ErrTariffNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Tariff not found.", ""))
			return
		}
		utils.LogError(err, "GetTariffByID: Error from tariffService.GetTariffByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch tariff.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, tariff)
}

// DeactivateTariff handles retiring a tariff from further use.
// Sessions already running on it keep their snapshot.
func (h *TariffHandler) DeactivateTariff(c *gin.Context) {
	tariffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid tariff ID format.", err.Error()))
		return
	}

	if err := h.tariffService.DeactivateTariff(tariffID); err != nil {
		if errors.Is(err, services.ErrTariffNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Tariff not found.", ""))
			return
		}
		utils.LogError(err, "DeactivateTariff: Error from tariffService.DeactivateTariff")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to deactivate tariff.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tariff deactivated"})
}
