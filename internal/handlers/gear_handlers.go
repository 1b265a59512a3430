package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/services"
	"ski_rental_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// GearHandler holds the gear service.
type GearHandler struct {
	gearService services.GearService
}

// NewGearHandler creates a new GearHandler.
func NewGearHandler(gs services.GearService) *GearHandler {
	return &GearHandler{gearService: gs}
}

// CreateGear handles adding a new gear item to the fleet.
func (h *GearHandler) CreateGear(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	var req services.CreateGearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateGear: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	gear, err := h.gearService.CreateGear(c.Request.Context(), ownerID, req)
	if err != nil {
		utils.LogError(err, "CreateGear: Error from gearService.CreateGear")
		if errors.Is(err, services.ErrGearValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrBrandNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Brand not found.", err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to create gear.")
		}
		return
	}
	c.JSON(http.StatusCreated, gear)
}

// GetGear handles fetching the gear fleet with filters and pagination.
func (h *GearHandler) GetGear(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	var filters models.GearFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters.", err.Error()))
		return
	}
	filters.OwnerID = ownerID

	gearList, totalCount, err := h.gearService.GetGear(c.Request.Context(), filters)
	if err != nil {
		utils.LogError(err, "GetGear: Error from gearService.GetGear")
		if errors.Is(err, services.ErrGearValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to fetch gear.")
		}
		return
	}

	page := filters.Page
	pageSize := filters.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	c.JSON(http.StatusOK, paginatedResponse(gearList, totalCount, page, pageSize))
}

// GetGearByID handles fetching a single gear item.
func (h *GearHandler) GetGearByID(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	gear, err := h.gearService.GetGearByID(c.Request.Context(), id, ownerID)
	if err != nil {
		utils.LogError(err, "GetGearByID: Error from gearService.GetGearByID for ID "+strconv.FormatInt(id, 10))
		if errors.Is(err, services.ErrGearNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Gear not found.", err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to fetch gear.")
		}
		return
	}
	c.JSON(http.StatusOK, gear)
}

// UpdateGear handles updating a gear item's editable fields.
func (h *GearHandler) UpdateGear(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateGearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateGear: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	gear, err := h.gearService.UpdateGear(c.Request.Context(), id, ownerID, req)
	if err != nil {
		utils.LogError(err, "UpdateGear: Error from gearService.UpdateGear")
		if errors.Is(err, services.ErrGearNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Gear not found to update.", err.Error()))
		} else if errors.Is(err, services.ErrBrandNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Brand not found.", err.Error()))
		} else if errors.Is(err, services.ErrGearValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to update gear.")
		}
		return
	}
	c.JSON(http.StatusOK, gear)
}

// DeleteGear handles removing a gear item without rental history.
func (h *GearHandler) DeleteGear(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := h.gearService.DeleteGear(c.Request.Context(), id, ownerID)
	if err != nil {
		utils.LogError(err, "DeleteGear: Error from gearService.DeleteGear")
		if errors.Is(err, services.ErrGearNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Gear not found to delete.", err.Error()))
		} else if errors.Is(err, services.ErrHasRentalHistory) || errors.Is(err, services.ErrInvalidStateTransition) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeReferentialIntegrity, "Gear cannot be deleted.", err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to delete gear.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gear deleted successfully"})
}

// MarkBroken takes an available gear item out of circulation.
func (h *GearHandler) MarkBroken(c *gin.Context) {
	h.override(c, "MarkBroken", h.gearService.MarkBroken)
}

// MarkRepaired returns a broken gear item to circulation.
func (h *GearHandler) MarkRepaired(c *gin.Context) {
	h.override(c, "MarkRepaired", h.gearService.MarkRepaired)
}

func (h *GearHandler) override(c *gin.Context, op string, fn func(ctx context.Context, id, ownerID int64) (*models.Gear, error)) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	gear, err := fn(c.Request.Context(), id, ownerID)
	if err != nil {
		utils.LogError(err, op+": Error from gear status override")
		if errors.Is(err, services.ErrGearNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Gear not found.", err.Error()))
		} else if errors.Is(err, services.ErrInvalidStateTransition) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Gear is not in a state this change is allowed from.", err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to change gear status.")
		}
		return
	}
	c.JSON(http.StatusOK, gear)
}
