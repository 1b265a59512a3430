package handlers

import (
	"errors"
	"net/http"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/services"
	"ski_rental_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RentalHandler holds the rental service.
type RentalHandler struct {
	rentalService services.RentalService
}

// NewRentalHandler creates a new RentalHandler.
func NewRentalHandler(rs services.RentalService) *RentalHandler {
	return &RentalHandler{rentalService: rs}
}

// CreateRental handles opening a new rental. The gear is reserved, the
// price fixed and the ledger row written atomically; a conflict on the
// gear's availability comes back as 409.
func (h *RentalHandler) CreateRental(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	var req services.CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateRental: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	rental, err := h.rentalService.CreateRental(c.Request.Context(), ownerID, req)
	if err != nil {
		utils.LogError(err, "CreateRental: Error from rentalService.CreateRental")
		if errors.Is(err, services.ErrGearUnavailable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Gear is not available for rent.", err.Error()))
		} else if errors.Is(err, services.ErrGearNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Gear not found.", err.Error()))
		} else if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
		} else if errors.Is(err, services.ErrInvalidDuration) || errors.Is(err, services.ErrInvalidRentalType) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to create rental.")
		}
		return
	}
	c.JSON(http.StatusCreated, rental)
}

// GetRentals handles fetching the rental ledger with filters.
func (h *RentalHandler) GetRentals(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	var filters models.RentalFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters.", err.Error()))
		return
	}
	filters.OwnerID = ownerID

	rentals, totalCount, err := h.rentalService.GetRentals(c.Request.Context(), filters)
	if err != nil {
		utils.LogError(err, "GetRentals: Error from rentalService.GetRentals")
		if errors.Is(err, services.ErrRentalValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to fetch rentals.")
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
	c.JSON(http.StatusOK, paginatedResponse(rentals, totalCount, page, pageSize))
}

// GetRentalByID handles fetching a single rental.
func (h *RentalHandler) GetRentalByID(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	rental, err := h.rentalService.GetRentalByID(c.Request.Context(), id, ownerID)
	if err != nil {
		utils.LogError(err, "GetRentalByID: Error from rentalService.GetRentalByID")
		if errors.Is(err, services.ErrRentalNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Rental not found.", err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to fetch rental.")
		}
		return
	}
	c.JSON(http.StatusOK, rental)
}

// ReturnRental handles closing a rental. When the ledger closed but the
// gear could not be released, the response carries a warning alongside
// the returned rental instead of failing.
func (h *RentalHandler) ReturnRental(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.ReturnRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "ReturnRental: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	rental, warning, err := h.rentalService.ReturnRental(c.Request.Context(), id, ownerID, req)
	if err != nil {
		utils.LogError(err, "ReturnRental: Error from rentalService.ReturnRental")
		if errors.Is(err, services.ErrRentalNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Rental not found.", err.Error()))
		} else if errors.Is(err, services.ErrAlreadyReturned) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Rental is already returned.", err.Error()))
		} else if errors.Is(err, services.ErrInvalidScore) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to return rental.")
		}
		return
	}

	resp := gin.H{"rental": rental}
	if warning != "" {
		resp["warning"] = warning
	}
	c.JSON(http.StatusOK, resp)
}
