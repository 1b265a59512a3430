package handlers

import (
	"errors"
	"net/http"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/services"
	"ski_rental_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CustomerHandler holds the customer service.
type CustomerHandler struct {
	customerService services.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(cs services.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: cs}
}

// CreateCustomer handles registering a new customer.
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	var req services.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateCustomer: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), ownerID, req)
	if err != nil {
		utils.LogError(err, "CreateCustomer: Error from customerService.CreateCustomer")
		if errors.Is(err, services.ErrPhoneExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Phone number already exists.", err.Error()))
		} else if errors.Is(err, services.ErrCustomerValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to create customer.")
		}
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// GetCustomers handles fetching customers with search and pagination.
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	var filters models.CustomerFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters.", err.Error()))
		return
	}
	filters.OwnerID = ownerID

	customers, totalCount, err := h.customerService.GetCustomers(c.Request.Context(), filters)
	if err != nil {
		utils.LogError(err, "GetCustomers: Error from customerService.GetCustomers")
		respondUnhandled(c, err, "Failed to fetch customers.")
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
	c.JSON(http.StatusOK, paginatedResponse(customers, totalCount, page, pageSize))
}

// GetCustomerByID handles fetching a single customer.
func (h *CustomerHandler) GetCustomerByID(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	customer, err := h.customerService.GetCustomerByID(c.Request.Context(), id, ownerID)
	if err != nil {
		utils.LogError(err, "GetCustomerByID: Error from customerService.GetCustomerByID")
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found.", err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to fetch customer.")
		}
		return
	}
	c.JSON(http.StatusOK, customer)
}

// UpdateCustomer handles updating a customer.
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateCustomer: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), id, ownerID, req)
	if err != nil {
		utils.LogError(err, "UpdateCustomer: Error from customerService.UpdateCustomer")
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found to update.", err.Error()))
		} else if errors.Is(err, services.ErrPhoneExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Phone number already exists.", err.Error()))
		} else if errors.Is(err, services.ErrCustomerValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to update customer.")
		}
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles removing a customer without rental history.
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := h.customerService.DeleteCustomer(c.Request.Context(), id, ownerID)
	if err != nil {
		utils.LogError(err, "DeleteCustomer: Error from customerService.DeleteCustomer")
		if errors.Is(err, services.ErrCustomerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Customer not found to delete.", err.Error()))
		} else if errors.Is(err, services.ErrHasRentalHistory) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeReferentialIntegrity, "Customer has rental history and cannot be deleted.", err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to delete customer.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}
