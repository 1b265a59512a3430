package handlers

import (
	"errors"
	"net/http"

	"ski_rental_backend/internal/models"
	"ski_rental_backend/internal/services"
	"ski_rental_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// BrandHandler holds the brand service.
type BrandHandler struct {
	brandService services.BrandService
}

// NewBrandHandler creates a new BrandHandler.
func NewBrandHandler(bs services.BrandService) *BrandHandler {
	return &BrandHandler{brandService: bs}
}

// CreateBrand handles adding a brand to the catalog.
func (h *BrandHandler) CreateBrand(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	var req services.CreateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateBrand: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	brand, err := h.brandService.CreateBrand(c.Request.Context(), ownerID, req)
	if err != nil {
		utils.LogError(err, "CreateBrand: Error from brandService.CreateBrand")
		if errors.Is(err, services.ErrBrandNameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Brand name already exists.", err.Error()))
		} else if errors.Is(err, services.ErrBrandValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to create brand.")
		}
		return
	}
	c.JSON(http.StatusCreated, brand)
}

// GetBrands handles fetching the brand catalog.
func (h *BrandHandler) GetBrands(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	var filters models.BrandFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid query parameters.", err.Error()))
		return
	}
	filters.OwnerID = ownerID

	brands, totalCount, err := h.brandService.GetBrands(c.Request.Context(), filters)
	if err != nil {
		utils.LogError(err, "GetBrands: Error from brandService.GetBrands")
		respondUnhandled(c, err, "Failed to fetch brands.")
		return
	}

	page := filters.Page
	pageSize := filters.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	c.JSON(http.StatusOK, paginatedResponse(brands, totalCount, page, pageSize))
}

// GetBrandByID handles fetching a single brand.
func (h *BrandHandler) GetBrandByID(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	brand, err := h.brandService.GetBrandByID(c.Request.Context(), id, ownerID)
	if err != nil {
		utils.LogError(err, "GetBrandByID: Error from brandService.GetBrandByID")
		if errors.Is(err, services.ErrBrandNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Brand not found.", err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to fetch brand.")
		}
		return
	}
	c.JSON(http.StatusOK, brand)
}

// UpdateBrand handles renaming a brand.
func (h *BrandHandler) UpdateBrand(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req services.UpdateBrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateBrand: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	brand, err := h.brandService.UpdateBrand(c.Request.Context(), id, ownerID, req)
	if err != nil {
		utils.LogError(err, "UpdateBrand: Error from brandService.UpdateBrand")
		if errors.Is(err, services.ErrBrandNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Brand not found to update.", err.Error()))
		} else if errors.Is(err, services.ErrBrandNameExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Brand name already exists.", err.Error()))
		} else if errors.Is(err, services.ErrBrandValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to update brand.")
		}
		return
	}
	c.JSON(http.StatusOK, brand)
}

// DeleteBrand handles deleting a brand that no gear references.
func (h *BrandHandler) DeleteBrand(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	err := h.brandService.DeleteBrand(c.Request.Context(), id, ownerID)
	if err != nil {
		utils.LogError(err, "DeleteBrand: Error from brandService.DeleteBrand")
		if errors.Is(err, services.ErrBrandNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Brand not found to delete.", err.Error()))
		} else if errors.Is(err, services.ErrBrandInUse) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeReferentialIntegrity, "Brand is referenced by gear and cannot be deleted.", err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to delete brand.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Brand deleted successfully"})
}
