package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ski_rental_backend/internal/services"
	"ski_rental_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler holds the analytics service.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(as services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: as}
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil {
		return fallback
	}
	return v
}

// Dashboard returns the headline metrics view.
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.Dashboard(c.Request.Context(), ownerID)
	if err != nil {
		utils.LogError(err, "Dashboard: Error from analyticsService.Dashboard")
		respondUnhandled(c, err, "Failed to build dashboard.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// PopularEquipment returns the equipment popularity ranking.
func (h *AnalyticsHandler) PopularEquipment(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.PopularEquipment(c.Request.Context(), ownerID, intQuery(c, "limit", 10))
	if err != nil {
		utils.LogError(err, "PopularEquipment: Error from analyticsService.PopularEquipment")
		respondUnhandled(c, err, "Failed to build equipment report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// IdleEquipment returns gear that has sat unrented past the threshold.
func (h *AnalyticsHandler) IdleEquipment(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.IdleEquipment(c.Request.Context(), ownerID, intQuery(c, "threshold_days", 0))
	if err != nil {
		utils.LogError(err, "IdleEquipment: Error from analyticsService.IdleEquipment")
		respondUnhandled(c, err, "Failed to build idle equipment report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// TopCustomers returns the customer ranking.
func (h *AnalyticsHandler) TopCustomers(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.TopCustomers(c.Request.Context(), ownerID, intQuery(c, "limit", 10))
	if err != nil {
		utils.LogError(err, "TopCustomers: Error from analyticsService.TopCustomers")
		respondUnhandled(c, err, "Failed to build customer report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// Segmentation returns the vip/regular/occasional partition.
func (h *AnalyticsHandler) Segmentation(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.Segmentation(c.Request.Context(), ownerID)
	if err != nil {
		utils.LogError(err, "Segmentation: Error from analyticsService.Segmentation")
		respondUnhandled(c, err, "Failed to build segmentation report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// ProblematicCustomers returns customers whose scored returns average below 3.
func (h *AnalyticsHandler) ProblematicCustomers(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.ProblematicCustomers(c.Request.Context(), ownerID)
	if err != nil {
		utils.LogError(err, "ProblematicCustomers: Error from analyticsService.ProblematicCustomers")
		respondUnhandled(c, err, "Failed to build problematic customers report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// Revenue returns the revenue breakdown over the requested window.
func (h *AnalyticsHandler) Revenue(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.Revenue(c.Request.Context(), ownerID, intQuery(c, "days", 30))
	if err != nil {
		utils.LogError(err, "Revenue: Error from analyticsService.Revenue")
		if errors.Is(err, services.ErrAnalyticsValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to build revenue report.")
		}
		return
	}
	c.JSON(http.StatusOK, report)
}

// BrandPerformance returns the per-brand fleet and revenue ranking.
func (h *AnalyticsHandler) BrandPerformance(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.BrandPerformance(c.Request.Context(), ownerID)
	if err != nil {
		utils.LogError(err, "BrandPerformance: Error from analyticsService.BrandPerformance")
		respondUnhandled(c, err, "Failed to build brand performance report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// TimePatterns returns the weekday/hour/month seasonality view.
func (h *AnalyticsHandler) TimePatterns(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.TimePatterns(c.Request.Context(), ownerID)
	if err != nil {
		utils.LogError(err, "TimePatterns: Error from analyticsService.TimePatterns")
		respondUnhandled(c, err, "Failed to build time patterns report.")
		return
	}
	c.JSON(http.StatusOK, report)
}

// Overdue returns all open rentals past their due time.
func (h *AnalyticsHandler) Overdue(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	report, err := h.analyticsService.Overdue(c.Request.Context(), ownerID)
	if err != nil {
		utils.LogError(err, "Overdue: Error from analyticsService.Overdue")
		respondUnhandled(c, err, "Failed to build overdue report.")
		return
	}
	c.JSON(http.StatusOK, report)
}
