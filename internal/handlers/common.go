package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ski_rental_backend/internal/repositories"
	"ski_rental_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// currentOwnerID reads the authenticated owner ID set by the auth
// middleware. A missing ID means the route was wired without the
// middleware, which is a server error, not a client one.
func currentOwnerID(c *gin.Context) (int64, bool) {
	val, exists := c.Get("ownerID")
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Owner context missing.", "auth middleware did not run"))
		return 0, false
	}
	ownerID, ok := val.(int64)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Owner context malformed.", "ownerID is not an int64"))
		return 0, false
	}
	return ownerID, true
}

// parseIDParam parses the :id path parameter.
func parseIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid ID format.", err.Error()))
		return 0, false
	}
	return id, true
}

// paginatedResponse is the list envelope every collection endpoint returns.
func paginatedResponse(items interface{}, total, page, pageSize int) gin.H {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return gin.H{
		"items":       items,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": totalPages,
	}
}

// respondUnhandled is the fallback branch of every handler's error
// mapping. Deadline errors become a retryable 503; anything else is a 500
// with the detail kept out of the response body.
func respondUnhandled(c *gin.Context, err error, message string) {
	if errors.Is(err, repositories.ErrTimeout) {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeTimeout, "The operation timed out, please retry.", err.Error()))
		return
	}
	utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, message, "Internal error"))
}
