package handlers

import (
	"errors"
	"net/http"

	"ski_rental_backend/internal/services"
	"ski_rental_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// Register handles owner account registration.
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Register: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "Register: Error from authService.Register")
		if errors.Is(err, services.ErrEmailExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already registered.", err.Error()))
		} else if errors.Is(err, services.ErrAuthValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnprocessableEntity, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to register.")
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Login handles owner login and token issuance.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "Login: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "Login: Error from authService.Login")
		if errors.Is(err, services.ErrInvalidCredentials) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid email or password.", ""))
		} else {
			respondUnhandled(c, err, "Failed to log in.")
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfile returns the authenticated owner's account.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	ownerID, ok := currentOwnerID(c)
	if !ok {
		return
	}

	owner, err := h.authService.GetProfile(c.Request.Context(), ownerID)
	if err != nil {
		utils.LogError(err, "GetProfile: Error from authService.GetProfile")
		if errors.Is(err, services.ErrOwnerNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Owner not found.", err.Error()))
		} else {
			respondUnhandled(c, err, "Failed to fetch profile.")
		}
		return
	}
	c.JSON(http.StatusOK, owner)
}
