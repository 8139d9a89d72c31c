package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mmtukut/propabridge-2/internal/auth"
	"github.com/mmtukut/propabridge-2/internal/config"
	"github.com/mmtukut/propabridge-2/internal/services"
	"github.com/mmtukut/propabridge-2/internal/utils"
)

// RestAuthHandler handles phone-based OTP login.
type RestAuthHandler struct {
	otpService  services.IOTPService
	userService services.IUserService
	cfg         *config.Config
}

// NewRestAuthHandler creates a new RestAuthHandler.
func NewRestAuthHandler(otpService services.IOTPService, userService services.IUserService, cfg *config.Config) *RestAuthHandler {
	return &RestAuthHandler{
		otpService:  otpService,
		userService: userService,
		cfg:         cfg,
	}
}

type requestOTPPayload struct {
	Phone string `json:"phone" binding:"required"`
}

// RequestOTP handles POST /v1/auth/otp/request
func (h *RestAuthHandler) RequestOTP(c *gin.Context) {
	var payload requestOTPPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	phone, err := utils.NormalizePhone(payload.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number: " + err.Error()})
		return
	}

	if err := h.otpService.RequestOTP(c.Request.Context(), phone); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

type verifyOTPPayload struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required"`
	Name  string `json:"name"`
}

// VerifyOTP handles POST /v1/auth/otp/verify. A correct code logs the user in,
// creating the account on first verification, and returns a JWT.
func (h *RestAuthHandler) VerifyOTP(c *gin.Context) {
	var payload verifyOTPPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	phone, err := utils.NormalizePhone(payload.Phone)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number: " + err.Error()})
		return
	}

	ok, err := h.otpService.VerifyOTP(c.Request.Context(), phone, payload.Code)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify code"})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect or expired verification code"})
		return
	}

	user, err := h.userService.FindOrCreateByPhone(c.Request.Context(), phone)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	if payload.Name != "" && user.Name == "" {
		if err := h.userService.UpdateName(c.Request.Context(), user.ID, payload.Name); err != nil {
			_ = c.Error(err)
		} else {
			user.Name = payload.Name
		}
	}

	token, err := auth.GenerateJWT(user.ID, user.Phone, user.IsAdmin, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}
