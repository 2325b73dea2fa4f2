package routes

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Aryaveer-14/civic-mind/services"
)

// RegisterRequest starts an OTP-gated registration
type RegisterRequest struct {
	Email         string `json:"email" binding:"required,email"`
	Name          string `json:"name" binding:"required"`
	ContactNumber string `json:"contact_number" binding:"required"`
	Age           int    `json:"age" binding:"required"`
	Locality      string `json:"locality" binding:"required"`
}

// VerifyOTPRequest completes a registration
type VerifyOTPRequest struct {
	ContactNumber string `json:"contact_number" binding:"required"`
	OTP           string `json:"otp" binding:"required"`
}

// ResendOTPRequest re-issues a code for a pending registration
type ResendOTPRequest struct {
	ContactNumber string `json:"contact_number" binding:"required"`
}

// LoginRequest authenticates by email
type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AuthHandler serves registration, verification and login.
type AuthHandler struct {
	reg *services.RegistrationService
}

func NewAuthHandler(reg *services.RegistrationService) *AuthHandler {
	return &AuthHandler{reg: reg}
}

// RegisterAuthRoutes registers authentication routes
func RegisterAuthRoutes(router *gin.RouterGroup, h *AuthHandler) {
	router.POST("/register", h.register)
	router.POST("/verify-otp", h.verifyOTP)
	router.POST("/resend-otp", h.resendOTP)
	router.POST("/login", h.login)
	router.GET("/user/:user_id", h.getUser)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "All fields (email, name, contact_number, age, locality) are required",
		})
		return
	}

	issued, err := h.reg.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.ContactNumber,
		Age:      req.Age,
		Locality: req.Locality,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDuplicateEmail):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Email already registered"})
		case errors.Is(err, services.ErrDuplicatePhone):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Contact number already registered"})
		default:
			log.Printf("❌ Registration failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Registration failed"})
		}
		return
	}

	resp := gin.H{
		"success":        true,
		"message":        "OTP sent to your mobile number",
		"contact_number": issued.Phone,
		"tempId":         issued.TempID,
	}
	if issued.DebugOTP != "" {
		resp["message"] = "OTP generated (check console/logs for testing)"
		resp["otp"] = issued.DebugOTP
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) verifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Contact number and OTP are required",
		})
		return
	}

	user, err := h.reg.Verify(c.Request.Context(), req.ContactNumber, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOTPNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "OTP not found. Please register again."})
		case errors.Is(err, services.ErrOTPExpired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "OTP has expired. Please register again."})
		case errors.Is(err, services.ErrOTPMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid OTP. Please try again."})
		default:
			log.Printf("❌ OTP verification failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "OTP verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Account verified successfully",
		"user_id": user.ID,
		"name":    user.Name,
		"email":   user.Email,
		"token":   user.AuthToken,
	})
}

func (h *AuthHandler) resendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Contact number is required",
		})
		return
	}

	issued, err := h.reg.Resend(c.Request.Context(), req.ContactNumber)
	if err != nil {
		if errors.Is(err, services.ErrOTPNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "No pending registration found. Please register again.",
			})
			return
		}
		log.Printf("❌ Resend OTP failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to resend OTP"})
		return
	}

	resp := gin.H{
		"success": true,
		"message": "OTP resent to your mobile number",
	}
	if issued.DebugOTP != "" {
		resp["message"] = "New OTP generated (check console/logs)"
		resp["otp"] = issued.DebugOTP
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Email is required"})
		return
	}

	user, err := h.reg.Login(req.Email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "User not found"})
			return
		}
		log.Printf("❌ Login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"user_id":  user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"token":    user.AuthToken,
		"locality": user.Locality,
	})
}

func (h *AuthHandler) getUser(c *gin.Context) {
	user, err := h.reg.UserByID(c.Param("user_id"))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
			return
		}
		log.Printf("❌ User fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user": gin.H{
			"id":             user.ID,
			"name":           user.Name,
			"email":          user.Email,
			"contact_number": user.Phone,
			"age":            user.Age,
			"locality":       user.Locality,
		},
	})
}
