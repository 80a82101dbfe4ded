package controllers

import (
	"errors"

	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
	"github.com/gin-gonic/gin"
)

// AdminLoginRequest represents the admin login request
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/admin/login
func AdminLogin(c *gin.Context) {
	utils.LogInfo("AdminLogin called")
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid login request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}
	utils.LogDebug("Processing login request for email: %s", req.Email)

	admin, err := store.GetAdminByEmail(req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.LogError("Admin not found for email: %s", req.Email)
			utils.Unauthorized(c, "Invalid credentials")
			return
		}
		utils.LogError("Failed to load admin %s: %v", req.Email, err)
		utils.InternalServerError(c, "Login failed", nil)
		return
	}

	if !utils.CheckPassword(req.Password, admin.Password) {
		utils.LogError("Invalid password for admin: %s", admin.Email)
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := utils.GenerateAdminToken(admin.ID)
	if err != nil {
		utils.LogError("Failed to generate token for admin %s: %v", admin.Email, err)
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	utils.LogInfo("Admin login successful: %s", admin.Email)
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"admin": gin.H{
			"id":    admin.ID,
			"email": admin.Email,
		},
	})
}
