package controllers

import (
	"errors"

	"github.com/atlanticweizard/storefront/models"
	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
	"github.com/gin-gonic/gin"
)

// RegisterRequest is the customer signup payload
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest is the customer login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/register
func RegisterUser(c *gin.Context) {
	utils.LogInfo("RegisterUser called")
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid registration request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	if _, err := store.GetUserByUsername(req.Username); err == nil {
		utils.LogError("Username already taken: %s", req.Username)
		utils.Conflict(c, "Username already taken", nil)
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		utils.LogError("Failed to check username %s: %v", req.Username, err)
		utils.InternalServerError(c, "Registration failed", nil)
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.LogError("Failed to hash password: %v", err)
		utils.InternalServerError(c, "Registration failed", nil)
		return
	}

	user := &models.User{Username: req.Username, Password: hash}
	if err := store.CreateUser(user); err != nil {
		utils.LogError("Failed to create user %s: %v", req.Username, err)
		utils.InternalServerError(c, "Registration failed", nil)
		return
	}

	token, err := utils.GenerateUserToken(user.ID)
	if err != nil {
		utils.LogError("Failed to generate token for user %s: %v", user.Username, err)
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	utils.LogInfo("User registered: %s (%d)", user.Username, user.ID)
	utils.Created(c, "Registration successful", gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "username": user.Username},
	})
}

// POST /api/login
func LoginUser(c *gin.Context) {
	utils.LogInfo("LoginUser called")
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid login request: %v", err)
		utils.BadRequest(c, "Invalid input", err.Error())
		return
	}

	user, err := store.GetUserByUsername(req.Username)
	if err != nil {
		utils.LogError("User not found: %s", req.Username)
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		utils.LogError("Invalid password for user: %s", req.Username)
		utils.Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := utils.GenerateUserToken(user.ID)
	if err != nil {
		utils.LogError("Failed to generate token for user %s: %v", user.Username, err)
		utils.InternalServerError(c, "Failed to generate token", nil)
		return
	}

	utils.LogInfo("User login successful: %s", user.Username)
	utils.Success(c, "Login successful", gin.H{
		"token": token,
		"user":  gin.H{"id": user.ID, "username": user.Username},
	})
}
