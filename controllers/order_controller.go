package controllers

import (
	"errors"

	"github.com/atlanticweizard/storefront/models"
	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
	"github.com/gin-gonic/gin"
)

// GET /api/admin/orders (admin)
func GetAllOrders(c *gin.Context) {
	orders, err := store.GetAllOrders()
	if err != nil {
		utils.LogError("Failed to fetch orders: %v", err)
		utils.InternalServerError(c, "Failed to fetch orders", nil)
		return
	}
	c.JSON(200, orders)
}

// GET /api/admin/orders/:id (admin)
func GetOrder(c *gin.Context) {
	order, err := store.GetOrderByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.NotFound(c, "Order not found")
			return
		}
		utils.LogError("Failed to fetch order %s: %v", c.Param("id"), err)
		utils.InternalServerError(c, "Failed to fetch order", nil)
		return
	}
	c.JSON(200, order)
}

// GET /api/orders/my (user)
func GetMyOrders(c *gin.Context) {
	userVal, exists := c.Get("user")
	if !exists {
		utils.Unauthorized(c, "Please login for access")
		return
	}
	user := userVal.(models.User)

	orders, err := store.GetUserOrders(user.ID)
	if err != nil {
		utils.LogError("Failed to fetch orders for user %d: %v", user.ID, err)
		utils.InternalServerError(c, "Failed to fetch orders", nil)
		return
	}
	c.JSON(200, orders)
}
