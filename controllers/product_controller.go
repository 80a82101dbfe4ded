package controllers

import (
	"errors"

	"github.com/atlanticweizard/storefront/models"
	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductRequest is the admin create/update payload
type ProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Price       string `json:"price" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Image       string `json:"image" binding:"required"`
	Stock       int    `json:"stock"`
}

// GET /api/products
func GetProducts(c *gin.Context) {
	products, err := store.GetAllProducts()
	if err != nil {
		utils.LogError("Failed to fetch products: %v", err)
		utils.InternalServerError(c, "Failed to fetch products", nil)
		return
	}
	c.JSON(200, products)
}

// GET /api/products/:id
func GetProduct(c *gin.Context) {
	product, err := store.GetProductByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.NotFound(c, "Product not found")
			return
		}
		utils.LogError("Failed to fetch product %s: %v", c.Param("id"), err)
		utils.InternalServerError(c, "Failed to fetch product", nil)
		return
	}
	c.JSON(200, product)
}

// POST /api/admin/products (admin)
func CreateProduct(c *gin.Context) {
	utils.LogInfo("CreateProduct called")
	req, ok := bindProductRequest(c)
	if !ok {
		return
	}

	product := productFromRequest(req)
	if err := store.CreateProduct(product); err != nil {
		utils.LogError("Failed to create product: %v", err)
		utils.InternalServerError(c, "Failed to create product", nil)
		return
	}
	utils.LogInfo("Product created: %s (%s)", product.Name, product.ID)
	utils.Created(c, "Product created successfully", product)
}

// PUT /api/admin/products/:id (admin)
func UpdateProduct(c *gin.Context) {
	utils.LogInfo("UpdateProduct called for id: %s", c.Param("id"))
	req, ok := bindProductRequest(c)
	if !ok {
		return
	}

	product, err := store.UpdateProduct(c.Param("id"), productFromRequest(req))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.NotFound(c, "Product not found")
			return
		}
		utils.LogError("Failed to update product %s: %v", c.Param("id"), err)
		utils.InternalServerError(c, "Failed to update product", nil)
		return
	}
	utils.Success(c, "Product updated successfully", product)
}

// DELETE /api/admin/products/:id (admin)
func DeleteProduct(c *gin.Context) {
	utils.LogInfo("DeleteProduct called for id: %s", c.Param("id"))
	if err := store.DeleteProduct(c.Param("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.NotFound(c, "Product not found")
			return
		}
		utils.LogError("Failed to delete product %s: %v", c.Param("id"), err)
		utils.InternalServerError(c, "Failed to delete product", nil)
		return
	}
	c.Status(204)
}

func bindProductRequest(c *gin.Context) (ProductRequest, bool) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid product data: %v", err)
		utils.BadRequest(c, "Invalid product data", err.Error())
		return req, false
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		utils.LogError("Invalid product price: %q", req.Price)
		utils.BadRequest(c, "Invalid product data", "price must be a non-negative decimal string")
		return req, false
	}
	if req.Stock < 0 {
		utils.BadRequest(c, "Invalid product data", "stock must not be negative")
		return req, false
	}
	// Persist price normalized to two decimals so order totals and gateway
	// amounts line up exactly.
	req.Price = price.StringFixed(2)
	return req, true
}

func productFromRequest(req ProductRequest) *models.Product {
	return &models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Image:       req.Image,
		Stock:       req.Stock,
	}
}
