package controllers

import (
	"errors"
	"fmt"

	"github.com/atlanticweizard/storefront/models"
	"github.com/atlanticweizard/storefront/payu"
	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CheckoutItemRequest is a single requested order line. Only the product id
// is trusted from the client; price and snapshot come from the catalog.
type CheckoutItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
}

// InitiatePaymentRequest is the checkout submission
type InitiatePaymentRequest struct {
	CustomerInfo models.CustomerInfo   `json:"customerInfo" binding:"required"`
	Items        []CheckoutItemRequest `json:"items" binding:"required"`
}

// POST /api/payment/initiate
//
// Validates the cart against the live catalog, computes the authoritative
// total, creates a pending order and returns the signed gateway form for the
// client to auto-submit as a browser redirect.
func InitiatePayment(c *gin.Context) {
	utils.LogInfo("InitiatePayment called")

	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError("Invalid payment initiation request: %v", err)
		utils.BadRequest(c, "Invalid order data", err.Error())
		return
	}

	if len(req.Items) == 0 {
		utils.LogError("Payment initiation with empty cart")
		utils.BadRequest(c, "Invalid order data", "items must not be empty")
		return
	}

	if errs := utils.ValidateCustomerInfo(req.CustomerInfo); len(errs) > 0 {
		utils.LogError("Invalid customer info: %v", errs)
		utils.BadRequest(c, "Invalid customer information", errs)
		return
	}
	utils.LogDebug("Processing checkout for %s %s, %d line(s)",
		req.CustomerInfo.FirstName, req.CustomerInfo.LastName, len(req.Items))

	total := decimal.Zero
	items := make(models.OrderItems, 0, len(req.Items))

	for _, line := range req.Items {
		product, err := store.GetProductByID(line.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				utils.LogError("Product not found at checkout: %s", line.ProductID)
				utils.BadRequest(c, fmt.Sprintf("Product %s not found", line.ProductID), nil)
				return
			}
			utils.LogError("Failed to load product %s: %v", line.ProductID, err)
			utils.InternalServerError(c, "Failed to validate cart", nil)
			return
		}

		if line.Quantity <= 0 || line.Quantity > product.Stock {
			utils.LogError("Invalid quantity %d for product %s (stock %d)",
				line.Quantity, product.ID, product.Stock)
			utils.BadRequest(c, fmt.Sprintf("Invalid quantity for %s", product.Name), nil)
			return
		}

		price, err := decimal.NewFromString(product.Price)
		if err != nil {
			utils.LogError("Malformed price %q on product %s: %v", product.Price, product.ID, err)
			utils.InternalServerError(c, "Failed to validate cart", nil)
			return
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))

		items = append(items, models.OrderItem{Product: *product, Quantity: line.Quantity})
	}

	order := &models.Order{
		CustomerInfo:  req.CustomerInfo,
		Items:         items,
		Total:         total.StringFixed(2),
		PaymentStatus: models.PaymentStatusPending,
		UserID:        optionalUserID(c),
	}
	if err := store.CreateOrder(order); err != nil {
		appErr := utils.PersistenceError("Failed to create order", err)
		utils.LogError("%v", appErr)
		utils.Error(c, appErr.Code, appErr.Message, nil)
		return
	}
	utils.LogInfo("Order created: %s, total %s", order.ID, order.Total)

	// The order exists but no payment has been attempted yet, so a missing
	// gateway configuration leaves it pending with no transaction id.
	if gateway == nil {
		appErr := utils.GatewayConfigurationError(nil)
		utils.LogError("%s, order %s left pending", appErr.Message, order.ID)
		utils.Error(c, appErr.Code, "Payment gateway not configured. Please contact support.", nil)
		return
	}

	txnid := gateway.GenerateTransactionID()
	formData := gateway.PreparePaymentForm(payu.PaymentRequest{
		TxnID:       txnid,
		Amount:      total.StringFixed(2),
		ProductInfo: fmt.Sprintf("Order #%s", order.ID[:8]),
		FirstName:   req.CustomerInfo.FirstName,
		LastName:    req.CustomerInfo.LastName,
		Email:       req.CustomerInfo.Email,
		Phone:       req.CustomerInfo.Phone,
		SuccessURL:  appCfg.BaseURL + "/api/payment/success",
		FailureURL:  appCfg.BaseURL + "/api/payment/failure",
		UDF1:        order.ID,
	})

	if _, err := store.UpdateOrderPayment(order.ID, storage.PaymentUpdate{
		PaymentStatus: models.PaymentStatusPending,
		TransactionID: txnid,
	}); err != nil {
		utils.LogError("Failed to persist transaction id for order %s: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to initiate payment", nil)
		return
	}
	utils.LogInfo("Payment handoff prepared - order: %s, txnid: %s, amount: %s",
		order.ID, txnid, total.StringFixed(2))

	c.JSON(200, gin.H{
		"paymentUrl": gateway.PaymentURL(),
		"formData":   formData,
		"orderId":    order.ID,
	})
}

// optionalUserID picks up the authenticated user when present. Checkout
// works for guests, so a missing user is not an error.
func optionalUserID(c *gin.Context) *uint {
	userVal, exists := c.Get("user")
	if !exists {
		return nil
	}
	user, ok := userVal.(models.User)
	if !ok {
		return nil
	}
	id := user.ID
	return &id
}
