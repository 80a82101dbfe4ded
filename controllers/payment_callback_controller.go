package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/atlanticweizard/storefront/models"
	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PayUCallback is the typed view of the form-encoded payload the gateway
// posts back through the customer's browser. Parsed at the boundary before
// any business logic runs.
type PayUCallback struct {
	TxnID       string `form:"txnid"`
	Amount      string `form:"amount"`
	ProductInfo string `form:"productinfo"`
	FirstName   string `form:"firstname"`
	Email       string `form:"email"`
	Status      string `form:"status"`
	Hash        string `form:"hash"`
	MihPayID    string `form:"mihpayid"`
	Mode        string `form:"mode"`
	OrderID     string `form:"udf1"`
}

const payuStatusSuccess = "success"

// POST /api/payment/success
//
// The gateway reaches this endpoint via the customer's browser, so every
// outcome is a redirect to a client result page, never JSON. The hash
// verification outcome - not the posted status field - is the sole authority
// for marking an order paid.
func PaymentSuccessCallback(c *gin.Context) {
	utils.LogInfo("PaymentSuccessCallback called")

	var cb PayUCallback
	if err := c.ShouldBind(&cb); err != nil {
		utils.LogError("Malformed payment callback: %v", err)
		redirectFailure(c, "", "", "invalid_callback")
		return
	}

	if cb.OrderID == "" || cb.TxnID == "" || cb.Hash == "" {
		utils.LogError("Missing required fields in payment callback - orderId: %q, txnid: %q", cb.OrderID, cb.TxnID)
		redirectFailure(c, "", "", "invalid_callback")
		return
	}

	order, err := store.GetOrderByID(cb.OrderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.LogError("Callback for unknown order: %s, txnid: %s", cb.OrderID, cb.TxnID)
			redirectFailure(c, "", "", "order_not_found")
			return
		}
		utils.LogError("Failed to load order %s: %v", cb.OrderID, err)
		redirectFailure(c, "", "", "processing_error")
		return
	}

	if gateway == nil {
		utils.LogError("Payment gateway not configured while handling callback for order %s", order.ID)
		redirectFailure(c, "", "", "processing_error")
		return
	}

	if !gateway.VerifyHash(cb.TxnID, cb.Amount, cb.ProductInfo, cb.FirstName, cb.Email, cb.Status, cb.Hash, cb.OrderID) {
		// A bad hash is a potential forgery attempt, not a transient error.
		utils.LogError("Hash verification failed - order: %s, txnid: %s", order.ID, cb.TxnID)
		finalizeFailed(c, order, cb, "hash_verification_failed")
		redirectFailure(c, order.ID, "", "invalid_hash")
		return
	}

	if !amountMatchesTotal(cb.Amount, order.Total) {
		// A valid hash over a replayed field set from a different
		// transaction still fails here.
		utils.LogError("Amount mismatch - order: %s, txnid: %s, expected: %s, received: %s",
			order.ID, cb.TxnID, order.Total, cb.Amount)
		finalizeFailed(c, order, cb, "amount_mismatch")
		redirectFailure(c, order.ID, "", "amount_mismatch")
		return
	}

	if cb.Status == payuStatusSuccess {
		updated, applied, err := store.FinalizeOrderPayment(order.ID, storage.PaymentUpdate{
			PaymentStatus: models.PaymentStatusSuccess,
			TransactionID: cb.TxnID,
			PayuResponse:  callbackPayload(c, ""),
			PaymentMethod: cb.Mode,
		})
		if err != nil {
			utils.LogError("Failed to finalize order %s: %v", order.ID, err)
			redirectFailure(c, "", "", "processing_error")
			return
		}
		if !applied {
			utils.LogError("Ignoring success callback for already-finalized order %s (status %s, txnid %s)",
				order.ID, updated.PaymentStatus, cb.TxnID)
			redirectTerminal(c, updated, cb.TxnID)
			return
		}

		utils.LogInfo("Payment verified - order: %s, txnid: %s, method: %s", order.ID, cb.TxnID, cb.Mode)
		dispatchNotification(updated)

		c.Redirect(http.StatusFound, fmt.Sprintf("/payment-success?orderId=%s&txnid=%s",
			url.QueryEscape(order.ID), url.QueryEscape(cb.TxnID)))
		return
	}

	utils.LogInfo("Gateway reported non-success status %q - order: %s, txnid: %s", cb.Status, order.ID, cb.TxnID)
	finalizeFailed(c, order, cb, "")
	redirectFailureWithTxn(c, order.ID, cb.TxnID)
}

// POST /api/payment/failure
//
// The failure leg runs the same verification for diagnostics, then always
// resolves the order to failed.
func PaymentFailureCallback(c *gin.Context) {
	utils.LogInfo("PaymentFailureCallback called")

	var cb PayUCallback
	if err := c.ShouldBind(&cb); err != nil {
		utils.LogError("Malformed failure callback: %v", err)
		redirectFailure(c, "", "", "invalid_callback")
		return
	}

	if cb.OrderID == "" || cb.TxnID == "" {
		utils.LogError("Missing required fields in failure callback - orderId: %q, txnid: %q", cb.OrderID, cb.TxnID)
		redirectFailure(c, "", "", "invalid_callback")
		return
	}

	order, err := store.GetOrderByID(cb.OrderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.LogError("Failure callback for unknown order: %s, txnid: %s", cb.OrderID, cb.TxnID)
			redirectFailure(c, "", "", "order_not_found")
			return
		}
		utils.LogError("Failed to load order %s: %v", cb.OrderID, err)
		redirectFailure(c, "", "", "processing_error")
		return
	}

	if gateway != nil && !gateway.VerifyHash(cb.TxnID, cb.Amount, cb.ProductInfo, cb.FirstName, cb.Email, cb.Status, cb.Hash, cb.OrderID) {
		utils.LogError("Hash verification failed on failure callback - order: %s, txnid: %s", order.ID, cb.TxnID)
	}
	if !amountMatchesTotal(cb.Amount, order.Total) {
		utils.LogError("Amount mismatch on failure callback - order: %s, txnid: %s, expected: %s, received: %s",
			order.ID, cb.TxnID, order.Total, cb.Amount)
	}

	finalizeFailed(c, order, cb, "")
	redirectFailureWithTxn(c, order.ID, cb.TxnID)
}

// finalizeFailed applies the guarded pending->failed transition, logging a
// discrepancy when the order had already reached a terminal state.
func finalizeFailed(c *gin.Context, order *models.Order, cb PayUCallback, reason string) {
	updated, applied, err := store.FinalizeOrderPayment(order.ID, storage.PaymentUpdate{
		PaymentStatus: models.PaymentStatusFailed,
		TransactionID: cb.TxnID,
		PayuResponse:  callbackPayload(c, reason),
		PaymentMethod: cb.Mode,
	})
	if err != nil {
		utils.LogError("Failed to mark order %s failed: %v", order.ID, err)
		return
	}
	if !applied {
		utils.LogError("Ignoring failure callback for already-finalized order %s (status %s, txnid %s)",
			order.ID, updated.PaymentStatus, cb.TxnID)
	}
}

// amountMatchesTotal compares the callback amount against the stored total,
// both normalized to two decimals.
func amountMatchesTotal(amount, total string) bool {
	got, err := decimal.NewFromString(amount)
	if err != nil {
		return false
	}
	want, err := decimal.NewFromString(total)
	if err != nil {
		return false
	}
	return got.StringFixed(2) == want.StringFixed(2)
}

// callbackPayload captures the raw form fields for audit, with the rejection
// reason tagged under "error" when verification failed.
func callbackPayload(c *gin.Context, reason string) models.JSONMap {
	payload := models.JSONMap{}
	if c.Request.PostForm == nil {
		_ = c.Request.ParseForm()
	}
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			payload[key] = values[0]
		}
	}
	if reason != "" {
		payload["error"] = reason
	}
	return payload
}

func dispatchNotification(order *models.Order) {
	o := *order
	go func() {
		if err := notify(&o); err != nil {
			utils.LogError("Failed to send payment confirmation for order %s: %v", o.ID, err)
		}
	}()
}

func redirectFailure(c *gin.Context, orderID, txnid, reason string) {
	q := url.Values{}
	if orderID != "" {
		q.Set("orderId", orderID)
	}
	if txnid != "" {
		q.Set("txnid", txnid)
	}
	if reason != "" {
		q.Set("error", reason)
	}
	c.Redirect(http.StatusFound, "/payment-failure?"+q.Encode())
}

func redirectFailureWithTxn(c *gin.Context, orderID, txnid string) {
	c.Redirect(http.StatusFound, fmt.Sprintf("/payment-failure?orderId=%s&txnid=%s",
		url.QueryEscape(orderID), url.QueryEscape(txnid)))
}

// redirectTerminal routes a redundant callback to the page matching the
// order's recorded outcome instead of the callback's claim.
func redirectTerminal(c *gin.Context, order *models.Order, txnid string) {
	if order.PaymentStatus == models.PaymentStatusSuccess {
		c.Redirect(http.StatusFound, fmt.Sprintf("/payment-success?orderId=%s&txnid=%s",
			url.QueryEscape(order.ID), url.QueryEscape(txnid)))
		return
	}
	redirectFailureWithTxn(c, order.ID, txnid)
}
