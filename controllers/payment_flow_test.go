package controllers_test

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/atlanticweizard/storefront/config"
	"github.com/atlanticweizard/storefront/controllers"
	"github.com/atlanticweizard/storefront/middleware"
	"github.com/atlanticweizard/storefront/models"
	"github.com/atlanticweizard/storefront/payu"
	"github.com/atlanticweizard/storefront/routes"
	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

const (
	testMerchantKey  = "gtKFFx"
	testMerchantSalt = "eCwWELxi"
)

type testEnv struct {
	router   *gin.Engine
	store    *storage.MemoryStorage
	notified chan *models.Order
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-jwt-secret")

	store := storage.NewMemoryStorage()
	gateway, err := payu.NewService(payu.Config{
		MerchantKey:  testMerchantKey,
		MerchantSalt: testMerchantSalt,
		Env:          "test",
	})
	require.NoError(t, err)

	cfg := &config.Config{Port: "8080", BaseURL: "http://localhost:8080"}
	notified := make(chan *models.Order, 4)
	controllers.Init(store, gateway, cfg, func(order *models.Order) error {
		notified <- order
		return nil
	})
	middleware.Init(store)

	return &testEnv{router: routes.SetupRouter(), store: store, notified: notified}
}

func (env *testEnv) seedProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        name,
		Description: "test product",
		Price:       price,
		Category:    "Test",
		Image:       "/assets/test.png",
		Stock:       stock,
	}
	require.NoError(t, env.store.CreateProduct(product))
	return product
}

func validCustomerInfo() models.CustomerInfo {
	return models.CustomerInfo{
		FirstName: "John",
		LastName:  "Doe",
		Email:     "john@example.com",
		Phone:     "+14155550123",
		Address:   "1 Harbor Street",
		City:      "Lisbon",
		ZipCode:   "1100-001",
		Country:   "Portugal",
	}
}

func (env *testEnv) postJSON(t *testing.T, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// initiate runs a checkout for the given lines and returns the created order.
func (env *testEnv) initiate(t *testing.T, items []map[string]interface{}) *models.Order {
	t.Helper()
	w := env.postJSON(t, "/api/payment/initiate", map[string]interface{}{
		"customerInfo": validCustomerInfo(),
		"items":        items,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		PaymentURL string            `json:"paymentUrl"`
		FormData   map[string]string `json:"formData"`
		OrderID    string            `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.OrderID)

	order, err := env.store.GetOrderByID(resp.OrderID)
	require.NoError(t, err)
	return order
}

// gatewayHash signs a callback the way PayU does, mirroring the merchant's
// request hash in reverse field order.
func gatewayHash(status, udf1, email, firstname, productinfo, amount, txnid string) string {
	raw := strings.Join([]string{
		testMerchantSalt, status,
		"", "", "", "", "",
		"", "", "", "",
		udf1, email, firstname, productinfo, amount, txnid, testMerchantKey,
	}, "|")
	sum := sha512.Sum512([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func callbackForm(order *models.Order, status, amount string) url.Values {
	productinfo := "Order #" + order.ID[:8]
	form := url.Values{}
	form.Set("txnid", order.TransactionID)
	form.Set("amount", amount)
	form.Set("productinfo", productinfo)
	form.Set("firstname", "John")
	form.Set("email", "john@example.com")
	form.Set("status", status)
	form.Set("mihpayid", "403993715531908682")
	form.Set("mode", "CC")
	form.Set("udf1", order.ID)
	form.Set("hash", gatewayHash(status, order.ID, "john@example.com", "John", productinfo, amount, order.TransactionID))
	return form
}

func TestInitiatePaymentComputesAuthoritativeTotal(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "Product A", "100.00", 5)

	w := env.postJSON(t, "/api/payment/initiate", map[string]interface{}{
		"customerInfo": validCustomerInfo(),
		"items": []map[string]interface{}{
			{"productId": product.ID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		PaymentURL string            `json:"paymentUrl"`
		FormData   map[string]string `json:"formData"`
		OrderID    string            `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "https://test.payu.in/_payment", resp.PaymentURL)
	assert.Equal(t, "200.00", resp.FormData["amount"])
	assert.Equal(t, resp.OrderID, resp.FormData["udf1"])
	assert.NotEmpty(t, resp.FormData["hash"])
	assert.Equal(t, "http://localhost:8080/api/payment/success", resp.FormData["surl"])

	order, err := env.store.GetOrderByID(resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "200.00", order.Total)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, resp.FormData["txnid"], order.TransactionID)
	require.Len(t, order.Items, 1)
	assert.Equal(t, product.Name, order.Items[0].Product.Name)
	assert.Equal(t, 2, order.Items[0].Quantity)
}

func TestInitiatePaymentMixedCart(t *testing.T) {
	env := setupTestEnv(t)
	a := env.seedProduct(t, "Product A", "100.00", 5)
	b := env.seedProduct(t, "Product B", "49.50", 10)

	order := env.initiate(t, []map[string]interface{}{
		{"productId": a.ID, "quantity": 1},
		{"productId": b.ID, "quantity": 3},
	})
	assert.Equal(t, "248.50", order.Total)
}

func TestInitiatePaymentUnknownProduct(t *testing.T) {
	env := setupTestEnv(t)

	w := env.postJSON(t, "/api/payment/initiate", map[string]interface{}{
		"customerInfo": validCustomerInfo(),
		"items": []map[string]interface{}{
			{"productId": "missing-product", "quantity": 1},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	orders, err := env.store.GetAllOrders()
	require.NoError(t, err)
	assert.Empty(t, orders, "no order may be created for an invalid cart")
}

func TestInitiatePaymentInvalidQuantity(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "Product A", "100.00", 5)

	for _, quantity := range []int{-1, 6} {
		w := env.postJSON(t, "/api/payment/initiate", map[string]interface{}{
			"customerInfo": validCustomerInfo(),
			"items": []map[string]interface{}{
				{"productId": product.ID, "quantity": quantity},
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "quantity %d must be rejected", quantity)
	}

	orders, err := env.store.GetAllOrders()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestInitiatePaymentValidation(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "Product A", "100.00", 5)

	t.Run("empty cart", func(t *testing.T) {
		w := env.postJSON(t, "/api/payment/initiate", map[string]interface{}{
			"customerInfo": validCustomerInfo(),
			"items":        []map[string]interface{}{},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid email", func(t *testing.T) {
		info := validCustomerInfo()
		info.Email = "not-an-email"
		w := env.postJSON(t, "/api/payment/initiate", map[string]interface{}{
			"customerInfo": info,
			"items": []map[string]interface{}{
				{"productId": product.ID, "quantity": 1},
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing address", func(t *testing.T) {
		info := validCustomerInfo()
		info.Address = ""
		w := env.postJSON(t, "/api/payment/initiate", map[string]interface{}{
			"customerInfo": info,
			"items": []map[string]interface{}{
				{"productId": product.ID, "quantity": 1},
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSuccessCallbackMarksOrderPaid(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "Product A", "100.00", 5)
	order := env.initiate(t, []map[string]interface{}{
		{"productId": product.ID, "quantity": 2},
	})

	w := env.postForm(t, "/api/payment/success", callbackForm(order, "success", "200.00"))
	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/payment-success?"), location)
	assert.Contains(t, location, "orderId="+order.ID)
	assert.Contains(t, location, "txnid="+order.TransactionID)

	updated, err := env.store.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, updated.PaymentStatus)
	assert.Equal(t, "CC", updated.PaymentMethod)
	require.NotNil(t, updated.PayuResponse)
	assert.Equal(t, "403993715531908682", updated.PayuResponse["mihpayid"])

	select {
	case notifiedOrder := <-env.notified:
		assert.Equal(t, order.ID, notifiedOrder.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("confirmation notification was not dispatched")
	}
}

func TestSuccessCallbackAmountMismatch(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "Product A", "100.00", 5)
	order := env.initiate(t, []map[string]interface{}{
		{"productId": product.ID, "quantity": 2},
	})

	// The signature is valid for 199.00, but the order total is 200.00: a
	// replayed signature from a cheaper transaction must not settle this one.
	w := env.postForm(t, "/api/payment/success", callbackForm(order, "success", "199.00"))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=amount_mismatch")

	updated, err := env.store.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, updated.PaymentStatus)
	assert.Equal(t, "amount_mismatch", updated.PayuResponse["error"])
}

func TestSuccessCallbackInvalidHash(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "Product A", "100.00", 5)
	order := env.initiate(t, []map[string]interface{}{
		{"productId": product.ID, "quantity": 2},
	})

	form := callbackForm(order, "success", "200.00")
	form.Set("hash", strings.Repeat("ab", 64))

	w := env.postForm(t, "/api/payment/success", form)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=invalid_hash")

	updated, err := env.store.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, updated.PaymentStatus)
	assert.Equal(t, "hash_verification_failed", updated.PayuResponse["error"])
}

func TestSuccessCallbackStatusNotSuccess(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "Product A", "100.00", 5)
	order := env.initiate(t, []map[string]interface{}{
		{"productId": product.ID, "quantity": 2},
	})

	// Valid signature, matching amount, but the gateway reports failure:
	// the status field alone never yields success.
	w := env.postForm(t, "/api/payment/success", callbackForm(order, "failure", "200.00"))
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/payment-failure?"))

	updated, err := env.store.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, updated.PaymentStatus)
}

func TestSuccessCallbackUnknownOrder(t *testing.T) {
	env := setupTestEnv(t)

	form := url.Values{}
	form.Set("txnid", "TXN123")
	form.Set("amount", "200.00")
	form.Set("status", "success")
	form.Set("hash", strings.Repeat("ab", 64))
	form.Set("udf1", "11111111-2222-3333-4444-555555555555")

	w := env.postForm(t, "/api/payment/success", form)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=order_not_found")

	orders, err := env.store.GetAllOrders()
	require.NoError(t, err)
	assert.Empty(t, orders, "callbacks must never create orders")
}

func TestSuccessCallbackMissingFields(t *testing.T) {
	env := setupTestEnv(t)

	form := url.Values{}
	form.Set("amount", "200.00")
	form.Set("status", "success")

	w := env.postForm(t, "/api/payment/success", form)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "error=invalid_callback")
}

func TestTerminalStateIsNeverOverwritten(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "Product A", "100.00", 5)
	order := env.initiate(t, []map[string]interface{}{
		{"productId": product.ID, "quantity": 2},
	})

	w := env.postForm(t, "/api/payment/success", callbackForm(order, "success", "200.00"))
	require.Equal(t, http.StatusFound, w.Code)

	// A delayed failure callback after settlement must not revert the order.
	w = env.postForm(t, "/api/payment/failure", callbackForm(order, "failure", "200.00"))
	require.Equal(t, http.StatusFound, w.Code)

	updated, err := env.store.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, updated.PaymentStatus)

	// A replayed success callback is a no-op that still lands the customer
	// on the success page.
	w = env.postForm(t, "/api/payment/success", callbackForm(order, "success", "200.00"))
	require.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/payment-success?"))

	final, err := env.store.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSuccess, final.PaymentStatus)
}

func TestFailureCallbackMarksOrderFailed(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "Product A", "100.00", 5)
	order := env.initiate(t, []map[string]interface{}{
		{"productId": product.ID, "quantity": 2},
	})

	w := env.postForm(t, "/api/payment/failure", callbackForm(order, "failure", "200.00"))
	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "/payment-failure?"), location)
	assert.Contains(t, location, "orderId="+order.ID)

	updated, err := env.store.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, updated.PaymentStatus)
}

func TestAuthenticatedCheckoutAttachesUser(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "Product A", "100.00", 5)

	w := env.postJSON(t, "/api/register", map[string]string{
		"username": "john",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reg struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.NotEmpty(t, reg.Data.Token)

	payload, err := json.Marshal(map[string]interface{}{
		"customerInfo": validCustomerInfo(),
		"items": []map[string]interface{}{
			{"productId": product.ID, "quantity": 1},
		},
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/payment/initiate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+reg.Data.Token)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		OrderID string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	order, err := env.store.GetOrderByID(resp.OrderID)
	require.NoError(t, err)
	require.NotNil(t, order.UserID, "checkout with a valid token must link the order to the user")

	historyReq := httptest.NewRequest(http.MethodGet, "/api/orders/my", nil)
	historyReq.Header.Set("Authorization", "Bearer "+reg.Data.Token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, historyReq)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var history []models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
}

func TestGuestCheckoutLeavesOrderUnlinked(t *testing.T) {
	env := setupTestEnv(t)
	product := env.seedProduct(t, "Product A", "100.00", 5)

	order := env.initiate(t, []map[string]interface{}{
		{"productId": product.ID, "quantity": 1},
	})
	assert.Nil(t, order.UserID)

	// A garbage token must not block checkout either; it just stays a
	// guest order.
	payload, err := json.Marshal(map[string]interface{}{
		"customerInfo": validCustomerInfo(),
		"items": []map[string]interface{}{
			{"productId": product.ID, "quantity": 1},
		},
	})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/payment/initiate", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		OrderID string `json:"orderId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	linked, err := env.store.GetOrderByID(resp.OrderID)
	require.NoError(t, err)
	assert.Nil(t, linked.UserID)
}

func TestOrdersExportMonthWindow(t *testing.T) {
	env := setupTestEnv(t)

	token, err := utils.GenerateAdminToken("admin-1")
	require.NoError(t, err)

	// Paid order in the early hours of the oldest day the month window may
	// cover; the window starts at local midnight, not a UTC boundary.
	d := time.Now().AddDate(0, 0, -30)
	inWindow := &models.Order{
		CustomerInfo:  validCustomerInfo(),
		Items:         models.OrderItems{},
		Total:         "100.00",
		PaymentStatus: models.PaymentStatusSuccess,
		CreatedAt:     time.Date(d.Year(), d.Month(), d.Day(), 0, 30, 0, 0, d.Location()),
	}
	require.NoError(t, env.store.CreateOrder(inWindow))
	outOfWindow := &models.Order{
		CustomerInfo: validCustomerInfo(),
		Items:        models.OrderItems{},
		Total:        "50.00",
		CreatedAt:    time.Now().AddDate(0, 0, -31),
	}
	require.NoError(t, env.store.CreateOrder(outOfWindow))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/reports/orders?period=month", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	sheet, ok := file.Sheet["Orders"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 2, "header plus the single in-window order")
	assert.Equal(t, inWindow.ID, sheet.Rows[1].Cells[0].Value)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := setupTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminLoginAndOrderListing(t *testing.T) {
	env := setupTestEnv(t)

	hash, err := utils.HashPassword("sup3rsecret")
	require.NoError(t, err)
	require.NoError(t, env.store.CreateAdmin(&models.Admin{
		Email:    "admin@atlanticweizard.com",
		Password: hash,
	}))

	w := env.postJSON(t, "/api/admin/login", map[string]string{
		"email":    "admin@atlanticweizard.com",
		"password": "sup3rsecret",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Data.Token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	w = env.postJSON(t, "/api/admin/login", map[string]string{
		"email":    "admin@atlanticweizard.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
