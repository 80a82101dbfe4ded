package payu

import (
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey  = "gtKFFx"
	testSalt = "eCwWELxi"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{MerchantKey: testKey, MerchantSalt: testSalt, Env: "test"})
	require.NoError(t, err)
	return svc
}

// gatewayResponseHash computes the response hash the way the gateway does,
// independently of the service internals, so the tests pin the wire
// convention and not just internal consistency.
func gatewayResponseHash(status, udf1, email, firstname, productinfo, amount, txnid string) string {
	raw := strings.Join([]string{
		testSalt, status,
		"", "", "", "", "",
		"", "", "", "",
		udf1, email, firstname, productinfo, amount, txnid, testKey,
	}, "|")
	sum := sha512.Sum512([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func TestNewServiceRequiresCredentials(t *testing.T) {
	_, err := NewService(Config{MerchantKey: "", MerchantSalt: testSalt})
	assert.Error(t, err)

	_, err = NewService(Config{MerchantKey: testKey, MerchantSalt: ""})
	assert.Error(t, err)

	_, err = NewService(Config{MerchantKey: testKey, MerchantSalt: testSalt})
	assert.NoError(t, err)
}

func TestGenerateTransactionID(t *testing.T) {
	svc := newTestService(t)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		txnid := svc.GenerateTransactionID()
		assert.True(t, strings.HasPrefix(txnid, "TXN"))
		assert.LessOrEqual(t, len(txnid), maxTxnIDLength)
		assert.False(t, seen[txnid], "transaction id %s repeated", txnid)
		seen[txnid] = true
	}
}

func TestPaymentURLByEnvironment(t *testing.T) {
	svc := newTestService(t)
	assert.Equal(t, "https://test.payu.in/_payment", svc.PaymentURL())

	live, err := NewService(Config{MerchantKey: testKey, MerchantSalt: testSalt, Env: "production"})
	require.NoError(t, err)
	assert.Equal(t, "https://secure.payu.in/_payment", live.PaymentURL())
}

func TestPreparePaymentFormIncludesAllFields(t *testing.T) {
	svc := newTestService(t)

	form := svc.PreparePaymentForm(PaymentRequest{
		TxnID:       "TXN123",
		Amount:      "200.00",
		ProductInfo: "Order #deadbeef",
		FirstName:   "John",
		LastName:    "Doe",
		Email:       "john@example.com",
		Phone:       "+14155550123",
		SuccessURL:  "https://shop.example.com/api/payment/success",
		FailureURL:  "https://shop.example.com/api/payment/failure",
		UDF1:        "order-1",
	})

	assert.Equal(t, testKey, form["key"])
	assert.Equal(t, "TXN123", form["txnid"])
	assert.Equal(t, "200.00", form["amount"])
	assert.Equal(t, "order-1", form["udf1"])
	assert.Equal(t, "https://shop.example.com/api/payment/success", form["surl"])
	assert.Equal(t, "https://shop.example.com/api/payment/failure", form["furl"])
	assert.Len(t, form["hash"], 128)
}

func TestVerifyHashRoundTrip(t *testing.T) {
	svc := newTestService(t)

	hash := gatewayResponseHash("success", "order-1", "john@example.com", "John", "Order #deadbeef", "200.00", "TXN123")
	ok := svc.VerifyHash("TXN123", "200.00", "Order #deadbeef", "John", "john@example.com", "success", hash, "order-1")
	assert.True(t, ok)

	// Pure: identical inputs always yield identical results.
	again := svc.VerifyHash("TXN123", "200.00", "Order #deadbeef", "John", "john@example.com", "success", hash, "order-1")
	assert.Equal(t, ok, again)
}

func TestVerifyHashAcceptsUppercaseDigest(t *testing.T) {
	svc := newTestService(t)

	hash := gatewayResponseHash("success", "order-1", "john@example.com", "John", "Order #deadbeef", "200.00", "TXN123")
	ok := svc.VerifyHash("TXN123", "200.00", "Order #deadbeef", "John", "john@example.com", "success", strings.ToUpper(hash), "order-1")
	assert.True(t, ok)
}

func TestVerifyHashRejectsMutatedFields(t *testing.T) {
	svc := newTestService(t)
	hash := gatewayResponseHash("success", "order-1", "john@example.com", "John", "Order #deadbeef", "200.00", "TXN123")

	cases := []struct {
		name                                                  string
		txnid, amount, productinfo, firstname, email, status  string
		udf1                                                  string
	}{
		{"txnid", "TXN124", "200.00", "Order #deadbeef", "John", "john@example.com", "success", "order-1"},
		{"amount", "TXN123", "200.01", "Order #deadbeef", "John", "john@example.com", "success", "order-1"},
		{"productinfo", "TXN123", "200.00", "Order #deadbeee", "John", "john@example.com", "success", "order-1"},
		{"firstname", "TXN123", "200.00", "Order #deadbeef", "Johm", "john@example.com", "success", "order-1"},
		{"email", "TXN123", "200.00", "Order #deadbeef", "John", "john@example.con", "success", "order-1"},
		{"status", "TXN123", "200.00", "Order #deadbeef", "John", "john@example.com", "failure", "order-1"},
		{"udf1", "TXN123", "200.00", "Order #deadbeef", "John", "john@example.com", "success", "order-2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok := svc.VerifyHash(tc.txnid, tc.amount, tc.productinfo, tc.firstname, tc.email, tc.status, hash, tc.udf1)
			assert.False(t, ok)
		})
	}
}

func TestVerifyHashMalformedInput(t *testing.T) {
	svc := newTestService(t)

	assert.False(t, svc.VerifyHash("", "", "", "", "", "", "", ""))
	assert.False(t, svc.VerifyHash("TXN123", "200.00", "x", "y", "z", "success", "", "order-1"))
	assert.False(t, svc.VerifyHash("TXN123", "200.00", "x", "y", "z", "success", "not-a-hex-digest", "order-1"))
}
