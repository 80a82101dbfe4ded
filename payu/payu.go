// Package payu encapsulates the cryptographic and protocol details of the
// PayU redirect payment gateway: outbound request signing, transaction id
// generation and inbound callback hash verification.
package payu

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	testPaymentURL = "https://test.payu.in/_payment"
	livePaymentURL = "https://secure.payu.in/_payment"

	// PayU rejects transaction ids longer than 25 characters.
	maxTxnIDLength = 25
)

// Config holds the merchant credentials and environment selection. It is
// constructed once at startup and injected into the service so tests can run
// against fixed secrets.
type Config struct {
	MerchantKey  string
	MerchantSalt string
	// Env selects the gateway endpoint: "production" uses the live
	// endpoint, anything else the test one.
	Env string
}

// Service signs outbound payment requests and verifies inbound callbacks.
type Service struct {
	key  string
	salt string
	live bool
}

// NewService validates the merchant credentials and returns a ready service.
// Missing credentials are an operator error, reported distinctly so the
// checkout endpoint can surface a 500 instead of a user-facing validation
// failure.
func NewService(cfg Config) (*Service, error) {
	if cfg.MerchantKey == "" || cfg.MerchantSalt == "" {
		return nil, errors.New("payu: merchant key and salt must be configured")
	}
	return &Service{
		key:  cfg.MerchantKey,
		salt: cfg.MerchantSalt,
		live: cfg.Env == "production",
	}, nil
}

// PaymentRequest carries the fields signed into an outbound payment form.
type PaymentRequest struct {
	TxnID       string
	Amount      string // fixed two-decimal string
	ProductInfo string
	FirstName   string
	LastName    string
	Email       string
	Phone       string
	SuccessURL  string
	FailureURL  string
	// UDF1 carries the order id as the correlation token echoed back by
	// the gateway on every callback.
	UDF1 string
}

// GenerateTransactionID produces a fresh gateway transaction identifier,
// unique with overwhelming probability: millisecond timestamp plus random
// entropy, within PayU's length and charset constraints.
func (s *Service) GenerateTransactionID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to the timestamp alone rather than aborting checkout.
		return fmt.Sprintf("TXN%d", time.Now().UnixNano())
	}
	txnid := fmt.Sprintf("TXN%d%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
	if len(txnid) > maxTxnIDLength {
		txnid = txnid[:maxTxnIDLength]
	}
	return txnid
}

// PreparePaymentForm computes the request hash and returns the complete set
// of form fields to be auto-submitted to the gateway by the client's browser.
func (s *Service) PreparePaymentForm(req PaymentRequest) map[string]string {
	return map[string]string{
		"key":         s.key,
		"txnid":       req.TxnID,
		"amount":      req.Amount,
		"productinfo": req.ProductInfo,
		"firstname":   req.FirstName,
		"lastname":    req.LastName,
		"email":       req.Email,
		"phone":       req.Phone,
		"surl":        req.SuccessURL,
		"furl":        req.FailureURL,
		"udf1":        req.UDF1,
		"hash":        s.requestHash(req),
	}
}

// VerifyHash recomputes the expected response hash over the reverse of the
// request ordering and compares it with the received one. It is the sole
// trust boundary against forged payment confirmations: the boolean outcome
// is the only authority, never the bare gateway status field. Returns false
// on any mismatch or malformed input, never panics.
func (s *Service) VerifyHash(txnid, amount, productinfo, firstname, email, status, hash, udf1 string) bool {
	if txnid == "" || hash == "" {
		return false
	}
	expected := s.responseHash(txnid, amount, productinfo, firstname, email, status, udf1)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(hash)))
}

// PaymentURL returns the gateway endpoint for the configured environment.
func (s *Service) PaymentURL() string {
	if s.live {
		return livePaymentURL
	}
	return testPaymentURL
}

// requestHash implements PayU's request signing convention:
// sha512(key|txnid|amount|productinfo|firstname|email|udf1|udf2|udf3|udf4|udf5||||||salt)
func (s *Service) requestHash(req PaymentRequest) string {
	fields := []string{
		s.key,
		req.TxnID,
		req.Amount,
		req.ProductInfo,
		req.FirstName,
		req.Email,
		req.UDF1,
		"", "", "", "", // udf2-udf5
		"", "", "", "", "", // reserved
		s.salt,
	}
	return sha512Hex(strings.Join(fields, "|"))
}

// responseHash mirrors requestHash: the gateway signs callbacks over the
// reversed sequence with the status injected after the salt:
// sha512(salt|status||||||udf5|udf4|udf3|udf2|udf1|email|firstname|productinfo|amount|txnid|key)
func (s *Service) responseHash(txnid, amount, productinfo, firstname, email, status, udf1 string) string {
	fields := []string{
		s.salt,
		status,
		"", "", "", "", "", // reserved
		"", "", "", "", // udf5-udf2
		udf1,
		email,
		firstname,
		productinfo,
		amount,
		txnid,
		s.key,
	}
	return sha512Hex(strings.Join(fields, "|"))
}

func sha512Hex(in string) string {
	sum := sha512.Sum512([]byte(in))
	return hex.EncodeToString(sum[:])
}
