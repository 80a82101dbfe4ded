package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/atlanticweizard/storefront/models"

	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func emailConfigFromEnv() EmailConfig {
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}
	return EmailConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}

// SendPaymentSuccessEmail sends the order confirmation after a verified
// successful payment. Callers dispatch it asynchronously; a send failure is
// logged and never affects the gateway-facing response.
func SendPaymentSuccessEmail(order *models.Order) error {
	config := emailConfigFromEnv()
	if config.Host == "" {
		return fmt.Errorf("smtp not configured, skipping confirmation for order %s", order.ID)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.From)
	m.SetHeader("To", order.CustomerInfo.Email)
	m.SetHeader("Subject", fmt.Sprintf("Your Atlantic Weizard order %s is confirmed", shortID(order.ID)))
	m.SetBody("text/html", paymentSuccessBody(order))

	d := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %v", err)
	}

	return nil
}

func paymentSuccessBody(order *models.Order) string {
	var items strings.Builder
	for _, item := range order.Items {
		items.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			item.Product.Name, item.Quantity, item.Product.Price,
		))
	}

	return fmt.Sprintf(`
		<h2>Thank you for your order, %s!</h2>
		<p>Your payment was received successfully.</p>
		<p>Order reference: <strong>%s</strong><br>Transaction: %s</p>
		<table border="1" cellpadding="6" cellspacing="0">
			<tr><th>Item</th><th>Qty</th><th>Price</th></tr>
			%s
		</table>
		<p><strong>Total: %s</strong></p>
		<p>We will ship to:<br>%s %s<br>%s<br>%s, %s<br>%s</p>
	`,
		order.CustomerInfo.FirstName,
		shortID(order.ID),
		order.TransactionID,
		items.String(),
		order.Total,
		order.CustomerInfo.FirstName, order.CustomerInfo.LastName,
		order.CustomerInfo.Address,
		order.CustomerInfo.City, order.CustomerInfo.ZipCode,
		order.CustomerInfo.Country,
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
