package controllers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/atlanticweizard/storefront/models"
	"github.com/atlanticweizard/storefront/storage"
	"github.com/atlanticweizard/storefront/utils"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// GET /api/admin/orders/:id/invoice (admin)
//
// Generates a PDF invoice for a successfully paid order.
func DownloadInvoice(c *gin.Context) {
	utils.LogInfo("DownloadInvoice called for order: %s", c.Param("id"))

	order, err := store.GetOrderByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			utils.NotFound(c, "Order not found")
			return
		}
		utils.LogError("Failed to load order %s for invoice: %v", c.Param("id"), err)
		utils.InternalServerError(c, "Failed to fetch order", nil)
		return
	}

	if order.PaymentStatus != models.PaymentStatusSuccess {
		utils.LogError("Invoice requested for unpaid order %s (status %s)", order.ID, order.PaymentStatus)
		utils.BadRequest(c, "Invoice is only available for paid orders", nil)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Store info
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "Atlantic Weizard")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Fine menswear and accessories")
	pdf.Ln(8)
	pdf.Cell(100, 8, "Email: support@atlanticweizard.com")
	pdf.Ln(12)

	// Invoice title and order info
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "INVOICE")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(95, 8, "Order ID: "+order.ID)
	pdf.Ln(6)
	pdf.Cell(95, 8, "Order Date: "+order.CreatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(6)
	pdf.Cell(95, 8, "Transaction: "+order.TransactionID)
	pdf.Cell(60, 8, "Payment Method: "+order.PaymentMethod)
	pdf.Ln(10)

	// Customer info
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, order.CustomerInfo.FirstName+" "+order.CustomerInfo.LastName)
	pdf.Ln(6)
	pdf.Cell(100, 8, order.CustomerInfo.Email)
	pdf.Ln(6)
	pdf.Cell(100, 8, "Phone: "+order.CustomerInfo.Phone)
	pdf.Ln(6)
	pdf.Cell(100, 8, order.CustomerInfo.Address)
	pdf.Ln(6)
	pdf.Cell(100, 8, order.CustomerInfo.City+", "+order.CustomerInfo.ZipCode+", "+order.CustomerInfo.Country)
	pdf.Ln(10)

	// Items table
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(90, 8, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Line Total", "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	for _, item := range order.Items {
		lineTotal := ""
		if price, err := decimal.NewFromString(item.Product.Price); err == nil {
			lineTotal = price.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2)
		}
		pdf.CellFormat(90, 8, item.Product.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, item.Product.Price, "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, lineTotal, "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(145, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, order.Total, "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to render invoice for order %s: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to generate invoice", nil)
		return
	}

	utils.LogInfo("Invoice generated for order %s", order.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", order.ID[:8]))
	c.Data(200, "application/pdf", buf.Bytes())
}
