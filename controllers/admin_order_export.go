package controllers

import (
	"bytes"
	"strconv"
	"time"

	"github.com/atlanticweizard/storefront/models"
	"github.com/atlanticweizard/storefront/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// GET /api/admin/reports/orders?period=day|week|month (admin)
//
// Exports the orders of a period as an Excel workbook for manual payment
// reconciliation against the gateway's settlement report.
func DownloadOrdersExport(c *gin.Context) {
	utils.LogInfo("DownloadOrdersExport called")

	period := c.DefaultQuery("period", "day")
	utils.LogDebug("Generating order export for period: %s", period)

	now := time.Now()
	var startDate, endDate time.Time

	switch period {
	case "day":
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
	case "week":
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		startDate = endDate.AddDate(0, 0, -6)
		startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	case "month":
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		startDate = endDate.AddDate(0, 0, -30)
		startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	default:
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	orders, err := store.GetOrdersBetween(startDate, endDate)
	if err != nil {
		utils.LogError("Failed to fetch orders for export: %v", err)
		utils.InternalServerError(c, "Failed to fetch orders", nil)
		return
	}
	utils.LogDebug("Retrieved %d orders for export", len(orders))

	var summary struct {
		Total     int
		Succeeded int
		Failed    int
		Pending   int
		Revenue   decimal.Decimal
	}
	for _, order := range orders {
		summary.Total++
		switch order.PaymentStatus {
		case models.PaymentStatusSuccess:
			summary.Succeeded++
			if total, err := decimal.NewFromString(order.Total); err == nil {
				summary.Revenue = summary.Revenue.Add(total)
			}
		case models.PaymentStatusFailed:
			summary.Failed++
		default:
			summary.Pending++
		}
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		utils.LogError("Failed to create export sheet: %v", err)
		utils.InternalServerError(c, "Failed to generate export", nil)
		return
	}

	header := sheet.AddRow()
	for _, title := range []string{"Order ID", "Created", "Customer", "Email", "Total", "Payment Status", "Transaction ID", "Payment Method"} {
		header.AddCell().SetString(title)
	}

	for _, order := range orders {
		row := sheet.AddRow()
		row.AddCell().SetString(order.ID)
		row.AddCell().SetString(order.CreatedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(order.CustomerInfo.FirstName + " " + order.CustomerInfo.LastName)
		row.AddCell().SetString(order.CustomerInfo.Email)
		row.AddCell().SetString(order.Total)
		row.AddCell().SetString(order.PaymentStatus)
		row.AddCell().SetString(order.TransactionID)
		row.AddCell().SetString(order.PaymentMethod)
	}

	summarySheet, err := file.AddSheet("Summary")
	if err != nil {
		utils.LogError("Failed to create summary sheet: %v", err)
		utils.InternalServerError(c, "Failed to generate export", nil)
		return
	}
	addSummaryRow(summarySheet, "Period", period)
	addSummaryRow(summarySheet, "From", startDate.Format("2006-01-02"))
	addSummaryRow(summarySheet, "To", endDate.Format("2006-01-02"))
	addSummaryRow(summarySheet, "Total Orders", strconv.Itoa(summary.Total))
	addSummaryRow(summarySheet, "Succeeded", strconv.Itoa(summary.Succeeded))
	addSummaryRow(summarySheet, "Failed", strconv.Itoa(summary.Failed))
	addSummaryRow(summarySheet, "Pending", strconv.Itoa(summary.Pending))
	addSummaryRow(summarySheet, "Revenue", summary.Revenue.StringFixed(2))

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		utils.LogError("Failed to render order export: %v", err)
		utils.InternalServerError(c, "Failed to generate export", nil)
		return
	}

	utils.LogInfo("Order export generated - period: %s, orders: %d", period, summary.Total)
	c.Header("Content-Disposition", "attachment; filename=orders-"+period+".xlsx")
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func addSummaryRow(sheet *xlsx.Sheet, label, value string) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetString(value)
}
