package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
)

const exportDateLayout = "01/02/2006"

// AccountingReportFilename names the accounting export for a given day.
func AccountingReportFilename(now time.Time) string {
	return fmt.Sprintf("Accounting_Report_%s.csv", now.Format("2006-01-02"))
}

// PaymentTrackerFilename names the payment tracker export for a given day.
func PaymentTrackerFilename(now time.Time) string {
	return fmt.Sprintf("Payment_Tracker_%s.csv", now.Format("2006-01-02"))
}

// StockActivityFilename names the stock activity export for a given month.
func StockActivityFilename(year int, month time.Month) string {
	return fmt.Sprintf("Stock_Activity_%04d-%02d.csv", year, int(month))
}

// WriteAccountingCSV renders the merged transaction history. Quoting follows
// RFC 4180 rather than the ad-hoc comma stripping of older exports.
func WriteAccountingCSV(w io.Writer, rows []TransactionRow) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Date", "Type", "Description", "Amount", "Balance", "Notes"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Date.Format(exportDateLayout),
			row.Type,
			row.Description,
			row.Amount.StringFixed(2),
			row.Balance.StringFixed(2),
			row.Notes,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePaymentTrackerCSV renders one row per payment joined with its lease.
// Payments whose lease is gone still export, with placeholder fields.
func WritePaymentTrackerCSV(w io.Writer, payments []models.Payment, bookings []models.Booking) error {
	byID := make(map[uuid.UUID]models.Booking, len(bookings))
	for _, booking := range bookings {
		byID[booking.ID] = booking
	}

	writer := csv.NewWriter(w)
	header := []string{"Tenant", "Room", "Payment Date", "Amount Paid", "Balance", "Payment Method", "Receipt Number", "Notes"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, payment := range payments {
		tenant, room, balance := "N/A", "N/A", "0.00"
		if booking, ok := byID[payment.BookingID]; ok {
			tenant = booking.Tenant
			room = booking.RoomName
			balance = booking.Balance.StringFixed(2)
		}
		record := []string{
			tenant,
			room,
			payment.CreatedAt.Format(exportDateLayout),
			payment.Amount.StringFixed(2),
			balance,
			payment.Method.String(),
			payment.ReceiptNumber,
			stringOrEmpty(payment.Notes),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// StockActivity is the assembled monthly stock report before rendering.
type StockActivity struct {
	Year      int
	Month     time.Month
	Movements []models.StockTransaction
	Summary   []ProductSummary
	Items     []models.InventoryItem
	TotalIn   int
	TotalOut  int
	Value     decimal.Decimal
}

// ProductSummary totals one product's movements for the month.
type ProductSummary struct {
	Product   string
	StockIn   int
	StockOut  int
	NetChange int
}

// BuildStockActivity filters movements to the month and totals them per
// product. Inventory value covers the current snapshot, not the month.
func BuildStockActivity(movements []models.StockTransaction, items []models.InventoryItem, year int, month time.Month) StockActivity {
	activity := StockActivity{Year: year, Month: month, Items: items, Value: decimal.Zero}

	perProduct := make(map[string]*ProductSummary)
	var order []string
	for _, movement := range movements {
		if movement.CreatedAt.IsZero() || movement.CreatedAt.Year() != year || movement.CreatedAt.Month() != month {
			continue
		}
		activity.Movements = append(activity.Movements, movement)

		summary, ok := perProduct[movement.ProductName]
		if !ok {
			summary = &ProductSummary{Product: movement.ProductName}
			perProduct[movement.ProductName] = summary
			order = append(order, movement.ProductName)
		}
		switch movement.Action {
		case enums.StockActionIn:
			summary.StockIn += movement.Quantity
			activity.TotalIn += movement.Quantity
		case enums.StockActionOut:
			summary.StockOut += movement.Quantity
			activity.TotalOut += movement.Quantity
		}
		summary.NetChange = summary.StockIn - summary.StockOut
	}
	for _, name := range order {
		activity.Summary = append(activity.Summary, *perProduct[name])
	}

	for _, item := range items {
		activity.Value = activity.Value.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Stock))))
	}
	return activity
}

// WriteStockActivityCSV renders the section-labelled monthly stock document.
func WriteStockActivityCSV(w io.Writer, activity StockActivity) error {
	writer := csv.NewWriter(w)
	write := func(record ...string) error { return writer.Write(record) }

	monthLabel := time.Date(activity.Year, activity.Month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	if err := write("STOCK ACTIVITY REPORT"); err != nil {
		return err
	}
	if err := write("Period", monthLabel); err != nil {
		return err
	}
	if err := write(); err != nil {
		return err
	}

	if err := write("TRANSACTION LOG"); err != nil {
		return err
	}
	if err := write("Date", "Product", "Action", "Quantity", "Previous Stock", "New Stock", "Reason"); err != nil {
		return err
	}
	for _, movement := range activity.Movements {
		record := []string{
			movement.CreatedAt.Format(exportDateLayout),
			movement.ProductName,
			movement.Action.String(),
			strconv.Itoa(movement.Quantity),
			strconv.Itoa(movement.PreviousStock),
			strconv.Itoa(movement.NewStock),
			stringOrEmpty(movement.Reason),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := write(); err != nil {
		return err
	}

	if err := write("MONTHLY SUMMARY BY PRODUCT"); err != nil {
		return err
	}
	if err := write("Product", "Stock In", "Stock Out", "Net Change"); err != nil {
		return err
	}
	for _, summary := range activity.Summary {
		record := []string{
			summary.Product,
			strconv.Itoa(summary.StockIn),
			strconv.Itoa(summary.StockOut),
			strconv.Itoa(summary.NetChange),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := write(); err != nil {
		return err
	}

	if err := write("CURRENT INVENTORY"); err != nil {
		return err
	}
	if err := write("Product", "Category", "Department", "Stock", "Price", "Status"); err != nil {
		return err
	}
	for _, item := range activity.Items {
		record := []string{
			item.Name,
			item.Category,
			item.Department,
			strconv.Itoa(item.Stock),
			item.Price.StringFixed(2),
			item.Status.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if err := write(); err != nil {
		return err
	}

	if err := write("TOTALS"); err != nil {
		return err
	}
	if err := write("Total Stock In", strconv.Itoa(activity.TotalIn)); err != nil {
		return err
	}
	if err := write("Total Stock Out", strconv.Itoa(activity.TotalOut)); err != nil {
		return err
	}
	if err := write("Inventory Value", activity.Value.StringFixed(2)); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}
