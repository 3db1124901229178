package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
)

// RevenueSummary aggregates one calendar month of income.
type RevenueSummary struct {
	Year            int             `json:"year"`
	Month           time.Month      `json:"month"`
	PaymentsTotal   decimal.Decimal `json:"payments_total"`
	CreditsTotal    decimal.Decimal `json:"credits_total"`
	InventorySales  decimal.Decimal `json:"inventory_sales"`
	Total           decimal.Decimal `json:"total"`
	DailyAverage    decimal.Decimal `json:"daily_average"`
	GrowthPct       float64         `json:"growth_pct"`
	UnresolvedItems int             `json:"unresolved_items"`
}

// SeriesPoint is one month in a trailing revenue series.
type SeriesPoint struct {
	Year     int             `json:"year"`
	Month    time.Month      `json:"month"`
	Payments decimal.Decimal `json:"payments"`
	Credits  decimal.Decimal `json:"credits"`
	Total    decimal.Decimal `json:"total"`
}

// AggregateRevenue buckets payments, credits, and outbound stock movements
// into the requested month. Sales are priced by resolving each movement to an
// item by id, then by name snapshot; movements that resolve to nothing
// contribute zero and are counted as integrity gaps. Rows with zero-value
// timestamps are skipped entirely. Aggregation never fails.
func AggregateRevenue(
	payments []models.Payment,
	credits []models.Credit,
	movements []models.StockTransaction,
	items []models.InventoryItem,
	year int,
	month time.Month,
) RevenueSummary {
	summary := RevenueSummary{Year: year, Month: month}

	byID := make(map[uuid.UUID]models.InventoryItem, len(items))
	byName := make(map[string]models.InventoryItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
		byName[strings.ToLower(item.Name)] = item
	}

	current := monthTotals(payments, credits, movements, byID, byName, year, month, &summary.UnresolvedItems)
	summary.PaymentsTotal = current.payments
	summary.CreditsTotal = current.credits
	summary.InventorySales = current.sales
	summary.Total = current.payments.Add(current.credits).Add(current.sales)

	days := daysInMonth(year, month)
	summary.DailyAverage = summary.Total.Div(decimal.NewFromInt(int64(days))).Round(2)

	prevYear, prevMonth := previousMonth(year, month)
	previous := monthTotals(payments, credits, movements, byID, byName, prevYear, prevMonth, nil)
	prevTotal := previous.payments.Add(previous.credits).Add(previous.sales)
	if prevTotal.IsPositive() {
		growth, _ := summary.Total.Sub(prevTotal).Div(prevTotal).Mul(decimal.NewFromInt(100)).Float64()
		summary.GrowthPct = growth
	}

	return summary
}

// MonthlySeries produces a trailing per-month payment/credit series ending at
// the month containing now, oldest first.
func MonthlySeries(payments []models.Payment, credits []models.Credit, months int, now time.Time) []SeriesPoint {
	if months <= 0 {
		return nil
	}
	series := make([]SeriesPoint, 0, months)
	for offset := months - 1; offset >= 0; offset-- {
		anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -offset, 0)
		point := SeriesPoint{
			Year:     anchor.Year(),
			Month:    anchor.Month(),
			Payments: decimal.Zero,
			Credits:  decimal.Zero,
		}
		for _, payment := range payments {
			if inMonth(payment.CreatedAt, point.Year, point.Month) {
				point.Payments = point.Payments.Add(payment.Amount)
			}
		}
		for _, credit := range credits {
			if inMonth(credit.CreatedAt, point.Year, point.Month) {
				point.Credits = point.Credits.Add(credit.Amount)
			}
		}
		point.Total = point.Payments.Add(point.Credits)
		series = append(series, point)
	}
	return series
}

type totals struct {
	payments decimal.Decimal
	credits  decimal.Decimal
	sales    decimal.Decimal
}

func monthTotals(
	payments []models.Payment,
	credits []models.Credit,
	movements []models.StockTransaction,
	byID map[uuid.UUID]models.InventoryItem,
	byName map[string]models.InventoryItem,
	year int,
	month time.Month,
	unresolved *int,
) totals {
	result := totals{payments: decimal.Zero, credits: decimal.Zero, sales: decimal.Zero}

	for _, payment := range payments {
		if inMonth(payment.CreatedAt, year, month) {
			result.payments = result.payments.Add(payment.Amount)
		}
	}
	for _, credit := range credits {
		if inMonth(credit.CreatedAt, year, month) {
			result.credits = result.credits.Add(credit.Amount)
		}
	}
	for _, movement := range movements {
		if movement.Action != enums.StockActionOut || !inMonth(movement.CreatedAt, year, month) {
			continue
		}
		item, ok := byID[movement.InventoryID]
		if !ok {
			item, ok = byName[strings.ToLower(movement.ProductName)]
		}
		if !ok {
			if unresolved != nil {
				*unresolved++
			}
			continue
		}
		result.sales = result.sales.Add(item.Price.Mul(decimal.NewFromInt(int64(movement.Quantity))))
	}

	return result
}

func inMonth(t time.Time, year int, month time.Month) bool {
	if t.IsZero() {
		return false
	}
	return t.Year() == year && t.Month() == month
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func previousMonth(year int, month time.Month) (int, time.Month) {
	anchor := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return anchor.Year(), anchor.Month()
}
