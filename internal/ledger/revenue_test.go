package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
)

func at(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func TestAggregateRevenueBucketsByMonth(t *testing.T) {
	shirt := models.InventoryItem{ID: uuid.New(), Name: "Shirt", Price: decimal.NewFromInt(250)}

	payments := []models.Payment{
		{Amount: decimal.NewFromInt(5000), CreatedAt: at(2025, time.June, 3)},
		{Amount: decimal.NewFromInt(2000), CreatedAt: at(2025, time.June, 28)},
		{Amount: decimal.NewFromInt(9999), CreatedAt: at(2025, time.May, 30)}, // prior month
	}
	credits := []models.Credit{
		{Amount: decimal.NewFromInt(500), CreatedAt: at(2025, time.June, 10)},
	}
	movements := []models.StockTransaction{
		{InventoryID: shirt.ID, ProductName: "Shirt", Action: enums.StockActionOut, Quantity: 4, CreatedAt: at(2025, time.June, 5)},
		{InventoryID: shirt.ID, ProductName: "Shirt", Action: enums.StockActionIn, Quantity: 10, CreatedAt: at(2025, time.June, 6)}, // restock, not a sale
		{InventoryID: shirt.ID, ProductName: "Shirt", Action: enums.StockActionOut, Quantity: 2, CreatedAt: at(2025, time.July, 1)}, // next month
	}

	summary := AggregateRevenue(payments, credits, movements, []models.InventoryItem{shirt}, 2025, time.June)

	if !summary.PaymentsTotal.Equal(decimal.NewFromInt(7000)) {
		t.Fatalf("expected payments 7000, got %s", summary.PaymentsTotal)
	}
	if !summary.CreditsTotal.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected credits 500, got %s", summary.CreditsTotal)
	}
	if !summary.InventorySales.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected sales 1000, got %s", summary.InventorySales)
	}
	if !summary.Total.Equal(decimal.NewFromInt(8500)) {
		t.Fatalf("expected total 8500, got %s", summary.Total)
	}
	// June has 30 days: 8500 / 30 = 283.33.
	if !summary.DailyAverage.Equal(decimal.RequireFromString("283.33")) {
		t.Fatalf("expected daily average 283.33, got %s", summary.DailyAverage)
	}
	if summary.UnresolvedItems != 0 {
		t.Fatalf("expected no unresolved movements, got %d", summary.UnresolvedItems)
	}
}

func TestAggregateRevenueResolvesByNameSnapshot(t *testing.T) {
	mug := models.InventoryItem{ID: uuid.New(), Name: "Coffee Mug", Price: decimal.NewFromInt(120)}

	movements := []models.StockTransaction{
		// Movement id points nowhere, but the name snapshot still matches,
		// case-insensitively.
		{InventoryID: uuid.New(), ProductName: "COFFEE MUG", Action: enums.StockActionOut, Quantity: 3, CreatedAt: at(2025, time.June, 5)},
		// Neither id nor name resolves: contributes zero, counted as a gap.
		{InventoryID: uuid.New(), ProductName: "Deleted Item", Action: enums.StockActionOut, Quantity: 5, CreatedAt: at(2025, time.June, 6)},
	}

	summary := AggregateRevenue(nil, nil, movements, []models.InventoryItem{mug}, 2025, time.June)

	if !summary.InventorySales.Equal(decimal.NewFromInt(360)) {
		t.Fatalf("expected sales 360, got %s", summary.InventorySales)
	}
	if summary.UnresolvedItems != 1 {
		t.Fatalf("expected 1 unresolved movement, got %d", summary.UnresolvedItems)
	}
}

func TestAggregateRevenueGrowth(t *testing.T) {
	payments := []models.Payment{
		{Amount: decimal.NewFromInt(4000), CreatedAt: at(2025, time.May, 15)},
		{Amount: decimal.NewFromInt(5000), CreatedAt: at(2025, time.June, 15)},
	}

	summary := AggregateRevenue(payments, nil, nil, nil, 2025, time.June)
	if summary.GrowthPct != 25 {
		t.Fatalf("expected 25%% growth, got %v", summary.GrowthPct)
	}

	// No baseline month: growth stays zero rather than dividing by zero.
	first := AggregateRevenue(payments[1:], nil, nil, nil, 2025, time.June)
	if first.GrowthPct != 0 {
		t.Fatalf("expected zero growth without baseline, got %v", first.GrowthPct)
	}
}

func TestAggregateRevenueSkipsZeroTimestamps(t *testing.T) {
	payments := []models.Payment{
		{Amount: decimal.NewFromInt(5000)}, // no created_at
		{Amount: decimal.NewFromInt(1000), CreatedAt: at(2025, time.June, 1)},
	}
	summary := AggregateRevenue(payments, nil, nil, nil, 2025, time.June)
	if !summary.PaymentsTotal.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("zero-timestamp rows must be skipped, got %s", summary.PaymentsTotal)
	}
}

func TestMonthlySeriesOldestFirst(t *testing.T) {
	payments := []models.Payment{
		{Amount: decimal.NewFromInt(1000), CreatedAt: at(2025, time.April, 2)},
		{Amount: decimal.NewFromInt(2000), CreatedAt: at(2025, time.May, 2)},
		{Amount: decimal.NewFromInt(3000), CreatedAt: at(2025, time.June, 2)},
	}
	credits := []models.Credit{
		{Amount: decimal.NewFromInt(500), CreatedAt: at(2025, time.June, 3)},
	}

	series := MonthlySeries(payments, credits, 3, at(2025, time.June, 20))
	if len(series) != 3 {
		t.Fatalf("expected 3 points, got %d", len(series))
	}
	if series[0].Month != time.April || series[2].Month != time.June {
		t.Fatalf("series not oldest-first: %v ... %v", series[0].Month, series[2].Month)
	}
	if !series[0].Total.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected April total 1000, got %s", series[0].Total)
	}
	if !series[2].Total.Equal(decimal.NewFromInt(3500)) {
		t.Fatalf("expected June total 3500, got %s", series[2].Total)
	}
}
