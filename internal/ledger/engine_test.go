package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func activeBooking(leaseStart time.Time, balance int64) models.Booking {
	return models.Booking{
		ID:             uuid.New(),
		Tenant:         "Dela Cruz",
		RoomName:       "Unit 2A",
		LeaseStart:     leaseStart,
		LeaseEnd:       leaseStart.AddDate(0, 6, 0),
		MonthlyRent:    decimal.NewFromInt(5000),
		DurationMonths: 6,
		TotalPaid:      decimal.Zero,
		Balance:        decimal.NewFromInt(balance),
		Status:         enums.BookingStatusActive,
	}
}

func TestComputeDueStatusZeroBalanceAlwaysOnTime(t *testing.T) {
	// Years past due but fully settled: still on time.
	booking := activeBooking(day(2020, time.January, 1), 0)
	info := ComputeDueStatus(booking, day(2025, time.August, 20), DefaultRules())
	if info.Status != DueStatusOnTime {
		t.Fatalf("expected on_time for settled booking, got %s", info.Status)
	}
	if !info.LateFee.IsZero() || !info.TotalDue.IsZero() {
		t.Fatalf("settled booking should carry no dues: %+v", info)
	}
}

func TestClassifyAgainstDueGraceBoundary(t *testing.T) {
	rules := DefaultRules()
	balance := decimal.NewFromInt(5000)
	dueDate := day(2025, time.July, 1)

	// Exactly 3 days past due: overdue, but inside the grace window.
	info := classifyAgainstDue(balance, dueDate, dueDate.AddDate(0, 0, 3), rules)
	if info.Status != DueStatusOverdue {
		t.Fatalf("expected overdue, got %s", info.Status)
	}
	if info.DaysOverdue != 3 {
		t.Fatalf("expected 3 days overdue, got %d", info.DaysOverdue)
	}
	if !info.LateFee.IsZero() {
		t.Fatalf("no fee inside grace window, got %s", info.LateFee)
	}

	// Four days past due: one chargeable day.
	info = classifyAgainstDue(balance, dueDate, dueDate.AddDate(0, 0, 4), rules)
	if !info.LateFee.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected fee 50 on day four, got %s", info.LateFee)
	}
	if !info.TotalDue.Equal(decimal.NewFromInt(5050)) {
		t.Fatalf("expected total due 5050, got %s", info.TotalDue)
	}

	// Ten days past due: seven chargeable days.
	info = classifyAgainstDue(balance, dueDate, dueDate.AddDate(0, 0, 10), rules)
	if !info.LateFee.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("expected fee 350 on day ten, got %s", info.LateFee)
	}
}

func TestComputeDueStatusFebruaryCycleDrift(t *testing.T) {
	// The 30-day cycle count lags calendar months only across February: a
	// February 1 lease is due March 1 but the second cycle does not tick
	// until March 3, so March 2 lands one day overdue.
	booking := activeBooking(day(2025, time.February, 1), 5000)
	info := ComputeDueStatus(booking, day(2025, time.March, 2), DefaultRules())
	if info.Status != DueStatusOverdue {
		t.Fatalf("expected overdue, got %s", info.Status)
	}
	if info.DaysOverdue != 1 {
		t.Fatalf("expected 1 day overdue, got %d", info.DaysOverdue)
	}
	if !info.NextDueDate.Equal(day(2025, time.March, 1)) {
		t.Fatalf("expected due March 1, got %s", info.NextDueDate)
	}
	if !info.LateFee.IsZero() {
		t.Fatalf("one day overdue is inside the grace window, got fee %s", info.LateFee)
	}
}

func TestComputeDueStatusDueSoonWindow(t *testing.T) {
	rules := DefaultRules()
	leaseStart := day(2025, time.June, 1)
	booking := activeBooking(leaseStart, 5000)

	// Seven days before the due date is inside the horizon.
	info := ComputeDueStatus(booking, day(2025, time.June, 24), rules)
	if info.Status != DueStatusDueSoon {
		t.Fatalf("expected due_soon, got %s", info.Status)
	}
	if !info.LateFee.IsZero() {
		t.Fatalf("due_soon should not charge fees")
	}

	// Eight days out is still comfortably on time.
	info = ComputeDueStatus(booking, day(2025, time.June, 23), rules)
	if info.Status != DueStatusOnTime {
		t.Fatalf("expected on_time, got %s", info.Status)
	}
}

func TestComputeDueStatusAdvancesByElapsedCycles(t *testing.T) {
	rules := DefaultRules()
	leaseStart := day(2025, time.January, 15)
	booking := activeBooking(leaseStart, 5000)

	// 65 days in: two 30-day cycles elapsed, so the third month is due.
	info := ComputeDueStatus(booking, leaseStart.AddDate(0, 0, 65), rules)
	want := day(2025, time.April, 15)
	if !info.NextDueDate.Equal(want) {
		t.Fatalf("expected next due %s, got %s", want, info.NextDueDate)
	}
}

func TestBuildWorklistOrdersMostOverdueFirst(t *testing.T) {
	rules := DefaultRules()
	today := day(2025, time.March, 2)

	dueSoon := activeBooking(day(2025, time.February, 8), 4000) // due March 8
	overdue := activeBooking(day(2025, time.February, 1), 9000) // due March 1
	settled := activeBooking(day(2025, time.January, 1), 0)

	entries := BuildWorklist([]models.Booking{dueSoon, overdue, settled}, today, rules)
	if len(entries) != 2 {
		t.Fatalf("expected 2 worklist entries, got %d", len(entries))
	}
	if entries[0].BookingID != overdue.ID {
		t.Fatalf("expected the overdue booking first")
	}
	if entries[0].Status != DueStatusOverdue || entries[1].Status != DueStatusDueSoon {
		t.Fatalf("unexpected statuses: %s then %s", entries[0].Status, entries[1].Status)
	}
	if entries[0].DaysOverdue <= entries[1].DaysOverdue {
		t.Fatalf("worklist not sorted by days overdue: %d then %d", entries[0].DaysOverdue, entries[1].DaysOverdue)
	}
}

func TestBuildWorklistStableOnTies(t *testing.T) {
	rules := DefaultRules()
	today := day(2025, time.March, 2)
	first := activeBooking(day(2025, time.February, 1), 5000)
	second := activeBooking(day(2025, time.February, 1), 7000)

	entries := BuildWorklist([]models.Booking{first, second}, today, rules)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].DaysOverdue != entries[1].DaysOverdue {
		t.Fatalf("expected a tie, got %d and %d", entries[0].DaysOverdue, entries[1].DaysOverdue)
	}
	if entries[0].BookingID != first.ID || entries[1].BookingID != second.ID {
		t.Fatalf("tied entries should keep input order")
	}
}

func TestCollectionRateEmptySetIsFull(t *testing.T) {
	if rate := CollectionRate(nil, day(2025, time.August, 1), DefaultRules()); rate != 100 {
		t.Fatalf("expected 100%% for empty set, got %v", rate)
	}
}

func TestCollectionRateCountsSettledAsOnTime(t *testing.T) {
	today := day(2025, time.March, 2)
	bookings := []models.Booking{
		activeBooking(day(2025, time.January, 1), 0),      // settled, on time
		activeBooking(day(2025, time.February, 1), 9000),  // overdue
		activeBooking(day(2025, time.February, 20), 5000), // due March 20, on time
		activeBooking(day(2025, time.February, 5), 5000),  // due March 5, due soon
	}
	if rate := CollectionRate(bookings, today, DefaultRules()); rate != 50 {
		t.Fatalf("expected 50%%, got %v", rate)
	}

	// Non-integral ratio rounds to a whole percentage: 2 of 3 on time is 67.
	twoOfThree := []models.Booking{
		activeBooking(day(2025, time.January, 1), 0),      // settled, on time
		activeBooking(day(2025, time.February, 20), 5000), // due March 20, on time
		activeBooking(day(2025, time.February, 1), 9000),  // overdue
	}
	if rate := CollectionRate(twoOfThree, today, DefaultRules()); rate != 67 {
		t.Fatalf("expected rounded 67%%, got %v", rate)
	}
}

func TestReplayBalanceMatchesStoredColumns(t *testing.T) {
	booking := activeBooking(day(2025, time.June, 1), 0)
	booking.Balance = decimal.NewFromInt(20000)
	booking.TotalPaid = decimal.NewFromInt(7000)

	payments := []models.Payment{
		{BookingID: booking.ID, Amount: decimal.NewFromInt(5000)},
		{BookingID: booking.ID, Amount: decimal.NewFromInt(2000)},
		{BookingID: uuid.New(), Amount: decimal.NewFromInt(999)}, // other lease
	}
	credits := []models.Credit{
		{BookingID: booking.ID, Amount: decimal.NewFromInt(3000)},
	}

	totalPaid, balance := ReplayBalance(booking, payments, credits)
	if !totalPaid.Equal(booking.TotalPaid) {
		t.Fatalf("replayed total paid %s != stored %s", totalPaid, booking.TotalPaid)
	}
	// contract 30000 - 7000 paid - 3000 credit = 20000
	if !balance.Equal(booking.Balance) {
		t.Fatalf("replayed balance %s != stored %s", balance, booking.Balance)
	}
}

func TestReplayBalanceClampsOverpayment(t *testing.T) {
	booking := activeBooking(day(2025, time.June, 1), 0)
	payments := []models.Payment{
		{BookingID: booking.ID, Amount: decimal.NewFromInt(50000)},
	}
	_, balance := ReplayBalance(booking, payments, nil)
	if !balance.IsZero() {
		t.Fatalf("overpayment should clamp balance to zero, got %s", balance)
	}
}

func TestStatusAfterSettlementTerminalUnchanged(t *testing.T) {
	if got := StatusAfterSettlement(enums.BookingStatusEnded, decimal.Zero); got != enums.BookingStatusEnded {
		t.Fatalf("ended lease must stay ended, got %s", got)
	}
	if got := StatusAfterSettlement(enums.BookingStatusActive, decimal.Zero); got != enums.BookingStatusPaid {
		t.Fatalf("active lease at zero balance becomes paid, got %s", got)
	}
	if got := StatusAfterSettlement(enums.BookingStatusActive, decimal.NewFromInt(10)); got != enums.BookingStatusActive {
		t.Fatalf("active lease with balance stays active, got %s", got)
	}
}
