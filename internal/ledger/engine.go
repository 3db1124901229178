package ledger

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
)

// DueStatus classifies where a lease stands against its next rent due date.
type DueStatus string

const (
	DueStatusOnTime  DueStatus = "on_time"
	DueStatusDueSoon DueStatus = "due_soon"
	DueStatusOverdue DueStatus = "overdue"
)

// billingCycleDays is the fixed month approximation used to count how many
// cycles have elapsed since lease start. The due date itself advances by
// calendar months; only the elapsed-cycle count uses the approximation.
const billingCycleDays = 30

// Rules carries the overdue calculation tunables.
type Rules struct {
	GraceDays    int
	DailyLateFee decimal.Decimal
	DueSoonDays  int
}

// DefaultRules returns the house rules: 3 grace days, 50 per day late fee,
// 7-day due-soon horizon.
func DefaultRules() Rules {
	return Rules{
		GraceDays:    3,
		DailyLateFee: decimal.NewFromInt(50),
		DueSoonDays:  7,
	}
}

// DueInfo is the result of classifying a single booking.
type DueInfo struct {
	Status      DueStatus
	NextDueDate time.Time
	DaysOverdue int
	LateFee     decimal.Decimal
	TotalDue    decimal.Decimal
}

// WorklistEntry pairs a booking with its due classification for follow-up.
type WorklistEntry struct {
	BookingID   uuid.UUID       `json:"booking_id"`
	Tenant      string          `json:"tenant"`
	RoomName    string          `json:"room_name"`
	Balance     decimal.Decimal `json:"balance"`
	Status      DueStatus       `json:"status"`
	NextDueDate time.Time       `json:"next_due_date"`
	DaysOverdue int             `json:"days_overdue"`
	LateFee     decimal.Decimal `json:"late_fee"`
	TotalDue    decimal.Decimal `json:"total_due"`
}

// ComputeDueStatus classifies a booking relative to today. A settled balance
// is always on time, regardless of dates. Otherwise the next due date is the
// lease start advanced by one calendar month per elapsed 30-day cycle, and a
// late fee accrues per day beyond the grace window.
func ComputeDueStatus(booking models.Booking, today time.Time, rules Rules) DueInfo {
	today = truncateToDay(today)
	zero := decimal.Zero

	if booking.Balance.LessThanOrEqual(zero) {
		return DueInfo{
			Status:   DueStatusOnTime,
			LateFee:  zero,
			TotalDue: zero,
		}
	}

	leaseStart := truncateToDay(booking.LeaseStart)
	monthsSinceStart := 0
	if today.After(leaseStart) {
		elapsedDays := int(today.Sub(leaseStart).Hours() / 24)
		monthsSinceStart = elapsedDays / billingCycleDays
	}
	nextDue := truncateToDay(leaseStart.AddDate(0, monthsSinceStart+1, 0))
	return classifyAgainstDue(booking.Balance, nextDue, today, rules)
}

// classifyAgainstDue grades an outstanding balance against a known due date.
// Both dates must already be truncated to midnight.
func classifyAgainstDue(balance decimal.Decimal, nextDue, today time.Time, rules Rules) DueInfo {
	zero := decimal.Zero
	switch {
	case today.After(nextDue):
		daysOverdue := int(today.Sub(nextDue).Hours() / 24)
		lateFee := zero
		if daysOverdue > rules.GraceDays {
			lateFee = rules.DailyLateFee.Mul(decimal.NewFromInt(int64(daysOverdue - rules.GraceDays)))
		}
		return DueInfo{
			Status:      DueStatusOverdue,
			NextDueDate: nextDue,
			DaysOverdue: daysOverdue,
			LateFee:     lateFee,
			TotalDue:    balance.Add(lateFee),
		}
	case !nextDue.After(today.AddDate(0, 0, rules.DueSoonDays)):
		return DueInfo{
			Status:      DueStatusDueSoon,
			NextDueDate: nextDue,
			LateFee:     zero,
			TotalDue:    balance,
		}
	default:
		return DueInfo{
			Status:      DueStatusOnTime,
			NextDueDate: nextDue,
			LateFee:     zero,
			TotalDue:    balance,
		}
	}
}

// BuildWorklist returns the bookings needing attention (overdue or due soon),
// most-overdue first. The sort is stable so equally-late leases keep their
// input order.
func BuildWorklist(bookings []models.Booking, today time.Time, rules Rules) []WorklistEntry {
	var entries []WorklistEntry
	for _, booking := range bookings {
		info := ComputeDueStatus(booking, today, rules)
		if info.Status == DueStatusOnTime {
			continue
		}
		entries = append(entries, WorklistEntry{
			BookingID:   booking.ID,
			Tenant:      booking.Tenant,
			RoomName:    booking.RoomName,
			Balance:     booking.Balance,
			Status:      info.Status,
			NextDueDate: info.NextDueDate,
			DaysOverdue: info.DaysOverdue,
			LateFee:     info.LateFee,
			TotalDue:    info.TotalDue,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DaysOverdue > entries[j].DaysOverdue
	})
	return entries
}

// CollectionRate is the whole-percentage share of bookings currently on
// time, rounded to the nearest integer. An empty set collects at 100%.
func CollectionRate(bookings []models.Booking, today time.Time, rules Rules) float64 {
	if len(bookings) == 0 {
		return 100
	}
	onTime := 0
	for _, booking := range bookings {
		if ComputeDueStatus(booking, today, rules).Status == DueStatusOnTime {
			onTime++
		}
	}
	return math.Round(float64(onTime) / float64(len(bookings)) * 100)
}

// ReplayBalance recomputes a booking's totals from its immutable ledger rows.
// The stored columns must agree with the replay; reporting uses this to
// surface drift.
func ReplayBalance(booking models.Booking, payments []models.Payment, credits []models.Credit) (totalPaid, balance decimal.Decimal) {
	totalPaid = decimal.Zero
	settled := decimal.Zero
	for _, payment := range payments {
		if payment.BookingID != booking.ID {
			continue
		}
		totalPaid = totalPaid.Add(payment.Amount)
		settled = settled.Add(payment.Amount)
	}
	for _, credit := range credits {
		if credit.BookingID != booking.ID {
			continue
		}
		settled = settled.Add(credit.Amount)
	}
	balance = booking.ContractValue().Sub(settled)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	return totalPaid, balance
}

// StatusAfterSettlement returns the booking status implied by the new balance.
// Terminal statuses never change.
func StatusAfterSettlement(current enums.BookingStatus, balance decimal.Decimal) enums.BookingStatus {
	if current.IsTerminal() {
		return current
	}
	if balance.LessThanOrEqual(decimal.Zero) {
		return enums.BookingStatusPaid
	}
	return enums.BookingStatusActive
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
