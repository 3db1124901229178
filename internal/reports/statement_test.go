package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartstockhq/smartstock-backend/internal/ledger"
	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
)

type stubLedgerReader struct {
	payments []models.Payment
	credits  []models.Credit
}

func (s stubLedgerReader) ListAllPayments(context.Context) ([]models.Payment, error) {
	return s.payments, nil
}

func (s stubLedgerReader) ListAllCredits(context.Context) ([]models.Credit, error) {
	return s.credits, nil
}

func (s stubLedgerReader) ListPaymentsByBooking(_ context.Context, bookingID uuid.UUID) ([]models.Payment, error) {
	var matched []models.Payment
	for _, payment := range s.payments {
		if payment.BookingID == bookingID {
			matched = append(matched, payment)
		}
	}
	return matched, nil
}

func (s stubLedgerReader) ListCreditsByBooking(_ context.Context, bookingID uuid.UUID) ([]models.Credit, error) {
	var matched []models.Credit
	for _, credit := range s.credits {
		if credit.BookingID == bookingID {
			matched = append(matched, credit)
		}
	}
	return matched, nil
}

type stubLeaseReader struct {
	bookings map[uuid.UUID]models.Booking
}

func (s stubLeaseReader) FindByID(_ context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	booking, ok := s.bookings[bookingID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &booking, nil
}

func (s stubLeaseReader) ListByStatuses(_ context.Context, statuses ...enums.BookingStatus) ([]models.Booking, error) {
	var matched []models.Booking
	for _, booking := range s.bookings {
		for _, status := range statuses {
			if booking.Status == status {
				matched = append(matched, booking)
				break
			}
		}
	}
	return matched, nil
}

type stubAnalytics struct{}

func (stubAnalytics) DueOverview(context.Context) (*ledger.DueOverview, error) {
	return &ledger.DueOverview{CollectionRate: 100}, nil
}

func (stubAnalytics) Revenue(context.Context, int, time.Month) (*ledger.RevenueSummary, error) {
	return &ledger.RevenueSummary{}, nil
}

func (stubAnalytics) Series(context.Context, int) ([]ledger.SeriesPoint, error) {
	return nil, nil
}

type stubInventoryReader struct{}

func (stubInventoryReader) ListItems(context.Context) ([]models.InventoryItem, error) {
	return nil, nil
}

func (stubInventoryReader) ListMovements(context.Context) ([]models.StockTransaction, error) {
	return nil, nil
}

type stubRoomReader struct{}

func (stubRoomReader) ListRooms(context.Context) ([]models.Room, error) {
	return nil, nil
}

func newStatementService(t *testing.T, ledgerStub stubLedgerReader, leases stubLeaseReader) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Analytics: stubAnalytics{},
		Ledger:    ledgerStub,
		Inventory: stubInventoryReader{},
		Leases:    leases,
		Rooms:     stubRoomReader{},
	})
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	return svc
}

func statementBooking(totalPaid, balance int64) models.Booking {
	return models.Booking{
		ID:             uuid.New(),
		RoomName:       "Unit 2A",
		Tenant:         "Dela Cruz",
		LeaseStart:     at(2025, time.January, 1),
		LeaseEnd:       at(2025, time.April, 1),
		MonthlyRent:    decimal.NewFromInt(5000),
		DurationMonths: 3,
		TotalPaid:      decimal.NewFromInt(totalPaid),
		Balance:        decimal.NewFromInt(balance),
		Status:         enums.BookingStatusActive,
	}
}

func TestLeaseStatementReconciles(t *testing.T) {
	booking := statementBooking(5000, 0)
	booking.Status = enums.BookingStatusPaid

	svc := newStatementService(t,
		stubLedgerReader{
			payments: []models.Payment{
				{ID: uuid.New(), BookingID: booking.ID, Amount: decimal.NewFromInt(5000), Method: enums.PaymentMethodCash, ReceiptNumber: "OR-1", CreatedAt: at(2025, time.January, 5)},
				{ID: uuid.New(), BookingID: uuid.New(), Amount: decimal.NewFromInt(9999), Method: enums.PaymentMethodCash, ReceiptNumber: "OR-2", CreatedAt: at(2025, time.January, 6)},
			},
			credits: []models.Credit{
				{ID: uuid.New(), BookingID: booking.ID, Amount: decimal.NewFromInt(10000), Reason: "deposit applied", CreatedAt: at(2025, time.February, 1)},
			},
		},
		stubLeaseReader{bookings: map[uuid.UUID]models.Booking{booking.ID: booking}},
	)

	statement, err := svc.LeaseStatement(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("LeaseStatement error: %v", err)
	}
	if !statement.Reconciled {
		t.Fatalf("expected reconciled statement: %+v", statement)
	}
	if !statement.ContractValue.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("expected contract value 15000, got %s", statement.ContractValue)
	}
	if !statement.ReplayedTotalPaid.Equal(decimal.NewFromInt(5000)) || !statement.ReplayedBalance.IsZero() {
		t.Fatalf("unexpected replay totals: paid=%s balance=%s", statement.ReplayedTotalPaid, statement.ReplayedBalance)
	}
	// Only this lease's rows appear, newest first.
	if len(statement.Lines) != 2 {
		t.Fatalf("expected 2 statement lines, got %d", len(statement.Lines))
	}
	if statement.Lines[0].Description != "Credit - deposit applied" {
		t.Fatalf("unexpected first line %q", statement.Lines[0].Description)
	}
}

func TestLeaseStatementFlagsDrift(t *testing.T) {
	// Stored balance says 2000 outstanding, but the rows replay to zero.
	booking := statementBooking(5000, 2000)

	svc := newStatementService(t,
		stubLedgerReader{
			payments: []models.Payment{
				{ID: uuid.New(), BookingID: booking.ID, Amount: decimal.NewFromInt(5000), Method: enums.PaymentMethodCash, ReceiptNumber: "OR-1", CreatedAt: at(2025, time.January, 5)},
			},
			credits: []models.Credit{
				{ID: uuid.New(), BookingID: booking.ID, Amount: decimal.NewFromInt(10000), Reason: "deposit applied", CreatedAt: at(2025, time.February, 1)},
			},
		},
		stubLeaseReader{bookings: map[uuid.UUID]models.Booking{booking.ID: booking}},
	)

	statement, err := svc.LeaseStatement(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("LeaseStatement error: %v", err)
	}
	if statement.Reconciled {
		t.Fatalf("expected drift to be flagged: %+v", statement)
	}
	if !statement.ReplayedBalance.IsZero() {
		t.Fatalf("expected replayed balance 0, got %s", statement.ReplayedBalance)
	}
	if !statement.Balance.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("stored balance should be reported as-is, got %s", statement.Balance)
	}
}

func TestLeaseStatementBookingNotFound(t *testing.T) {
	svc := newStatementService(t, stubLedgerReader{}, stubLeaseReader{bookings: map[uuid.UUID]models.Booking{}})

	_, err := svc.LeaseStatement(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
