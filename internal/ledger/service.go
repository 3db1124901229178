package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartstockhq/smartstock-backend/pkg/db"
	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
	"github.com/smartstockhq/smartstock-backend/pkg/pagination"
)

// Service exposes the settlement and aggregation operations of the ledger.
type Service interface {
	RecordPayment(ctx context.Context, input RecordPaymentInput) (*SettlementResult, error)
	RecordCredit(ctx context.Context, input RecordCreditInput) (*SettlementResult, error)
	ListPayments(ctx context.Context, params ListParams) ([]models.Payment, *pagination.Cursor, error)
	ListCredits(ctx context.Context, params ListParams) ([]models.Credit, *pagination.Cursor, error)
	DueOverview(ctx context.Context) (*DueOverview, error)
	Revenue(ctx context.Context, year int, month time.Month) (*RevenueSummary, error)
	Series(ctx context.Context, months int) ([]SeriesPoint, error)
}

// RecordPaymentInput captures a validated payment submission.
type RecordPaymentInput struct {
	BookingID     uuid.UUID
	Amount        decimal.Decimal
	Method        enums.PaymentMethod
	ReceiptNumber string
	Notes         *string
}

// RecordCreditInput captures a validated credit submission.
type RecordCreditInput struct {
	BookingID       uuid.UUID
	Amount          decimal.Decimal
	Reason          string
	ReferenceNumber string
	Notes           *string
}

// SettlementResult returns the ledger row created plus the booking state it
// produced.
type SettlementResult struct {
	Payment *models.Payment
	Credit  *models.Credit
	Booking *models.Booking
}

// DueOverview is the worklist plus portfolio health numbers.
type DueOverview struct {
	Worklist       []WorklistEntry `json:"worklist"`
	CollectionRate float64         `json:"collection_rate"`
	TotalBookings  int             `json:"total_bookings"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookingSource interface {
	ListOpen(ctx context.Context) ([]models.Booking, error)
}

type inventorySource interface {
	ListItems(ctx context.Context) ([]models.InventoryItem, error)
	ListMovements(ctx context.Context) ([]models.StockTransaction, error)
}

type service struct {
	repo      Repository
	dbClient  txRunner
	bookings  bookingSource
	inventory inventorySource
	rules     Rules
	now       func() time.Time
}

// ServiceParams wires the ledger service dependencies.
type ServiceParams struct {
	Repository Repository
	DB         txRunner
	Bookings   bookingSource
	Inventory  inventorySource
	Rules      Rules
}

// NewService constructs the ledger service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repository == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking source required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory source required")
	}
	rules := params.Rules
	if rules.DailyLateFee.IsZero() && rules.GraceDays == 0 && rules.DueSoonDays == 0 {
		rules = DefaultRules()
	}
	return &service{
		repo:      params.Repository,
		dbClient:  params.DB,
		bookings:  params.Bookings,
		inventory: params.Inventory,
		rules:     rules,
		now:       time.Now,
	}, nil
}

// RecordPayment settles cash against a booking. The booking row is locked for
// the duration of the transaction so concurrent settlements serialize; the
// payment row is immutable once written.
func (s *service) RecordPayment(ctx context.Context, input RecordPaymentInput) (*SettlementResult, error) {
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking_id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.Method))
	}

	receipt := strings.TrimSpace(input.ReceiptNumber)
	if receipt == "" {
		receipt = s.generateReference("OR")
	}

	var result SettlementResult
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := repo.FindBookingForUpdate(ctx, input.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booking")
		}
		if booking.Status != enums.BookingStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("booking is %s and does not accept payments", booking.Status))
		}

		payment := &models.Payment{
			BookingID:     booking.ID,
			Amount:        input.Amount,
			Method:        input.Method,
			ReceiptNumber: receipt,
			Notes:         input.Notes,
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			if db.IsUniqueViolation(err, "idx_payments_receipt_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "receipt number already used")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment")
		}

		booking.TotalPaid = booking.TotalPaid.Add(input.Amount)
		booking.Balance = clampToZero(booking.Balance.Sub(input.Amount))
		booking.Status = StatusAfterSettlement(booking.Status, booking.Balance)

		if err := repo.SaveBooking(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating booking balance")
		}

		result.Payment = payment
		result.Booking = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecordCredit applies a non-cash adjustment. Credits reduce the balance but
// never count toward cash collected.
func (s *service) RecordCredit(ctx context.Context, input RecordCreditInput) (*SettlementResult, error) {
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking_id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason is required")
	}

	reference := strings.TrimSpace(input.ReferenceNumber)
	if reference == "" {
		reference = s.generateReference("CR")
	}

	var result SettlementResult
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		booking, err := repo.FindBookingForUpdate(ctx, input.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booking")
		}
		if booking.Status != enums.BookingStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("booking is %s and does not accept credits", booking.Status))
		}

		credit := &models.Credit{
			BookingID:       booking.ID,
			Amount:          input.Amount,
			Reason:          strings.TrimSpace(input.Reason),
			ReferenceNumber: reference,
			Notes:           input.Notes,
		}
		if err := repo.CreateCredit(ctx, credit); err != nil {
			if db.IsUniqueViolation(err, "idx_credits_reference_number") {
				return pkgerrors.New(pkgerrors.CodeConflict, "reference number already used")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating credit")
		}

		booking.Balance = clampToZero(booking.Balance.Sub(input.Amount))
		booking.Status = StatusAfterSettlement(booking.Status, booking.Balance)

		if err := repo.SaveBooking(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating booking balance")
		}

		result.Credit = credit
		result.Booking = booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) ListPayments(ctx context.Context, params ListParams) ([]models.Payment, *pagination.Cursor, error) {
	payments, cursor, err := s.repo.ListPayments(ctx, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing payments")
	}
	return payments, cursor, nil
}

func (s *service) ListCredits(ctx context.Context, params ListParams) ([]models.Credit, *pagination.Cursor, error) {
	credits, cursor, err := s.repo.ListCredits(ctx, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing credits")
	}
	return credits, cursor, nil
}

// DueOverview classifies every open booking against today.
func (s *service) DueOverview(ctx context.Context) (*DueOverview, error) {
	bookings, err := s.bookings.ListOpen(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing bookings")
	}
	today := s.now().UTC()
	return &DueOverview{
		Worklist:       BuildWorklist(bookings, today, s.rules),
		CollectionRate: CollectionRate(bookings, today, s.rules),
		TotalBookings:  len(bookings),
	}, nil
}

func (s *service) Revenue(ctx context.Context, year int, month time.Month) (*RevenueSummary, error) {
	if year <= 0 || month < time.January || month > time.December {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid month selection")
	}
	payments, err := s.repo.ListAllPayments(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing payments")
	}
	credits, err := s.repo.ListAllCredits(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing credits")
	}
	movements, err := s.inventory.ListMovements(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing stock movements")
	}
	items, err := s.inventory.ListItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing inventory items")
	}
	summary := AggregateRevenue(payments, credits, movements, items, year, month)
	return &summary, nil
}

func (s *service) Series(ctx context.Context, months int) ([]SeriesPoint, error) {
	if months <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "months must be positive")
	}
	payments, err := s.repo.ListAllPayments(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing payments")
	}
	credits, err := s.repo.ListAllCredits(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing credits")
	}
	return MonthlySeries(payments, credits, months, s.now().UTC()), nil
}

// generateReference builds document numbers like OR-20250901-143015-042.
func (s *service) generateReference(prefix string) string {
	now := s.now().UTC()
	return fmt.Sprintf("%s-%s-%03d", prefix, now.Format("20060102-150405"), rand.Intn(1000))
}

func clampToZero(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}
