package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/pagination"
)

// Repository manages persistence for the payment/credit ledger and the
// booking rows it settles against.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePayment(ctx context.Context, payment *models.Payment) error
	CreateCredit(ctx context.Context, credit *models.Credit) error
	FindBookingForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	SaveBooking(ctx context.Context, booking *models.Booking) error
	ListPayments(ctx context.Context, params ListParams) ([]models.Payment, *pagination.Cursor, error)
	ListCredits(ctx context.Context, params ListParams) ([]models.Credit, *pagination.Cursor, error)
	ListPaymentsByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Payment, error)
	ListCreditsByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Credit, error)
	ListAllPayments(ctx context.Context) ([]models.Payment, error)
	ListAllCredits(ctx context.Context) ([]models.Credit, error)
}

// ListParams configures cursor pagination for ledger listings, optionally
// scoped to one booking.
type ListParams struct {
	BookingID *uuid.UUID
	Limit     int
	Cursor    *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) CreateCredit(ctx context.Context, credit *models.Credit) error {
	return r.db.WithContext(ctx).Create(credit).Error
}

// FindBookingForUpdate loads the booking under a row lock so concurrent
// settlements serialize instead of overwriting each other. SQLite serializes
// writers on its own, so the lock clause is Postgres-only.
func (r *repository) FindBookingForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var booking models.Booking
	if err := query.First(&booking, "id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) SaveBooking(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *repository) ListPayments(ctx context.Context, params ListParams) ([]models.Payment, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if params.BookingID != nil {
		query = query.Where("booking_id = ?", *params.BookingID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var payments []models.Payment
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&payments).Error; err != nil {
		return nil, nil, err
	}

	if len(payments) > normalized {
		next := payments[normalized]
		payments = payments[:normalized]
		return payments, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return payments, nil, nil
}

func (r *repository) ListCredits(ctx context.Context, params ListParams) ([]models.Credit, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Credit{})
	if params.BookingID != nil {
		query = query.Where("booking_id = ?", *params.BookingID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var credits []models.Credit
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&credits).Error; err != nil {
		return nil, nil, err
	}

	if len(credits) > normalized {
		next := credits[normalized]
		credits = credits[:normalized]
		return credits, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return credits, nil, nil
}

func (r *repository) ListPaymentsByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) ListCreditsByBooking(ctx context.Context, bookingID uuid.UUID) ([]models.Credit, error) {
	var credits []models.Credit
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&credits).Error; err != nil {
		return nil, err
	}
	return credits, nil
}

func (r *repository) ListAllPayments(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) ListAllCredits(ctx context.Context) ([]models.Credit, error) {
	var credits []models.Credit
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&credits).Error; err != nil {
		return nil, err
	}
	return credits, nil
}
