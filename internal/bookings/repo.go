package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	"github.com/smartstockhq/smartstock-backend/pkg/pagination"
)

// Repository manages lease rows plus the room rows a lease transition flips.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) error
	Save(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, bookingID uuid.UUID) error
	FindByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, params ListParams) ([]models.Booking, *pagination.Cursor, error)
	ListByStatuses(ctx context.Context, statuses ...enums.BookingStatus) ([]models.Booking, error)
	FindRoomForUpdate(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	SaveRoom(ctx context.Context, room *models.Room) error
}

// ListParams configures cursor pagination for lease listings.
type ListParams struct {
	Status *enums.BookingStatus
	Limit  int
	Cursor *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bookings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) Save(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *repository) Delete(ctx context.Context, bookingID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Booking{}, "id = ?", bookingID).Error
}

func (r *repository) FindByID(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate locks the lease row for a status transition. SQLite
// serializes writers on its own, so the lock clause is Postgres-only.
func (r *repository) FindByIDForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
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

func (r *repository) List(ctx context.Context, params ListParams) ([]models.Booking, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Booking{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var bookings []models.Booking
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&bookings).Error; err != nil {
		return nil, nil, err
	}

	if len(bookings) > normalized {
		next := bookings[normalized]
		bookings = bookings[:normalized]
		return bookings, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return bookings, nil, nil
}

func (r *repository) ListByStatuses(ctx context.Context, statuses ...enums.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) FindRoomForUpdate(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var room models.Room
	if err := query.First(&room, "id = ?", roomID).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *repository) SaveRoom(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}
