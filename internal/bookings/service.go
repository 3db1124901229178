package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
	"github.com/smartstockhq/smartstock-backend/pkg/pagination"
)

// Service exposes lease lifecycle operations.
type Service interface {
	CreateLease(ctx context.Context, input CreateLeaseInput) (*models.Booking, error)
	GetLease(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	EndLease(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	CancelLease(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error)
	DeleteLease(ctx context.Context, bookingID uuid.UUID) error
	List(ctx context.Context, params ListParams) ([]models.Booking, *pagination.Cursor, error)
	AppendReminder(ctx context.Context, bookingID uuid.UUID, entry string) error

	// ListOpen feeds due classification: every lease that still participates
	// in collections, settled or not.
	ListOpen(ctx context.Context) ([]models.Booking, error)
}

// CreateLeaseInput holds the validated payload to open a lease.
type CreateLeaseInput struct {
	RoomID          uuid.UUID
	Tenant          string
	Contact         *string
	Email           *string
	LeaseStart      time.Time
	DurationMonths  int
	MonthlyRent     decimal.Decimal
	SecurityDeposit decimal.Decimal
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	dbClient txRunner
}

// NewService constructs the bookings service.
func NewService(repo Repository, dbClient txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db runner required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// CreateLease opens a lease and flips its room to occupied in one
// transaction. The balance starts at the full contract value; rent defaults
// to the room rate when not supplied.
func (s *service) CreateLease(ctx context.Context, input CreateLeaseInput) (*models.Booking, error) {
	tenant := strings.TrimSpace(input.Tenant)
	if tenant == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant is required")
	}
	if input.RoomID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "room_id is required")
	}
	if input.LeaseStart.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lease_start is required")
	}
	if input.DurationMonths <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "duration_months must be positive")
	}
	if input.MonthlyRent.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "monthly_rent cannot be negative")
	}
	if input.SecurityDeposit.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "security_deposit cannot be negative")
	}

	var booking *models.Booking
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		room, err := repo.FindRoomForUpdate(ctx, input.RoomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "room not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading room")
		}
		if room.Status != enums.RoomStatusAvailable {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("room %q is already occupied", room.Name))
		}

		rent := input.MonthlyRent
		if rent.IsZero() {
			rent = room.Rate
		}

		lease := &models.Booking{
			RoomID:          room.ID,
			RoomName:        room.Name,
			Tenant:          tenant,
			Contact:         input.Contact,
			Email:           input.Email,
			LeaseStart:      input.LeaseStart,
			LeaseEnd:        input.LeaseStart.AddDate(0, input.DurationMonths, 0),
			MonthlyRent:     rent,
			DurationMonths:  input.DurationMonths,
			SecurityDeposit: input.SecurityDeposit,
			TotalPaid:       decimal.Zero,
			Status:          enums.BookingStatusActive,
			ReminderLog:     []string{},
		}
		lease.Balance = lease.ContractValue()

		if err := repo.Create(ctx, lease); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating lease")
		}

		room.Status = enums.RoomStatusOccupied
		if err := repo.SaveRoom(ctx, room); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking room occupied")
		}

		booking = lease
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *service) GetLease(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booking")
	}
	return booking, nil
}

func (s *service) EndLease(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.closeLease(ctx, bookingID, enums.BookingStatusEnded)
}

func (s *service) CancelLease(ctx context.Context, bookingID uuid.UUID) (*models.Booking, error) {
	return s.closeLease(ctx, bookingID, enums.BookingStatusCancelled)
}

// closeLease marks the lease terminal and frees its room atomically.
func (s *service) closeLease(ctx context.Context, bookingID uuid.UUID, terminal enums.BookingStatus) (*models.Booking, error) {
	var booking *models.Booking
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		lease, err := repo.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booking")
		}
		if lease.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("booking is already %s", lease.Status))
		}

		lease.Status = terminal
		if err := repo.Save(ctx, lease); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "closing lease")
		}

		if err := s.releaseRoom(ctx, repo, lease.RoomID); err != nil {
			return err
		}

		booking = lease
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// DeleteLease removes the lease row. An open lease frees its room first so the
// unit can be leased again.
func (s *service) DeleteLease(ctx context.Context, bookingID uuid.UUID) error {
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		lease, err := repo.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booking")
		}

		if !lease.Status.IsTerminal() {
			if err := s.releaseRoom(ctx, repo, lease.RoomID); err != nil {
				return err
			}
		}

		if err := repo.Delete(ctx, bookingID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting booking")
		}
		return nil
	})
}

func (s *service) releaseRoom(ctx context.Context, repo Repository, roomID uuid.UUID) error {
	room, err := repo.FindRoomForUpdate(ctx, roomID)
	if err != nil {
		// The room may have been deleted out from under a historical lease.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading room")
	}
	room.Status = enums.RoomStatusAvailable
	if err := repo.SaveRoom(ctx, room); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "freeing room")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) ([]models.Booking, *pagination.Cursor, error) {
	bookings, cursor, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing bookings")
	}
	return bookings, cursor, nil
}

// AppendReminder records one reminder send on the lease's append-only log.
func (s *service) AppendReminder(ctx context.Context, bookingID uuid.UUID, entry string) error {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reminder entry is required")
	}
	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		lease, err := repo.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booking")
		}

		lease.ReminderLog = append(lease.ReminderLog, entry)
		if err := repo.Save(ctx, lease); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording reminder")
		}
		return nil
	})
}

func (s *service) ListOpen(ctx context.Context) ([]models.Booking, error) {
	bookings, err := s.repo.ListByStatuses(ctx, enums.BookingStatusActive, enums.BookingStatusPaid)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing open bookings")
	}
	return bookings, nil
}
