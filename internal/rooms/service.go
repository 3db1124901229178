package rooms

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartstockhq/smartstock-backend/pkg/db"
	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
)

// Service exposes room management operations.
type Service interface {
	CreateRoom(ctx context.Context, input CreateRoomInput) (*models.Room, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	DeleteRoom(ctx context.Context, roomID uuid.UUID) error
	ListRooms(ctx context.Context) ([]models.Room, error)
	Summary(ctx context.Context) (*OccupancySummary, error)
}

// CreateRoomInput holds the validated payload to register a room.
type CreateRoomInput struct {
	Name     string
	Type     string
	Capacity int
	Rate     decimal.Decimal
}

// OccupancySummary counts the portfolio by occupancy.
type OccupancySummary struct {
	Total         int     `json:"total"`
	Occupied      int     `json:"occupied"`
	Available     int     `json:"available"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type service struct {
	repo Repository
}

// NewService constructs the rooms service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rooms repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateRoom(ctx context.Context, input CreateRoomInput) (*models.Room, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Capacity <= 0 {
		input.Capacity = 1
	}
	if input.Rate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate cannot be negative")
	}

	room := &models.Room{
		Name:     name,
		Type:     strings.TrimSpace(input.Type),
		Capacity: input.Capacity,
		Rate:     input.Rate,
		Status:   enums.RoomStatusAvailable,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		if db.IsUniqueViolation(err, "idx_rooms_name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("room %q already exists", name))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating room")
	}
	return room, nil
}

func (s *service) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "room not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading room")
	}
	return room, nil
}

// DeleteRoom removes an available room. Occupied rooms hold an open lease and
// must be freed first.
func (s *service) DeleteRoom(ctx context.Context, roomID uuid.UUID) error {
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room.Status == enums.RoomStatusOccupied {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "room has an open lease and cannot be deleted")
	}
	if err := s.repo.Delete(ctx, roomID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting room")
	}
	return nil
}

func (s *service) ListRooms(ctx context.Context) ([]models.Room, error) {
	rooms, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing rooms")
	}
	return rooms, nil
}

func (s *service) Summary(ctx context.Context) (*OccupancySummary, error) {
	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	summary := &OccupancySummary{Total: len(rooms)}
	for _, room := range rooms {
		if room.Status == enums.RoomStatusOccupied {
			summary.Occupied++
		} else {
			summary.Available++
		}
	}
	if summary.Total > 0 {
		summary.OccupancyRate = math.Round(float64(summary.Occupied) / float64(summary.Total) * 100)
	}
	return summary, nil
}
