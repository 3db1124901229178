package rooms

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
)

// Repository manages leasable room rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, room *models.Room) error
	Save(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, roomID uuid.UUID) error
	FindByID(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	FindByIDForUpdate(ctx context.Context, roomID uuid.UUID) (*models.Room, error)
	ListAll(ctx context.Context) ([]models.Room, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a room repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *repository) Save(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

func (r *repository) Delete(ctx context.Context, roomID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Room{}, "id = ?", roomID).Error
}

func (r *repository) FindByID(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", roomID).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByIDForUpdate locks the room row so a lease open and a room delete
// cannot interleave. SQLite serializes writers on its own, so the lock clause
// is Postgres-only.
func (r *repository) FindByIDForUpdate(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
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

func (r *repository) ListAll(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rooms).Error; err != nil {
		return nil, err
	}
	return rooms, nil
}
