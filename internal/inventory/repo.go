package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	"github.com/smartstockhq/smartstock-backend/pkg/pagination"
)

// Repository manages merchandise rows and their append-only movement log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.InventoryItem) error
	Save(ctx context.Context, item *models.InventoryItem) error
	Delete(ctx context.Context, itemID uuid.UUID) error
	FindByID(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error)
	FindByIDForUpdate(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error)
	List(ctx context.Context, params ListItemsParams) ([]models.InventoryItem, *pagination.Cursor, error)
	ListAll(ctx context.Context) ([]models.InventoryItem, error)
	CreateMovement(ctx context.Context, movement *models.StockTransaction) error
	ListMovements(ctx context.Context, params ListMovementsParams) ([]models.StockTransaction, *pagination.Cursor, error)
	ListAllMovements(ctx context.Context) ([]models.StockTransaction, error)
}

// ListItemsParams filters the merchandise listing.
type ListItemsParams struct {
	Search     string
	Category   string
	Department string
	Status     *enums.StockStatus
	Limit      int
	Cursor     *pagination.Cursor
}

// ListMovementsParams scopes the movement log, optionally to one item.
type ListMovementsParams struct {
	InventoryID *uuid.UUID
	Limit       int
	Cursor      *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) Save(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) Delete(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.InventoryItem{}, "id = ?", itemID).Error
}

func (r *repository) FindByID(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByIDForUpdate locks the item row so concurrent stock adjustments
// serialize. SQLite serializes writers on its own, so the lock clause is
// Postgres-only.
func (r *repository) FindByIDForUpdate(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var item models.InventoryItem
	if err := query.First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, params ListItemsParams) ([]models.InventoryItem, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.InventoryItem{})
	if search := strings.TrimSpace(params.Search); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}
	if params.Department != "" {
		query = query.Where("department = ?", params.Department)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var items []models.InventoryItem
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, nil, err
	}

	if len(items) > normalized {
		next := items[normalized]
		items = items[:normalized]
		return items, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return items, nil, nil
}

func (r *repository) ListAll(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateMovement(ctx context.Context, movement *models.StockTransaction) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

func (r *repository) ListMovements(ctx context.Context, params ListMovementsParams) ([]models.StockTransaction, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.StockTransaction{})
	if params.InventoryID != nil {
		query = query.Where("inventory_id = ?", *params.InventoryID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var movements []models.StockTransaction
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&movements).Error; err != nil {
		return nil, nil, err
	}

	if len(movements) > normalized {
		next := movements[normalized]
		movements = movements[:normalized]
		return movements, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return movements, nil, nil
}

func (r *repository) ListAllMovements(ctx context.Context) ([]models.StockTransaction, error) {
	var movements []models.StockTransaction
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
