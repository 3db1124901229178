package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/smartstockhq/smartstock-backend/pkg/db/models"
	"github.com/smartstockhq/smartstock-backend/pkg/enums"
	pkgerrors "github.com/smartstockhq/smartstock-backend/pkg/errors"
	"github.com/smartstockhq/smartstock-backend/pkg/pagination"
)

// Service exposes merchandise management operations.
type Service interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	List(ctx context.Context, params ListItemsParams) ([]models.InventoryItem, *pagination.Cursor, error)
	AdjustStock(ctx context.Context, input AdjustStockInput) (*AdjustmentResult, error)
	Movements(ctx context.Context, params ListMovementsParams) ([]models.StockTransaction, *pagination.Cursor, error)

	// Full-table reads feed revenue aggregation and reporting.
	ListItems(ctx context.Context) ([]models.InventoryItem, error)
	ListMovements(ctx context.Context) ([]models.StockTransaction, error)
}

// CreateItemInput holds the validated payload to create a merchandise line.
type CreateItemInput struct {
	Name       string
	Category   string
	Department string
	Stock      int
	Price      decimal.Decimal
}

// AdjustStockInput describes one stock movement request.
type AdjustStockInput struct {
	ItemID   uuid.UUID
	Action   enums.StockAction
	Quantity int
	Reason   *string
}

// AdjustmentResult returns the updated item together with the log entry the
// adjustment produced.
type AdjustmentResult struct {
	Item     *models.InventoryItem
	Movement *models.StockTransaction
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	dbClient txRunner
}

// NewService constructs the inventory service.
func NewService(repo Repository, dbClient txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db runner required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateItem(ctx context.Context, input CreateItemInput) (*models.InventoryItem, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}

	item := &models.InventoryItem{
		Name:       name,
		Category:   strings.TrimSpace(input.Category),
		Department: strings.TrimSpace(input.Department),
		Stock:      input.Stock,
		Price:      input.Price,
		Status:     enums.StockStatusForQuantity(input.Stock),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating inventory item")
	}
	return item, nil
}

func (s *service) GetItem(ctx context.Context, itemID uuid.UUID) (*models.InventoryItem, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading inventory item")
	}
	return item, nil
}

// DeleteItem removes the merchandise line. Its movement history stays behind;
// the product name snapshot keeps those rows readable.
func (s *service) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting inventory item")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListItemsParams) ([]models.InventoryItem, *pagination.Cursor, error) {
	items, cursor, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing inventory items")
	}
	return items, cursor, nil
}

// AdjustStock applies one movement under a row lock. An out movement larger
// than the current stock is rejected before anything is written.
func (s *service) AdjustStock(ctx context.Context, input AdjustStockInput) (*AdjustmentResult, error) {
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if !input.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock action %q", input.Action))
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var result AdjustmentResult
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindByIDForUpdate(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading inventory item")
		}

		previous := item.Stock
		switch input.Action {
		case enums.StockActionIn:
			item.Stock = previous + input.Quantity
		case enums.StockActionOut:
			if input.Quantity > previous {
				return pkgerrors.New(pkgerrors.CodeValidation,
					fmt.Sprintf("cannot remove %d units, only %d in stock", input.Quantity, previous))
			}
			item.Stock = previous - input.Quantity
		}
		item.Status = enums.StockStatusForQuantity(item.Stock)

		if err := repo.Save(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating stock level")
		}

		movement := &models.StockTransaction{
			InventoryID:   item.ID,
			ProductName:   item.Name,
			Action:        input.Action,
			Quantity:      input.Quantity,
			PreviousStock: previous,
			NewStock:      item.Stock,
			Reason:        input.Reason,
		}
		if err := repo.CreateMovement(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording stock movement")
		}

		result.Item = item
		result.Movement = movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) Movements(ctx context.Context, params ListMovementsParams) ([]models.StockTransaction, *pagination.Cursor, error) {
	movements, cursor, err := s.repo.ListMovements(ctx, params)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing stock movements")
	}
	return movements, cursor, nil
}

func (s *service) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing inventory items")
	}
	return items, nil
}

func (s *service) ListMovements(ctx context.Context) ([]models.StockTransaction, error) {
	movements, err := s.repo.ListAllMovements(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing stock movements")
	}
	return movements, nil
}
