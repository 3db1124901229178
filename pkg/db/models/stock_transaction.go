package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartstockhq/smartstock-backend/pkg/enums"
)

// StockTransaction records one stock movement. Rows are append-only; the
// product name is snapshotted so history survives item deletion.
type StockTransaction struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InventoryID   uuid.UUID         `gorm:"column:inventory_id;type:uuid;not null;index"`
	ProductName   string            `gorm:"column:product_name;not null"`
	Action        enums.StockAction `gorm:"column:action;type:stock_action_enum;not null"`
	Quantity      int               `gorm:"column:quantity;not null"`
	PreviousStock int               `gorm:"column:previous_stock;not null"`
	NewStock      int               `gorm:"column:new_stock;not null"`
	Reason        *string           `gorm:"column:reason"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
