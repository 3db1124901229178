package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/pkg/enums"
)

// InventoryItem is a merchandise line with its current on-hand quantity.
// Status is always derived from Stock; it is stored for cheap filtering only.
type InventoryItem struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string            `gorm:"column:name;not null"`
	Category   string            `gorm:"column:category;not null"`
	Department string            `gorm:"column:department;not null"`
	Stock      int               `gorm:"column:stock;not null;default:0"`
	Price      decimal.Decimal   `gorm:"column:price;type:numeric(12,2);not null"`
	Status     enums.StockStatus `gorm:"column:status;type:stock_status_enum;not null"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
