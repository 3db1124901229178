package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/pkg/enums"
)

// Room is a leasable unit. Status flips between available and occupied as
// leases open and close.
type Room struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string           `gorm:"column:name;not null;uniqueIndex"`
	Type      string           `gorm:"column:type;not null"`
	Capacity  int              `gorm:"column:capacity;not null;default:1"`
	Rate      decimal.Decimal  `gorm:"column:rate;type:numeric(12,2);not null"`
	Status    enums.RoomStatus `gorm:"column:status;type:room_status_enum;not null;default:'available'"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
