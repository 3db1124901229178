package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Credit is an immutable non-cash balance adjustment on a booking, such as a
// discount, a waiver, or a deposit applied to rent.
type Credit struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID       uuid.UUID       `gorm:"column:booking_id;type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Reason          string          `gorm:"column:reason;not null"`
	Notes           *string         `gorm:"column:notes"`
	ReferenceNumber string          `gorm:"column:reference_number;not null;uniqueIndex"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}
