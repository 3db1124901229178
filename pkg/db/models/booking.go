package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/pkg/enums"
)

// Booking is a tenant lease over a room. Balance is the contract value minus
// everything settled so far and never goes below zero; payments and credits
// mutate it only inside a locked transaction.
type Booking struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RoomID          uuid.UUID           `gorm:"column:room_id;type:uuid;not null;index"`
	RoomName        string              `gorm:"column:room_name;not null"`
	Tenant          string              `gorm:"column:tenant;not null"`
	Contact         *string             `gorm:"column:contact"`
	Email           *string             `gorm:"column:email"`
	LeaseStart      time.Time           `gorm:"column:lease_start;type:date;not null"`
	LeaseEnd        time.Time           `gorm:"column:lease_end;type:date;not null"`
	MonthlyRent     decimal.Decimal     `gorm:"column:monthly_rent;type:numeric(12,2);not null"`
	DurationMonths  int                 `gorm:"column:duration_months;not null"`
	SecurityDeposit decimal.Decimal     `gorm:"column:security_deposit;type:numeric(12,2);not null;default:0"`
	TotalPaid       decimal.Decimal     `gorm:"column:total_paid;type:numeric(12,2);not null;default:0"`
	Balance         decimal.Decimal     `gorm:"column:balance;type:numeric(12,2);not null"`
	Status          enums.BookingStatus `gorm:"column:status;type:booking_status_enum;not null;default:'active'"`
	ReminderLog     pq.StringArray      `gorm:"column:reminder_log;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// ContractValue is the full rent owed over the lease term.
func (b Booking) ContractValue() decimal.Decimal {
	return b.MonthlyRent.Mul(decimal.NewFromInt(int64(b.DurationMonths)))
}
