package enums

import "fmt"

// BookingStatus maps to the booking_status_enum enum in Postgres.
//
// Active leases accrue rent and accept ledger entries. Paid means the full
// contract value has been settled. Ended and cancelled are terminal.
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusPaid      BookingStatus = "paid"
	BookingStatusEnded     BookingStatus = "ended"
	BookingStatusCancelled BookingStatus = "cancelled"
)

var validBookingStatuses = []BookingStatus{
	BookingStatusActive,
	BookingStatusPaid,
	BookingStatusEnded,
	BookingStatusCancelled,
}

// String implements fmt.Stringer.
func (s BookingStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BookingStatus.
func (s BookingStatus) IsValid() bool {
	for _, candidate := range validBookingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusEnded || s == BookingStatusCancelled
}

// ParseBookingStatus converts raw input into a BookingStatus.
func ParseBookingStatus(value string) (BookingStatus, error) {
	for _, candidate := range validBookingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking status %q", value)
}
