package enums

import "fmt"

// RoomStatus maps to the room_status_enum enum in Postgres.
type RoomStatus string

const (
	RoomStatusAvailable RoomStatus = "available"
	RoomStatusOccupied  RoomStatus = "occupied"
)

var validRoomStatuses = []RoomStatus{
	RoomStatusAvailable,
	RoomStatusOccupied,
}

// String implements fmt.Stringer.
func (s RoomStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RoomStatus.
func (s RoomStatus) IsValid() bool {
	for _, candidate := range validRoomStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseRoomStatus converts raw input into a RoomStatus.
func ParseRoomStatus(value string) (RoomStatus, error) {
	for _, candidate := range validRoomStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid room status %q", value)
}
