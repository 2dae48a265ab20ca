package domain

import "time"

// ExportRow is a single row in the flat reservation report.
// It is a denormalized view: reservation fields joined with the room's
// number and type, one row per reservation regardless of state, so the
// report doubles as a cancellation audit.
type ExportRow struct {
	ReservationID int64
	RoomNumber    string
	RoomType      RoomType

	GuestName  string
	GuestEmail string

	CheckIn  time.Time
	CheckOut time.Time
	Nights   int

	TotalCents     int64
	PointsRedeemed int
	PointsAccrued  int

	Status ReservationStatus
}
