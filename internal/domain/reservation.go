package domain

import (
	"fmt"
	"time"
)

// ReservationStatus is the reservation state machine:
// PENDING → CONFIRMED → CANCELLED, with CANCELLED reachable from either
// non-terminal state and terminal once entered.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
)

// ParseReservationStatus converts a string into a ReservationStatus.
// Returns ErrValidation (wrapped) for unknown values.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch ReservationStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return ReservationStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown reservation status %q", ErrValidation, s)
}

// CanTransitionTo reports whether the state machine permits moving from s
// to next. Nothing leaves CANCELLED.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	}
	return false
}

// Reservation is a booking of one room for a half-open date range
// [CheckIn, CheckOut). Guest contact fields are denormalized at creation
// time and never change afterwards; the only mutable field is Status.
// Rows are never deleted — cancellation is a status flip.
type Reservation struct {
	ID     int64 `json:"id"`
	RoomID int64 `json:"room_id"`
	UserID int64 `json:"user_id"`

	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`

	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`

	// TotalCents is the final price in currency minor units, after any
	// points discount, never negative.
	TotalCents int64 `json:"total_cents"`

	// PointsRedeemed and PointsAccrued record the loyalty movements applied
	// in the booking transaction, for auditability.
	PointsRedeemed int `json:"points_redeemed"`
	PointsAccrued  int `json:"points_accrued"`

	Status ReservationStatus `json:"status"`

	// PaymentRef is an opaque token handed to the payment collaborator.
	PaymentRef string `json:"payment_ref"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overlaps reports whether the reservation's date range shares any instant
// with [checkIn, checkOut) under half-open semantics: a reservation ending
// exactly when another begins does not overlap.
func (r Reservation) Overlaps(checkIn, checkOut time.Time) bool {
	return r.CheckIn.Before(checkOut) && r.CheckOut.After(checkIn)
}
