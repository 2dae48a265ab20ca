package service

import (
	"context"
	"fmt"
	"time"

	"github.com/proyectohotelsoft/backend/internal/domain"
)

// activeReservationLister is the slice of repo.ReservationRepo the
// availability check needs. The tx-bound repo is passed per call so the
// check reads the same snapshot the subsequent insert writes into.
type activeReservationLister interface {
	ListActiveByRoom(ctx context.Context, roomID int64) ([]domain.Reservation, error)
}

// Availability decides whether a room is free for a requested date range.
// It has no side effects. Room existence and date-range validity are the
// caller's responsibility: the booking flow resolves the room (taking its
// row lock) before asking here, which is what makes check-then-insert safe
// under concurrency.
type Availability struct{}

// NewAvailability constructs an Availability checker.
func NewAvailability() *Availability {
	return &Availability{}
}

// IsAvailable reports whether no non-cancelled reservation for roomID
// overlaps [checkIn, checkOut). Half-open semantics: a stay ending exactly
// when another begins is not an overlap, so back-to-back bookings are fine.
func (a *Availability) IsAvailable(ctx context.Context, reservations activeReservationLister, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	existing, err := reservations.ListActiveByRoom(ctx, roomID)
	if err != nil {
		return false, fmt.Errorf("service.Availability.IsAvailable: %w", err)
	}

	for _, r := range existing {
		if r.Overlaps(checkIn, checkOut) {
			return false, nil
		}
	}
	return true, nil
}
