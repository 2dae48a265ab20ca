package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource (room, user, or reservation) does not exist, or the room is
// disabled for booking.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing guest name, malformed room type).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrInvalidRange is returned when a requested date range yields fewer than
// one whole night (check-out not strictly after check-in).
// Handlers should map this to HTTP 422.
var ErrInvalidRange = errors.New("invalid date range")

// ErrRoomOccupied is returned when an existing non-cancelled reservation
// overlaps the requested date range for the same room.
// Handlers should map this to HTTP 409 Conflict.
var ErrRoomOccupied = errors.New("room occupied")

// ErrInsufficientPoints is returned when a redemption request exceeds the
// user's points balance at the start of the booking transaction.
// Handlers should map this to HTTP 422.
var ErrInsufficientPoints = errors.New("insufficient points")

// ErrInvalidAmount is returned by the loyalty ledger for a negative points
// amount. Handlers should map this to HTTP 422.
var ErrInvalidAmount = errors.New("invalid points amount")

// ErrAlreadyCancelled is returned when cancelling a reservation that is
// already in the terminal CANCELLED state. The reservation is left
// unchanged. Handlers should map this to HTTP 409 Conflict.
var ErrAlreadyCancelled = errors.New("reservation already cancelled")
