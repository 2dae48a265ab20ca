// Package domain contains the core data types for the HotelSoft backend.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"fmt"
	"time"
)

// RoomType categorizes a room. It drives the loyalty accrual rate.
type RoomType string

// All valid room types.
const (
	RoomSingle RoomType = "SINGLE"
	RoomDouble RoomType = "DOUBLE"
	RoomSuite  RoomType = "SUITE"
	RoomFamily RoomType = "FAMILY"
)

// ParseRoomType converts a string into a RoomType, case-sensitively.
// Returns ErrValidation (wrapped) for unknown values.
func ParseRoomType(s string) (RoomType, error) {
	switch RoomType(s) {
	case RoomSingle, RoomDouble, RoomSuite, RoomFamily:
		return RoomType(s), nil
	}
	return "", fmt.Errorf("%w: unknown room type %q", ErrValidation, s)
}

// Room is a single bookable room in the hotel's inventory.
// The reservation core only reads rooms; inventory management lives elsewhere.
type Room struct {
	ID         int64    `json:"id"`
	Number     string   `json:"number"`
	Type       RoomType `json:"type"`
	PriceCents int64    `json:"price_cents"` // nightly price in currency minor units
	Enabled    bool     `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
