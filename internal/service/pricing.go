// Package service contains the business logic for the HotelSoft backend.
// Services validate inputs, enforce booking rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"fmt"
	"time"

	"github.com/proyectohotelsoft/backend/internal/domain"
)

// PointValueCents is the discount granted per redeemed loyalty point,
// in currency minor units.
const PointValueCents int64 = 1000

// nightDuration is one whole occupancy unit.
const nightDuration = 24 * time.Hour

// Pricing computes night counts and booking totals. All monetary arithmetic
// is in integer minor units; there is no floating point anywhere in the
// price path.
type Pricing struct{}

// NewPricing constructs a Pricing engine.
func NewPricing() *Pricing {
	return &Pricing{}
}

// Nights returns the number of whole 24h periods between checkIn and
// checkOut, truncated down. Returns domain.ErrInvalidRange when the range
// yields fewer than one night, including checkOut == checkIn and inverted
// ranges.
func (p *Pricing) Nights(checkIn, checkOut time.Time) (int, error) {
	nights := int(checkOut.Sub(checkIn) / nightDuration)
	if nights <= 0 {
		return 0, fmt.Errorf("%w: check-out must be at least one night after check-in", domain.ErrInvalidRange)
	}
	return nights, nil
}

// Total computes the final price for a stay and the number of points
// consumed by redemption.
//
// The base price is nights × nightlyCents. When redeemPoints > 0 each point
// discounts PointValueCents, and the total clamps at zero — redeeming more
// value than the stay costs forfeits the excess rather than producing a
// negative price. Redemption is capped by balance: exceeding it returns
// domain.ErrInsufficientPoints and consumes nothing.
func (p *Pricing) Total(nights int, nightlyCents int64, redeemPoints, balance int) (totalCents int64, consumed int, err error) {
	if redeemPoints < 0 {
		return 0, 0, fmt.Errorf("%w: points to redeem must not be negative", domain.ErrInvalidAmount)
	}
	if redeemPoints > balance {
		return 0, 0, fmt.Errorf("%w: requested %d points, balance is %d", domain.ErrInsufficientPoints, redeemPoints, balance)
	}

	total := int64(nights) * nightlyCents
	total -= int64(redeemPoints) * PointValueCents
	if total < 0 {
		total = 0
	}
	return total, redeemPoints, nil
}
