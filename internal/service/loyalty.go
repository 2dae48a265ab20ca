package service

import (
	"context"
	"fmt"

	"github.com/proyectohotelsoft/backend/internal/domain"
)

// accrualRates maps a room type to the loyalty points earned per night.
// A lookup table rather than a switch so adding a room type is a one-line
// change here plus the domain enum.
var accrualRates = map[domain.RoomType]int{
	domain.RoomSingle: 1,
	domain.RoomDouble: 2,
	domain.RoomFamily: 3,
	domain.RoomSuite:  4,
}

// pointsStore is the slice of repo.UserRepo the ledger needs.
// The tx-bound repo is passed per call so every balance mutation runs
// inside the caller's booking transaction and under the user's row lock.
type pointsStore interface {
	GetByIDForUpdate(ctx context.Context, id int64) (domain.User, error)
	SetPoints(ctx context.Context, id int64, points int) (int, error)
}

// Loyalty is the points ledger. It owns the two balance mutations (debit on
// redemption, credit on accrual) and the accrual rate table. The balance
// can never go negative: debits are capped by the balance read under the
// row lock, and the schema CHECK backs that up.
type Loyalty struct{}

// NewLoyalty constructs a Loyalty ledger.
func NewLoyalty() *Loyalty {
	return &Loyalty{}
}

// AccrualPoints returns the points earned for a completed booking of the
// given room type and night count. Unknown room types earn nothing.
func (l *Loyalty) AccrualPoints(roomType domain.RoomType, nights int) int {
	return accrualRates[roomType] * nights
}

// Debit subtracts points from the user's balance and returns the new
// balance. Returns domain.ErrInvalidAmount for negative points and
// domain.ErrInsufficientPoints when the balance cannot cover the debit;
// in both cases the balance is untouched.
func (l *Loyalty) Debit(ctx context.Context, users pointsStore, userID int64, points int) (int, error) {
	if points < 0 {
		return 0, fmt.Errorf("service.Loyalty.Debit: %w: %d", domain.ErrInvalidAmount, points)
	}

	user, err := users.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("service.Loyalty.Debit: %w", err)
	}
	if points > user.Points {
		return 0, fmt.Errorf("service.Loyalty.Debit: %w: debit %d, balance %d", domain.ErrInsufficientPoints, points, user.Points)
	}

	balance, err := users.SetPoints(ctx, userID, user.Points-points)
	if err != nil {
		return 0, fmt.Errorf("service.Loyalty.Debit: %w", err)
	}
	return balance, nil
}

// Credit adds points to the user's balance and returns the new balance.
// Returns domain.ErrInvalidAmount for negative points.
func (l *Loyalty) Credit(ctx context.Context, users pointsStore, userID int64, points int) (int, error) {
	if points < 0 {
		return 0, fmt.Errorf("service.Loyalty.Credit: %w: %d", domain.ErrInvalidAmount, points)
	}

	user, err := users.GetByIDForUpdate(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("service.Loyalty.Credit: %w", err)
	}

	balance, err := users.SetPoints(ctx, userID, user.Points+points)
	if err != nil {
		return 0, fmt.Errorf("service.Loyalty.Credit: %w", err)
	}
	return balance, nil
}
