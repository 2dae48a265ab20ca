package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/proyectohotelsoft/backend/internal/domain"
	"github.com/proyectohotelsoft/backend/internal/repo"
)

// Store is the transactional persistence handle the reservation lifecycle
// depends on. Defining the interface here (in the consumer package) keeps
// the service unit-testable with a fake whose WithTx just invokes fn over
// mock repos.
type Store interface {
	// Repos returns non-transactional repos for single-statement reads.
	Repos() repo.Repos
	// WithTx runs fn inside one database transaction, committing on nil
	// and rolling back on error. Row locks taken by fn are released on
	// every exit path.
	WithTx(ctx context.Context, fn func(r repo.Repos) error) error
}

// CreateReservationInput carries everything needed to book a room.
// Guest contact fields are denormalized onto the reservation.
type CreateReservationInput struct {
	RoomID int64
	UserID int64

	GuestName  string
	GuestEmail string
	GuestPhone string

	CheckIn  time.Time
	CheckOut time.Time

	// RedeemPoints requests a points discount of PointsToRedeem points.
	// When false, PointsToRedeem is ignored.
	RedeemPoints   bool
	PointsToRedeem int
}

// ReservationService owns the reservation lifecycle: creation under one
// atomic booking transaction, the status state machine, and the read
// operations exposed to the HTTP layer.
type ReservationService struct {
	store        Store
	availability *Availability
	pricing      *Pricing
	loyalty      *Loyalty

	// initialStatus is the state newly created reservations start in.
	// It is a policy decided by the surrounding payment flow (PENDING when
	// bookings await payment confirmation, CONFIRMED when they do not),
	// so it is configuration, not a constant.
	initialStatus domain.ReservationStatus
}

// NewReservationService constructs a ReservationService.
// initialStatus must be StatusPending or StatusConfirmed.
func NewReservationService(store Store, availability *Availability, pricing *Pricing, loyalty *Loyalty, initialStatus domain.ReservationStatus) *ReservationService {
	return &ReservationService{
		store:         store,
		availability:  availability,
		pricing:       pricing,
		loyalty:       loyalty,
		initialStatus: initialStatus,
	}
}

// Create books a room for a user. Inside one transaction it locks the room
// row (serializing concurrent bookings of the same room), locks the user
// row (serializing points mutations), checks availability, prices the stay,
// applies the points redemption and accrual, and inserts the reservation.
// Any failure rolls the whole booking back — no partial state is ever
// visible.
//
// Error taxonomy: domain.ErrValidation (guest fields), domain.ErrInvalidRange
// (fewer than one night), domain.ErrNotFound (room or user missing, or room
// disabled), domain.ErrRoomOccupied (overlap), domain.ErrInsufficientPoints
// (over-redemption).
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (domain.Reservation, error) {
	if err := validateGuest(in); err != nil {
		return domain.Reservation{}, err
	}

	nights, err := s.pricing.Nights(in.CheckIn, in.CheckOut)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Create: %w", err)
	}

	var created domain.Reservation
	err = s.store.WithTx(ctx, func(r repo.Repos) error {
		// Lock order is fixed: room before user. Every booking acquires
		// locks in this order, which rules out deadlocks between
		// concurrent bookings.
		room, err := r.Rooms.GetByIDForUpdate(ctx, in.RoomID)
		if err != nil {
			return fmt.Errorf("service.ReservationService.Create: room: %w", err)
		}
		if !room.Enabled {
			return fmt.Errorf("service.ReservationService.Create: room %d is disabled: %w", room.ID, domain.ErrNotFound)
		}

		user, err := r.Users.GetByIDForUpdate(ctx, in.UserID)
		if err != nil {
			return fmt.Errorf("service.ReservationService.Create: user: %w", err)
		}

		available, err := s.availability.IsAvailable(ctx, r.Reservations, room.ID, in.CheckIn, in.CheckOut)
		if err != nil {
			return fmt.Errorf("service.ReservationService.Create: %w", err)
		}
		if !available {
			return fmt.Errorf("service.ReservationService.Create: room %d, %s to %s: %w",
				room.ID, in.CheckIn.Format("2006-01-02"), in.CheckOut.Format("2006-01-02"), domain.ErrRoomOccupied)
		}

		redeem := 0
		if in.RedeemPoints {
			redeem = in.PointsToRedeem
		}
		total, consumed, err := s.pricing.Total(nights, room.PriceCents, redeem, user.Points)
		if err != nil {
			return fmt.Errorf("service.ReservationService.Create: %w", err)
		}

		// Redemption first, then accrual on the post-redemption balance.
		if consumed > 0 {
			if _, err := s.loyalty.Debit(ctx, r.Users, user.ID, consumed); err != nil {
				return err
			}
		}
		accrued := s.loyalty.AccrualPoints(room.Type, nights)
		if accrued > 0 {
			if _, err := s.loyalty.Credit(ctx, r.Users, user.ID, accrued); err != nil {
				return err
			}
		}

		created, err = r.Reservations.Create(ctx, domain.Reservation{
			RoomID:         room.ID,
			UserID:         user.ID,
			GuestName:      strings.TrimSpace(in.GuestName),
			GuestEmail:     in.GuestEmail,
			GuestPhone:     strings.TrimSpace(in.GuestPhone),
			CheckIn:        in.CheckIn,
			CheckOut:       in.CheckOut,
			TotalCents:     total,
			PointsRedeemed: consumed,
			PointsAccrued:  accrued,
			Status:         s.initialStatus,
			PaymentRef:     uuid.NewString(),
		})
		if err != nil {
			return fmt.Errorf("service.ReservationService.Create: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	return created, nil
}

// Cancel transitions a reservation to CANCELLED. The row is kept — history
// is never deleted. Cancelling an already-cancelled reservation returns
// domain.ErrAlreadyCancelled and changes nothing.
//
// Points redeemed or accrued by the booking are not reversed. That is a
// known product gap, kept deliberately; the points_redeemed and
// points_accrued columns hold what a future refund would need.
func (s *ReservationService) Cancel(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(r repo.Repos) error {
		// Lock the row so the status check and the write are one unit.
		// A plain read would let a concurrent transition see the old
		// status and both writes succeed.
		res, err := r.Reservations.GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("service.ReservationService.Cancel: %w", err)
		}
		if res.Status == domain.StatusCancelled {
			return fmt.Errorf("service.ReservationService.Cancel: reservation %d: %w", id, domain.ErrAlreadyCancelled)
		}

		if _, err := r.Reservations.UpdateStatus(ctx, id, domain.StatusCancelled); err != nil {
			return fmt.Errorf("service.ReservationService.Cancel: %w", err)
		}
		return nil
	})
}

// Confirm transitions a PENDING reservation to CONFIRMED. It is the hook
// the payment collaborator calls once payment for the reservation's
// payment_ref is acknowledged. Confirming a cancelled reservation returns
// domain.ErrAlreadyCancelled; confirming a confirmed one is a validation
// error.
func (s *ReservationService) Confirm(ctx context.Context, id int64) (domain.Reservation, error) {
	var confirmed domain.Reservation
	err := s.store.WithTx(ctx, func(r repo.Repos) error {
		// Same row lock as Cancel: a confirm racing a cancel must observe
		// the cancel, or CANCELLED would stop being terminal.
		res, err := r.Reservations.GetByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("service.ReservationService.Confirm: %w", err)
		}
		if res.Status == domain.StatusCancelled {
			return fmt.Errorf("service.ReservationService.Confirm: reservation %d: %w", id, domain.ErrAlreadyCancelled)
		}
		if !res.Status.CanTransitionTo(domain.StatusConfirmed) {
			return fmt.Errorf("service.ReservationService.Confirm: %w: reservation %d is already %s", domain.ErrValidation, id, res.Status)
		}

		confirmed, err = r.Reservations.UpdateStatus(ctx, id, domain.StatusConfirmed)
		if err != nil {
			return fmt.Errorf("service.ReservationService.Confirm: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return confirmed, nil
}

// GetByID returns a single reservation.
func (s *ReservationService) GetByID(ctx context.Context, id int64) (domain.Reservation, error) {
	res, err := s.store.Repos().Reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.GetByID: %w", err)
	}
	return res, nil
}

// ListPaged returns one page of reservations plus the total count.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ReservationService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int64, error) {
	reservations, total, err := s.store.Repos().Reservations.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ReservationService.ListPaged: %w", err)
	}
	if reservations == nil {
		reservations = []domain.Reservation{}
	}
	return reservations, total, nil
}

// ListByUserPaged returns one page of a user's reservations plus the total
// count. Always returns a non-nil slice.
func (s *ReservationService) ListByUserPaged(ctx context.Context, userID int64, p domain.PaginationParams) ([]domain.Reservation, int64, error) {
	reservations, total, err := s.store.Repos().Reservations.ListByUserPaged(ctx, userID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ReservationService.ListByUserPaged: %w", err)
	}
	if reservations == nil {
		reservations = []domain.Reservation{}
	}
	return reservations, total, nil
}

// validateGuest enforces the titleholder rules shared by all bookings:
// name and phone non-empty, email syntactically valid.
func validateGuest(in CreateReservationInput) error {
	if strings.TrimSpace(in.GuestName) == "" {
		return fmt.Errorf("%w: guest name is required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(in.GuestEmail); err != nil {
		return fmt.Errorf("%w: guest email is invalid", domain.ErrValidation)
	}
	if strings.TrimSpace(in.GuestPhone) == "" {
		return fmt.Errorf("%w: guest phone is required", domain.ErrValidation)
	}
	return nil
}
