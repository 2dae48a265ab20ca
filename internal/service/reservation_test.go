package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proyectohotelsoft/backend/internal/domain"
	"github.com/proyectohotelsoft/backend/internal/repo"
	"github.com/proyectohotelsoft/backend/internal/service"
)

// memRoomRepo is an in-memory RoomRepo for service unit tests.
type memRoomRepo struct {
	rooms map[int64]domain.Room
}

var _ repo.RoomRepo = (*memRoomRepo)(nil)

func (m *memRoomRepo) GetByID(_ context.Context, id int64) (domain.Room, error) {
	room, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, fmt.Errorf("room %d: %w", id, domain.ErrNotFound)
	}
	return room, nil
}

func (m *memRoomRepo) GetByIDForUpdate(ctx context.Context, id int64) (domain.Room, error) {
	return m.GetByID(ctx, id)
}

func (m *memRoomRepo) List(_ context.Context) ([]domain.Room, error) {
	out := make([]domain.Room, 0, len(m.rooms))
	for _, room := range m.rooms {
		out = append(out, room)
	}
	return out, nil
}

// memUserRepo is an in-memory UserRepo that counts balance writes.
type memUserRepo struct {
	users  map[int64]domain.User
	writes int
}

var _ repo.UserRepo = (*memUserRepo)(nil)

func (m *memUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return domain.User{}, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	return user, nil
}

func (m *memUserRepo) GetByIDForUpdate(ctx context.Context, id int64) (domain.User, error) {
	return m.GetByID(ctx, id)
}

func (m *memUserRepo) SetPoints(_ context.Context, id int64, points int) (int, error) {
	user, ok := m.users[id]
	if !ok {
		return 0, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
	}
	user.Points = points
	m.users[id] = user
	m.writes++
	return points, nil
}

// memReservationRepo is an in-memory ReservationRepo. lockedReads counts
// GetByIDForUpdate calls so tests can assert that status transitions read
// the row under a lock rather than with a plain GetByID.
type memReservationRepo struct {
	reservations map[int64]domain.Reservation
	nextID       int64
	createErr    error
	lockedReads  int
}

var _ repo.ReservationRepo = (*memReservationRepo)(nil)

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{reservations: map[int64]domain.Reservation{}, nextID: 1}
}

func (m *memReservationRepo) Create(_ context.Context, res domain.Reservation) (domain.Reservation, error) {
	if m.createErr != nil {
		return domain.Reservation{}, m.createErr
	}
	res.ID = m.nextID
	m.nextID++
	m.reservations[res.ID] = res
	return res, nil
}

func (m *memReservationRepo) GetByID(_ context.Context, id int64) (domain.Reservation, error) {
	res, ok := m.reservations[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("reservation %d: %w", id, domain.ErrNotFound)
	}
	return res, nil
}

func (m *memReservationRepo) GetByIDForUpdate(ctx context.Context, id int64) (domain.Reservation, error) {
	m.lockedReads++
	return m.GetByID(ctx, id)
}

func (m *memReservationRepo) ListPaged(_ context.Context, _ domain.PaginationParams) ([]domain.Reservation, int64, error) {
	var out []domain.Reservation
	for _, res := range m.reservations {
		out = append(out, res)
	}
	return out, int64(len(out)), nil
}

func (m *memReservationRepo) ListByUserPaged(_ context.Context, userID int64, _ domain.PaginationParams) ([]domain.Reservation, int64, error) {
	var out []domain.Reservation
	for _, res := range m.reservations {
		if res.UserID == userID {
			out = append(out, res)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memReservationRepo) ListActiveByRoom(_ context.Context, roomID int64) ([]domain.Reservation, error) {
	var out []domain.Reservation
	for _, res := range m.reservations {
		if res.RoomID == roomID && res.Status != domain.StatusCancelled {
			out = append(out, res)
		}
	}
	return out, nil
}

func (m *memReservationRepo) ListAll(_ context.Context) ([]domain.ExportRow, error) {
	return nil, nil
}

func (m *memReservationRepo) UpdateStatus(_ context.Context, id int64, status domain.ReservationStatus) (domain.Reservation, error) {
	res, ok := m.reservations[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("reservation %d: %w", id, domain.ErrNotFound)
	}
	res.Status = status
	m.reservations[id] = res
	return res, nil
}

// fakeStore satisfies service.Store. WithTx just invokes fn over the
// in-memory repos; transactional rollback is exercised by the repo
// integration tests, not here.
type fakeStore struct {
	repos repo.Repos
}

var _ service.Store = (*fakeStore)(nil)

func (f *fakeStore) Repos() repo.Repos { return f.repos }

func (f *fakeStore) WithTx(_ context.Context, fn func(r repo.Repos) error) error {
	return fn(f.repos)
}

type fixture struct {
	rooms        *memRoomRepo
	users        *memUserRepo
	reservations *memReservationRepo
	store        *fakeStore
}

func newFixture() *fixture {
	rooms := &memRoomRepo{rooms: map[int64]domain.Room{
		1: {ID: 1, Number: "101", Type: domain.RoomDouble, PriceCents: 10000, Enabled: true},
		2: {ID: 2, Number: "102", Type: domain.RoomSingle, PriceCents: 8000, Enabled: true},
		3: {ID: 3, Number: "201", Type: domain.RoomSuite, PriceCents: 40000, Enabled: false},
	}}
	users := &memUserRepo{users: map[int64]domain.User{
		1: {ID: 1, Email: "ana@example.com", FullName: "Ana Torres", Points: 0},
		2: {ID: 2, Email: "luis@example.com", FullName: "Luis Prada", Points: 10},
	}}
	reservations := newMemReservationRepo()
	return &fixture{
		rooms:        rooms,
		users:        users,
		reservations: reservations,
		store:        &fakeStore{repos: repo.Repos{Rooms: rooms, Users: users, Reservations: reservations}},
	}
}

func newService(f *fixture, initial domain.ReservationStatus) *service.ReservationService {
	return service.NewReservationService(f.store, service.NewAvailability(), service.NewPricing(), service.NewLoyalty(), initial)
}

func validInput() service.CreateReservationInput {
	return service.CreateReservationInput{
		RoomID:     1,
		UserID:     1,
		GuestName:  "Ana Torres",
		GuestEmail: "ana@example.com",
		GuestPhone: "+57 300 1234567",
		CheckIn:    date(10),
		CheckOut:   date(12),
	}
}

func TestReservationService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("books and accrues points", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		res, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		// Two nights in a DOUBLE: 2 x 10000 total, 2 points per night.
		assert.Equal(t, int64(20000), res.TotalCents)
		assert.Zero(t, res.PointsRedeemed)
		assert.Equal(t, 4, res.PointsAccrued)
		assert.Equal(t, domain.StatusConfirmed, res.Status)
		assert.NotEmpty(t, res.PaymentRef)
		assert.Equal(t, "Ana Torres", res.GuestName)

		user, err := f.users.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 4, user.Points)
	})

	t.Run("redemption clamps total and accrues on new balance", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		in := validInput()
		in.RoomID = 2 // SINGLE at 8000
		in.UserID = 2 // balance 10
		in.CheckOut = date(11)
		in.RedeemPoints = true
		in.PointsToRedeem = 10

		res, err := svc.Create(ctx, in)
		require.NoError(t, err)

		// 8000 - 10 points x 1000 clamps at zero; the SINGLE night still
		// accrues one point on the emptied balance.
		assert.Equal(t, int64(0), res.TotalCents)
		assert.Equal(t, 10, res.PointsRedeemed)
		assert.Equal(t, 1, res.PointsAccrued)

		user, err := f.users.GetByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, user.Points)
	})

	t.Run("redeem flag off ignores points field", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		in := validInput()
		in.UserID = 2
		in.RedeemPoints = false
		in.PointsToRedeem = 10

		res, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, int64(20000), res.TotalCents)
		assert.Zero(t, res.PointsRedeemed)
	})

	t.Run("insufficient points leaves no partial state", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		in := validInput()
		in.UserID = 2 // balance 10
		in.RedeemPoints = true
		in.PointsToRedeem = 50

		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInsufficientPoints)
		assert.Zero(t, f.users.writes)
		assert.Empty(t, f.reservations.reservations)
	})

	t.Run("occupied room", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		_, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		in := validInput()
		in.UserID = 2
		in.CheckIn = date(11)
		in.CheckOut = date(13)
		_, err = svc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrRoomOccupied)
	})

	t.Run("back to back booking succeeds", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		_, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		in := validInput()
		in.UserID = 2
		in.CheckIn = date(12)
		in.CheckOut = date(14)
		_, err = svc.Create(ctx, in)
		assert.NoError(t, err)
	})

	t.Run("cancelled reservation frees the dates", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		first, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		require.NoError(t, svc.Cancel(ctx, first.ID))

		in := validInput()
		in.UserID = 2
		_, err = svc.Create(ctx, in)
		assert.NoError(t, err)
	})

	t.Run("room not found", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		in := validInput()
		in.RoomID = 99
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("disabled room reads as not found", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		in := validInput()
		in.RoomID = 3
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("user not found", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		in := validInput()
		in.UserID = 99
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid date range", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		in := validInput()
		in.CheckOut = in.CheckIn
		_, err := svc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidRange)
		assert.Empty(t, f.reservations.reservations)
	})

	t.Run("guest validation", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		for name, mutate := range map[string]func(*service.CreateReservationInput){
			"blank name":    func(in *service.CreateReservationInput) { in.GuestName = "   " },
			"invalid email": func(in *service.CreateReservationInput) { in.GuestEmail = "not-an-email" },
			"blank phone":   func(in *service.CreateReservationInput) { in.GuestPhone = "" },
		} {
			t.Run(name, func(t *testing.T) {
				in := validInput()
				mutate(&in)
				_, err := svc.Create(ctx, in)
				assert.ErrorIs(t, err, domain.ErrValidation)
			})
		}
	})

	t.Run("pending policy sets initial status", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusPending)

		res, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, res.Status)
	})
}

func TestReservationService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("flips status and keeps the row", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		res, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		require.NoError(t, svc.Cancel(ctx, res.ID))

		got, err := svc.GetByID(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, got.Status)
	})

	t.Run("second cancel is rejected", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		res, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		require.NoError(t, svc.Cancel(ctx, res.ID))

		err = svc.Cancel(ctx, res.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	})

	t.Run("cancel does not refund redeemed points", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		in := validInput()
		in.RoomID = 2
		in.UserID = 2
		in.CheckOut = date(11)
		in.RedeemPoints = true
		in.PointsToRedeem = 5

		res, err := svc.Create(ctx, in)
		require.NoError(t, err)
		require.NoError(t, svc.Cancel(ctx, res.ID))

		user, err := f.users.GetByID(ctx, 2)
		require.NoError(t, err)
		// 10 - 5 redeemed + 1 accrued; cancellation leaves points alone.
		assert.Equal(t, 6, user.Points)
	})

	t.Run("unknown id", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		err := svc.Cancel(ctx, 404)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("status is read under the row lock", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		res, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		require.NoError(t, svc.Cancel(ctx, res.ID))
		assert.Equal(t, 1, f.reservations.lockedReads,
			"the status check must use the locking read so a concurrent transition cannot see the old status")
	})
}

func TestReservationService_Confirm(t *testing.T) {
	ctx := context.Background()

	t.Run("pending to confirmed", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusPending)

		res, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		confirmed, err := svc.Confirm(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	})

	t.Run("already confirmed", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		res, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		_, err = svc.Confirm(ctx, res.ID)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("cancelled", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusPending)

		res, err := svc.Create(ctx, validInput())
		require.NoError(t, err)
		require.NoError(t, svc.Cancel(ctx, res.ID))

		_, err = svc.Confirm(ctx, res.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	})

	t.Run("status is read under the row lock", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusPending)

		res, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		_, err = svc.Confirm(ctx, res.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, f.reservations.lockedReads,
			"a confirm racing a cancel must observe the cancel, so the read takes the lock")
	})
}

func TestReservationService_Lists(t *testing.T) {
	ctx := context.Background()

	t.Run("empty lists are non-nil", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		all, total, err := svc.ListPaged(ctx, domain.PaginationParams{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
		assert.Zero(t, total)

		mine, total, err := svc.ListByUserPaged(ctx, 1, domain.PaginationParams{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.NotNil(t, mine)
		assert.Empty(t, mine)
		assert.Zero(t, total)
	})

	t.Run("list by user filters", func(t *testing.T) {
		f := newFixture()
		svc := newService(f, domain.StatusConfirmed)

		_, err := svc.Create(ctx, validInput())
		require.NoError(t, err)

		other := validInput()
		other.UserID = 2
		other.RoomID = 2
		_, err = svc.Create(ctx, other)
		require.NoError(t, err)

		mine, total, err := svc.ListByUserPaged(ctx, 1, domain.PaginationParams{Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, mine, 1)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, int64(1), mine[0].UserID)
	})
}
