package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/proyectohotelsoft/backend/internal/domain"
)

// pgExclusionViolation is the Postgres error code raised when an insert
// collides with the no-overlap EXCLUDE constraint on reservations.
const pgExclusionViolation = "23P01"

// ReservationRepo defines the persistence operations for reservations.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type ReservationRepo interface {
	// Create inserts a new reservation and returns the persisted record
	// (with DB-generated id, created_at, and updated_at populated).
	// Returns domain.ErrRoomOccupied if the row collides with the
	// no-overlap exclusion constraint — the storage-level backstop against
	// double-booking.
	Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error)

	// GetByID retrieves a single reservation by primary key.
	// Returns domain.ErrNotFound if no reservation with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Reservation, error)

	// GetByIDForUpdate retrieves a reservation and takes a row-level lock on
	// it for the duration of the surrounding transaction. Status transitions
	// read through this so the check-then-write is serialized per
	// reservation; a plain read would let two concurrent transitions both
	// see the old status. Must be called inside a transaction.
	GetByIDForUpdate(ctx context.Context, id int64) (domain.Reservation, error)

	// ListPaged returns one page of reservations ordered by check_in
	// descending, plus the total row count for pagination metadata.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int64, error)

	// ListByUserPaged is ListPaged restricted to one user's reservations.
	ListByUserPaged(ctx context.Context, userID int64, p domain.PaginationParams) ([]domain.Reservation, int64, error)

	// ListActiveByRoom returns all non-cancelled reservations for a room,
	// ordered by check_in. This is the occupied-room set the availability
	// check runs the overlap test against.
	ListActiveByRoom(ctx context.Context, roomID int64) ([]domain.Reservation, error)

	// ListAll returns every reservation joined with its room's number and
	// type, ordered by check_in, for the export report.
	ListAll(ctx context.Context) ([]domain.ExportRow, error)

	// UpdateStatus transitions a reservation to the given status and
	// returns the updated record. Returns domain.ErrNotFound if the
	// reservation does not exist. Status is the only mutable field.
	UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (domain.Reservation, error)
}

// pgReservationRepo is the Postgres implementation of ReservationRepo.
type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a ReservationRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; inside a booking transaction
// pass pgx.Tx.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

const reservationColumns = `id, room_id, user_id, guest_name, guest_email, guest_phone,
		check_in, check_out, total_cents, points_redeemed, points_accrued,
		status, payment_ref, created_at, updated_at`

// Create inserts a new reservation row and returns the full persisted record.
func (r *pgReservationRepo) Create(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	q := `
		INSERT INTO reservations
			(room_id, user_id, guest_name, guest_email, guest_phone,
			 check_in, check_out, total_cents, points_redeemed, points_accrued,
			 status, payment_ref)
		VALUES
			(@room_id, @user_id, @guest_name, @guest_email, @guest_phone,
			 @check_in, @check_out, @total_cents, @points_redeemed, @points_accrued,
			 @status, @payment_ref)
		RETURNING ` + reservationColumns

	args := pgx.NamedArgs{
		"room_id":         res.RoomID,
		"user_id":         res.UserID,
		"guest_name":      res.GuestName,
		"guest_email":     res.GuestEmail,
		"guest_phone":     res.GuestPhone,
		"check_in":        res.CheckIn,
		"check_out":       res.CheckOut,
		"total_cents":     res.TotalCents,
		"points_redeemed": res.PointsRedeemed,
		"points_accrued":  res.PointsAccrued,
		"status":          string(res.Status),
		"payment_ref":     res.PaymentRef,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanReservation(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation {
			return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", domain.ErrRoomOccupied)
		}
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a reservation by primary key.
func (r *pgReservationRepo) GetByID(ctx context.Context, id int64) (domain.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByIDForUpdate retrieves a reservation under a FOR UPDATE row lock.
func (r *pgReservationRepo) GetByIDForUpdate(ctx context.Context, id int64) (domain.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = @id FOR UPDATE`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.GetByIDForUpdate: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of reservations plus the total row count.
func (r *pgReservationRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int64, error) {
	q := `SELECT ` + reservationColumns + `
		FROM reservations
		ORDER BY check_in DESC, id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: %w", err)
	}
	reservations, err := collectReservations(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: %w", err)
	}

	var total int64
	err = r.db.QueryRow(ctx, `SELECT count(*) FROM reservations`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListPaged: count: %w", err)
	}

	return reservations, total, nil
}

// ListByUserPaged returns one page of a single user's reservations.
func (r *pgReservationRepo) ListByUserPaged(ctx context.Context, userID int64, p domain.PaginationParams) ([]domain.Reservation, int64, error) {
	q := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = @user_id
		ORDER BY check_in DESC, id DESC
		LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{"user_id": userID, "limit": p.Limit, "offset": p.Offset()}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListByUserPaged: %w", err)
	}
	reservations, err := collectReservations(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListByUserPaged: %w", err)
	}

	var total int64
	err = r.db.QueryRow(ctx,
		`SELECT count(*) FROM reservations WHERE user_id = @user_id`,
		pgx.NamedArgs{"user_id": userID},
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.ReservationRepo.ListByUserPaged: count: %w", err)
	}

	return reservations, total, nil
}

// ListActiveByRoom returns all non-cancelled reservations for a room.
func (r *pgReservationRepo) ListActiveByRoom(ctx context.Context, roomID int64) ([]domain.Reservation, error) {
	q := `SELECT ` + reservationColumns + `
		FROM reservations
		WHERE room_id = @room_id AND status <> @cancelled
		ORDER BY check_in`

	args := pgx.NamedArgs{"room_id": roomID, "cancelled": string(domain.StatusCancelled)}
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListActiveByRoom: %w", err)
	}
	reservations, err := collectReservations(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListActiveByRoom: %w", err)
	}
	return reservations, nil
}

// ListAll returns every reservation joined with room number and type,
// one ExportRow per reservation, ordered by check_in.
func (r *pgReservationRepo) ListAll(ctx context.Context) ([]domain.ExportRow, error) {
	const q = `
		SELECT r.id, rm.number, rm.type, r.guest_name, r.guest_email,
		       r.check_in, r.check_out, r.total_cents,
		       r.points_redeemed, r.points_accrued, r.status
		FROM reservations r
		JOIN rooms rm ON rm.id = r.room_id
		ORDER BY r.check_in, r.id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListAll: %w", err)
	}
	defer rows.Close()

	var out []domain.ExportRow
	for rows.Next() {
		var (
			row      domain.ExportRow
			roomType string
			status   string
		)
		err := rows.Scan(&row.ReservationID, &row.RoomNumber, &roomType,
			&row.GuestName, &row.GuestEmail, &row.CheckIn, &row.CheckOut,
			&row.TotalCents, &row.PointsRedeemed, &row.PointsAccrued, &status)
		if err != nil {
			return nil, fmt.Errorf("repo.ReservationRepo.ListAll: scan: %w", err)
		}
		if row.RoomType, err = domain.ParseRoomType(roomType); err != nil {
			return nil, fmt.Errorf("repo.ReservationRepo.ListAll: %w", err)
		}
		if row.Status, err = domain.ParseReservationStatus(status); err != nil {
			return nil, fmt.Errorf("repo.ReservationRepo.ListAll: %w", err)
		}
		row.Nights = int(row.CheckOut.Sub(row.CheckIn).Hours() / 24)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListAll: rows: %w", err)
	}

	return out, nil
}

// UpdateStatus transitions a reservation to the given status.
func (r *pgReservationRepo) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) (domain.Reservation, error) {
	q := `
		UPDATE reservations
		SET status     = @status,
		    updated_at = now()
		WHERE id = @id
		RETURNING ` + reservationColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "status": string(status)})
	result, err := scanReservation(row)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("repo.ReservationRepo.UpdateStatus: %w", err)
	}
	return result, nil
}

// collectReservations drains rows into a slice, closing rows on return.
func collectReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// scanReservation maps a single database row into a domain.Reservation.
func scanReservation(s scanner) (domain.Reservation, error) {
	var (
		res    domain.Reservation
		status string
	)

	err := s.Scan(&res.ID, &res.RoomID, &res.UserID,
		&res.GuestName, &res.GuestEmail, &res.GuestPhone,
		&res.CheckIn, &res.CheckOut, &res.TotalCents,
		&res.PointsRedeemed, &res.PointsAccrued,
		&status, &res.PaymentRef, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}

	res.Status, err = domain.ParseReservationStatus(status)
	if err != nil {
		return domain.Reservation{}, err
	}

	return res, nil
}
