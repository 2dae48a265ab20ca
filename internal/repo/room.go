package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/proyectohotelsoft/backend/internal/domain"
)

// RoomRepo defines the persistence operations for the room catalog.
// The reservation core only reads rooms; there is no write path here.
type RoomRepo interface {
	// GetByID retrieves a single room by primary key.
	// Returns domain.ErrNotFound if no room with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Room, error)

	// GetByIDForUpdate retrieves a room and takes a row-level lock on it for
	// the duration of the surrounding transaction. The booking flow locks the
	// room row so that the availability check and the reservation insert are
	// serialized per room. Must be called inside a transaction.
	GetByIDForUpdate(ctx context.Context, id int64) (domain.Room, error)

	// List returns all rooms ordered by room number.
	List(ctx context.Context) ([]domain.Room, error)
}

// pgRoomRepo is the Postgres implementation of RoomRepo.
type pgRoomRepo struct {
	db db
}

// NewRoomRepo constructs a RoomRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; inside a booking transaction pass pgx.Tx.
func NewRoomRepo(db db) RoomRepo {
	return &pgRoomRepo{db: db}
}

const roomColumns = `id, number, type, price_cents, enabled, created_at, updated_at`

// GetByID retrieves a room by primary key.
func (r *pgRoomRepo) GetByID(ctx context.Context, id int64) (domain.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanRoom(row)
	if err != nil {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByIDForUpdate retrieves a room under a FOR UPDATE row lock.
func (r *pgRoomRepo) GetByIDForUpdate(ctx context.Context, id int64) (domain.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = @id FOR UPDATE`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanRoom(row)
	if err != nil {
		return domain.Room{}, fmt.Errorf("repo.RoomRepo.GetByIDForUpdate: %w", err)
	}
	return result, nil
}

// List returns all rooms ordered by room number.
func (r *pgRoomRepo) List(ctx context.Context) ([]domain.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms ORDER BY number`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.RoomRepo.List: %w", err)
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RoomRepo.List: scan: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RoomRepo.List: rows: %w", err)
	}

	return rooms, nil
}

// scanRoom maps a single database row into a domain.Room.
func scanRoom(s scanner) (domain.Room, error) {
	var (
		room     domain.Room
		roomType string
	)

	err := s.Scan(&room.ID, &room.Number, &roomType, &room.PriceCents,
		&room.Enabled, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Room{}, domain.ErrNotFound
		}
		return domain.Room{}, err
	}

	room.Type, err = domain.ParseRoomType(roomType)
	if err != nil {
		return domain.Room{}, err
	}

	return room, nil
}
