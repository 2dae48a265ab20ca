package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/proyectohotelsoft/backend/internal/domain"
)

// UserRepo defines the persistence operations the reservation core needs
// from the user aggregate: identity lookup and the points balance.
type UserRepo interface {
	// GetByID retrieves a user by primary key.
	// Returns domain.ErrNotFound if no user with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.User, error)

	// GetByIDForUpdate retrieves a user and takes a row-level lock on it for
	// the duration of the surrounding transaction, serializing points
	// mutations per user. Must be called inside a transaction.
	GetByIDForUpdate(ctx context.Context, id int64) (domain.User, error)

	// SetPoints overwrites the user's points balance and returns the new
	// value. Callers are expected to hold the user's row lock (via
	// GetByIDForUpdate) so the read-modify-write is race-free. A negative
	// balance violates the schema CHECK and surfaces as an error.
	SetPoints(ctx context.Context, id int64, points int) (int, error)
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `id, email, full_name, points, created_at, updated_at`

// GetByID retrieves a user by primary key.
func (r *pgUserRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByIDForUpdate retrieves a user under a FOR UPDATE row lock.
func (r *pgUserRepo) GetByIDForUpdate(ctx context.Context, id int64) (domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = @id FOR UPDATE`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanUser(row)
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByIDForUpdate: %w", err)
	}
	return result, nil
}

// SetPoints overwrites the points balance and returns the stored value.
func (r *pgUserRepo) SetPoints(ctx context.Context, id int64, points int) (int, error) {
	const q = `
		UPDATE users
		SET points     = @points,
		    updated_at = now()
		WHERE id = @id
		RETURNING points`

	var stored int
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "points": points}).Scan(&stored)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("repo.UserRepo.SetPoints: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("repo.UserRepo.SetPoints: %w", err)
	}
	return stored, nil
}

// scanUser maps a single database row into a domain.User.
func scanUser(s scanner) (domain.User, error) {
	var u domain.User

	err := s.Scan(&u.ID, &u.Email, &u.FullName, &u.Points, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}

	return u, nil
}
