package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repos bundles one repo per table, all bound to the same underlying
// connection. Inside Store.WithTx every repo shares one transaction, so a
// booking's availability check, points mutation, and reservation insert
// commit or roll back as a unit.
type Repos struct {
	Rooms        RoomRepo
	Users        UserRepo
	Reservations ReservationRepo
}

// beginner is satisfied by *pgxpool.Pool and by pgx.Tx (nested transactions
// become savepoints), which lets integration tests wrap a Store in a
// rolled-back outer transaction.
type beginner interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the transactional entry point to persistence. Services hold a
// Store rather than raw repos so that multi-table operations can run under
// one transaction.
type Store struct {
	conn beginner
}

// NewStore constructs a Store over the given connection.
// In production pass *pgxpool.Pool.
func NewStore(conn beginner) *Store {
	return &Store{conn: conn}
}

// Repos returns plain, non-transactional repos for single-statement reads.
func (s *Store) Repos() Repos {
	return newRepos(s.conn)
}

// WithTx begins a transaction, runs fn with repos bound to it, and commits
// if fn returns nil, rolling back otherwise. Rollback is deferred on all
// exit paths, so any row locks taken by fn are released even on panic.
func (s *Store) WithTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Store.WithTx: begin: %w", err)
	}
	// No-op after a successful commit.
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := fn(newRepos(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Store.WithTx: commit: %w", err)
	}
	return nil
}

func newRepos(conn db) Repos {
	return Repos{
		Rooms:        NewRoomRepo(conn),
		Users:        NewUserRepo(conn),
		Reservations: NewReservationRepo(conn),
	}
}
