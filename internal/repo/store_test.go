package repo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proyectohotelsoft/backend/internal/domain"
	"github.com/proyectohotelsoft/backend/internal/repo"
)

// The Store under test wraps the rolled-back outer test transaction, so its
// WithTx transactions become savepoints. Commit and rollback semantics are
// the same either way.

func TestStore_WithTx_CommitsOnNil(t *testing.T) {
	tx := newTestTx(t)
	store := repo.NewStore(tx)
	ctx := context.Background()

	userID := insertUser(t, tx, "commit@example.com", 5)

	err := store.WithTx(ctx, func(r repo.Repos) error {
		_, err := r.Users.SetPoints(ctx, userID, 9)
		return err
	})
	require.NoError(t, err)

	user, err := store.Repos().Users.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 9, user.Points, "committed write should be visible")
}

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	tx := newTestTx(t)
	store := repo.NewStore(tx)
	ctx := context.Background()

	roomID := insertRoom(t, tx, "401", "DOUBLE", 10000, true)
	userID := insertUser(t, tx, "rollback@example.com", 5)

	boom := errors.New("payment declined")
	err := store.WithTx(ctx, func(r repo.Repos) error {
		if _, err := r.Users.SetPoints(ctx, userID, 0); err != nil {
			return err
		}
		if _, err := r.Reservations.Create(ctx, reservationFixture(roomID, userID)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom, "fn's error should pass through unwrapped")

	// Both writes from the failed transaction are gone.
	user, err := store.Repos().Users.GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, user.Points)

	active, err := store.Repos().Reservations.ListActiveByRoom(ctx, roomID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestStore_Repos_ReadsWithoutTransaction(t *testing.T) {
	tx := newTestTx(t)
	store := repo.NewStore(tx)
	ctx := context.Background()

	roomID := insertRoom(t, tx, "402", "SINGLE", 8000, true)

	room, err := store.Repos().Rooms.GetByID(ctx, roomID)
	require.NoError(t, err)
	assert.Equal(t, "402", room.Number)

	_, err = store.Repos().Rooms.GetByID(ctx, 999999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
