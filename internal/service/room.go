package service

import (
	"context"
	"fmt"

	"github.com/proyectohotelsoft/backend/internal/domain"
)

// RoomService exposes the read-only room catalog to the HTTP layer.
type RoomService struct {
	store Store
}

// NewRoomService constructs a RoomService backed by the provided Store.
func NewRoomService(store Store) *RoomService {
	return &RoomService{store: store}
}

// GetByID returns a single room by ID.
func (s *RoomService) GetByID(ctx context.Context, id int64) (domain.Room, error) {
	room, err := s.store.Repos().Rooms.GetByID(ctx, id)
	if err != nil {
		return domain.Room{}, fmt.Errorf("service.RoomService.GetByID: %w", err)
	}
	return room, nil
}

// List returns all rooms ordered by room number.
// Always returns a non-nil slice so callers can safely range over it.
func (s *RoomService) List(ctx context.Context) ([]domain.Room, error) {
	rooms, err := s.store.Repos().Rooms.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.RoomService.List: %w", err)
	}
	if rooms == nil {
		rooms = []domain.Room{}
	}
	return rooms, nil
}
