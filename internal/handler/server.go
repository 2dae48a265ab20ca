// Package handler implements the HTTP layer of the HotelSoft backend.
// Handlers decode requests, call the service layer, and map domain errors to
// HTTP status codes. No business logic lives here.
package handler

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/proyectohotelsoft/backend/internal/domain"
	"github.com/proyectohotelsoft/backend/internal/service"
)

// ReservationServicer defines the business operations the reservation
// handlers depend on. Defining the interface here (in the consumer package)
// follows the Go convention: "accept interfaces, return concrete types".
// It lets handler tests inject a mock without touching the database or the
// real service layer.
type ReservationServicer interface {
	Create(ctx context.Context, in service.CreateReservationInput) (domain.Reservation, error)
	Cancel(ctx context.Context, id int64) error
	Confirm(ctx context.Context, id int64) (domain.Reservation, error)
	GetByID(ctx context.Context, id int64) (domain.Reservation, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Reservation, int64, error)
	ListByUserPaged(ctx context.Context, userID int64, p domain.PaginationParams) ([]domain.Reservation, int64, error)
}

// RoomServicer defines the room catalog reads the handlers depend on.
type RoomServicer interface {
	GetByID(ctx context.Context, id int64) (domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
}

// Exporter defines the report operation the export handler depends on.
type Exporter interface {
	Export(ctx context.Context) ([]domain.ExportRow, error)
}

// Server holds the handler dependencies and registers all routes.
type Server struct {
	reservations ReservationServicer
	rooms        RoomServicer
	export       Exporter

	// openapi is the raw OpenAPI document served at /openapi.yaml.
	openapi []byte
}

// NewServer constructs the Server with all its dependencies.
func NewServer(reservations ReservationServicer, rooms RoomServicer, export Exporter, openapi []byte) *Server {
	return &Server{
		reservations: reservations,
		rooms:        rooms,
		export:       export,
		openapi:      openapi,
	}
}

// Routes registers every endpoint on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/api", func(r chi.Router) {
		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", s.CreateReservation)
			r.Get("/", s.ListReservations)
			r.Get("/{id}", s.GetReservation)
			r.Delete("/{id}", s.CancelReservation)
			r.Post("/{id}/confirm", s.ConfirmReservation)
		})

		r.Get("/users/{id}/reservations", s.ListUserReservations)

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", s.ListRooms)
			r.Get("/{id}", s.GetRoom)
		})

		r.Get("/export", s.GetExport)
	})
}
