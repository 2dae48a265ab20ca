package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/proyectohotelsoft/backend/internal/domain"
	"github.com/proyectohotelsoft/backend/internal/service"
)

// createReservationRequest is the JSON body for POST /api/reservations.
// Dates are RFC 3339 timestamps; the date range is half-open.
type createReservationRequest struct {
	RoomID         int64     `json:"room_id"`
	UserID         int64     `json:"user_id"`
	GuestName      string    `json:"guest_name"`
	GuestEmail     string    `json:"guest_email"`
	GuestPhone     string    `json:"guest_phone"`
	CheckIn        time.Time `json:"check_in"`
	CheckOut       time.Time `json:"check_out"`
	RedeemPoints   bool      `json:"redeem_points"`
	PointsToRedeem int       `json:"points_to_redeem"`
}

// pagination is the metadata block attached to list responses.
type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// reservationPage is the JSON body for paginated reservation listings.
type reservationPage struct {
	Data       []domain.Reservation `json:"data"`
	Pagination pagination           `json:"pagination"`
}

// CreateReservation handles POST /api/reservations.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	created, err := s.reservations.Create(r.Context(), service.CreateReservationInput{
		RoomID:         req.RoomID,
		UserID:         req.UserID,
		GuestName:      req.GuestName,
		GuestEmail:     req.GuestEmail,
		GuestPhone:     req.GuestPhone,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		RedeemPoints:   req.RedeemPoints,
		PointsToRedeem: req.PointsToRedeem,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListReservations handles GET /api/reservations.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20,
// max=100).
func (s *Server) ListReservations(w http.ResponseWriter, r *http.Request) {
	params := paginationFromQuery(r)
	reservations, total, err := s.reservations.ListPaged(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reservationPage{
		Data:       reservations,
		Pagination: pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetReservation handles GET /api/reservations/{id}.
func (s *Server) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	res, err := s.reservations.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// CancelReservation handles DELETE /api/reservations/{id}.
// The reservation is not deleted: it transitions to CANCELLED and stays
// queryable. Returns 204 on success.
func (s *Server) CancelReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := s.reservations.Cancel(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ConfirmReservation handles POST /api/reservations/{id}/confirm.
// Called by the payment flow once payment is acknowledged.
func (s *Server) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	res, err := s.reservations.Confirm(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// ListUserReservations handles GET /api/users/{id}/reservations.
func (s *Server) ListUserReservations(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(w, r)
	if !ok {
		return
	}

	params := paginationFromQuery(r)
	reservations, total, err := s.reservations.ListByUserPaged(r.Context(), userID, params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reservationPage{
		Data:       reservations,
		Pagination: pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// idParam parses the {id} path parameter. On failure it writes a 400 and
// returns ok=false.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		badRequest(w, "id must be an integer")
		return 0, false
	}
	return id, true
}

// paginationFromQuery builds PaginationParams from ?page= and ?limit=.
// Absent or malformed values fall back to the domain defaults.
func paginationFromQuery(r *http.Request) domain.PaginationParams {
	var page, limit *int
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page = &v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil {
		limit = &v
	}
	return domain.NewPaginationParams(page, limit)
}
