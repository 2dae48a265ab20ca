package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/proyectohotelsoft/backend/internal/domain"
)

// errorResponse is the JSON envelope for every error the API returns.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeError maps a service error to its HTTP status code and writes the
// JSON error envelope. Unrecognized errors become 500 with a generic body;
// the real error is logged, never leaked to the client.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, http.StatusNotFound, "not_found", unwrapMessage(err))
	case errors.Is(err, domain.ErrRoomOccupied):
		writeErrorBody(w, http.StatusConflict, "room_occupied", unwrapMessage(err))
	case errors.Is(err, domain.ErrAlreadyCancelled):
		writeErrorBody(w, http.StatusConflict, "already_cancelled", unwrapMessage(err))
	case errors.Is(err, domain.ErrInvalidRange):
		writeErrorBody(w, http.StatusUnprocessableEntity, "invalid_range", unwrapMessage(err))
	case errors.Is(err, domain.ErrInsufficientPoints):
		writeErrorBody(w, http.StatusUnprocessableEntity, "insufficient_points", unwrapMessage(err))
	case errors.Is(err, domain.ErrInvalidAmount):
		writeErrorBody(w, http.StatusUnprocessableEntity, "invalid_amount", unwrapMessage(err))
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
	default:
		slog.Error("internal error", "error", err)
		writeErrorBody(w, http.StatusInternalServerError, "internal", "internal server error")
	}
}

// badRequest writes a 400 for requests rejected before reaching the service
// layer (malformed body, non-numeric path parameter).
func badRequest(w http.ResponseWriter, message string) {
	writeErrorBody(w, http.StatusBadRequest, "bad_request", message)
}

func writeErrorBody(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// unwrapMessage strips the "layer.Type.Method:" call-chain prefixes from a
// wrapped error, leaving the human-readable tail for the response body.
// e.g. "service.ReservationService.Create: room: not found" → "room: not found".
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for {
		idx := strings.Index(msg, ": ")
		if idx < 0 {
			return msg
		}
		prefix := msg[:idx]
		if !strings.HasPrefix(prefix, "service.") && !strings.HasPrefix(prefix, "repo.") {
			return msg
		}
		msg = msg[idx+2:]
	}
}
