package handler

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/proyectohotelsoft/backend/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"reservation_id", "room_number", "room_type",
	"guest_name", "guest_email",
	"check_in", "check_out", "nights",
	"total_cents", "points_redeemed", "points_accrued", "status",
}

// GetExport handles GET /api/export.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.export.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, rows)
		return
	}
	writeJSONExport(w, rows)
}

// exportRowJSON is the JSON shape of one report row.
type exportRowJSON struct {
	ReservationID  int64     `json:"reservation_id"`
	RoomNumber     string    `json:"room_number"`
	RoomType       string    `json:"room_type"`
	GuestName      string    `json:"guest_name"`
	GuestEmail     string    `json:"guest_email"`
	CheckIn        time.Time `json:"check_in"`
	CheckOut       time.Time `json:"check_out"`
	Nights         int       `json:"nights"`
	TotalCents     int64     `json:"total_cents"`
	PointsRedeemed int       `json:"points_redeemed"`
	PointsAccrued  int       `json:"points_accrued"`
	Status         string    `json:"status"`
}

func writeJSONExport(w http.ResponseWriter, rows []domain.ExportRow) {
	out := make([]exportRowJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, exportRowJSON{
			ReservationID:  row.ReservationID,
			RoomNumber:     row.RoomNumber,
			RoomType:       string(row.RoomType),
			GuestName:      row.GuestName,
			GuestEmail:     row.GuestEmail,
			CheckIn:        row.CheckIn,
			CheckOut:       row.CheckOut,
			Nights:         row.Nights,
			TotalCents:     row.TotalCents,
			PointsRedeemed: row.PointsRedeemed,
			PointsAccrued:  row.PointsAccrued,
			Status:         string(row.Status),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="reservations.csv"`)
	w.WriteHeader(http.StatusOK)

	cw := csv.NewWriter(w)
	//nolint:errcheck // errors surface via cw.Error after Flush
	cw.Write(csvHeaders)
	for _, row := range rows {
		//nolint:errcheck
		cw.Write(exportRowRecord(row))
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		// Headers are already sent; logging is all that is left to do.
		slog.Error("write csv export", "error", err)
	}
}

// exportRowRecord encodes one report row as a flat string slice.
// Timestamps are RFC 3339 in UTC.
func exportRowRecord(row domain.ExportRow) []string {
	return []string{
		strconv.FormatInt(row.ReservationID, 10),
		row.RoomNumber,
		string(row.RoomType),
		row.GuestName,
		row.GuestEmail,
		row.CheckIn.UTC().Format(time.RFC3339),
		row.CheckOut.UTC().Format(time.RFC3339),
		strconv.Itoa(row.Nights),
		strconv.FormatInt(row.TotalCents, 10),
		strconv.Itoa(row.PointsRedeemed),
		strconv.Itoa(row.PointsAccrued),
		string(row.Status),
	}
}
