package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/car-reservation/internal/domain"
)

// reservationCSVHeaders defines the column names written as the first row of
// a reservation CSV export.
var reservationCSVHeaders = []string{
	"reservation_id", "car_id", "customer_id", "start_date", "end_date", "days",
	"total_price", "currency", "status", "created_at", "confirmed_at", "cancelled_at", "completed_at",
}

// writeReservationsCSV encodes reservations as CSV. Amounts are written in
// major units with two decimals, and unset timestamps as empty strings.
func writeReservationsCSV(w http.ResponseWriter, list []domain.ReservationSnapshot) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	_ = cw.Write(reservationCSVHeaders)
	for _, s := range list {
		_ = cw.Write(reservationToCSVRecord(s))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="reservations.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func reservationToCSVRecord(s domain.ReservationSnapshot) []string {
	return []string{
		s.ID.String(),
		s.CarID.String(),
		s.CustomerID.String(),
		s.Period.Start().Format(time.DateOnly),
		s.Period.End().Format(time.DateOnly),
		strconv.Itoa(s.Period.Days()),
		strconv.FormatFloat(s.TotalPrice.Major(), 'f', 2, 64),
		s.TotalPrice.Currency(),
		s.Status.String(),
		s.CreatedAt.UTC().Format(time.RFC3339),
		formatOptionalTime(s.ConfirmedAt),
		formatOptionalTime(s.CancelledAt),
		formatOptionalTime(s.CompletedAt),
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
