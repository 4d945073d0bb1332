package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/pkordes/car-reservation/internal/domain"
)

const reservationNotFound = "reservation not found"

// CreateReservation handles POST /api/reservations.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var body CreateReservationRequest
	if err := decodeBody(r, &body); err != nil {
		bodyError(w, err)
		return
	}
	period, err := domain.NewDateRange(body.StartDate.Time, body.EndDate.Time)
	if err != nil {
		requestError(w, unwrapMessage(err))
		return
	}

	res, err := s.reservations.Reserve(r.Context(),
		domain.CarIDFrom(body.CarId), domain.CustomerIDFrom(body.CustomerId), period)
	if err != nil {
		s.serviceError(w, r, err, carNotFound)
		return
	}
	s.log.InfoContext(r.Context(), "reservation created",
		"reservation_id", res.ID().String(), "car_id", res.CarID().String())
	writeJSON(w, http.StatusCreated, reservationToResponse(res))
}

// GetReservation handles GET /api/reservations/{reservationId}.
func (s *Server) GetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathReservationID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	res, err := s.reservations.GetByID(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, reservationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(res))
}

// ConfirmReservation handles PUT /api/reservations/{reservationId}/confirm.
func (s *Server) ConfirmReservation(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.reservations.Confirm)
}

// CompleteReservation handles PUT /api/reservations/{reservationId}/complete.
func (s *Server) CompleteReservation(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.reservations.Complete)
}

// CancelReservation handles PUT /api/reservations/{reservationId}/cancel.
// The body is optional and may carry a free-text reason.
func (s *Server) CancelReservation(w http.ResponseWriter, r *http.Request) {
	var body CancelReservationRequest
	if err := decodeBody(r, &body); err != nil && !errors.Is(err, errBodyRequired) {
		bodyError(w, err)
		return
	}
	s.transition(w, r, func(ctx context.Context, id domain.ReservationID) (domain.Reservation, error) {
		return s.reservations.Cancel(ctx, id, body.Reason)
	})
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request,
	op func(context.Context, domain.ReservationID) (domain.Reservation, error)) {
	id, err := pathReservationID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	res, err := op(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, reservationNotFound)
		return
	}
	writeJSON(w, http.StatusOK, reservationToResponse(res))
}

// ListCustomerReservations handles GET /api/customers/{customerId}/reservations.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) ListCustomerReservations(w http.ResponseWriter, r *http.Request) {
	id, err := pathCustomerID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	format, err := optionalStringQuery(r, "format")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if format != nil && *format != "csv" && *format != "json" {
		requestError(w, "format must be csv or json")
		return
	}

	list, err := s.reservations.ListByCustomer(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "customer not found")
		return
	}
	if format != nil && *format == "csv" {
		writeReservationsCSV(w, list)
		return
	}
	data := make([]Reservation, len(list))
	for i, snap := range list {
		data[i] = snapshotToResponse(snap)
	}
	writeJSON(w, http.StatusOK, ReservationList{Data: data})
}
