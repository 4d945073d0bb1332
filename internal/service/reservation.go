package service

import (
	"context"
	"fmt"

	"github.com/pkordes/car-reservation/internal/domain"
	"github.com/pkordes/car-reservation/internal/repo"
)

// ReservationService implements the booking workflow. Every write goes
// through the owning Car.
type ReservationService struct {
	cars         repo.CarRepo
	reservations repo.ReservationRepo
	opts         Options
}

func NewReservationService(cars repo.CarRepo, reservations repo.ReservationRepo, opts Options) *ReservationService {
	return &ReservationService{cars: cars, reservations: reservations, opts: opts.withDefaults()}
}

// Reserve books carID for customerID. A lost race against another writer is
// retried; if the other writer took the car, the retry fails with the
// domain's "not available" rule violation.
func (s *ReservationService) Reserve(ctx context.Context, carID domain.CarID, customerID domain.CustomerID, period domain.DateRange) (domain.Reservation, error) {
	if customerID.IsZero() {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Reserve: %w: customer id is required", domain.ErrValidation)
	}
	car, id, err := mutateCar(ctx, s.cars, s.opts, carID, "ReservationService.Reserve",
		func(c *domain.Car) domain.Result[domain.ReservationID] { return c.Reserve(customerID, period) })
	if err != nil {
		return domain.Reservation{}, err
	}
	s.opts.Recorder.ReservationCreated()
	r, _ := car.Reservation(id)
	return r, nil
}

func (s *ReservationService) Confirm(ctx context.Context, id domain.ReservationID) (domain.Reservation, error) {
	return s.transition(ctx, id, "ReservationService.Confirm", func(c *domain.Car) domain.Result[domain.Unit] {
		return c.ConfirmReservation(id)
	})
}

func (s *ReservationService) Cancel(ctx context.Context, id domain.ReservationID, reason string) (domain.Reservation, error) {
	return s.transition(ctx, id, "ReservationService.Cancel", func(c *domain.Car) domain.Result[domain.Unit] {
		return c.CancelReservation(id, reason)
	})
}

// Complete closes an active reservation whose period has ended.
func (s *ReservationService) Complete(ctx context.Context, id domain.ReservationID) (domain.Reservation, error) {
	today := domain.TruncateDay(s.opts.Now())
	return s.transition(ctx, id, "ReservationService.Complete", func(c *domain.Car) domain.Result[domain.Unit] {
		return c.CompleteReservation(id, today)
	})
}

func (s *ReservationService) GetByID(ctx context.Context, id domain.ReservationID) (domain.Reservation, error) {
	carID, err := s.reservations.CarIDFor(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.GetByID: %w", err)
	}
	car, err := s.cars.GetByID(ctx, carID)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.GetByID: %w", err)
	}
	r, ok := car.Reservation(id)
	if !ok {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.GetByID: %w", domain.ErrNotFound)
	}
	return r, nil
}

// ListByCustomer returns a customer's reservations across all cars, newest first.
func (s *ReservationService) ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]domain.ReservationSnapshot, error) {
	list, err := s.reservations.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.ListByCustomer: %w", err)
	}
	return list, nil
}

func (s *ReservationService) transition(ctx context.Context, id domain.ReservationID, operation string,
	op func(*domain.Car) domain.Result[domain.Unit]) (domain.Reservation, error) {
	carID, err := s.reservations.CarIDFor(ctx, id)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.%s: %w", operation, err)
	}
	car, _, err := mutateCar(ctx, s.cars, s.opts, carID, operation, op)
	if err != nil {
		return domain.Reservation{}, err
	}
	r, _ := car.Reservation(id)
	return r, nil
}
