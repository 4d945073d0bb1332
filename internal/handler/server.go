// Package handler implements the HTTP handlers for the car reservation API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (car.go, reservation.go, ...) but share the same Server struct so they
// can access its dependencies. Routes are registered in router.go.
package handler

import (
	"context"
	"log/slog"

	"github.com/pkordes/car-reservation/internal/domain"
	"github.com/pkordes/car-reservation/internal/repo"
	"github.com/pkordes/car-reservation/internal/service"
)

// CarServicer defines the fleet operations the car handlers depend on.
// Defining the interface here, in the consumer package, lets handler tests
// inject a mock without touching the database or service layer.
type CarServicer interface {
	Create(ctx context.Context, in service.CreateCarInput) (*domain.Car, error)
	GetByID(ctx context.Context, id domain.CarID) (*domain.Car, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]*domain.Car, int64, error)
	FindAvailable(ctx context.Context, f repo.AvailabilityFilter) ([]*domain.Car, error)
	Delete(ctx context.Context, id domain.CarID) error
	UpdateLocation(ctx context.Context, id domain.CarID, loc domain.Location) (*domain.Car, error)
	UpdatePricing(ctx context.Context, id domain.CarID, price domain.Money) (*domain.Car, error)
	SetMaintenance(ctx context.Context, id domain.CarID) (*domain.Car, error)
	SetAvailable(ctx context.Context, id domain.CarID) (*domain.Car, error)
	SetOutOfService(ctx context.Context, id domain.CarID) (*domain.Car, error)
	Analytics(ctx context.Context, id domain.CarID, period domain.DateRange) (domain.CarAnalytics, error)
}

// ReservationServicer defines the booking operations the reservation handlers depend on.
type ReservationServicer interface {
	Reserve(ctx context.Context, carID domain.CarID, customerID domain.CustomerID, period domain.DateRange) (domain.Reservation, error)
	Confirm(ctx context.Context, id domain.ReservationID) (domain.Reservation, error)
	Cancel(ctx context.Context, id domain.ReservationID, reason string) (domain.Reservation, error)
	Complete(ctx context.Context, id domain.ReservationID) (domain.Reservation, error)
	GetByID(ctx context.Context, id domain.ReservationID) (domain.Reservation, error)
	ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]domain.ReservationSnapshot, error)
}

// ProfileServicer defines the customer profile operations.
type ProfileServicer interface {
	Get(ctx context.Context, customerID domain.CustomerID) (domain.UserProfile, error)
	Save(ctx context.Context, customerID domain.CustomerID, p domain.UserProfile) (domain.UserProfile, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	cars         CarServicer
	reservations ReservationServicer
	profiles     ProfileServicer
	log          *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default.
func NewServer(cars CarServicer, reservations ReservationServicer, profiles ProfileServicer, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{cars: cars, reservations: reservations, profiles: profiles, log: log}
}
