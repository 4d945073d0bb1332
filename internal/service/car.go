package service

import (
	"context"
	"fmt"

	"github.com/pkordes/car-reservation/internal/domain"
	"github.com/pkordes/car-reservation/internal/repo"
)

// CreateCarInput carries already-validated value objects from the handler.
type CreateCarInput struct {
	Brand        string
	Model        string
	LicensePlate string
	Type         domain.CarType
	PricePerDay  domain.Money
	Location     domain.Location
}

// CarService implements fleet management operations.
type CarService struct {
	cars repo.CarRepo
	opts Options
}

// NewCarService constructs a CarService backed by the provided CarRepo.
func NewCarService(cars repo.CarRepo, opts Options) *CarService {
	return &CarService{cars: cars, opts: opts.withDefaults()}
}

// Create registers a new car. The car starts Available.
func (s *CarService) Create(ctx context.Context, in CreateCarInput) (*domain.Car, error) {
	car, err := domain.NewCar(domain.NewCarID(), in.Brand, in.Model, in.LicensePlate, in.Type, in.PricePerDay, in.Location)
	if err != nil {
		return nil, fmt.Errorf("service.CarService.Create: %w", err)
	}
	if err := s.cars.Create(ctx, car); err != nil {
		return nil, fmt.Errorf("service.CarService.Create: %w", err)
	}
	return car, nil
}

func (s *CarService) GetByID(ctx context.Context, id domain.CarID) (*domain.Car, error) {
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.CarService.GetByID: %w", err)
	}
	return car, nil
}

// ListPaged returns one page of cars and the total count.
func (s *CarService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]*domain.Car, int64, error) {
	cars, total, err := s.cars.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.CarService.ListPaged: %w", err)
	}
	return cars, total, nil
}

// FindAvailable lists cars that can be booked for the filter's period.
func (s *CarService) FindAvailable(ctx context.Context, f repo.AvailabilityFilter) ([]*domain.Car, error) {
	if f.Period.IsZero() {
		return nil, fmt.Errorf("service.CarService.FindAvailable: %w: period is required", domain.ErrValidation)
	}
	cars, err := s.cars.FindAvailable(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service.CarService.FindAvailable: %w", err)
	}
	return cars, nil
}

// Delete removes a car that holds no pending or active reservations.
func (s *CarService) Delete(ctx context.Context, id domain.CarID) error {
	err := retryOnConflict(ctx, s.opts, func() error {
		car, err := s.cars.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if res := car.CanBeDeleted(); res.IsFailure() {
			s.opts.Recorder.RuleViolation("CarService.Delete")
			return res.Err()
		}
		return s.cars.Delete(ctx, car)
	})
	if err != nil {
		return fmt.Errorf("service.CarService.Delete: %w", err)
	}
	return nil
}

func (s *CarService) UpdateLocation(ctx context.Context, id domain.CarID, loc domain.Location) (*domain.Car, error) {
	car, _, err := mutateCar(ctx, s.cars, s.opts, id, "CarService.UpdateLocation",
		func(c *domain.Car) domain.Result[domain.Unit] { return c.UpdateLocation(&loc) })
	return car, err
}

func (s *CarService) UpdatePricing(ctx context.Context, id domain.CarID, price domain.Money) (*domain.Car, error) {
	car, _, err := mutateCar(ctx, s.cars, s.opts, id, "CarService.UpdatePricing",
		func(c *domain.Car) domain.Result[domain.Unit] { return c.UpdatePricing(&price) })
	return car, err
}

func (s *CarService) SetMaintenance(ctx context.Context, id domain.CarID) (*domain.Car, error) {
	car, _, err := mutateCar(ctx, s.cars, s.opts, id, "CarService.SetMaintenance",
		(*domain.Car).SetMaintenance)
	return car, err
}

func (s *CarService) SetAvailable(ctx context.Context, id domain.CarID) (*domain.Car, error) {
	car, _, err := mutateCar(ctx, s.cars, s.opts, id, "CarService.SetAvailable",
		(*domain.Car).SetAvailable)
	return car, err
}

func (s *CarService) SetOutOfService(ctx context.Context, id domain.CarID) (*domain.Car, error) {
	car, _, err := mutateCar(ctx, s.cars, s.opts, id, "CarService.SetOutOfService",
		(*domain.Car).SetOutOfService)
	return car, err
}

// Analytics summarizes a car's reservations over period.
func (s *CarService) Analytics(ctx context.Context, id domain.CarID, period domain.DateRange) (domain.CarAnalytics, error) {
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return domain.CarAnalytics{}, fmt.Errorf("service.CarService.Analytics: %w", err)
	}
	return domain.BuildCarAnalytics(car, period), nil
}
