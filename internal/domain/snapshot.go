package domain

import (
	"fmt"
	"time"
)

// CarSnapshot is the flat, persistable state of a Car and its reservations.
// Repositories read and write snapshots; only RehydrateCar turns one back
// into an aggregate.
type CarSnapshot struct {
	ID           CarID
	Brand        string
	Model        string
	LicensePlate string
	Type         CarType
	PricePerDay  Money
	Status       CarStatus
	Location     Location
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
	Reservations []ReservationSnapshot
}

type ReservationSnapshot struct {
	ID          ReservationID
	CarID       CarID
	CustomerID  CustomerID
	Period      DateRange
	TotalPrice  Money
	Status      ReservationStatus
	CreatedAt   time.Time
	ConfirmedAt *time.Time
	CancelledAt *time.Time
	CompletedAt *time.Time
}

// Snapshot captures the car's current state. Pending domain events are not
// part of the snapshot.
func (c *Car) Snapshot() CarSnapshot {
	s := CarSnapshot{
		ID:           c.id,
		Brand:        c.brand,
		Model:        c.model,
		LicensePlate: c.licensePlate,
		Type:         c.carType,
		PricePerDay:  c.pricePerDay,
		Status:       c.status,
		Location:     c.currentLocation,
		CreatedAt:    c.createdAt,
		UpdatedAt:    c.updatedAt,
		Version:      c.version,
		Reservations: make([]ReservationSnapshot, 0, len(c.reservations)),
	}
	for _, r := range c.reservations {
		s.Reservations = append(s.Reservations, ReservationSnapshot{
			ID:          r.id,
			CarID:       r.carID,
			CustomerID:  r.customerID,
			Period:      r.period,
			TotalPrice:  r.totalPrice,
			Status:      r.status,
			CreatedAt:   r.createdAt,
			ConfirmedAt: copyTime(r.confirmedAt),
			CancelledAt: copyTime(r.cancelledAt),
			CompletedAt: copyTime(r.completedAt),
		})
	}
	return s
}

// RehydrateCar rebuilds a Car from stored state without recording events.
// It rejects snapshots that could not have been produced by the aggregate's
// own operations.
func RehydrateCar(s CarSnapshot) (*Car, error) {
	if s.ID.IsZero() {
		return nil, fmt.Errorf("%w: snapshot has no car id", ErrValidation)
	}
	if !s.Type.IsValid() {
		return nil, fmt.Errorf("%w: snapshot has unknown car type %q", ErrValidation, s.Type)
	}
	if !s.Status.IsValid() {
		return nil, fmt.Errorf("%w: snapshot has unknown car status %q", ErrValidation, s.Status)
	}

	c := &Car{
		id:              s.ID,
		brand:           s.Brand,
		model:           s.Model,
		licensePlate:    s.LicensePlate,
		carType:         s.Type,
		pricePerDay:     s.PricePerDay,
		status:          s.Status,
		currentLocation: s.Location,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
		version:         s.Version,
		reservations:    make([]*Reservation, 0, len(s.Reservations)),
	}
	for _, rs := range s.Reservations {
		if rs.CarID != s.ID {
			return nil, fmt.Errorf("%w: reservation %s belongs to car %s, not %s", ErrValidation, rs.ID, rs.CarID, s.ID)
		}
		if !rs.Status.IsValid() {
			return nil, fmt.Errorf("%w: reservation %s has unknown status %q", ErrValidation, rs.ID, rs.Status)
		}
		c.reservations = append(c.reservations, &Reservation{
			id:          rs.ID,
			carID:       rs.CarID,
			customerID:  rs.CustomerID,
			period:      rs.Period,
			totalPrice:  rs.TotalPrice,
			status:      rs.Status,
			createdAt:   rs.CreatedAt,
			confirmedAt: copyTime(rs.ConfirmedAt),
			cancelledAt: copyTime(rs.CancelledAt),
			completedAt: copyTime(rs.CompletedAt),
		})
	}
	return c, nil
}

// MarkSaved records the version the repository wrote and drops the events
// that were persisted with it.
func (c *Car) MarkSaved(version int64) {
	c.version = version
	c.ClearDomainEvents()
}
