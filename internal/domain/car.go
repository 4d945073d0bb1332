// Package domain contains the reservation domain model: the Car aggregate,
// the Reservation entity it owns, and the value objects that give them meaning.
// It performs no I/O. Repositories load and save Cars; services call exactly
// one mutating method per load-save cycle.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Failure messages returned by Car operations. They are part of the API
// surface: handlers pass them to clients unchanged.
const (
	MsgCarNotAvailable     = "Car is not available for reservation"
	MsgCarAlreadyReserved  = "Car is already reserved for this period"
	MsgMaintenanceBlocked  = "Cannot set car to maintenance while it has active reservations"
	MsgAvailableBlocked    = "Car has active reservations and cannot be set to available"
	MsgOutOfServiceBlocked = "Cannot set car out of service while it has active reservations"
	MsgLocationRequired    = "Location cannot be null"
	MsgPriceRequired       = "Price cannot be null"
	MsgPriceNotPositive    = "Price must be greater than zero"
	MsgCurrencyMismatch    = "Price currency cannot change while the car has reservations"
	MsgDeleteBlocked       = "Cannot delete car with active or pending reservations"
	MsgTotalTooLarge       = "Reservation total exceeds the supported amount"
)

// Car is the aggregate root of the reservation domain. It owns its
// reservations and keeps its status consistent with them.
type Car struct {
	AggregateRoot

	id              CarID
	brand           string
	model           string
	licensePlate    string
	carType         CarType
	pricePerDay     Money
	status          CarStatus
	currentLocation Location
	reservations    []*Reservation
	createdAt       time.Time
	updatedAt       time.Time
	version         int64
}

// NewCar validates its inputs, starts the car as Available and records CarCreated.
func NewCar(id CarID, brand, model, licensePlate string, carType CarType, pricePerDay Money, location Location) (*Car, error) {
	brand = strings.TrimSpace(brand)
	model = strings.TrimSpace(model)
	licensePlate = strings.TrimSpace(licensePlate)

	switch {
	case id.IsZero():
		return nil, fmt.Errorf("%w: car id is required", ErrValidation)
	case brand == "":
		return nil, fmt.Errorf("%w: brand is required", ErrValidation)
	case model == "":
		return nil, fmt.Errorf("%w: model is required", ErrValidation)
	case licensePlate == "":
		return nil, fmt.Errorf("%w: license plate is required", ErrValidation)
	case !carType.IsValid():
		return nil, fmt.Errorf("%w: unknown car type %q", ErrValidation, carType)
	case !pricePerDay.IsPositive():
		return nil, fmt.Errorf("%w: price per day must be greater than zero", ErrValidation)
	case location.IsZero():
		return nil, fmt.Errorf("%w: location is required", ErrValidation)
	}

	now := time.Now().UTC()
	c := &Car{
		id:              id,
		brand:           brand,
		model:           model,
		licensePlate:    licensePlate,
		carType:         carType,
		pricePerDay:     pricePerDay,
		status:          CarStatusAvailable,
		currentLocation: location,
		createdAt:       now,
		updatedAt:       now,
	}
	c.AddDomainEvent(newCarCreated(c))
	return c, nil
}

// Getters

func (c *Car) ID() CarID                 { return c.id }
func (c *Car) Brand() string             { return c.brand }
func (c *Car) Model() string             { return c.model }
func (c *Car) LicensePlate() string      { return c.licensePlate }
func (c *Car) Type() CarType             { return c.carType }
func (c *Car) PricePerDay() Money        { return c.pricePerDay }
func (c *Car) Status() CarStatus         { return c.status }
func (c *Car) CurrentLocation() Location { return c.currentLocation }
func (c *Car) CreatedAt() time.Time      { return c.createdAt }
func (c *Car) UpdatedAt() time.Time      { return c.updatedAt }

// Version is the optimistic-concurrency token loaded with the car.
// It is zero for a car that has never been saved.
func (c *Car) Version() int64 { return c.version }

// Reservations returns copies of the car's reservations in insertion order.
func (c *Car) Reservations() []Reservation {
	out := make([]Reservation, len(c.reservations))
	for i, r := range c.reservations {
		out[i] = *r
	}
	return out
}

// Reservation returns a copy of one reservation.
func (c *Car) Reservation(id ReservationID) (Reservation, bool) {
	if r := c.findReservation(id); r != nil {
		return *r, true
	}
	return Reservation{}, false
}

// Business methods

// Reserve books the car for customerID over period. The new reservation is
// Pending and the car becomes Reserved.
func (c *Car) Reserve(customerID CustomerID, period DateRange) Result[ReservationID] {
	if c.status != CarStatusAvailable {
		return Failure[ReservationID](MsgCarNotAvailable)
	}
	if c.IsReservedForPeriod(period) {
		return Failure[ReservationID](MsgCarAlreadyReserved)
	}

	total, err := c.totalPriceFor(period)
	if err != nil {
		return Failure[ReservationID](MsgTotalTooLarge)
	}
	r := newReservation(c.id, customerID, period, total)
	c.reservations = append(c.reservations, r)
	c.status = CarStatusReserved
	c.touch()
	c.AddDomainEvent(newCarReserved(r))

	return Success(r.id)
}

// ConfirmReservation moves a pending reservation to Active.
func (c *Car) ConfirmReservation(id ReservationID) Result[Unit] {
	r := c.findReservation(id)
	if r == nil {
		return Fail(MsgReservationNotFound)
	}
	res := r.confirm()
	if res.IsFailure() {
		return res
	}
	c.touch()
	c.AddDomainEvent(newReservationConfirmed(r))
	return res
}

// CancelReservation cancels a reservation. When no blocking reservation is
// left, a Reserved car goes back to Available.
func (c *Car) CancelReservation(id ReservationID, reason string) Result[Unit] {
	r := c.findReservation(id)
	if r == nil {
		return Fail(MsgReservationNotFound)
	}
	res := r.cancel()
	if res.IsFailure() {
		return res
	}
	if c.status == CarStatusReserved && !c.HasBlockingReservations() {
		c.status = CarStatusAvailable
	}
	c.touch()
	c.AddDomainEvent(newReservationCancelled(r, strings.TrimSpace(reason)))
	return res
}

// CompleteReservation closes an active reservation whose period ended before
// today. It is the entry point for the time-based process that retires
// finished rentals. A Reserved car with nothing else blocking becomes Available.
func (c *Car) CompleteReservation(id ReservationID, today time.Time) Result[Unit] {
	r := c.findReservation(id)
	if r == nil {
		return Fail(MsgReservationNotFound)
	}
	res := r.complete(today)
	if res.IsFailure() {
		return res
	}
	if c.status == CarStatusReserved && !c.HasBlockingReservations() {
		c.status = CarStatusAvailable
	}
	c.touch()
	c.AddDomainEvent(newReservationCompleted(r))
	return res
}

func (c *Car) SetMaintenance() Result[Unit] {
	if c.HasBlockingReservations() {
		return Fail(MsgMaintenanceBlocked)
	}
	c.status = CarStatusInMaintenance
	c.touch()
	return OK()
}

func (c *Car) SetAvailable() Result[Unit] {
	if c.status == CarStatusReserved && c.HasBlockingReservations() {
		return Fail(MsgAvailableBlocked)
	}
	c.status = CarStatusAvailable
	c.touch()
	return OK()
}

func (c *Car) SetOutOfService() Result[Unit] {
	if c.HasBlockingReservations() {
		return Fail(MsgOutOfServiceBlocked)
	}
	c.status = CarStatusOutOfService
	c.touch()
	return OK()
}

// UpdateLocation replaces the current location. A nil location fails.
func (c *Car) UpdateLocation(location *Location) Result[Unit] {
	if location == nil || location.IsZero() {
		return Fail(MsgLocationRequired)
	}
	c.currentLocation = *location
	c.touch()
	return OK()
}

// UpdatePricing replaces the per-day price. Existing reservations keep the
// total they were booked at.
func (c *Car) UpdatePricing(price *Money) Result[Unit] {
	if price == nil {
		return Fail(MsgPriceRequired)
	}
	if !price.IsPositive() {
		return Fail(MsgPriceNotPositive)
	}
	if price.Currency() != c.pricePerDay.Currency() && len(c.reservations) > 0 {
		return Fail(MsgCurrencyMismatch)
	}
	c.pricePerDay = *price
	c.touch()
	return OK()
}

// Queries

// IsReservedForPeriod reports whether an Active reservation overlaps period.
func (c *Car) IsReservedForPeriod(period DateRange) bool {
	for _, r := range c.reservations {
		if r.status == ReservationActive && r.period.OverlapsWith(period) {
			return true
		}
	}
	return false
}

func (c *Car) IsAvailableForPeriod(period DateRange) bool {
	return c.status == CarStatusAvailable && !c.IsReservedForPeriod(period)
}

func (c *Car) ActiveReservationsCount() int {
	n := 0
	for _, r := range c.reservations {
		if r.status == ReservationActive {
			n++
		}
	}
	return n
}

// HasBlockingReservations reports whether any reservation is Pending or Active.
func (c *Car) HasBlockingReservations() bool {
	for _, r := range c.reservations {
		if r.status.IsBlocking() {
			return true
		}
	}
	return false
}

// CanBeDeleted reports whether the car may be removed from the fleet.
func (c *Car) CanBeDeleted() Result[Unit] {
	if c.HasBlockingReservations() {
		return Fail(MsgDeleteBlocked)
	}
	return OK()
}

// CalculateRevenueForPeriod sums the totals of Completed reservations that
// overlap period, in the car's currency.
func (c *Car) CalculateRevenueForPeriod(period DateRange) Money {
	var total int64
	for _, r := range c.reservations {
		if r.status == ReservationCompleted && r.period.OverlapsWith(period) {
			total += r.totalPrice.Amount()
		}
	}
	return Money{amount: total, currency: c.pricePerDay.Currency()}
}

func (c *Car) totalPriceFor(period DateRange) (Money, error) {
	return c.pricePerDay.Multiply(int64(period.Days()))
}

func (c *Car) findReservation(id ReservationID) *Reservation {
	for _, r := range c.reservations {
		if r.id == id {
			return r
		}
	}
	return nil
}

func (c *Car) touch() {
	c.updatedAt = time.Now().UTC()
}
