package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is an immutable fact recorded by an aggregate when its state changes.
type Event interface {
	// EventID returns the unique identifier for this event instance.
	EventID() string
	// EventType returns the type name of the event (e.g. "cars.CarReserved").
	EventType() string
	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time
	// AggregateID returns the ID of the car that recorded this event.
	AggregateID() string
}

const (
	CarCreatedEventType           = "cars.CarCreated"
	CarReservedEventType          = "cars.CarReserved"
	ReservationConfirmedEventType = "reservations.ReservationConfirmed"
	ReservationCancelledEventType = "reservations.ReservationCancelled"
	ReservationCompletedEventType = "reservations.ReservationCompleted"
)

// BaseEvent provides common event fields. Embed this in concrete event types.
type BaseEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

func newBaseEvent(eventType string, carID CarID) BaseEvent {
	return BaseEvent{
		ID:          uuid.New().String(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: carID.String(),
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) AggregateID() string   { return e.AggregateId }

// CarCreated is recorded when a car joins the fleet.
type CarCreated struct {
	BaseEvent
	CarID        string `json:"car_id"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	LicensePlate string `json:"license_plate"`
}

// CarReserved is recorded when Car.Reserve creates a pending reservation.
type CarReserved struct {
	BaseEvent
	CarID         string `json:"car_id"`
	ReservationID string `json:"reservation_id"`
	CustomerID    string `json:"customer_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

type ReservationConfirmed struct {
	BaseEvent
	ReservationID string `json:"reservation_id"`
	CarID         string `json:"car_id"`
	CustomerID    string `json:"customer_id"`
}

// ReservationCancelledEvent carries the cancellation reason.
type ReservationCancelledEvent struct {
	BaseEvent
	ReservationID string `json:"reservation_id"`
	CarID         string `json:"car_id"`
	CustomerID    string `json:"customer_id"`
	Reason        string `json:"reason"`
}

type ReservationCompletedEvent struct {
	BaseEvent
	ReservationID string `json:"reservation_id"`
	CarID         string `json:"car_id"`
	CustomerID    string `json:"customer_id"`
}

func newCarCreated(c *Car) CarCreated {
	return CarCreated{
		BaseEvent:    newBaseEvent(CarCreatedEventType, c.id),
		CarID:        c.id.String(),
		Brand:        c.brand,
		Model:        c.model,
		LicensePlate: c.licensePlate,
	}
}

func newCarReserved(r *Reservation) CarReserved {
	return CarReserved{
		BaseEvent:     newBaseEvent(CarReservedEventType, r.carID),
		CarID:         r.carID.String(),
		ReservationID: r.id.String(),
		CustomerID:    r.customerID.String(),
		StartDate:     r.period.Start().Format(time.DateOnly),
		EndDate:       r.period.End().Format(time.DateOnly),
	}
}

func newReservationConfirmed(r *Reservation) ReservationConfirmed {
	return ReservationConfirmed{
		BaseEvent:     newBaseEvent(ReservationConfirmedEventType, r.carID),
		ReservationID: r.id.String(),
		CarID:         r.carID.String(),
		CustomerID:    r.customerID.String(),
	}
}

func newReservationCancelled(r *Reservation, reason string) ReservationCancelledEvent {
	return ReservationCancelledEvent{
		BaseEvent:     newBaseEvent(ReservationCancelledEventType, r.carID),
		ReservationID: r.id.String(),
		CarID:         r.carID.String(),
		CustomerID:    r.customerID.String(),
		Reason:        reason,
	}
}

func newReservationCompleted(r *Reservation) ReservationCompletedEvent {
	return ReservationCompletedEvent{
		BaseEvent:     newBaseEvent(ReservationCompletedEventType, r.carID),
		ReservationID: r.id.String(),
		CarID:         r.carID.String(),
		CustomerID:    r.customerID.String(),
	}
}
