package domain

import (
	"github.com/google/uuid"
)

// CarID identifies a Car aggregate. Distinct ID types keep a reservation ID
// from being passed where a car ID is expected.
type CarID struct {
	value uuid.UUID
}

func NewCarID() CarID              { return CarID{value: uuid.New()} }
func CarIDFrom(id uuid.UUID) CarID { return CarID{value: id} }
func (id CarID) UUID() uuid.UUID   { return id.value }
func (id CarID) String() string    { return id.value.String() }
func (id CarID) IsZero() bool      { return id.value == uuid.Nil }

func ParseCarID(s string) (CarID, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return CarID{}, ErrInvalidID
	}
	return CarID{value: v}, nil
}

// ReservationID identifies a Reservation within its owning Car.
type ReservationID struct {
	value uuid.UUID
}

func NewReservationID() ReservationID              { return ReservationID{value: uuid.New()} }
func ReservationIDFrom(id uuid.UUID) ReservationID { return ReservationID{value: id} }
func (id ReservationID) UUID() uuid.UUID           { return id.value }
func (id ReservationID) String() string            { return id.value.String() }
func (id ReservationID) IsZero() bool              { return id.value == uuid.Nil }

func ParseReservationID(s string) (ReservationID, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return ReservationID{}, ErrInvalidID
	}
	return ReservationID{value: v}, nil
}

// CustomerID references the customer a reservation is made for.
type CustomerID struct {
	value uuid.UUID
}

func NewCustomerID() CustomerID              { return CustomerID{value: uuid.New()} }
func CustomerIDFrom(id uuid.UUID) CustomerID { return CustomerID{value: id} }
func (id CustomerID) UUID() uuid.UUID        { return id.value }
func (id CustomerID) String() string         { return id.value.String() }
func (id CustomerID) IsZero() bool           { return id.value == uuid.Nil }

func ParseCustomerID(s string) (CustomerID, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return CustomerID{}, ErrInvalidID
	}
	return CustomerID{value: v}, nil
}

// UserID identifies an authenticated caller. It comes from the token subject
// and is never stored on the Car aggregate.
type UserID struct {
	value uuid.UUID
}

func NewUserID() UserID              { return UserID{value: uuid.New()} }
func UserIDFrom(id uuid.UUID) UserID { return UserID{value: id} }
func (id UserID) UUID() uuid.UUID    { return id.value }
func (id UserID) String() string     { return id.value.String() }
func (id UserID) IsZero() bool       { return id.value == uuid.Nil }

func ParseUserID(s string) (UserID, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return UserID{}, ErrInvalidID
	}
	return UserID{value: v}, nil
}
