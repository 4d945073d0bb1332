package domain

import "fmt"

// CarType is the body style of a car.
type CarType string

const (
	CarTypeSedan       CarType = "sedan"
	CarTypeSUV         CarType = "suv"
	CarTypeHatchback   CarType = "hatchback"
	CarTypeCoupe       CarType = "coupe"
	CarTypeConvertible CarType = "convertible"
	CarTypeMinivan     CarType = "minivan"
	CarTypeTruck       CarType = "truck"
)

func (t CarType) String() string { return string(t) }

func (t CarType) IsValid() bool {
	switch t {
	case CarTypeSedan, CarTypeSUV, CarTypeHatchback, CarTypeCoupe,
		CarTypeConvertible, CarTypeMinivan, CarTypeTruck:
		return true
	default:
		return false
	}
}

func ParseCarType(s string) (CarType, error) {
	t := CarType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown car type %q", ErrValidation, s)
	}
	return t, nil
}

// CarStatus is the operational status of a car.
type CarStatus string

const (
	CarStatusAvailable     CarStatus = "available"
	CarStatusReserved      CarStatus = "reserved"
	CarStatusInMaintenance CarStatus = "in_maintenance"
	CarStatusOutOfService  CarStatus = "out_of_service"
)

func (s CarStatus) String() string { return string(s) }

func (s CarStatus) IsValid() bool {
	switch s {
	case CarStatusAvailable, CarStatusReserved, CarStatusInMaintenance, CarStatusOutOfService:
		return true
	default:
		return false
	}
}

func ParseCarStatus(s string) (CarStatus, error) {
	st := CarStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: unknown car status %q", ErrValidation, s)
	}
	return st, nil
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) String() string { return string(s) }

func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationPending, ReservationActive, ReservationCompleted, ReservationCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is possible.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

// IsBlocking reports whether a reservation in this status keeps its car from
// leaving the Reserved state or entering maintenance / out-of-service.
func (s ReservationStatus) IsBlocking() bool {
	return s == ReservationPending || s == ReservationActive
}

func ParseReservationStatus(s string) (ReservationStatus, error) {
	st := ReservationStatus(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: unknown reservation status %q", ErrValidation, s)
	}
	return st, nil
}
