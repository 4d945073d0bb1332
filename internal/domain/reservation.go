package domain

import "time"

// Failure messages returned by reservation transitions.
const (
	MsgCannotConfirm       = "Reservation cannot be confirmed"
	MsgAlreadyCancelled    = "Reservation is already cancelled"
	MsgCompletedNoCancel   = "Completed reservation cannot be cancelled"
	MsgCannotComplete      = "Only active reservations can be completed"
	MsgPeriodNotElapsed    = "Reservation period has not ended yet"
	MsgReservationNotFound = "Reservation not found"
)

// Reservation is one booking of one car for one customer over one period.
//
// A Reservation is owned by exactly one Car and can only be created by
// Car.Reserve or rebuilt by RehydrateCar. Callers outside this package get
// copies through Car.Reservations and Car.Reservation, and change state only
// through the Car's methods.
type Reservation struct {
	id          ReservationID
	carID       CarID
	customerID  CustomerID
	period      DateRange
	totalPrice  Money
	status      ReservationStatus
	createdAt   time.Time
	confirmedAt *time.Time
	cancelledAt *time.Time
	completedAt *time.Time
}

func newReservation(carID CarID, customerID CustomerID, period DateRange, total Money) *Reservation {
	return &Reservation{
		id:         NewReservationID(),
		carID:      carID,
		customerID: customerID,
		period:     period,
		totalPrice: total,
		status:     ReservationPending,
		createdAt:  time.Now().UTC(),
	}
}

func (r Reservation) ID() ReservationID         { return r.id }
func (r Reservation) CarID() CarID              { return r.carID }
func (r Reservation) CustomerID() CustomerID    { return r.customerID }
func (r Reservation) Period() DateRange         { return r.period }
func (r Reservation) TotalPrice() Money         { return r.totalPrice }
func (r Reservation) Status() ReservationStatus { return r.status }
func (r Reservation) CreatedAt() time.Time      { return r.createdAt }
func (r Reservation) ConfirmedAt() *time.Time   { return copyTime(r.confirmedAt) }
func (r Reservation) CancelledAt() *time.Time   { return copyTime(r.cancelledAt) }
func (r Reservation) CompletedAt() *time.Time   { return copyTime(r.completedAt) }

// confirm moves a pending reservation to active.
func (r *Reservation) confirm() Result[Unit] {
	if r.status != ReservationPending {
		return Fail(MsgCannotConfirm)
	}
	now := time.Now().UTC()
	r.status = ReservationActive
	r.confirmedAt = &now
	return OK()
}

// cancel is valid from any non-terminal status.
func (r *Reservation) cancel() Result[Unit] {
	switch r.status {
	case ReservationCancelled:
		return Fail(MsgAlreadyCancelled)
	case ReservationCompleted:
		return Fail(MsgCompletedNoCancel)
	}
	now := time.Now().UTC()
	r.status = ReservationCancelled
	r.cancelledAt = &now
	return OK()
}

// complete closes an active reservation once its last day is behind today.
func (r *Reservation) complete(today time.Time) Result[Unit] {
	if r.status != ReservationActive {
		return Fail(MsgCannotComplete)
	}
	if !r.period.End().Before(TruncateDay(today)) {
		return Fail(MsgPeriodNotElapsed)
	}
	now := time.Now().UTC()
	r.status = ReservationCompleted
	r.completedAt = &now
	return OK()
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
