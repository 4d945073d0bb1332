package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-reservation/internal/domain"
	"github.com/pkordes/car-reservation/internal/service"
)

func newReservationService(cars *memCarRepo, opts service.Options) *service.ReservationService {
	return service.NewReservationService(cars, &memReservationRepo{cars: cars}, opts)
}

func TestReservationService_Reserve(t *testing.T) {
	cars := newMemCarRepo()
	carID := seedCar(t, cars)
	rec := &countingRecorder{}
	svc := newReservationService(cars, service.Options{Recorder: rec})
	customer := domain.NewCustomerID()

	got, err := svc.Reserve(context.Background(), carID, customer, nextDays(t, 1, 3))

	require.NoError(t, err)
	assert.Equal(t, domain.ReservationPending, got.Status())
	assert.Equal(t, customer, got.CustomerID())
	assert.True(t, got.TotalPrice().Equals(domain.MustNewMoney(30000, "USD")))
	assert.Equal(t, 1, rec.created)

	car, err := cars.GetByID(context.Background(), carID)
	require.NoError(t, err)
	assert.Equal(t, domain.CarStatusReserved, car.Status())
	assert.Equal(t, domain.CarReservedEventType, cars.events[len(cars.events)-1].EventType())
}

func TestReservationService_Reserve_CarNotAvailable(t *testing.T) {
	cars := newMemCarRepo()
	carID := seedCar(t, cars)
	rec := &countingRecorder{}
	svc := newReservationService(cars, service.Options{Recorder: rec})
	_, err := svc.Reserve(context.Background(), carID, domain.NewCustomerID(), nextDays(t, 1, 3))
	require.NoError(t, err)

	_, err = svc.Reserve(context.Background(), carID, domain.NewCustomerID(), nextDays(t, 2, 4))

	assert.ErrorIs(t, err, domain.ErrRuleViolation)
	var rv *domain.RuleViolation
	require.True(t, errors.As(err, &rv))
	assert.Equal(t, domain.MsgCarNotAvailable, rv.Message)
	assert.Equal(t, []string{"ReservationService.Reserve"}, rec.violations)
}

func TestReservationService_Reserve_CarNotFound(t *testing.T) {
	svc := newReservationService(newMemCarRepo(), service.Options{})

	_, err := svc.Reserve(context.Background(), domain.NewCarID(), domain.NewCustomerID(), nextDays(t, 1, 3))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservationService_Reserve_MissingCustomer(t *testing.T) {
	cars := newMemCarRepo()
	svc := newReservationService(cars, service.Options{})

	_, err := svc.Reserve(context.Background(), seedCar(t, cars), domain.CustomerID{}, nextDays(t, 1, 3))

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestReservationService_Reserve_RetriesLostRace(t *testing.T) {
	cars := newMemCarRepo()
	carID := seedCar(t, cars)
	rec := &countingRecorder{}
	svc := newReservationService(cars, service.Options{SaveAttempts: 3, Recorder: rec})

	raced := false
	cars.beforeSave = func(c *domain.Car) {
		if !raced {
			raced = true
			cars.bump(c.ID()) // someone else saved an unrelated change first
		}
	}

	_, err := svc.Reserve(context.Background(), carID, domain.NewCustomerID(), nextDays(t, 1, 3))

	require.NoError(t, err)
	assert.Equal(t, 1, rec.conflicts)
	assert.Equal(t, 2, cars.saves)
}

func TestReservationService_Reserve_GivesUpAfterAttempts(t *testing.T) {
	cars := newMemCarRepo()
	carID := seedCar(t, cars)
	svc := newReservationService(cars, service.Options{SaveAttempts: 2})
	cars.beforeSave = func(c *domain.Car) { cars.bump(c.ID()) }

	_, err := svc.Reserve(context.Background(), carID, domain.NewCustomerID(), nextDays(t, 1, 3))

	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.Equal(t, 2, cars.saves)
}

// Two callers race for the same car. Exactly one wins; the other, after
// reloading, sees the car Reserved and gets a rule violation.
func TestReservationService_Reserve_AtMostOneWinner(t *testing.T) {
	cars := newMemCarRepo()
	carID := seedCar(t, cars)
	svc := newReservationService(cars, service.Options{SaveAttempts: 3})

	var loserErr error
	first := true
	cars.beforeSave = func(c *domain.Car) {
		if !first {
			return
		}
		first = false
		// The competing request completes between our load and our save.
		_, loserErr = svc.Reserve(context.Background(), carID, domain.NewCustomerID(), nextDays(t, 2, 4))
	}

	_, err := svc.Reserve(context.Background(), carID, domain.NewCustomerID(), nextDays(t, 1, 3))

	require.NoError(t, loserErr, "the request that saved first wins")
	var rv *domain.RuleViolation
	require.True(t, errors.As(err, &rv), "the retried request must fail on reload, got %v", err)
	assert.Equal(t, domain.MsgCarNotAvailable, rv.Message)

	car, err := cars.GetByID(context.Background(), carID)
	require.NoError(t, err)
	assert.Len(t, car.Reservations(), 1)
}

func TestReservationService_ConfirmCancel(t *testing.T) {
	cars := newMemCarRepo()
	carID := seedCar(t, cars)
	svc := newReservationService(cars, service.Options{})
	ctx := context.Background()
	r, err := svc.Reserve(ctx, carID, domain.NewCustomerID(), nextDays(t, 1, 3))
	require.NoError(t, err)

	confirmed, err := svc.Confirm(ctx, r.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationActive, confirmed.Status())

	cancelled, err := svc.Cancel(ctx, r.ID(), "change of plans")
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCancelled, cancelled.Status())

	_, err = svc.Cancel(ctx, r.ID(), "again")
	var rv *domain.RuleViolation
	require.True(t, errors.As(err, &rv))
	assert.Equal(t, domain.MsgAlreadyCancelled, rv.Message)

	car, err := cars.GetByID(ctx, carID)
	require.NoError(t, err)
	assert.Equal(t, domain.CarStatusAvailable, car.Status())
}

func TestReservationService_Confirm_UnknownReservation(t *testing.T) {
	svc := newReservationService(newMemCarRepo(), service.Options{})

	_, err := svc.Confirm(context.Background(), domain.NewReservationID())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReservationService_Complete_UsesClock(t *testing.T) {
	cars := newMemCarRepo()
	carID := seedCar(t, cars)
	ctx := context.Background()
	now := time.Now()
	svc := newReservationService(cars, service.Options{Now: func() time.Time { return now }})

	r, err := svc.Reserve(ctx, carID, domain.NewCustomerID(), nextDays(t, 1, 2))
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, r.ID())
	require.NoError(t, err)

	_, err = svc.Complete(ctx, r.ID())
	assert.ErrorIs(t, err, domain.ErrRuleViolation, "period has not ended yet")

	now = now.AddDate(0, 0, 5)
	done, err := svc.Complete(ctx, r.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationCompleted, done.Status())
}

func TestReservationService_GetAndList(t *testing.T) {
	cars := newMemCarRepo()
	carID := seedCar(t, cars)
	svc := newReservationService(cars, service.Options{})
	ctx := context.Background()
	customer := domain.NewCustomerID()
	r, err := svc.Reserve(ctx, carID, customer, nextDays(t, 1, 3))
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, r.ID())
	require.NoError(t, err)
	assert.Equal(t, carID, got.CarID())

	list, err := svc.ListByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, r.ID(), list[0].ID)
}
