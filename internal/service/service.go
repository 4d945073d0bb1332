// Package service contains the application logic for the car reservation API.
// Services load an aggregate, call exactly one domain operation on it and save
// it back. No SQL lives here; services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkordes/car-reservation/internal/domain"
	"github.com/pkordes/car-reservation/internal/repo"
)

// Recorder receives business-level counters. The metrics package implements it
// with Prometheus; tests and callers that don't care pass nil.
type Recorder interface {
	ReservationCreated()
	RuleViolation(operation string)
	SaveConflict()
}

type nopRecorder struct{}

func (nopRecorder) ReservationCreated()  {}
func (nopRecorder) RuleViolation(string) {}
func (nopRecorder) SaveConflict()        {}

// Options tunes the write path shared by the services.
type Options struct {
	// SaveAttempts is how many times a load-mutate-save cycle is tried when
	// another writer wins the optimistic version check. Values below 1 mean 1.
	SaveAttempts int
	Recorder     Recorder
	// Now is the clock used for time-based transitions. Defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SaveAttempts < 1 {
		o.SaveAttempts = 1
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// retryOnConflict runs fn until it succeeds, fails with anything other than
// domain.ErrConcurrentUpdate, or runs out of attempts.
func retryOnConflict(ctx context.Context, o Options, fn func() error) error {
	var err error
	for attempt := 0; attempt < o.SaveAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fn()
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			return err
		}
		o.Recorder.SaveConflict()
	}
	return err
}

// mutateCar loads a car, applies op and saves the result, retrying the whole
// cycle on a lost version race. A failed Result is returned as a
// *domain.RuleViolation and is never retried.
func mutateCar[T any](ctx context.Context, cars repo.CarRepo, o Options, id domain.CarID, operation string,
	op func(*domain.Car) domain.Result[T]) (*domain.Car, T, error) {
	var (
		car *domain.Car
		val T
	)
	err := retryOnConflict(ctx, o, func() error {
		c, err := cars.GetByID(ctx, id)
		if err != nil {
			return err
		}
		res := op(c)
		if res.IsFailure() {
			o.Recorder.RuleViolation(operation)
			return res.Err()
		}
		if err := cars.Save(ctx, c); err != nil {
			return err
		}
		car, val = c, res.Value()
		return nil
	})
	if err != nil {
		var zero T
		return nil, zero, fmt.Errorf("service.%s: %w", operation, err)
	}
	return car, val, nil
}
