package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-reservation/internal/domain"
	"github.com/pkordes/car-reservation/internal/repo"
)

// memCarRepo is a hand-written in-memory CarRepo. It stores snapshots and
// applies the same optimistic version check as the Postgres implementation.
// beforeSave, when set, runs inside Save before the version check so tests
// can simulate another writer getting there first.
type memCarRepo struct {
	mu         sync.Mutex
	cars       map[domain.CarID]domain.CarSnapshot
	events     []domain.Event
	beforeSave func(car *domain.Car)
	saves      int

	findAvailable func(ctx context.Context, f repo.AvailabilityFilter) ([]*domain.Car, error)
}

func newMemCarRepo() *memCarRepo {
	return &memCarRepo{cars: map[domain.CarID]domain.CarSnapshot{}}
}

func (m *memCarRepo) Create(_ context.Context, car *domain.Car) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.cars {
		if s.LicensePlate == car.LicensePlate() {
			return fmt.Errorf("memCarRepo.Create: %w", domain.ErrConflict)
		}
	}
	s := car.Snapshot()
	s.Version = 1
	m.cars[car.ID()] = s
	m.events = append(m.events, car.DomainEvents()...)
	car.MarkSaved(1)
	return nil
}

func (m *memCarRepo) GetByID(_ context.Context, id domain.CarID) (*domain.Car, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.cars[id]
	if !ok {
		return nil, fmt.Errorf("memCarRepo.GetByID: %w", domain.ErrNotFound)
	}
	s.Reservations = append([]domain.ReservationSnapshot(nil), s.Reservations...)
	return domain.RehydrateCar(s)
}

func (m *memCarRepo) ListPaged(_ context.Context, p domain.PaginationParams) ([]*domain.Car, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Car
	for _, s := range m.cars {
		c, err := domain.RehydrateCar(s)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	total := int64(len(out))
	if p.Offset() >= len(out) {
		return []*domain.Car{}, total, nil
	}
	out = out[p.Offset():]
	if len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, total, nil
}

func (m *memCarRepo) FindAvailable(ctx context.Context, f repo.AvailabilityFilter) ([]*domain.Car, error) {
	return m.findAvailable(ctx, f)
}

func (m *memCarRepo) Save(_ context.Context, car *domain.Car) error {
	if m.beforeSave != nil {
		m.beforeSave(car)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	stored, ok := m.cars[car.ID()]
	if !ok || stored.Version != car.Version() {
		return fmt.Errorf("memCarRepo.Save: %w", domain.ErrConcurrentUpdate)
	}
	s := car.Snapshot()
	s.Version = stored.Version + 1
	m.cars[car.ID()] = s
	m.events = append(m.events, car.DomainEvents()...)
	car.MarkSaved(s.Version)
	return nil
}

func (m *memCarRepo) Delete(_ context.Context, car *domain.Car) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.cars[car.ID()]
	if !ok || stored.Version != car.Version() {
		return fmt.Errorf("memCarRepo.Delete: %w", domain.ErrConcurrentUpdate)
	}
	delete(m.cars, car.ID())
	return nil
}

// bump simulates another writer saving the car: the stored version moves on.
func (m *memCarRepo) bump(id domain.CarID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.cars[id]
	s.Version++
	m.cars[id] = s
}

var _ repo.CarRepo = (*memCarRepo)(nil)

// memReservationRepo answers lookups from the snapshots held by a memCarRepo.
type memReservationRepo struct {
	cars *memCarRepo
}

func (m *memReservationRepo) CarIDFor(_ context.Context, id domain.ReservationID) (domain.CarID, error) {
	m.cars.mu.Lock()
	defer m.cars.mu.Unlock()
	for carID, s := range m.cars.cars {
		for _, r := range s.Reservations {
			if r.ID == id {
				return carID, nil
			}
		}
	}
	return domain.CarID{}, fmt.Errorf("memReservationRepo.CarIDFor: %w", domain.ErrNotFound)
}

func (m *memReservationRepo) ListByCustomer(_ context.Context, customerID domain.CustomerID) ([]domain.ReservationSnapshot, error) {
	m.cars.mu.Lock()
	defer m.cars.mu.Unlock()
	out := []domain.ReservationSnapshot{}
	for _, s := range m.cars.cars {
		for _, r := range s.Reservations {
			if r.CustomerID == customerID {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

var _ repo.ReservationRepo = (*memReservationRepo)(nil)

// mockProfileRepo is a hand-written test double for repo.ProfileRepo.
// Each method is a function field; set only the ones your test needs.
type mockProfileRepo struct {
	get    func(ctx context.Context, id domain.CustomerID) (domain.UserProfile, error)
	upsert func(ctx context.Context, id domain.CustomerID, p domain.UserProfile) (domain.UserProfile, error)
}

func (m *mockProfileRepo) Get(ctx context.Context, id domain.CustomerID) (domain.UserProfile, error) {
	return m.get(ctx, id)
}
func (m *mockProfileRepo) Upsert(ctx context.Context, id domain.CustomerID, p domain.UserProfile) (domain.UserProfile, error) {
	return m.upsert(ctx, id, p)
}

var _ repo.ProfileRepo = (*mockProfileRepo)(nil)

// countingRecorder tallies Recorder calls.
type countingRecorder struct {
	created    int
	violations []string
	conflicts  int
}

func (r *countingRecorder) ReservationCreated()     { r.created++ }
func (r *countingRecorder) RuleViolation(op string) { r.violations = append(r.violations, op) }
func (r *countingRecorder) SaveConflict()           { r.conflicts++ }

// ---- fixtures --------------------------------------------------------------

func seattle(t *testing.T) domain.Location {
	t.Helper()
	loc, err := domain.NewLocation("Seattle", "100 Pine St", 47.61, -122.33)
	require.NoError(t, err)
	return loc
}

func nextDays(t *testing.T, from, to int) domain.DateRange {
	t.Helper()
	today := domain.Today()
	r, err := domain.NewDateRange(today.AddDate(0, 0, from), today.AddDate(0, 0, to))
	require.NoError(t, err)
	return r
}

// seedCar stores a fresh Available car and returns its id.
func seedCar(t *testing.T, cars *memCarRepo) domain.CarID {
	t.Helper()
	id := domain.NewCarID()
	car, err := domain.NewCar(id, "Toyota", "Corolla", "P-"+id.String()[:8],
		domain.CarTypeSedan, domain.MustNewMoney(10000, "USD"), seattle(t))
	require.NoError(t, err)
	require.NoError(t, cars.Create(context.Background(), car))
	return id
}
