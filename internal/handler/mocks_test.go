package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-reservation/internal/domain"
	"github.com/pkordes/car-reservation/internal/handler"
	"github.com/pkordes/car-reservation/internal/repo"
	"github.com/pkordes/car-reservation/internal/service"
)

// mockCarServicer is a test double for handler.CarServicer.
// Set only the method fields your test needs.
type mockCarServicer struct {
	create          func(ctx context.Context, in service.CreateCarInput) (*domain.Car, error)
	getByID         func(ctx context.Context, id domain.CarID) (*domain.Car, error)
	listPaged       func(ctx context.Context, p domain.PaginationParams) ([]*domain.Car, int64, error)
	findAvailable   func(ctx context.Context, f repo.AvailabilityFilter) ([]*domain.Car, error)
	delete          func(ctx context.Context, id domain.CarID) error
	updateLocation  func(ctx context.Context, id domain.CarID, loc domain.Location) (*domain.Car, error)
	updatePricing   func(ctx context.Context, id domain.CarID, price domain.Money) (*domain.Car, error)
	setMaintenance  func(ctx context.Context, id domain.CarID) (*domain.Car, error)
	setAvailable    func(ctx context.Context, id domain.CarID) (*domain.Car, error)
	setOutOfService func(ctx context.Context, id domain.CarID) (*domain.Car, error)
	analytics       func(ctx context.Context, id domain.CarID, period domain.DateRange) (domain.CarAnalytics, error)
}

func (m *mockCarServicer) Create(ctx context.Context, in service.CreateCarInput) (*domain.Car, error) {
	return m.create(ctx, in)
}
func (m *mockCarServicer) GetByID(ctx context.Context, id domain.CarID) (*domain.Car, error) {
	return m.getByID(ctx, id)
}
func (m *mockCarServicer) ListPaged(ctx context.Context, p domain.PaginationParams) ([]*domain.Car, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockCarServicer) FindAvailable(ctx context.Context, f repo.AvailabilityFilter) ([]*domain.Car, error) {
	return m.findAvailable(ctx, f)
}
func (m *mockCarServicer) Delete(ctx context.Context, id domain.CarID) error {
	return m.delete(ctx, id)
}
func (m *mockCarServicer) UpdateLocation(ctx context.Context, id domain.CarID, loc domain.Location) (*domain.Car, error) {
	return m.updateLocation(ctx, id, loc)
}
func (m *mockCarServicer) UpdatePricing(ctx context.Context, id domain.CarID, price domain.Money) (*domain.Car, error) {
	return m.updatePricing(ctx, id, price)
}
func (m *mockCarServicer) SetMaintenance(ctx context.Context, id domain.CarID) (*domain.Car, error) {
	return m.setMaintenance(ctx, id)
}
func (m *mockCarServicer) SetAvailable(ctx context.Context, id domain.CarID) (*domain.Car, error) {
	return m.setAvailable(ctx, id)
}
func (m *mockCarServicer) SetOutOfService(ctx context.Context, id domain.CarID) (*domain.Car, error) {
	return m.setOutOfService(ctx, id)
}
func (m *mockCarServicer) Analytics(ctx context.Context, id domain.CarID, period domain.DateRange) (domain.CarAnalytics, error) {
	return m.analytics(ctx, id, period)
}

// mockReservationServicer is a test double for handler.ReservationServicer.
type mockReservationServicer struct {
	reserve        func(ctx context.Context, carID domain.CarID, customerID domain.CustomerID, period domain.DateRange) (domain.Reservation, error)
	confirm        func(ctx context.Context, id domain.ReservationID) (domain.Reservation, error)
	cancel         func(ctx context.Context, id domain.ReservationID, reason string) (domain.Reservation, error)
	complete       func(ctx context.Context, id domain.ReservationID) (domain.Reservation, error)
	getByID        func(ctx context.Context, id domain.ReservationID) (domain.Reservation, error)
	listByCustomer func(ctx context.Context, customerID domain.CustomerID) ([]domain.ReservationSnapshot, error)
}

func (m *mockReservationServicer) Reserve(ctx context.Context, carID domain.CarID, customerID domain.CustomerID, period domain.DateRange) (domain.Reservation, error) {
	return m.reserve(ctx, carID, customerID, period)
}
func (m *mockReservationServicer) Confirm(ctx context.Context, id domain.ReservationID) (domain.Reservation, error) {
	return m.confirm(ctx, id)
}
func (m *mockReservationServicer) Cancel(ctx context.Context, id domain.ReservationID, reason string) (domain.Reservation, error) {
	return m.cancel(ctx, id, reason)
}
func (m *mockReservationServicer) Complete(ctx context.Context, id domain.ReservationID) (domain.Reservation, error) {
	return m.complete(ctx, id)
}
func (m *mockReservationServicer) GetByID(ctx context.Context, id domain.ReservationID) (domain.Reservation, error) {
	return m.getByID(ctx, id)
}
func (m *mockReservationServicer) ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]domain.ReservationSnapshot, error) {
	return m.listByCustomer(ctx, customerID)
}

// mockProfileServicer is a test double for handler.ProfileServicer.
type mockProfileServicer struct {
	get  func(ctx context.Context, customerID domain.CustomerID) (domain.UserProfile, error)
	save func(ctx context.Context, customerID domain.CustomerID, p domain.UserProfile) (domain.UserProfile, error)
}

func (m *mockProfileServicer) Get(ctx context.Context, customerID domain.CustomerID) (domain.UserProfile, error) {
	return m.get(ctx, customerID)
}
func (m *mockProfileServicer) Save(ctx context.Context, customerID domain.CustomerID, p domain.UserProfile) (domain.UserProfile, error) {
	return m.save(ctx, customerID, p)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.CarServicer         = (*mockCarServicer)(nil)
	_ handler.ReservationServicer = (*mockReservationServicer)(nil)
	_ handler.ProfileServicer     = (*mockProfileServicer)(nil)
)

// ---- helpers ---------------------------------------------------------------

type services struct {
	cars         *mockCarServicer
	reservations *mockReservationServicer
	profiles     *mockProfileServicer
}

// newHTTPHandler wires a Server with the given mocks into the router.
// This mirrors how main.go wires it in production, minus authentication.
func newHTTPHandler(svc services) http.Handler {
	if svc.cars == nil {
		svc.cars = &mockCarServicer{}
	}
	if svc.reservations == nil {
		svc.reservations = &mockReservationServicer{}
	}
	if svc.profiles == nil {
		svc.profiles = &mockProfileServicer{}
	}
	srv := handler.NewServer(svc.cars, svc.reservations, svc.profiles, nil)
	return handler.NewRouter(srv, handler.RouterOptions{})
}

func serve(h http.Handler, method, target string, body *bytes.Buffer) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func dateStr(t time.Time) string {
	return t.Format("2006-01-02")
}

func carFixture(t *testing.T) *domain.Car {
	t.Helper()
	loc, err := domain.NewLocation("Seattle", "1 Pike St", 47.61, -122.33)
	require.NoError(t, err)
	car, err := domain.NewCar(domain.NewCarID(), "Toyota", "Camry", "ABC-123",
		domain.CarTypeSedan, domain.MustNewMoney(5000, "USD"), loc)
	require.NoError(t, err)
	return car
}

// reservedFixture returns a car holding one pending reservation for the
// three days starting tomorrow.
func reservedFixture(t *testing.T) (*domain.Car, domain.Reservation) {
	t.Helper()
	car := carFixture(t)
	period, err := domain.DateRangeStartingTomorrow(3)
	require.NoError(t, err)
	res := car.Reserve(domain.NewCustomerID(), period)
	require.True(t, res.IsSuccess())
	r, ok := car.Reservation(res.Value())
	require.True(t, ok)
	return car, r
}
