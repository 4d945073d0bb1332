package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-reservation/internal/domain"
	"github.com/pkordes/car-reservation/internal/handler"
	"github.com/pkordes/car-reservation/internal/repo"
	"github.com/pkordes/car-reservation/internal/service"
)

func validCarBody() map[string]any {
	location := map[string]any{"city": "Seattle", "address": "1 Pike St", "latitude": 47.61, "longitude": -122.33}
	return map[string]any{
		"brand":         "Toyota",
		"model":         "Camry",
		"license_plate": "ABC-123",
		"type":          "sedan",
		"price_per_day": map[string]any{"amount": 50.0, "currency": "usd"},
		"location":      location,
	}
}

// ---- POST /api/cars --------------------------------------------------------

func TestCreateCar_201(t *testing.T) {
	fixture := carFixture(t)
	var got service.CreateCarInput
	cars := &mockCarServicer{
		create: func(_ context.Context, in service.CreateCarInput) (*domain.Car, error) {
			got = in
			return fixture, nil
		},
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodPost, "/api/cars", jsonBody(t, validCarBody()))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(5000), got.PricePerDay.Amount())
	assert.Equal(t, "USD", got.PricePerDay.Currency())
	assert.Equal(t, domain.CarTypeSedan, got.Type)

	var resp handler.Car
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID().UUID(), resp.Id)
	assert.Equal(t, "available", resp.Status)
	assert.Equal(t, 50.0, resp.PricePerDay.Amount)
}

func TestCreateCar_422(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(b map[string]any)
		message string
	}{
		{"unknown type", func(b map[string]any) { b["type"] = "tank" }, `unknown car type "tank"`},
		{"missing price", func(b map[string]any) { delete(b, "price_per_day") }, "price_per_day is required"},
		{"missing location", func(b map[string]any) { delete(b, "location") }, "location is required"},
		{"bad latitude", func(b map[string]any) {
			b["location"].(map[string]any)["latitude"] = 123.0
		}, "invalid latitude"},
		{"unknown field", func(b map[string]any) { b["colour"] = "red" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := validCarBody()
			tt.mutate(body)

			rec := serve(newHTTPHandler(services{}), http.MethodPost, "/api/cars", jsonBody(t, body))

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			e := decodeError(t, rec)
			assert.Equal(t, "validation_error", e.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, e.Message)
			}
		})
	}
}

func TestCreateCar_422_DomainValidation(t *testing.T) {
	cars := &mockCarServicer{
		create: func(_ context.Context, _ service.CreateCarInput) (*domain.Car, error) {
			return nil, fmt.Errorf("service.CarService.Create: %w: brand cannot be empty", domain.ErrValidation)
		},
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodPost, "/api/cars", jsonBody(t, validCarBody()))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "brand cannot be empty", decodeError(t, rec).Message)
}

func TestCreateCar_409_DuplicatePlate(t *testing.T) {
	cars := &mockCarServicer{
		create: func(_ context.Context, _ service.CreateCarInput) (*domain.Car, error) {
			return nil, fmt.Errorf("service.CarService.Create: repo.CarRepo.Create: %w: license plate %q is already registered",
				domain.ErrConflict, "ABC-123")
		},
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodPost, "/api/cars", jsonBody(t, validCarBody()))

	require.Equal(t, http.StatusConflict, rec.Code)
	e := decodeError(t, rec)
	assert.Equal(t, "conflict", e.Code)
	assert.Equal(t, `license plate "ABC-123" is already registered`, e.Message)
}

// ---- GET /api/cars ---------------------------------------------------------

func TestListCars_200_Pagination(t *testing.T) {
	var got domain.PaginationParams
	cars := &mockCarServicer{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]*domain.Car, int64, error) {
			got = p
			return []*domain.Car{carFixture(t)}, 41, nil
		},
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodGet, "/api/cars?page=3&limit=500", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.PaginationParams{Page: 3, Limit: 100}, got)
	var resp handler.CarList
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 1)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 41, resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.TotalPages)
}

func TestListCars_200_HugePageClamped(t *testing.T) {
	var got domain.PaginationParams
	cars := &mockCarServicer{
		listPaged: func(_ context.Context, p domain.PaginationParams) ([]*domain.Car, int64, error) {
			got = p
			return nil, 0, nil
		},
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodGet, "/api/cars?page=9223372036854775807&limit=100", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.MaxPage, got.Page)
	assert.GreaterOrEqual(t, got.Offset(), 0)
}

func TestListCars_422_BadPage(t *testing.T) {
	rec := serve(newHTTPHandler(services{}), http.MethodGet, "/api/cars?page=abc", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- GET /api/cars/available -----------------------------------------------

func TestFindAvailableCars_200(t *testing.T) {
	period, err := domain.DateRangeStartingTomorrow(2)
	require.NoError(t, err)
	var got repo.AvailabilityFilter
	cars := &mockCarServicer{
		findAvailable: func(_ context.Context, f repo.AvailabilityFilter) ([]*domain.Car, error) {
			got = f
			return []*domain.Car{carFixture(t)}, nil
		},
	}
	target := fmt.Sprintf("/api/cars/available?start=%s&end=%s&type=suv&city=sea",
		dateStr(period.Start()), dateStr(period.End()))

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodGet, target, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.Period.Equals(period))
	require.NotNil(t, got.Type)
	assert.Equal(t, domain.CarTypeSUV, *got.Type)
	assert.Equal(t, "sea", got.City)
}

func TestFindAvailableCars_422(t *testing.T) {
	tomorrow, err := domain.DateRangeStartingTomorrow(1)
	require.NoError(t, err)
	d := dateStr(tomorrow.Start())
	yesterday := dateStr(domain.Today().AddDate(0, 0, -1))

	for name, target := range map[string]string{
		"missing end":      "/api/cars/available?start=" + d,
		"bad date":         "/api/cars/available?start=tomorrow&end=" + d,
		"start in past":    "/api/cars/available?start=" + yesterday + "&end=" + d,
		"unknown type":     "/api/cars/available?start=" + d + "&end=" + d + "&type=tank",
		"end before start": "/api/cars/available?start=" + d + "&end=" + yesterday,
	} {
		t.Run(name, func(t *testing.T) {
			rec := serve(newHTTPHandler(services{}), http.MethodGet, target, nil)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		})
	}
}

// ---- GET /api/cars/{carId} -------------------------------------------------

func TestGetCar_200(t *testing.T) {
	car, _ := reservedFixture(t)
	cars := &mockCarServicer{
		getByID: func(_ context.Context, id domain.CarID) (*domain.Car, error) {
			require.Equal(t, car.ID(), id)
			return car, nil
		},
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodGet, "/api/cars/"+car.ID().String(), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.Car
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "reserved", resp.Status)
	assert.Equal(t, 0, resp.ActiveReservations)
	assert.Equal(t, "Seattle", resp.Location.City)
}

func TestGetCar_404(t *testing.T) {
	cars := &mockCarServicer{
		getByID: func(_ context.Context, _ domain.CarID) (*domain.Car, error) {
			return nil, fmt.Errorf("service.CarService.GetByID: %w", domain.ErrNotFound)
		},
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodGet, "/api/cars/"+domain.NewCarID().String(), nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, handler.ErrorDetail{Code: "not_found", Message: "car not found"}, decodeError(t, rec))
}

func TestGetCar_422_InvalidID(t *testing.T) {
	rec := serve(newHTTPHandler(services{}), http.MethodGet, "/api/cars/not-a-uuid", nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "carId")
}

func TestGetCar_500(t *testing.T) {
	cars := &mockCarServicer{
		getByID: func(_ context.Context, _ domain.CarID) (*domain.Car, error) {
			return nil, errors.New("connection refused")
		},
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodGet, "/api/cars/"+domain.NewCarID().String(), nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeError(t, rec).Code)
}

// ---- DELETE /api/cars/{carId} ----------------------------------------------

func TestDeleteCar_204(t *testing.T) {
	cars := &mockCarServicer{
		delete: func(_ context.Context, _ domain.CarID) error { return nil },
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodDelete, "/api/cars/"+domain.NewCarID().String(), nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteCar_409_ActiveReservations(t *testing.T) {
	cars := &mockCarServicer{
		delete: func(_ context.Context, _ domain.CarID) error {
			return fmt.Errorf("service.CarService.Delete: %w", domain.Fail(domain.MsgDeleteBlocked).Err())
		},
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodDelete, "/api/cars/"+domain.NewCarID().String(), nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, handler.ErrorDetail{Code: "rule_violation", Message: domain.MsgDeleteBlocked}, decodeError(t, rec))
}

// ---- PUT /api/cars/{carId}/... ---------------------------------------------

func TestUpdateCarLocation_200(t *testing.T) {
	car := carFixture(t)
	var got domain.Location
	cars := &mockCarServicer{
		updateLocation: func(_ context.Context, _ domain.CarID, loc domain.Location) (*domain.Car, error) {
			got = loc
			return car, nil
		},
	}
	body := jsonBody(t, map[string]any{"city": "Tacoma", "address": "9 Dock St", "latitude": 47.25, "longitude": -122.44})

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodPut, "/api/cars/"+car.ID().String()+"/location", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Tacoma", got.City())
}

func TestUpdateCarLocation_422_NullBody(t *testing.T) {
	rec := serve(newHTTPHandler(services{}), http.MethodPut, "/api/cars/"+domain.NewCarID().String()+"/location",
		jsonBody(t, nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "location is required", decodeError(t, rec).Message)
}

func TestUpdateCarPricing_409_CurrencyChange(t *testing.T) {
	cars := &mockCarServicer{
		updatePricing: func(_ context.Context, _ domain.CarID, price domain.Money) (*domain.Car, error) {
			assert.Equal(t, "EUR", price.Currency())
			return nil, domain.Fail(domain.MsgCurrencyMismatch).Err()
		},
	}
	body := jsonBody(t, map[string]any{"price_per_day": map[string]any{"amount": 45.5, "currency": "EUR"}})

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodPut, "/api/cars/"+domain.NewCarID().String()+"/pricing", body)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.MsgCurrencyMismatch, decodeError(t, rec).Message)
}

func TestSetCarStatus(t *testing.T) {
	car := carFixture(t)
	called := ""
	op := func(name string) func(context.Context, domain.CarID) (*domain.Car, error) {
		return func(_ context.Context, _ domain.CarID) (*domain.Car, error) {
			called = name
			return car, nil
		}
	}
	cars := &mockCarServicer{
		setMaintenance:  op("maintenance"),
		setAvailable:    op("available"),
		setOutOfService: op("out-of-service"),
	}
	h := newHTTPHandler(services{cars: cars})

	for _, action := range []string{"maintenance", "available", "out-of-service"} {
		t.Run(action, func(t *testing.T) {
			rec := serve(h, http.MethodPut, "/api/cars/"+car.ID().String()+"/"+action, nil)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, action, called)
		})
	}
}

func TestSetCarMaintenance_409_ConcurrentUpdate(t *testing.T) {
	cars := &mockCarServicer{
		setMaintenance: func(_ context.Context, _ domain.CarID) (*domain.Car, error) {
			return nil, fmt.Errorf("service.CarService.SetMaintenance: %w", domain.ErrConcurrentUpdate)
		},
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodPut, "/api/cars/"+domain.NewCarID().String()+"/maintenance", nil)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "concurrent_update", decodeError(t, rec).Code)
}

// ---- GET /api/cars/{carId}/analytics ---------------------------------------

func TestGetCarAnalytics_200_PastPeriod(t *testing.T) {
	car := carFixture(t)
	var got domain.DateRange
	cars := &mockCarServicer{
		analytics: func(_ context.Context, _ domain.CarID, period domain.DateRange) (domain.CarAnalytics, error) {
			got = period
			return domain.BuildCarAnalytics(car, period), nil
		},
	}

	rec := serve(newHTTPHandler(services{cars: cars}), http.MethodGet,
		"/api/cars/"+car.ID().String()+"/analytics?start=2025-01-01&end=2025-01-31", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 31, got.Days())
	var resp handler.Analytics
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 31, resp.TotalDays)
	assert.Equal(t, "2025-01-01", resp.StartDate.String())
}
