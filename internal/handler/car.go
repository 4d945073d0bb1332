package handler

import (
	"context"
	"net/http"

	"github.com/pkordes/car-reservation/internal/domain"
	"github.com/pkordes/car-reservation/internal/repo"
)

const carNotFound = "car not found"

// CreateCar handles POST /api/cars.
func (s *Server) CreateCar(w http.ResponseWriter, r *http.Request) {
	var body CreateCarRequest
	if err := decodeBody(r, &body); err != nil {
		bodyError(w, err)
		return
	}
	in, err := body.toInput()
	if err != nil {
		requestError(w, unwrapMessage(err))
		return
	}

	car, err := s.cars.Create(r.Context(), in)
	if err != nil {
		s.serviceError(w, r, err, carNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, carToResponse(car))
}

// ListCars handles GET /api/cars.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListCars(w http.ResponseWriter, r *http.Request) {
	params, err := pageQuery(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	cars, total, err := s.cars.ListPaged(r.Context(), params)
	if err != nil {
		s.serviceError(w, r, err, carNotFound)
		return
	}
	writeJSON(w, http.StatusOK, CarList{
		Data: carsToResponse(cars),
		Pagination: &Pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      int(total),
			TotalPages: params.TotalPages(total),
		},
	})
}

// FindAvailableCars handles GET /api/cars/available?start=&end=[&type=][&city=].
func (s *Server) FindAvailableCars(w http.ResponseWriter, r *http.Request) {
	start, end, err := periodQuery(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	period, err := domain.NewDateRange(start.Time, end.Time)
	if err != nil {
		requestError(w, unwrapMessage(err))
		return
	}
	filter := repo.AvailabilityFilter{Period: period}

	carType, err := optionalStringQuery(r, "type")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if carType != nil {
		t, err := domain.ParseCarType(*carType)
		if err != nil {
			requestError(w, unwrapMessage(err))
			return
		}
		filter.Type = &t
	}
	city, err := optionalStringQuery(r, "city")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if city != nil {
		filter.City = *city
	}

	cars, err := s.cars.FindAvailable(r.Context(), filter)
	if err != nil {
		s.serviceError(w, r, err, carNotFound)
		return
	}
	writeJSON(w, http.StatusOK, CarList{Data: carsToResponse(cars)})
}

// GetCar handles GET /api/cars/{carId}.
func (s *Server) GetCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathCarID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	car, err := s.cars.GetByID(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, carNotFound)
		return
	}
	writeJSON(w, http.StatusOK, carToResponse(car))
}

// DeleteCar handles DELETE /api/cars/{carId}.
func (s *Server) DeleteCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathCarID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	if err := s.cars.Delete(r.Context(), id); err != nil {
		s.serviceError(w, r, err, carNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateCarLocation handles PUT /api/cars/{carId}/location.
func (s *Server) UpdateCarLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathCarID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var body *Location
	if err := decodeBody(r, &body); err != nil {
		bodyError(w, err)
		return
	}
	loc, err := body.toDomain()
	if err != nil {
		requestError(w, unwrapMessage(err))
		return
	}

	car, err := s.cars.UpdateLocation(r.Context(), id, loc)
	if err != nil {
		s.serviceError(w, r, err, carNotFound)
		return
	}
	writeJSON(w, http.StatusOK, carToResponse(car))
}

// UpdateCarPricing handles PUT /api/cars/{carId}/pricing.
func (s *Server) UpdateCarPricing(w http.ResponseWriter, r *http.Request) {
	id, err := pathCarID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	var body UpdatePricingRequest
	if err := decodeBody(r, &body); err != nil {
		bodyError(w, err)
		return
	}
	price, err := body.PricePerDay.toDomain()
	if err != nil {
		requestError(w, unwrapMessage(err))
		return
	}

	car, err := s.cars.UpdatePricing(r.Context(), id, price)
	if err != nil {
		s.serviceError(w, r, err, carNotFound)
		return
	}
	writeJSON(w, http.StatusOK, carToResponse(car))
}

// SetCarMaintenance handles PUT /api/cars/{carId}/maintenance.
func (s *Server) SetCarMaintenance(w http.ResponseWriter, r *http.Request) {
	s.changeStatus(w, r, s.cars.SetMaintenance)
}

// SetCarAvailable handles PUT /api/cars/{carId}/available.
func (s *Server) SetCarAvailable(w http.ResponseWriter, r *http.Request) {
	s.changeStatus(w, r, s.cars.SetAvailable)
}

// SetCarOutOfService handles PUT /api/cars/{carId}/out-of-service.
func (s *Server) SetCarOutOfService(w http.ResponseWriter, r *http.Request) {
	s.changeStatus(w, r, s.cars.SetOutOfService)
}

func (s *Server) changeStatus(w http.ResponseWriter, r *http.Request,
	op func(context.Context, domain.CarID) (*domain.Car, error)) {
	id, err := pathCarID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	car, err := op(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, carNotFound)
		return
	}
	writeJSON(w, http.StatusOK, carToResponse(car))
}

// GetCarAnalytics handles GET /api/cars/{carId}/analytics?start=&end=.
// The period may lie in the past.
func (s *Server) GetCarAnalytics(w http.ResponseWriter, r *http.Request) {
	id, err := pathCarID(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	start, end, err := periodQuery(r)
	if err != nil {
		requestError(w, err.Error())
		return
	}
	period, err := domain.RestoreDateRange(start.Time, end.Time)
	if err != nil {
		requestError(w, unwrapMessage(err))
		return
	}

	a, err := s.cars.Analytics(r.Context(), id, period)
	if err != nil {
		s.serviceError(w, r, err, carNotFound)
		return
	}
	writeJSON(w, http.StatusOK, analyticsToResponse(a))
}
