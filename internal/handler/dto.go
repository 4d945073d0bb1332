package handler

import (
	"errors"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/car-reservation/internal/domain"
	"github.com/pkordes/car-reservation/internal/service"
)

// Money is a price in major units (e.g. 85.50) with an ISO 4217 currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Location struct {
	City      string  `json:"city"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CreateCarRequest struct {
	Brand        string    `json:"brand"`
	Model        string    `json:"model"`
	LicensePlate string    `json:"license_plate"`
	Type         string    `json:"type"`
	PricePerDay  *Money    `json:"price_per_day"`
	Location     *Location `json:"location"`
}

type UpdatePricingRequest struct {
	PricePerDay *Money `json:"price_per_day"`
}

type Car struct {
	Id                 openapi_types.UUID `json:"id"`
	Brand              string             `json:"brand"`
	Model              string             `json:"model"`
	LicensePlate       string             `json:"license_plate"`
	Type               string             `json:"type"`
	PricePerDay        Money              `json:"price_per_day"`
	Status             string             `json:"status"`
	Location           Location           `json:"location"`
	ActiveReservations int                `json:"active_reservations"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type CarList struct {
	Data       []Car       `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type CreateReservationRequest struct {
	CarId      openapi_types.UUID `json:"car_id"`
	CustomerId openapi_types.UUID `json:"customer_id"`
	StartDate  openapi_types.Date `json:"start_date"`
	EndDate    openapi_types.Date `json:"end_date"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason"`
}

type Reservation struct {
	Id          openapi_types.UUID `json:"id"`
	CarId       openapi_types.UUID `json:"car_id"`
	CustomerId  openapi_types.UUID `json:"customer_id"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Days        int                `json:"days"`
	TotalPrice  Money              `json:"total_price"`
	Status      string             `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	ConfirmedAt *time.Time         `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time         `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

type ReservationList struct {
	Data []Reservation `json:"data"`
}

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Profile struct {
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Phone      string   `json:"phone,omitempty"`
	Address    *Address `json:"address,omitempty"`
	FullName   string   `json:"full_name"`
	IsComplete bool     `json:"is_complete"`
}

type Analytics struct {
	CarId        openapi_types.UUID `json:"car_id"`
	Brand        string             `json:"brand"`
	Model        string             `json:"model"`
	LicensePlate string             `json:"license_plate"`
	StartDate    openapi_types.Date `json:"start_date"`
	EndDate      openapi_types.Date `json:"end_date"`
	TotalDays    int                `json:"total_days"`

	TotalReservations     int     `json:"total_reservations"`
	CompletedReservations int     `json:"completed_reservations"`
	CancelledReservations int     `json:"cancelled_reservations"`
	ActiveReservations    int     `json:"active_reservations"`
	AverageDuration       float64 `json:"average_duration_days"`
	CancellationRate      float64 `json:"cancellation_rate"`

	Revenue                      Money `json:"revenue"`
	AverageRevenuePerReservation Money `json:"average_revenue_per_reservation"`
	AverageRevenuePerDay         Money `json:"average_revenue_per_day"`

	DaysReserved     int     `json:"days_reserved"`
	DaysAvailable    int     `json:"days_available"`
	UtilizationRate  float64 `json:"utilization_rate"`
	AvailabilityRate float64 `json:"availability_rate"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// --- request mapping --------------------------------------------------------

func (m *Money) toDomain() (domain.Money, error) {
	if m == nil {
		return domain.Money{}, errors.New("price_per_day is required")
	}
	return domain.NewMoneyFromMajor(m.Amount, m.Currency)
}

func (l *Location) toDomain() (domain.Location, error) {
	if l == nil {
		return domain.Location{}, errors.New("location is required")
	}
	return domain.NewLocation(l.City, l.Address, l.Latitude, l.Longitude)
}

func (a *Address) toDomain() (*domain.Address, error) {
	if a == nil {
		return nil, nil
	}
	addr, err := domain.NewAddress(a.Street, a.City, a.State, a.PostalCode, a.Country)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// toInput converts the body into service input. Value-object errors wrap
// domain.ErrValidation, so callers map them like any other validation error.
func (b *CreateCarRequest) toInput() (service.CreateCarInput, error) {
	carType, err := domain.ParseCarType(b.Type)
	if err != nil {
		return service.CreateCarInput{}, err
	}
	price, err := b.PricePerDay.toDomain()
	if err != nil {
		return service.CreateCarInput{}, err
	}
	loc, err := b.Location.toDomain()
	if err != nil {
		return service.CreateCarInput{}, err
	}
	return service.CreateCarInput{
		Brand:        b.Brand,
		Model:        b.Model,
		LicensePlate: b.LicensePlate,
		Type:         carType,
		PricePerDay:  price,
		Location:     loc,
	}, nil
}

// --- response mapping -------------------------------------------------------

func moneyToResponse(m domain.Money) Money {
	return Money{Amount: m.Major(), Currency: m.Currency()}
}

func locationToResponse(l domain.Location) Location {
	return Location{City: l.City(), Address: l.Address(), Latitude: l.Latitude(), Longitude: l.Longitude()}
}

func carToResponse(c *domain.Car) Car {
	return Car{
		Id:                 c.ID().UUID(),
		Brand:              c.Brand(),
		Model:              c.Model(),
		LicensePlate:       c.LicensePlate(),
		Type:               c.Type().String(),
		PricePerDay:        moneyToResponse(c.PricePerDay()),
		Status:             c.Status().String(),
		Location:           locationToResponse(c.CurrentLocation()),
		ActiveReservations: c.ActiveReservationsCount(),
		CreatedAt:          c.CreatedAt(),
		UpdatedAt:          c.UpdatedAt(),
	}
}

func carsToResponse(cars []*domain.Car) []Car {
	out := make([]Car, len(cars))
	for i, c := range cars {
		out[i] = carToResponse(c)
	}
	return out
}

func reservationToResponse(r domain.Reservation) Reservation {
	return Reservation{
		Id:          r.ID().UUID(),
		CarId:       r.CarID().UUID(),
		CustomerId:  r.CustomerID().UUID(),
		StartDate:   openapi_types.Date{Time: r.Period().Start()},
		EndDate:     openapi_types.Date{Time: r.Period().End()},
		Days:        r.Period().Days(),
		TotalPrice:  moneyToResponse(r.TotalPrice()),
		Status:      r.Status().String(),
		CreatedAt:   r.CreatedAt(),
		ConfirmedAt: r.ConfirmedAt(),
		CancelledAt: r.CancelledAt(),
		CompletedAt: r.CompletedAt(),
	}
}

func snapshotToResponse(s domain.ReservationSnapshot) Reservation {
	return Reservation{
		Id:          s.ID.UUID(),
		CarId:       s.CarID.UUID(),
		CustomerId:  s.CustomerID.UUID(),
		StartDate:   openapi_types.Date{Time: s.Period.Start()},
		EndDate:     openapi_types.Date{Time: s.Period.End()},
		Days:        s.Period.Days(),
		TotalPrice:  moneyToResponse(s.TotalPrice),
		Status:      s.Status.String(),
		CreatedAt:   s.CreatedAt,
		ConfirmedAt: s.ConfirmedAt,
		CancelledAt: s.CancelledAt,
		CompletedAt: s.CompletedAt,
	}
}

func profileToResponse(p domain.UserProfile) Profile {
	resp := Profile{
		FirstName:  p.FirstName(),
		LastName:   p.LastName(),
		Phone:      p.Phone(),
		FullName:   p.FullName(),
		IsComplete: p.IsComplete(),
	}
	if a := p.Address(); a != nil {
		resp.Address = &Address{
			Street:     a.Street(),
			City:       a.City(),
			State:      a.State(),
			PostalCode: a.PostalCode(),
			Country:    a.Country(),
		}
	}
	return resp
}

func analyticsToResponse(a domain.CarAnalytics) Analytics {
	return Analytics{
		CarId:                        a.CarID.UUID(),
		Brand:                        a.Brand,
		Model:                        a.Model,
		LicensePlate:                 a.LicensePlate,
		StartDate:                    openapi_types.Date{Time: a.Period.Start()},
		EndDate:                      openapi_types.Date{Time: a.Period.End()},
		TotalDays:                    a.TotalDays,
		TotalReservations:            a.TotalReservations,
		CompletedReservations:        a.CompletedReservations,
		CancelledReservations:        a.CancelledReservations,
		ActiveReservations:           a.ActiveReservations,
		AverageDuration:              a.AverageDuration,
		CancellationRate:             a.CancellationRate,
		Revenue:                      moneyToResponse(a.Revenue),
		AverageRevenuePerReservation: moneyToResponse(a.AverageRevenuePerReservation),
		AverageRevenuePerDay:         moneyToResponse(a.AverageRevenuePerDay),
		DaysReserved:                 a.DaysReserved,
		DaysAvailable:                a.DaysAvailable,
		UtilizationRate:              a.UtilizationRate,
		AvailabilityRate:             a.AvailabilityRate,
	}
}
