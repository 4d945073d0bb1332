package domain

import (
	"fmt"
	"math"
	"strings"
)

// Location is where a car is currently parked.
type Location struct {
	city      string
	address   string
	latitude  float64
	longitude float64
}

// NewLocation validates all four fields. Coordinates are WGS84 degrees.
func NewLocation(city, address string, latitude, longitude float64) (Location, error) {
	city = strings.TrimSpace(city)
	address = strings.TrimSpace(address)
	if city == "" {
		return Location{}, fmt.Errorf("%w: city cannot be empty", ErrValidation)
	}
	if address == "" {
		return Location{}, fmt.Errorf("%w: address cannot be empty", ErrValidation)
	}
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return Location{}, fmt.Errorf("%w: invalid latitude", ErrValidation)
	}
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return Location{}, fmt.Errorf("%w: invalid longitude", ErrValidation)
	}
	return Location{city: city, address: address, latitude: latitude, longitude: longitude}, nil
}

func (l Location) City() string       { return l.city }
func (l Location) Address() string    { return l.address }
func (l Location) Latitude() float64  { return l.latitude }
func (l Location) Longitude() float64 { return l.longitude }
func (l Location) IsZero() bool       { return l == Location{} }

func (l Location) Equals(other Location) bool { return l == other }

func (l Location) String() string {
	return fmt.Sprintf("%s, %s (%g, %g)", l.address, l.city, l.latitude, l.longitude)
}
