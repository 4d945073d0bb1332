package domain

import (
	"fmt"
	"strings"
)

// Address is a postal address attached to a customer profile.
type Address struct {
	street     string
	city       string
	state      string
	postalCode string
	country    string
}

func NewAddress(street, city, state, postalCode, country string) (Address, error) {
	a := Address{
		street:     strings.TrimSpace(street),
		city:       strings.TrimSpace(city),
		state:      strings.TrimSpace(state),
		postalCode: strings.TrimSpace(postalCode),
		country:    strings.TrimSpace(country),
	}
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"street", a.street, 200},
		{"city", a.city, 100},
		{"state", a.state, 100},
		{"postal code", a.postalCode, 20},
		{"country", a.country, 100},
	}
	for _, f := range fields {
		if f.value == "" {
			return Address{}, fmt.Errorf("%w: %s cannot be empty", ErrValidation, f.name)
		}
		if len(f.value) > f.max {
			return Address{}, fmt.Errorf("%w: %s is too long", ErrValidation, f.name)
		}
	}
	if len(a.postalCode) < 3 {
		return Address{}, fmt.Errorf("%w: postal code is too short", ErrValidation)
	}
	return a, nil
}

func (a Address) Street() string     { return a.street }
func (a Address) City() string       { return a.city }
func (a Address) State() string      { return a.state }
func (a Address) PostalCode() string { return a.postalCode }
func (a Address) Country() string    { return a.country }

func (a Address) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s %s, %s", a.street, a.city, a.state, a.postalCode, a.country)
}

func (a Address) IsInCountry(country string) bool {
	return strings.EqualFold(a.country, strings.TrimSpace(country))
}

func (a Address) IsInState(state string) bool {
	return strings.EqualFold(a.state, strings.TrimSpace(state))
}

func (a Address) IsInCity(city string) bool {
	return strings.EqualFold(a.city, strings.TrimSpace(city))
}

func (a Address) WithStreet(street string) (Address, error) {
	return NewAddress(street, a.city, a.state, a.postalCode, a.country)
}

func (a Address) WithPostalCode(postalCode string) (Address, error) {
	return NewAddress(a.street, a.city, a.state, postalCode, a.country)
}

func (a Address) String() string { return a.FullAddress() }

// UserProfile holds a customer's contact details. Phone and Address are optional.
type UserProfile struct {
	firstName string
	lastName  string
	phone     string
	address   *Address
}

func NewUserProfile(firstName, lastName, phone string, address *Address) (UserProfile, error) {
	p := UserProfile{
		firstName: strings.TrimSpace(firstName),
		lastName:  strings.TrimSpace(lastName),
		phone:     strings.TrimSpace(phone),
	}
	if p.firstName == "" {
		return UserProfile{}, fmt.Errorf("%w: first name cannot be empty", ErrValidation)
	}
	if p.lastName == "" {
		return UserProfile{}, fmt.Errorf("%w: last name cannot be empty", ErrValidation)
	}
	if len(p.firstName) > 50 {
		return UserProfile{}, fmt.Errorf("%w: first name is too long", ErrValidation)
	}
	if len(p.lastName) > 50 {
		return UserProfile{}, fmt.Errorf("%w: last name is too long", ErrValidation)
	}
	if address != nil {
		a := *address
		p.address = &a
	}
	return p, nil
}

func (p UserProfile) FirstName() string { return p.firstName }
func (p UserProfile) LastName() string  { return p.lastName }
func (p UserProfile) Phone() string     { return p.phone }
func (p UserProfile) FullName() string  { return p.firstName + " " + p.lastName }

// Address returns a copy of the address, or nil when none is on file.
func (p UserProfile) Address() *Address {
	if p.address == nil {
		return nil
	}
	a := *p.address
	return &a
}

// IsComplete reports whether the profile has everything needed to rent:
// names, a phone number and an address.
func (p UserProfile) IsComplete() bool {
	return p.firstName != "" && p.lastName != "" && p.phone != "" && p.address != nil
}

func (p UserProfile) WithPhone(phone string) (UserProfile, error) {
	return NewUserProfile(p.firstName, p.lastName, phone, p.address)
}

func (p UserProfile) WithNames(firstName, lastName string) (UserProfile, error) {
	return NewUserProfile(firstName, lastName, p.phone, p.address)
}

func (p UserProfile) WithAddress(address *Address) (UserProfile, error) {
	return NewUserProfile(p.firstName, p.lastName, p.phone, address)
}

// Equals compares field by field, including the address contents.
func (p UserProfile) Equals(other UserProfile) bool {
	if p.firstName != other.firstName || p.lastName != other.lastName || p.phone != other.phone {
		return false
	}
	if p.address == nil || other.address == nil {
		return p.address == nil && other.address == nil
	}
	return *p.address == *other.address
}

func (p UserProfile) String() string { return p.FullName() }
