package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/car-reservation/internal/domain"
)

// ProfileRepo stores one contact profile per customer.
type ProfileRepo interface {
	// Get returns domain.ErrNotFound if the customer has no profile yet.
	Get(ctx context.Context, customerID domain.CustomerID) (domain.UserProfile, error)

	// Upsert creates or replaces the customer's profile and returns what was stored.
	Upsert(ctx context.Context, customerID domain.CustomerID, p domain.UserProfile) (domain.UserProfile, error)
}

type pgProfileRepo struct {
	db db
}

func NewProfileRepo(db db) ProfileRepo {
	return &pgProfileRepo{db: db}
}

func (r *pgProfileRepo) Get(ctx context.Context, customerID domain.CustomerID) (domain.UserProfile, error) {
	const q = `
		SELECT first_name, last_name, phone, street, city, state, postal_code, country
		FROM customer_profiles
		WHERE customer_id = @customer_id`

	p, err := scanProfile(r.db.QueryRow(ctx, q, pgx.NamedArgs{"customer_id": customerID.UUID()}))
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("repo.ProfileRepo.Get: %w", err)
	}
	return p, nil
}

func (r *pgProfileRepo) Upsert(ctx context.Context, customerID domain.CustomerID, p domain.UserProfile) (domain.UserProfile, error) {
	const q = `
		INSERT INTO customer_profiles (customer_id, first_name, last_name, phone,
		                               street, city, state, postal_code, country)
		VALUES (@customer_id, @first_name, @last_name, @phone,
		        @street, @city, @state, @postal_code, @country)
		ON CONFLICT (customer_id) DO UPDATE
		SET first_name  = EXCLUDED.first_name,
		    last_name   = EXCLUDED.last_name,
		    phone       = EXCLUDED.phone,
		    street      = EXCLUDED.street,
		    city        = EXCLUDED.city,
		    state       = EXCLUDED.state,
		    postal_code = EXCLUDED.postal_code,
		    country     = EXCLUDED.country,
		    updated_at  = now()
		RETURNING first_name, last_name, phone, street, city, state, postal_code, country`

	args := pgx.NamedArgs{
		"customer_id": customerID.UUID(),
		"first_name":  p.FirstName(),
		"last_name":   p.LastName(),
		"phone":       p.Phone(),
		"street":      nil,
		"city":        nil,
		"state":       nil,
		"postal_code": nil,
		"country":     nil,
	}
	if a := p.Address(); a != nil {
		args["street"] = a.Street()
		args["city"] = a.City()
		args["state"] = a.State()
		args["postal_code"] = a.PostalCode()
		args["country"] = a.Country()
	}

	stored, err := scanProfile(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("repo.ProfileRepo.Upsert: %w", err)
	}
	return stored, nil
}

func scanProfile(s scanner) (domain.UserProfile, error) {
	var (
		first, last, phone                       string
		street, city, state, postalCode, country pgtype.Text
	)
	err := s.Scan(&first, &last, &phone, &street, &city, &state, &postalCode, &country)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.UserProfile{}, domain.ErrNotFound
		}
		return domain.UserProfile{}, err
	}

	var addr *domain.Address
	if street.Valid {
		a, err := domain.NewAddress(street.String, city.String, state.String, postalCode.String, country.String)
		if err != nil {
			return domain.UserProfile{}, err
		}
		addr = &a
	}
	return domain.NewUserProfile(first, last, phone, addr)
}
