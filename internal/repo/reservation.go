package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/car-reservation/internal/domain"
)

// ReservationRepo answers read-side lookups over reservations. Writes always go
// through CarRepo.Save, because reservations are part of the Car aggregate.
type ReservationRepo interface {
	// CarIDFor returns the car that owns a reservation.
	// Returns domain.ErrNotFound if the reservation does not exist.
	CarIDFor(ctx context.Context, id domain.ReservationID) (domain.CarID, error)

	// ListByCustomer returns a customer's reservations, newest first.
	ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]domain.ReservationSnapshot, error)
}

type pgReservationRepo struct {
	db db
}

// NewReservationRepo constructs a ReservationRepo backed by the provided db connection.
func NewReservationRepo(db db) ReservationRepo {
	return &pgReservationRepo{db: db}
}

const reservationSelect = `
		SELECT r.id, r.car_id, r.customer_id, r.start_date, r.end_date, r.total_cents, r.currency,
		       r.status, r.created_at, r.confirmed_at, r.cancelled_at, r.completed_at
		FROM reservations r`

func (r *pgReservationRepo) CarIDFor(ctx context.Context, id domain.ReservationID) (domain.CarID, error) {
	const q = `SELECT car_id FROM reservations WHERE id = @id`

	var carID pgtype.UUID
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id.UUID()}).Scan(&carID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CarID{}, fmt.Errorf("repo.ReservationRepo.CarIDFor: %w", domain.ErrNotFound)
		}
		return domain.CarID{}, fmt.Errorf("repo.ReservationRepo.CarIDFor: %w", err)
	}
	return domain.CarIDFrom(uuid.UUID(carID.Bytes)), nil
}

func (r *pgReservationRepo) ListByCustomer(ctx context.Context, customerID domain.CustomerID) ([]domain.ReservationSnapshot, error) {
	const q = reservationSelect + `
		WHERE r.customer_id = @customer_id
		ORDER BY r.start_date DESC, r.created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"customer_id": customerID.UUID()})
	if err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListByCustomer: %w", err)
	}
	defer rows.Close()

	out := []domain.ReservationSnapshot{}
	for rows.Next() {
		rs, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ReservationRepo.ListByCustomer: scan: %w", err)
		}
		out = append(out, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ReservationRepo.ListByCustomer: rows: %w", err)
	}
	return out, nil
}

// scanReservation maps a reservations row into a snapshot.
// Stored periods are restored without the "not in the past" rule.
func scanReservation(s scanner) (domain.ReservationSnapshot, error) {
	var (
		id, carID, customerID pgtype.UUID
		start, end            pgtype.Date
		totalCents            int64
		currency              string
		status                string
		createdAt             time.Time
		confirmedAt           pgtype.Timestamptz
		cancelledAt           pgtype.Timestamptz
		completedAt           pgtype.Timestamptz
	)
	err := s.Scan(&id, &carID, &customerID, &start, &end, &totalCents, &currency,
		&status, &createdAt, &confirmedAt, &cancelledAt, &completedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ReservationSnapshot{}, domain.ErrNotFound
		}
		return domain.ReservationSnapshot{}, err
	}

	period, err := domain.RestoreDateRange(start.Time, end.Time)
	if err != nil {
		return domain.ReservationSnapshot{}, err
	}
	total, err := domain.NewMoney(totalCents, currency)
	if err != nil {
		return domain.ReservationSnapshot{}, err
	}

	return domain.ReservationSnapshot{
		ID:          domain.ReservationIDFrom(uuid.UUID(id.Bytes)),
		CarID:       domain.CarIDFrom(uuid.UUID(carID.Bytes)),
		CustomerID:  domain.CustomerIDFrom(uuid.UUID(customerID.Bytes)),
		Period:      period,
		TotalPrice:  total,
		Status:      domain.ReservationStatus(status),
		CreatedAt:   createdAt,
		ConfirmedAt: nullableTime(confirmedAt),
		CancelledAt: nullableTime(cancelledAt),
		CompletedAt: nullableTime(completedAt),
	}, nil
}

func nullableTime(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
