package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/car-reservation/internal/domain"
)

// AvailabilityFilter narrows FindAvailable. Type and City are optional.
type AvailabilityFilter struct {
	Period domain.DateRange
	Type   *domain.CarType
	// City is matched case-insensitively as a substring.
	City string
}

// CarRepo defines the persistence operations for the Car aggregate.
// A car is always loaded and saved together with all of its reservations.
type CarRepo interface {
	// Create inserts a new car, its reservations and its pending events.
	// Returns domain.ErrConflict if the license plate is already registered.
	Create(ctx context.Context, car *domain.Car) error

	// GetByID loads a car and its reservations.
	// Returns domain.ErrNotFound if no car with that ID exists.
	GetByID(ctx context.Context, id domain.CarID) (*domain.Car, error)

	// ListPaged returns one page of cars ordered by brand, model and plate,
	// plus the total number of cars.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]*domain.Car, int64, error)

	// FindAvailable returns Available cars with no Active reservation
	// overlapping the filter's period.
	FindAvailable(ctx context.Context, f AvailabilityFilter) ([]*domain.Car, error)

	// Save writes the car's current state if nobody else saved it since it was
	// loaded, together with its reservations and pending events.
	// Returns domain.ErrConcurrentUpdate on a version mismatch.
	Save(ctx context.Context, car *domain.Car) error

	// Delete removes a car and its reservations, subject to the same version
	// check as Save.
	Delete(ctx context.Context, car *domain.Car) error
}

type pgCarRepo struct {
	db db
}

// NewCarRepo constructs a CarRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewCarRepo(db db) CarRepo {
	return &pgCarRepo{db: db}
}

var carColumns = []string{
	"c.id", "c.brand", "c.model", "c.license_plate", "c.car_type",
	"c.price_cents", "c.currency", "c.status",
	"c.city", "c.address", "c.latitude", "c.longitude",
	"c.version", "c.created_at", "c.updated_at",
}

const carSelect = `
		SELECT c.id, c.brand, c.model, c.license_plate, c.car_type,
		       c.price_cents, c.currency, c.status,
		       c.city, c.address, c.latitude, c.longitude,
		       c.version, c.created_at, c.updated_at
		FROM cars c`

func (r *pgCarRepo) Create(ctx context.Context, car *domain.Car) error {
	const q = `
		INSERT INTO cars (id, brand, model, license_plate, car_type, price_cents, currency,
		                  status, city, address, latitude, longitude, version, created_at, updated_at)
		VALUES (@id, @brand, @model, @license_plate, @car_type, @price_cents, @currency,
		        @status, @city, @address, @latitude, @longitude, 1, @created_at, @updated_at)`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.CarRepo.Create: begin: %w", err)
	}
	defer rollback(ctx, tx)

	s := car.Snapshot()
	if _, err := tx.Exec(ctx, q, carArgs(s)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("repo.CarRepo.Create: %w: license plate %q is already registered", domain.ErrConflict, s.LicensePlate)
		}
		return fmt.Errorf("repo.CarRepo.Create: %w", err)
	}
	if err := upsertReservations(ctx, tx, s.Reservations); err != nil {
		return fmt.Errorf("repo.CarRepo.Create: %w", err)
	}
	if err := insertOutbox(ctx, tx, car.DomainEvents()); err != nil {
		return fmt.Errorf("repo.CarRepo.Create: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.CarRepo.Create: commit: %w", err)
	}

	car.MarkSaved(1)
	return nil
}

func (r *pgCarRepo) GetByID(ctx context.Context, id domain.CarID) (*domain.Car, error) {
	const q = carSelect + `
		WHERE c.id = @id`

	s, err := scanCar(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id.UUID()}))
	if err != nil {
		return nil, fmt.Errorf("repo.CarRepo.GetByID: %w", err)
	}
	cars, err := r.attachReservations(ctx, []domain.CarSnapshot{s})
	if err != nil {
		return nil, fmt.Errorf("repo.CarRepo.GetByID: %w", err)
	}
	return cars[0], nil
}

func (r *pgCarRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]*domain.Car, int64, error) {
	const q = carSelect + `
		ORDER BY c.brand, c.model, c.license_plate
		LIMIT @limit OFFSET @offset`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM cars`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.CarRepo.ListPaged: count: %w", err)
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.CarRepo.ListPaged: %w", err)
	}
	snaps, err := collectCars(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.CarRepo.ListPaged: %w", err)
	}

	cars, err := r.attachReservations(ctx, snaps)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.CarRepo.ListPaged: %w", err)
	}
	return cars, total, nil
}

func (r *pgCarRepo) FindAvailable(ctx context.Context, f AvailabilityFilter) ([]*domain.Car, error) {
	b := psql.Select(carColumns...).
		From("cars c").
		Where(sq.Eq{"c.status": domain.CarStatusAvailable.String()}).
		Where(sq.Expr(`NOT EXISTS (
			SELECT 1 FROM reservations r
			WHERE r.car_id = c.id
			  AND r.status = ?
			  AND r.start_date <= ?
			  AND r.end_date >= ?)`,
			domain.ReservationActive.String(), f.Period.End(), f.Period.Start())).
		OrderBy("c.price_cents", "c.brand", "c.model")

	if f.Type != nil {
		b = b.Where(sq.Eq{"c.car_type": f.Type.String()})
	}
	if f.City != "" {
		b = b.Where(sq.ILike{"c.city": likeContains(f.City)})
	}

	q, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("repo.CarRepo.FindAvailable: build query: %w", err)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("repo.CarRepo.FindAvailable: %w", err)
	}
	snaps, err := collectCars(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.CarRepo.FindAvailable: %w", err)
	}

	cars, err := r.attachReservations(ctx, snaps)
	if err != nil {
		return nil, fmt.Errorf("repo.CarRepo.FindAvailable: %w", err)
	}
	return cars, nil
}

func (r *pgCarRepo) Save(ctx context.Context, car *domain.Car) error {
	const q = `
		UPDATE cars
		SET brand         = @brand,
		    model         = @model,
		    license_plate = @license_plate,
		    car_type      = @car_type,
		    price_cents   = @price_cents,
		    currency      = @currency,
		    status        = @status,
		    city          = @city,
		    address       = @address,
		    latitude      = @latitude,
		    longitude     = @longitude,
		    version       = version + 1,
		    updated_at    = @updated_at
		WHERE id = @id AND version = @version`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.CarRepo.Save: begin: %w", err)
	}
	defer rollback(ctx, tx)

	s := car.Snapshot()
	args := carArgs(s)
	args["version"] = s.Version

	tag, err := tx.Exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("repo.CarRepo.Save: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CarRepo.Save: car %s at version %d: %w", s.ID, s.Version, domain.ErrConcurrentUpdate)
	}
	if err := upsertReservations(ctx, tx, s.Reservations); err != nil {
		return fmt.Errorf("repo.CarRepo.Save: %w", err)
	}
	if err := insertOutbox(ctx, tx, car.DomainEvents()); err != nil {
		return fmt.Errorf("repo.CarRepo.Save: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.CarRepo.Save: commit: %w", err)
	}

	car.MarkSaved(s.Version + 1)
	return nil
}

func (r *pgCarRepo) Delete(ctx context.Context, car *domain.Car) error {
	const q = `DELETE FROM cars WHERE id = @id AND version = @version`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": car.ID().UUID(), "version": car.Version()})
	if err != nil {
		return fmt.Errorf("repo.CarRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.CarRepo.Delete: car %s at version %d: %w", car.ID(), car.Version(), domain.ErrConcurrentUpdate)
	}
	return nil
}

// attachReservations loads the reservations of every snapshot in one query
// and rehydrates the aggregates in the original order.
func (r *pgCarRepo) attachReservations(ctx context.Context, snaps []domain.CarSnapshot) ([]*domain.Car, error) {
	if len(snaps) == 0 {
		return []*domain.Car{}, nil
	}

	const q = reservationSelect + `
		WHERE r.car_id = ANY(@ids)
		ORDER BY r.created_at, r.id`

	ids := make([]uuid.UUID, len(snaps))
	index := make(map[domain.CarID]int, len(snaps))
	for i, s := range snaps {
		ids[i] = s.ID.UUID()
		index[s.ID] = i
	}

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("reservations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rs, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("reservations: scan: %w", err)
		}
		i := index[rs.CarID]
		snaps[i].Reservations = append(snaps[i].Reservations, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reservations: rows: %w", err)
	}

	cars := make([]*domain.Car, len(snaps))
	for i, s := range snaps {
		car, err := domain.RehydrateCar(s)
		if err != nil {
			return nil, fmt.Errorf("rehydrate car %s: %w", s.ID, err)
		}
		cars[i] = car
	}
	return cars, nil
}

func carArgs(s domain.CarSnapshot) pgx.NamedArgs {
	return pgx.NamedArgs{
		"id":            s.ID.UUID(),
		"brand":         s.Brand,
		"model":         s.Model,
		"license_plate": s.LicensePlate,
		"car_type":      s.Type.String(),
		"price_cents":   s.PricePerDay.Amount(),
		"currency":      s.PricePerDay.Currency(),
		"status":        s.Status.String(),
		"city":          s.Location.City(),
		"address":       s.Location.Address(),
		"latitude":      s.Location.Latitude(),
		"longitude":     s.Location.Longitude(),
		"created_at":    s.CreatedAt,
		"updated_at":    s.UpdatedAt,
	}
}

func upsertReservations(ctx context.Context, tx pgx.Tx, rs []domain.ReservationSnapshot) error {
	const q = `
		INSERT INTO reservations (id, car_id, customer_id, start_date, end_date, total_cents, currency,
		                          status, created_at, confirmed_at, cancelled_at, completed_at)
		VALUES (@id, @car_id, @customer_id, @start_date, @end_date, @total_cents, @currency,
		        @status, @created_at, @confirmed_at, @cancelled_at, @completed_at)
		ON CONFLICT (id) DO UPDATE
		SET status       = EXCLUDED.status,
		    confirmed_at = EXCLUDED.confirmed_at,
		    cancelled_at = EXCLUDED.cancelled_at,
		    completed_at = EXCLUDED.completed_at`

	if len(rs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range rs {
		batch.Queue(q, pgx.NamedArgs{
			"id":           r.ID.UUID(),
			"car_id":       r.CarID.UUID(),
			"customer_id":  r.CustomerID.UUID(),
			"start_date":   pgtype.Date{Time: r.Period.Start(), Valid: true},
			"end_date":     pgtype.Date{Time: r.Period.End(), Valid: true},
			"total_cents":  r.TotalPrice.Amount(),
			"currency":     r.TotalPrice.Currency(),
			"status":       r.Status.String(),
			"created_at":   r.CreatedAt,
			"confirmed_at": r.ConfirmedAt,
			"cancelled_at": r.CancelledAt,
			"completed_at": r.CompletedAt,
		})
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert reservations: %w", err)
	}
	return nil
}

func insertOutbox(ctx context.Context, tx pgx.Tx, events []domain.Event) error {
	const q = `
		INSERT INTO outbox (id, aggregate_id, event_type, payload, occurred_at)
		VALUES (@id, @aggregate_id, @event_type, @payload, @occurred_at)`

	for _, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("outbox: marshal %s: %w", e.EventType(), err)
		}
		_, err = tx.Exec(ctx, q, pgx.NamedArgs{
			"id":           e.EventID(),
			"aggregate_id": e.AggregateID(),
			"event_type":   e.EventType(),
			"payload":      payload,
			"occurred_at":  e.OccurredAt(),
		})
		if err != nil {
			return fmt.Errorf("outbox: insert %s: %w", e.EventType(), err)
		}
	}
	return nil
}

func collectCars(rows pgx.Rows) ([]domain.CarSnapshot, error) {
	defer rows.Close()

	snaps := []domain.CarSnapshot{}
	for rows.Next() {
		s, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return snaps, nil
}

// scanCar maps a cars row into a snapshot without reservations.
func scanCar(s scanner) (domain.CarSnapshot, error) {
	var (
		id         pgtype.UUID
		brand      string
		model      string
		plate      string
		carType    string
		priceCents int64
		currency   string
		status     string
		city       string
		address    string
		lat, lng   float64
		version    int64
		createdAt  time.Time
		updatedAt  time.Time
	)
	err := s.Scan(&id, &brand, &model, &plate, &carType, &priceCents, &currency, &status,
		&city, &address, &lat, &lng, &version, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CarSnapshot{}, domain.ErrNotFound
		}
		return domain.CarSnapshot{}, err
	}

	price, err := domain.NewMoney(priceCents, currency)
	if err != nil {
		return domain.CarSnapshot{}, err
	}
	loc, err := domain.NewLocation(city, address, lat, lng)
	if err != nil {
		return domain.CarSnapshot{}, err
	}

	return domain.CarSnapshot{
		ID:           domain.CarIDFrom(uuid.UUID(id.Bytes)),
		Brand:        brand,
		Model:        model,
		LicensePlate: plate,
		Type:         domain.CarType(carType),
		PricePerDay:  price,
		Status:       domain.CarStatus(status),
		Location:     loc,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		Version:      version,
	}, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likeContains builds a LIKE pattern matching s literally anywhere in the
// column. Postgres uses backslash as the default LIKE escape.
func likeContains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
