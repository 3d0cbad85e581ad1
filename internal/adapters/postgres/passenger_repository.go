package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PassengerRepository struct {
	q Executor
}

func NewPassengerRepository(q Executor) *PassengerRepository {
	return &PassengerRepository{q: q}
}

const passengerColumns = `pax_id, booking_id, pax_name, pax_birthdate, pax_type, pax_amount::text, created_at`

func (r *PassengerRepository) CreatePassenger(ctx context.Context, p *domain.Passenger) error {
	query := `INSERT INTO passengers (booking_id, pax_name, pax_birthdate, pax_type, pax_amount, created_at)
			VALUES ($1, $2, $3, $4, $5::numeric, $6)
			RETURNING pax_id`

	err := r.q.QueryRow(ctx, query,
		p.BookingID,
		p.Name,
		p.Birthdate,
		string(p.Type),
		p.Amount.StringFixed(2),
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create passenger: %w", err)
	}
	return nil
}

func (r *PassengerRepository) FindPassengerByID(ctx context.Context, id int64) (*domain.Passenger, error) {
	query := `SELECT ` + passengerColumns + ` FROM passengers WHERE pax_id = $1`

	p, err := scanPassenger(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewPassengerNotFoundError(id)
	}
	return p, err
}

func (r *PassengerRepository) ListPassengersByBooking(ctx context.Context, bookingID int64) ([]*domain.Passenger, error) {
	query := `SELECT ` + passengerColumns + ` FROM passengers WHERE booking_id = $1 ORDER BY pax_id`

	rows, err := r.q.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list passengers: %w", err)
	}
	defer rows.Close()

	passengers := []*domain.Passenger{}
	for rows.Next() {
		p, err := scanPassenger(rows)
		if err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate passengers: %w", err)
	}
	return passengers, nil
}

// scanPassenger returns pgx.ErrNoRows unwrapped so callers can map it.
func scanPassenger(row pgx.Row) (*domain.Passenger, error) {
	var (
		p       domain.Passenger
		paxType string
		amount  string
	)
	err := row.Scan(&p.ID, &p.BookingID, &p.Name, &p.Birthdate, &paxType, &amount, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan passenger: %w", err)
	}

	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid passenger amount %q: %w", amount, err)
	}
	p.Type = domain.PaxType(paxType)
	return &p, nil
}
