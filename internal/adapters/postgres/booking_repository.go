package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type BookingRepository struct {
	q Executor
}

func NewBookingRepository(q Executor) *BookingRepository {
	return &BookingRepository{q: q}
}

const bookingColumns = `booking_id, customer_id, tour_id, no_of_pax, tour_amount::text, taxes::text,
	status_id, booking_date, created_at, updated_at`

func (r *BookingRepository) CreateBooking(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (
				customer_id, tour_id, no_of_pax, tour_amount, taxes, status_id, booking_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8, $9)
			RETURNING booking_id`

	err := r.q.QueryRow(ctx, query,
		b.CustomerID,
		b.TourID,
		b.PaxCount,
		b.BaseAmount.StringFixed(2),
		b.TaxAmount.StringFixed(2),
		int(b.Status),
		b.BookingDate,
		b.CreatedAt,
		b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *BookingRepository) FindBookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`
	return scanBooking(r.q.QueryRow(ctx, query, id), id)
}

func (r *BookingRepository) FindBookingByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1 FOR UPDATE`
	return scanBooking(r.q.QueryRow(ctx, query, id), id)
}

func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	query := `UPDATE bookings SET status_id = $2, updated_at = NOW() WHERE booking_id = $1`

	cmdTag, err := r.q.Exec(ctx, query, id, int(status))
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.NewBookingNotFoundError(id)
	}
	return nil
}

func (r *BookingRepository) CountBookings(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return n, nil
}

func scanBooking(row pgx.Row, id int64) (*domain.Booking, error) {
	var (
		b         domain.Booking
		base, tax string
		statusID  int
	)
	err := row.Scan(
		&b.ID,
		&b.CustomerID,
		&b.TourID,
		&b.PaxCount,
		&base,
		&tax,
		&statusID,
		&b.BookingDate,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewBookingNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to scan booking: %w", err)
	}

	if b.BaseAmount, err = decimal.NewFromString(base); err != nil {
		return nil, fmt.Errorf("invalid tour amount %q: %w", base, err)
	}
	if b.TaxAmount, err = decimal.NewFromString(tax); err != nil {
		return nil, fmt.Errorf("invalid taxes %q: %w", tax, err)
	}
	b.Status = domain.BookingStatus(statusID)
	return &b, nil
}
