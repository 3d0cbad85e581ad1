package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	constraintTransactionRef = "payments_transaction_ref_key"
	constraintGatewayOrderID = "payments_gateway_order_id_key"
	constraintOneInitiated   = "payments_one_initiated_per_booking"
	constraintOneSuccess     = "payments_one_success_per_booking"
)

type PaymentRepository struct {
	q Executor
}

func NewPaymentRepository(q Executor) *PaymentRepository {
	return &PaymentRepository{q: q}
}

const paymentColumns = `payment_id, booking_id, payment_mode, gateway_order_id, transaction_ref,
	payment_status, payment_amount::text, payment_date, created_at, updated_at`

// CreatePayment saves a new payment to the database
func (r *PaymentRepository) CreatePayment(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (
				payment_id, booking_id, payment_mode, gateway_order_id, transaction_ref,
				payment_status, payment_amount, payment_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10)`

	_, err := r.q.Exec(ctx, query,
		p.ID,
		p.BookingID,
		p.Mode,
		p.GatewayOrderID,
		p.TransactionRef,
		p.Status,
		p.Amount.StringFixed(2),
		p.PaidAt,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return mapPaymentWriteError(err, p)
	}
	return nil
}

// FindByID retrieves a payment by its unique system ID
func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`
	return scanPayment(r.q.QueryRow(ctx, query, id), id.String())
}

func (r *PaymentRepository) FindByTransactionRef(ctx context.Context, ref string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE transaction_ref = $1`
	return scanPayment(r.q.QueryRow(ctx, query, ref), ref)
}

func (r *PaymentRepository) FindByOrderRefForUpdate(ctx context.Context, orderRef string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE gateway_order_id = $1 FOR UPDATE`
	return scanPayment(r.q.QueryRow(ctx, query, orderRef), orderRef)
}

func (r *PaymentRepository) FindByBookingAndStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + `
			FROM payments
			WHERE booking_id = $1 AND payment_status = $2
			ORDER BY created_at DESC
			LIMIT 1`
	return scanPayment(r.q.QueryRow(ctx, query, bookingID, status),
		fmt.Sprintf("for booking %d with status %s", bookingID, status))
}

func (r *PaymentRepository) ExistsByBookingAndStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE booking_id = $1 AND payment_status = $2)`

	var exists bool
	if err := r.q.QueryRow(ctx, query, bookingID, status).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check payment existence: %w", err)
	}
	return exists, nil
}

// UpdatePayment persists the mutable fields of a payment.
func (r *PaymentRepository) UpdatePayment(ctx context.Context, p *domain.Payment) error {
	query := `UPDATE payments
			SET transaction_ref = $2,
				payment_status = $3,
				payment_date = $4,
				updated_at = $5
			WHERE payment_id = $1`

	cmdTag, err := r.q.Exec(ctx, query,
		p.ID,
		p.TransactionRef,
		p.Status,
		p.PaidAt,
		p.UpdatedAt,
	)
	if err != nil {
		return mapPaymentWriteError(err, p)
	}

	if cmdTag.RowsAffected() == 0 {
		return domain.NewPaymentNotFoundError(p.ID.String())
	}
	return nil
}

// FindIntegrityGaps lists SUCCESS payments whose booking is not CONFIRMED.
func (r *PaymentRepository) FindIntegrityGaps(ctx context.Context, limit int) ([]*domain.IntegrityGap, error) {
	query := `
		SELECT b.booking_id, b.status_id, p.payment_id, p.transaction_ref, p.payment_date
		FROM payments p
		JOIN bookings b ON b.booking_id = p.booking_id
		WHERE p.payment_status = 'SUCCESS'
			AND b.status_id <> $1
		ORDER BY p.payment_date ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, int(domain.BookingConfirmed), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query integrity gaps: %w", err)
	}
	defer rows.Close()

	var gaps []*domain.IntegrityGap
	for rows.Next() {
		var (
			g        domain.IntegrityGap
			statusID int
		)
		if err := rows.Scan(&g.BookingID, &statusID, &g.PaymentID, &g.TransactionRef, &g.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan integrity gap: %w", err)
		}
		g.BookingStatus = domain.BookingStatus(statusID)
		gaps = append(gaps, &g)
	}
	return gaps, rows.Err()
}

func mapPaymentWriteError(err error, p *domain.Payment) error {
	if IsUniqueViolation(err) {
		switch constraintName(err) {
		case constraintTransactionRef, constraintGatewayOrderID:
			return domain.NewDuplicateTransactionRefError(p.TransactionRef, err)
		case constraintOneSuccess:
			return domain.NewPaymentAlreadyCompletedError(p.BookingID)
		case constraintOneInitiated:
			return domain.NewDuplicateTransactionRefError(p.GatewayOrderID, err)
		}
	}
	return fmt.Errorf("failed to write payment: %w", err)
}

// scanPayment scans a pgx.Row into a domain.Payment and returns a pointer to the populated Payment.
func scanPayment(row pgx.Row, ref string) (*domain.Payment, error) {
	var (
		p      domain.Payment
		amount string
	)
	err := row.Scan(
		&p.ID,
		&p.BookingID,
		&p.Mode,
		&p.GatewayOrderID,
		&p.TransactionRef,
		&p.Status,
		&amount,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewPaymentNotFoundError(ref)
		}
		return nil, fmt.Errorf("failed to scan payment: %w", err)
	}

	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("invalid payment amount %q: %w", amount, err)
	}
	return &p, nil
}
