package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
)

// Store hands out repositories bound to one executor: the pool, or the
// transaction opened by WithTx.
type Store struct {
	q      Executor
	logger *slog.Logger
}

func NewStore(db *DB, logger *slog.Logger) *Store {
	return &Store{
		q:      db.Pool,
		logger: logger,
	}
}

func (s *Store) Bookings() ports.BookingRepository     { return NewBookingRepository(s.q) }
func (s *Store) Payments() ports.PaymentRepository     { return NewPaymentRepository(s.q) }
func (s *Store) Customers() ports.CustomerRepository   { return NewCustomerRepository(s.q) }
func (s *Store) Passengers() ports.PassengerRepository { return NewPassengerRepository(s.q) }
func (s *Store) Outbox() ports.OutboxRepository        { return NewOutboxRepository(s.q) }

// WithTx executes a function within a database transaction. Nested calls
// run inside a savepoint of the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ports.Store) error) error {
	b, ok := s.q.(beginner)
	if !ok {
		return errors.New("executor cannot begin transactions")
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Defer rollback in case of panic or error (if commit isn't reached)
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !isTxClosed(rbErr) {
			s.logger.Warn("transaction rollback failed", "error", rbErr)
		}
	}()

	if err := fn(&Store{q: tx, logger: s.logger}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
