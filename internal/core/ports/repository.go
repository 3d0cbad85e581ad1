package ports

import (
	"context"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/google/uuid"
)

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *domain.Booking) error
	FindBookingByID(ctx context.Context, id int64) (*domain.Booking, error)
	// FindBookingByIDForUpdate locks the booking row until the surrounding
	// transaction ends.
	FindBookingByIDForUpdate(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	CountBookings(ctx context.Context) (int64, error)
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	FindByTransactionRef(ctx context.Context, ref string) (*domain.Payment, error)
	// FindByOrderRefForUpdate resolves a gateway order id, also after the
	// transaction reference has been rewritten, and locks the row.
	FindByOrderRefForUpdate(ctx context.Context, orderRef string) (*domain.Payment, error)
	FindByBookingAndStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) (*domain.Payment, error)
	ExistsByBookingAndStatus(ctx context.Context, bookingID int64, status domain.PaymentStatus) (bool, error)
	UpdatePayment(ctx context.Context, payment *domain.Payment) error
	FindIntegrityGaps(ctx context.Context, limit int) ([]*domain.IntegrityGap, error)
}

type CustomerRepository interface {
	FindCustomerByID(ctx context.Context, id int64) (*domain.Customer, error)
}

type PassengerRepository interface {
	CreatePassenger(ctx context.Context, passenger *domain.Passenger) error
	FindPassengerByID(ctx context.Context, id int64) (*domain.Passenger, error)
	ListPassengersByBooking(ctx context.Context, bookingID int64) ([]*domain.Passenger, error)
}

type OutboxRepository interface {
	InsertEvent(ctx context.Context, event *domain.OutboxEvent) error
	// ClaimPendingEvents locks due events, skipping rows held by other
	// dispatchers. Must run inside a transaction.
	ClaimPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	UpdateEvent(ctx context.Context, event *domain.OutboxEvent) error
}

// Store groups the repositories that must change together.
type Store interface {
	Bookings() BookingRepository
	Payments() PaymentRepository
	Customers() CustomerRepository
	Passengers() PassengerRepository
	Outbox() OutboxRepository

	// WithTx executes fn within a database transaction. Repositories taken
	// from the Store passed to fn share that transaction.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}
