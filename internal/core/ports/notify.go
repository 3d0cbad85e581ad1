package ports

import (
	"context"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/google/uuid"
)

// ConfirmationNotice is everything a notifier needs to tell the customer.
type ConfirmationNotice struct {
	Event    *domain.BookingConfirmedPayload
	Customer *domain.Customer
	Invoice  []byte
}

type Notifier interface {
	NotifyBookingConfirmed(ctx context.Context, notice ConfirmationNotice) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

type InvoiceRenderer interface {
	Render(ctx context.Context, paymentID uuid.UUID) ([]byte, error)
}
