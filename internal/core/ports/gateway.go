package ports

import (
	"context"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
)

// PaymentGateway defines the behavior of the external payment provider.
type PaymentGateway interface {
	CreateRemoteOrder(ctx context.Context, minorAmount int64, currency, receipt string) (string, error)
	VerifySignature(payload []byte, signature string) bool
	ParseWebhookEvent(payload []byte) (*domain.WebhookEvent, error)
}
