package razorpay

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/config"
	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
)

// RetryClient retries order creation on transient failures. Signature
// checks and webhook parsing are local and pass straight through.
type RetryClient struct {
	inner      ports.PaymentGateway
	baseDelay  time.Duration
	maxRetries int
}

// NewRetryClient wraps inner. RetryConfig.BaseDelay is in milliseconds.
func NewRetryClient(inner ports.PaymentGateway, cfg config.RetryConfig) *RetryClient {
	maxRetries := int(cfg.MaxRetries)
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &RetryClient{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Millisecond,
		maxRetries: maxRetries,
	}
}

func (r *RetryClient) CreateRemoteOrder(ctx context.Context, minorAmount int64, currency, receipt string) (string, error) {
	id, err := retry(r, ctx, func(ctx context.Context) (*string, error) {
		id, err := r.inner.CreateRemoteOrder(ctx, minorAmount, currency, receipt)
		if err != nil {
			return nil, err
		}
		return &id, nil
	})
	if err != nil {
		return "", err
	}
	return *id, nil
}

func (r *RetryClient) VerifySignature(payload []byte, signature string) bool {
	return r.inner.VerifySignature(payload, signature)
}

func (r *RetryClient) ParseWebhookEvent(payload []byte) (*domain.WebhookEvent, error) {
	return r.inner.ParseWebhookEvent(payload)
}

// Generic retry helper
func retry[T any](r *RetryClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.backoff(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

func isRetryable(err error) bool {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.IsRetryable()
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	// transport failures and timeouts
	return true
}

// Backoff calculation with exponential delay and jitter
func (r *RetryClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)
	if base <= 0 {
		return 0
	}
	jitter := time.Duration(rand.Int63n(int64(base)/2 + 1))
	return base + jitter
}
