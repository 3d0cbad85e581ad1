package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
)

// Confirmation sources, used as metric labels.
const (
	SourceClient  = "client"
	SourceWebhook = "webhook"
)

// WebhookOutcome describes what happened to one webhook delivery.
type WebhookOutcome string

const (
	WebhookProcessed WebhookOutcome = "processed"
	WebhookDuplicate WebhookOutcome = "duplicate"
	WebhookIgnored   WebhookOutcome = "ignored"
	WebhookRejected  WebhookOutcome = "rejected"
	WebhookMalformed WebhookOutcome = "malformed"
	WebhookFailed    WebhookOutcome = "failed"
)

// Recorder receives workflow counters.
type Recorder interface {
	OrderCreated(reused bool)
	PaymentConfirmed(source string, applied bool)
	WebhookHandled(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) OrderCreated(bool)             {}
func (nopRecorder) PaymentConfirmed(string, bool) {}
func (nopRecorder) WebhookHandled(string)         {}

type PaymentOrchestrator struct {
	store    ports.Store
	gateway  ports.PaymentGateway
	currency string
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

type OrchestratorOption func(*PaymentOrchestrator)

func WithRecorder(r Recorder) OrchestratorOption {
	return func(o *PaymentOrchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

func WithClock(now func() time.Time) OrchestratorOption {
	return func(o *PaymentOrchestrator) {
		o.now = now
	}
}

func NewPaymentOrchestrator(
	store ports.Store,
	gateway ports.PaymentGateway,
	currency string,
	logger *slog.Logger,
	opts ...OrchestratorOption,
) *PaymentOrchestrator {
	o := &PaymentOrchestrator{
		store:    store,
		gateway:  gateway,
		currency: currency,
		recorder: nopRecorder{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreateOrder opens a gateway order for the booking, or returns the
// INITIATED payment that already exists for it.
//
// The booking row stays locked for the whole call so concurrent requests
// for one booking queue up behind the first and reuse its payment.
func (o *PaymentOrchestrator) CreateOrder(ctx context.Context, bookingID int64) (*domain.OrderResult, error) {
	var result *domain.OrderResult

	err := o.store.WithTx(ctx, func(tx ports.Store) error {
		booking, err := tx.Bookings().FindBookingByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}

		paid, err := tx.Payments().ExistsByBookingAndStatus(ctx, booking.ID, domain.StatusSuccess)
		if err != nil {
			return err
		}
		if paid {
			return domain.NewPaymentAlreadyCompletedError(booking.ID)
		}

		existing, err := tx.Payments().FindByBookingAndStatus(ctx, booking.ID, domain.StatusInitiated)
		switch {
		case err == nil:
			minor, err := existing.MinorAmount()
			if err != nil {
				return err
			}
			result = &domain.OrderResult{
				TransactionRef: existing.TransactionRef,
				MinorAmount:    minor,
				Currency:       o.currency,
				Reused:         true,
			}
			return nil
		case !domain.IsErrorCode(err, domain.ErrCodePaymentNotFound):
			return err
		}

		total := booking.TotalAmount()
		minor, err := domain.ToMinorUnits(total)
		if err != nil {
			return err
		}

		orderID, err := o.gateway.CreateRemoteOrder(ctx, minor, o.currency, domain.ReceiptLabel(booking.ID))
		if err != nil {
			return domain.NewGatewayError(err)
		}

		payment, err := domain.NewPayment(booking.ID, orderID, total, o.now())
		if err != nil {
			return err
		}
		if err := tx.Payments().CreatePayment(ctx, payment); err != nil {
			return err
		}

		result = &domain.OrderResult{
			TransactionRef: orderID,
			MinorAmount:    minor,
			Currency:       o.currency,
		}
		return nil
	})
	if err != nil {
		o.logger.Warn("create order failed",
			"booking_id", bookingID,
			"kind", domain.KindOf(err),
			"error", err)
		return nil, err
	}

	o.recorder.OrderCreated(result.Reused)
	o.logger.Info("order ready",
		"booking_id", bookingID,
		"transaction_ref", result.TransactionRef,
		"minor_amount", result.MinorAmount,
		"reused", result.Reused)
	return result, nil
}

// ConfirmPayment finalizes a payment reported by the client checkout.
func (o *PaymentOrchestrator) ConfirmPayment(ctx context.Context, orderRef, paymentRef string, minorAmount int64) (*domain.Payment, error) {
	if orderRef == "" {
		return nil, domain.NewMissingRequiredFieldError("order_id")
	}
	if paymentRef == "" {
		return nil, domain.NewMissingRequiredFieldError("payment_id")
	}

	payment, applied, err := o.finalize(ctx, orderRef, paymentRef, minorAmount)
	if err != nil {
		o.logger.Warn("payment confirmation failed",
			"order_ref", orderRef,
			"payment_ref", paymentRef,
			"kind", domain.KindOf(err),
			"error", err)
		return nil, err
	}
	o.recorder.PaymentConfirmed(SourceClient, applied)
	return payment, nil
}

// HandleWebhook processes one gateway webhook delivery. The returned error
// is for logging only; deliveries are always acknowledged.
func (o *PaymentOrchestrator) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookOutcome, error) {
	outcome, err := o.handleWebhook(ctx, payload, signature)
	o.recorder.WebhookHandled(string(outcome))
	return outcome, err
}

func (o *PaymentOrchestrator) handleWebhook(ctx context.Context, payload []byte, signature string) (WebhookOutcome, error) {
	if !o.gateway.VerifySignature(payload, signature) {
		return WebhookRejected, domain.NewInvalidSignatureError()
	}

	event, err := o.gateway.ParseWebhookEvent(payload)
	if err != nil {
		return WebhookMalformed, err
	}
	if !event.IsCaptured() {
		o.logger.Debug("ignoring webhook event", "event", event.Type)
		return WebhookIgnored, nil
	}

	_, applied, err := o.finalize(ctx, event.OrderRef, event.PaymentRef, event.MinorAmount)
	if err != nil {
		return WebhookFailed, err
	}
	o.recorder.PaymentConfirmed(SourceWebhook, applied)
	if !applied {
		return WebhookDuplicate, nil
	}
	return WebhookProcessed, nil
}

// finalize moves an INITIATED payment to SUCCESS, confirms its booking and
// queues the confirmation event, all in one transaction. A payment that is
// already SUCCESS is returned unchanged with applied=false.
func (o *PaymentOrchestrator) finalize(ctx context.Context, orderRef, paymentRef string, minorAmount int64) (*domain.Payment, bool, error) {
	var (
		payment *domain.Payment
		applied bool
	)

	err := o.store.WithTx(ctx, func(tx ports.Store) error {
		p, err := tx.Payments().FindByOrderRefForUpdate(ctx, orderRef)
		if err != nil {
			return err
		}

		if p.IsSuccessful() {
			if p.TransactionRef != paymentRef {
				o.logger.Warn("payment already confirmed under another reference",
					"order_ref", orderRef,
					"recorded_ref", p.TransactionRef,
					"reported_ref", paymentRef)
			}
			payment = p
			return nil
		}

		if err := p.Confirm(paymentRef, minorAmount, o.now()); err != nil {
			return err
		}
		if err := tx.Payments().UpdatePayment(ctx, p); err != nil {
			return err
		}

		updater := NewBookingStatusUpdater(tx.Bookings(), o.logger)
		if err := updater.UpdateStatus(ctx, p.BookingID, domain.BookingConfirmed); err != nil {
			return err
		}

		booking, err := tx.Bookings().FindBookingByID(ctx, p.BookingID)
		if err != nil {
			return err
		}
		event, err := domain.NewBookingConfirmedEvent(booking, p, o.currency, o.now())
		if err != nil {
			return err
		}
		if err := tx.Outbox().InsertEvent(ctx, event); err != nil {
			return err
		}

		payment = p
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if applied {
		o.logger.Info("payment confirmed",
			"booking_id", payment.BookingID,
			"payment_id", payment.ID,
			"order_ref", orderRef,
			"transaction_ref", payment.TransactionRef)
	}
	return payment, applied, nil
}
