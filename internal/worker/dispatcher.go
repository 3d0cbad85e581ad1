package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/config"
	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
)

type DispatchRecorder interface {
	OutboxDispatched(ok bool)
}

// OutboxDispatcher delivers booking.confirmed events: the customer gets an
// email with the invoice attached and, when a publisher is configured, the
// event is published. Failed deliveries are retried on later ticks.
type OutboxDispatcher struct {
	store       ports.Store
	notifier    ports.Notifier
	publisher   ports.EventPublisher
	invoices    ports.InvoiceRenderer
	recorder    DispatchRecorder
	interval    time.Duration
	batchSize   int
	maxAttempts int
	backoff     time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewOutboxDispatcher builds a dispatcher. publisher and recorder may be nil.
func NewOutboxDispatcher(
	store ports.Store,
	notifier ports.Notifier,
	publisher ports.EventPublisher,
	invoices ports.InvoiceRenderer,
	recorder DispatchRecorder,
	cfg config.WorkerConfig,
	logger *slog.Logger,
) *OutboxDispatcher {
	return &OutboxDispatcher{
		store:       store,
		notifier:    notifier,
		publisher:   publisher,
		invoices:    invoices,
		recorder:    recorder,
		interval:    cfg.Interval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.RetryBackoff,
		logger:      logger,
		now:         time.Now,
	}
}

func (d *OutboxDispatcher) Start(ctx context.Context) {
	d.logger.Info("outbox dispatcher started", "interval", d.interval, "batch_size", d.batchSize)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("outbox dispatcher stopping")
			return
		case <-ticker.C:
			if _, err := d.RunOnce(ctx); err != nil {
				d.logger.Error("outbox dispatch failed", "error", err)
			}
		}
	}
}

// RunOnce delivers up to one batch of due events. Each event is claimed,
// delivered and marked in its own transaction, so a failed status write
// only rolls back that event. It returns the number of events delivered.
func (d *OutboxDispatcher) RunOnce(ctx context.Context) (int, error) {
	delivered := 0
	var runErr error

	for i := 0; i < d.batchSize; i++ {
		if ctx.Err() != nil {
			break
		}
		claimed, ok, err := d.dispatchOne(ctx)
		if err != nil {
			runErr = err
			break
		}
		if !claimed {
			break
		}
		if ok {
			delivered++
		}
	}

	if delivered > 0 {
		d.logger.Info("outbox events delivered", "count", delivered)
	}
	return delivered, runErr
}

// dispatchOne claims the oldest due event and records the delivery result
// in the same transaction that holds its row lock.
func (d *OutboxDispatcher) dispatchOne(ctx context.Context) (claimed, ok bool, err error) {
	err = d.store.WithTx(ctx, func(tx ports.Store) error {
		events, err := tx.Outbox().ClaimPendingEvents(ctx, 1)
		if err != nil {
			return fmt.Errorf("claim outbox event: %w", err)
		}
		if len(events) == 0 {
			return nil
		}
		event := events[0]
		claimed = true

		now := d.now()
		if derr := d.deliver(ctx, tx, event); derr != nil {
			event.RecordFailure(derr, d.maxAttempts, d.backoffFor(event.Attempts), now)
			d.logger.Warn("outbox delivery failed",
				"event_id", event.ID,
				"booking_id", event.AggregateID,
				"attempts", event.Attempts,
				"status", event.Status,
				"error", derr)
		} else {
			event.MarkDispatched(now)
			ok = true
		}

		if err := tx.Outbox().UpdateEvent(ctx, event); err != nil {
			return fmt.Errorf("update outbox event %s: %w", event.ID, err)
		}
		return nil
	})
	if err != nil {
		return false, false, err
	}
	if claimed {
		d.record(ok)
	}
	return claimed, ok, nil
}

func (d *OutboxDispatcher) deliver(ctx context.Context, tx ports.Store, event *domain.OutboxEvent) error {
	confirmed, err := event.BookingConfirmed()
	if err != nil {
		return err
	}

	customer, err := tx.Customers().FindCustomerByID(ctx, confirmed.CustomerID)
	if err != nil {
		return err
	}

	invoice, err := d.invoices.Render(ctx, confirmed.PaymentID)
	if err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}

	if err := d.notifier.NotifyBookingConfirmed(ctx, ports.ConfirmationNotice{
		Event:    confirmed,
		Customer: customer,
		Invoice:  invoice,
	}); err != nil {
		return fmt.Errorf("notify customer: %w", err)
	}

	if d.publisher != nil {
		if err := d.publisher.Publish(ctx, event); err != nil {
			return fmt.Errorf("publish event: %w", err)
		}
	}
	return nil
}

// backoffFor doubles the base backoff per previous attempt.
func (d *OutboxDispatcher) backoffFor(attempts int) time.Duration {
	if attempts > 6 {
		attempts = 6
	}
	return d.backoff * time.Duration(1<<attempts)
}

func (d *OutboxDispatcher) record(ok bool) {
	if d.recorder != nil {
		d.recorder.OutboxDispatched(ok)
	}
}
