package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
)

type IntegrityRecorder interface {
	IntegrityScanned(gaps int, at time.Time)
}

// IntegrityChecker reports SUCCESS payments whose booking is not CONFIRMED.
// It only reports; gaps are resolved by an operator.
type IntegrityChecker struct {
	payments  ports.PaymentRepository
	recorder  IntegrityRecorder
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

func NewIntegrityChecker(
	payments ports.PaymentRepository,
	recorder IntegrityRecorder,
	interval time.Duration,
	batchSize int,
	logger *slog.Logger,
) *IntegrityChecker {
	return &IntegrityChecker{
		payments:  payments,
		recorder:  recorder,
		interval:  interval,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

func (c *IntegrityChecker) Start(ctx context.Context) {
	c.logger.Info("integrity checker started", "interval", c.interval)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("integrity checker stopping")
			return
		case <-ticker.C:
			if _, err := c.RunOnce(ctx); err != nil {
				c.logger.Error("integrity scan failed", "error", err)
			}
		}
	}
}

// RunOnce scans for gaps and returns them.
func (c *IntegrityChecker) RunOnce(ctx context.Context) ([]*domain.IntegrityGap, error) {
	gaps, err := c.payments.FindIntegrityGaps(ctx, c.batchSize)
	if err != nil {
		return nil, err
	}

	for _, gap := range gaps {
		c.logger.Error("integrity gap detected",
			"booking_id", gap.BookingID,
			"booking_status", gap.BookingStatus.String(),
			"payment_id", gap.PaymentID,
			"transaction_ref", gap.TransactionRef,
			"paid_at", gap.PaidAt,
			"error", domain.NewIntegrityGapError(gap.BookingID, gap.TransactionRef))
	}

	if c.recorder != nil {
		c.recorder.IntegrityScanned(len(gaps), c.now())
	}
	return gaps, nil
}
