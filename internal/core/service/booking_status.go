package service

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
)

// BookingStatusUpdater applies a status to a booking. It does not look at
// payments; callers decide when a transition is due.
type BookingStatusUpdater struct {
	bookings ports.BookingRepository
	logger   *slog.Logger
}

func NewBookingStatusUpdater(bookings ports.BookingRepository, logger *slog.Logger) *BookingStatusUpdater {
	return &BookingStatusUpdater{
		bookings: bookings,
		logger:   logger,
	}
}

func (u *BookingStatusUpdater) UpdateStatus(ctx context.Context, bookingID int64, status domain.BookingStatus) error {
	if !status.Valid() {
		return domain.NewInvalidStatusError(int(status))
	}
	if err := u.bookings.UpdateBookingStatus(ctx, bookingID, status); err != nil {
		return err
	}
	u.logger.Info("booking status updated", "booking_id", bookingID, "status", status.String())
	return nil
}
