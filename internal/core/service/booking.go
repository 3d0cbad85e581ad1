package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
	"github.com/shopspring/decimal"
)

type CreateBookingCommand struct {
	CustomerID int64
	TourID     int64
	PaxCount   int
	BaseAmount decimal.Decimal
	TaxAmount  decimal.Decimal
}

type BookingService struct {
	store  ports.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewBookingService(store ports.Store, logger *slog.Logger) *BookingService {
	return &BookingService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *BookingService) CreateBooking(ctx context.Context, cmd CreateBookingCommand) (*domain.Booking, error) {
	if _, err := s.store.Customers().FindCustomerByID(ctx, cmd.CustomerID); err != nil {
		return nil, err
	}

	booking, err := domain.NewBooking(cmd.CustomerID, cmd.TourID, cmd.PaxCount, cmd.BaseAmount, cmd.TaxAmount, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Bookings().CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		"booking_id", booking.ID,
		"customer_id", booking.CustomerID,
		"total", booking.TotalAmount().StringFixed(2))
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.store.Bookings().FindBookingByID(ctx, bookingID)
}

func (s *BookingService) GetBookingStatus(ctx context.Context, bookingID int64) (domain.BookingStatus, error) {
	booking, err := s.store.Bookings().FindBookingByID(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	return booking.Status, nil
}

func (s *BookingService) ListStatuses() []domain.BookingStatus {
	return domain.KnownBookingStatuses()
}

func (s *BookingService) CountBookings(ctx context.Context) (int64, error) {
	return s.store.Bookings().CountBookings(ctx)
}
