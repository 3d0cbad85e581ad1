package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
	"github.com/shopspring/decimal"
)

type AddPassengerCommand struct {
	BookingID int64
	Name      string
	Birthdate time.Time
	Amount    decimal.Decimal
}

type PassengerService struct {
	store  ports.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewPassengerService(store ports.Store, logger *slog.Logger) *PassengerService {
	return &PassengerService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// AddPassenger attaches a traveller to a booking. A booking holds at most
// its pax count of passengers; the booking row is locked while counting.
func (s *PassengerService) AddPassenger(ctx context.Context, cmd AddPassengerCommand) (*domain.Passenger, error) {
	passenger, err := domain.NewPassenger(cmd.BookingID, cmd.Name, cmd.Birthdate, cmd.Amount, s.now())
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx ports.Store) error {
		booking, err := tx.Bookings().FindBookingByIDForUpdate(ctx, cmd.BookingID)
		if err != nil {
			return err
		}

		existing, err := tx.Passengers().ListPassengersByBooking(ctx, booking.ID)
		if err != nil {
			return err
		}
		if len(existing) >= booking.PaxCount {
			return domain.NewPassengerLimitReachedError(booking.ID, booking.PaxCount)
		}

		return tx.Passengers().CreatePassenger(ctx, passenger)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("passenger added",
		"booking_id", passenger.BookingID,
		"passenger_id", passenger.ID,
		"pax_type", passenger.Type)
	return passenger, nil
}

func (s *PassengerService) GetPassenger(ctx context.Context, passengerID int64) (*domain.Passenger, error) {
	return s.store.Passengers().FindPassengerByID(ctx, passengerID)
}

func (s *PassengerService) ListByBooking(ctx context.Context, bookingID int64) ([]*domain.Passenger, error) {
	if _, err := s.store.Bookings().FindBookingByID(ctx, bookingID); err != nil {
		return nil, err
	}
	return s.store.Passengers().ListPassengersByBooking(ctx, bookingID)
}
