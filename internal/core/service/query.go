package service

import (
	"context"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
	"github.com/google/uuid"
)

type PaymentQueryService struct {
	store ports.Store
}

func NewPaymentQueryService(store ports.Store) *PaymentQueryService {
	return &PaymentQueryService{store: store}
}

func (s *PaymentQueryService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	return s.store.Payments().FindByID(ctx, paymentID)
}

// GetReceipt returns the successful payment of a booking.
func (s *PaymentQueryService) GetReceipt(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	if _, err := s.store.Bookings().FindBookingByID(ctx, bookingID); err != nil {
		return nil, err
	}
	p, err := s.store.Payments().FindByBookingAndStatus(ctx, bookingID, domain.StatusSuccess)
	if err != nil {
		return nil, err
	}
	return p, nil
}
