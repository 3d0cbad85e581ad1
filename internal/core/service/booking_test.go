package service

import (
	"context"
	"testing"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingService_CreateBooking(t *testing.T) {
	store := NewMockStore()
	store.AddCustomer(&domain.Customer{ID: 5, FirstName: "Asha", Email: "asha@example.com"})
	svc := NewBookingService(store, discardLogger())

	b, err := svc.CreateBooking(context.Background(), CreateBookingCommand{
		CustomerID: 5,
		TourID:     9,
		PaxCount:   2,
		BaseAmount: decimal.RequireFromString("10000.00"),
		TaxAmount:  decimal.RequireFromString("1800.00"),
	})

	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.True(t, b.TotalAmount().Equal(decimal.RequireFromString("11800")))

	status, err := svc.GetBookingStatus(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, status)

	count, err := svc.CountBookings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBookingService_UnknownCustomer(t *testing.T) {
	svc := NewBookingService(NewMockStore(), discardLogger())

	_, err := svc.CreateBooking(context.Background(), CreateBookingCommand{
		CustomerID: 77, TourID: 1, PaxCount: 1, BaseAmount: decimal.NewFromInt(10),
	})

	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeCustomerNotFound))
}

func TestBookingStatusUpdater_RejectsUnknownStatus(t *testing.T) {
	store := NewMockStore()
	b := seedBooking(t, store, "10.00", "0")
	u := NewBookingStatusUpdater(store, discardLogger())

	err := u.UpdateStatus(context.Background(), b.ID, domain.BookingStatus(42))

	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidStatus))
	got, _ := store.FindBookingByID(context.Background(), b.ID)
	assert.Equal(t, domain.BookingPending, got.Status)
}

func TestBookingStatusUpdater_UpdatesKnownStatus(t *testing.T) {
	store := NewMockStore()
	b := seedBooking(t, store, "10.00", "0")
	u := NewBookingStatusUpdater(store, discardLogger())

	require.NoError(t, u.UpdateStatus(context.Background(), b.ID, domain.BookingConfirmed))

	got, _ := store.FindBookingByID(context.Background(), b.ID)
	assert.Equal(t, domain.BookingConfirmed, got.Status)

	err := u.UpdateStatus(context.Background(), 9999, domain.BookingConfirmed)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeBookingNotFound))
}

func TestPaymentQueryService_GetReceipt(t *testing.T) {
	store := NewMockStore()
	b := seedBooking(t, store, "250.00", "0")
	svc := NewPaymentQueryService(store)

	_, err := svc.GetReceipt(context.Background(), b.ID)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodePaymentNotFound))

	orch := newOrchestrator(store, &MockGateway{}, nil)
	order, err := orch.CreateOrder(context.Background(), b.ID)
	require.NoError(t, err)
	confirmed, err := orch.ConfirmPayment(context.Background(), order.TransactionRef, "pay_r", order.MinorAmount)
	require.NoError(t, err)

	receipt, err := svc.GetReceipt(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, confirmed.ID, receipt.ID)

	byID, err := svc.GetPayment(context.Background(), confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay_r", byID.TransactionRef)

	_, err = svc.GetReceipt(context.Background(), 4040)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeBookingNotFound))
}
