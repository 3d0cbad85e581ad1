package domain_test

import (
	"testing"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"15000.00", 1500000},
		{"11500", 1150000},
		{"0.01", 1},
		{"1234.5", 123450},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := domain.ToMinorUnits(decimal.RequireFromString(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects sub-minor precision", func(t *testing.T) {
		_, err := domain.ToMinorUnits(decimal.RequireFromString("10.005"))
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeArithmetic))
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("rejects overflow", func(t *testing.T) {
		_, err := domain.ToMinorUnits(decimal.RequireFromString("100000000000000000000"))
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeArithmetic))
	})
}

func TestBooking_TotalAmount(t *testing.T) {
	b, err := domain.NewBooking(1, 2, 3, decimal.RequireFromString("10000.00"), decimal.RequireFromString("1500.00"), time.Now())
	require.NoError(t, err)

	assert.True(t, b.TotalAmount().Equal(decimal.RequireFromString("11500.00")))
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, "BOOKING_0", domain.ReceiptLabel(b.ID))
}

func TestNewBooking_Validation(t *testing.T) {
	base := decimal.NewFromInt(100)

	_, err := domain.NewBooking(0, 2, 1, base, decimal.Zero, time.Now())
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeMissingRequiredField))

	_, err = domain.NewBooking(1, 2, 0, base, decimal.Zero, time.Now())
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidAmount))

	_, err = domain.NewBooking(1, 2, 1, base.Neg(), decimal.Zero, time.Now())
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidAmount))

	_, err = domain.NewBooking(1, 2, 1, decimal.RequireFromString("1.001"), decimal.Zero, time.Now())
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeArithmetic))
}

func TestBookingStatus(t *testing.T) {
	assert.True(t, domain.BookingConfirmed.Valid())
	assert.False(t, domain.BookingStatus(9).Valid())
	assert.Equal(t, "CONFIRMED", domain.BookingConfirmed.String())
	assert.Len(t, domain.KnownBookingStatuses(), 3)
}
