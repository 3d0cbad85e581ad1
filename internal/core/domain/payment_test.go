package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPayment(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("creates initiated payment keyed by order id", func(t *testing.T) {
		p, err := domain.NewPayment(7, "order_abc", decimal.RequireFromString("15000.00"), now)

		require.NoError(t, err)
		assert.Equal(t, int64(7), p.BookingID)
		assert.Equal(t, domain.StatusInitiated, p.Status)
		assert.Equal(t, domain.PaymentModeRazorpay, p.Mode)
		assert.Equal(t, "order_abc", p.TransactionRef)
		assert.Equal(t, "order_abc", p.GatewayOrderID)
		assert.NotZero(t, p.ID)
	})

	t.Run("rejects empty order id", func(t *testing.T) {
		_, err := domain.NewPayment(7, "", decimal.NewFromInt(10), now)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeMissingRequiredField))
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := domain.NewPayment(7, "order_abc", decimal.Zero, now)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidAmount))
	})
}

func TestPayment_Confirm(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	later := now.Add(time.Minute)

	newPayment := func(t *testing.T, amount string) *domain.Payment {
		p, err := domain.NewPayment(1, "order_abc", decimal.RequireFromString(amount), now)
		require.NoError(t, err)
		return p
	}

	t.Run("rewrites reference and marks success", func(t *testing.T) {
		p := newPayment(t, "15000.00")

		require.NoError(t, p.Confirm("pay_xyz", 1500000, later))

		assert.Equal(t, domain.StatusSuccess, p.Status)
		assert.Equal(t, "pay_xyz", p.TransactionRef)
		assert.Equal(t, "order_abc", p.GatewayOrderID)
		assert.Equal(t, later, p.PaidAt)
	})

	t.Run("amount mismatch leaves payment untouched", func(t *testing.T) {
		p := newPayment(t, "11500.00")

		err := p.Confirm("pay_xyz", 1149900, later)

		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeAmountMismatch))
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		assert.Equal(t, domain.StatusInitiated, p.Status)
		assert.Equal(t, "order_abc", p.TransactionRef)
	})

	t.Run("terminal payments cannot be confirmed", func(t *testing.T) {
		p := newPayment(t, "100.00")
		p.Status = domain.StatusFailed

		err := p.Confirm("pay_xyz", 10000, later)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))
	})

	t.Run("requires payment reference", func(t *testing.T) {
		p := newPayment(t, "100.00")
		err := p.Confirm("", 10000, later)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeMissingRequiredField))
	})
}

func TestPayment_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    domain.PaymentStatus
		to      domain.PaymentStatus
		allowed bool
	}{
		{domain.StatusInitiated, domain.StatusSuccess, true},
		{domain.StatusInitiated, domain.StatusFailed, true},
		{domain.StatusSuccess, domain.StatusFailed, false},
		{domain.StatusSuccess, domain.StatusInitiated, false},
		{domain.StatusFailed, domain.StatusSuccess, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			p := &domain.Payment{Status: tt.from}
			err := p.CanTransitionTo(tt.to)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, domain.KindNotFound, domain.KindOf(domain.NewBookingNotFoundError(1)))
	assert.Equal(t, domain.KindValidation, domain.KindOf(domain.NewArithmeticError("x")))
	assert.Equal(t, domain.KindGateway, domain.KindOf(domain.NewGatewayError(errors.New("boom"))))
	assert.Equal(t, domain.KindIntegrityGap, domain.KindOf(domain.NewIntegrityGapError(1, "pay_1")))
	assert.Equal(t, domain.KindInternal, domain.KindOf(errors.New("plain")))

	wrapped := errors.Join(errors.New("context"), domain.NewPaymentAlreadyCompletedError(3))
	assert.Equal(t, domain.KindConflict, domain.KindOf(wrapped))
}
