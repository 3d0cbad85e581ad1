package invoice_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/service"
	"github.com/DanielPopoola/tourvista-payments/internal/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*service.MockStore, *domain.Payment) {
	t.Helper()
	store := service.NewMockStore()
	store.AddCustomer(&domain.Customer{ID: 1, FirstName: "Asha", LastName: "Rao", Email: "asha@example.com"})

	b, err := domain.NewBooking(1, 4, 2, decimal.RequireFromString("13000"), decimal.RequireFromString("2000"), time.Now())
	require.NoError(t, err)
	store.AddBooking(b)

	p, err := domain.NewPayment(b.ID, "order_abc", b.TotalAmount(), time.Now())
	require.NoError(t, err)
	store.AddPayment(p)
	return store, p
}

func newGenerator(store *service.MockStore) *invoice.Generator {
	return invoice.NewGenerator(store, "Tourvista", "INR", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRender_SuccessfulPayment(t *testing.T) {
	store, p := seed(t)
	require.NoError(t, p.Confirm("pay_xyz", 1500000, time.Now()))
	store.AddPayment(p)

	out, err := newGenerator(store).Render(context.Background(), p.ID)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestRender_RequiresSuccess(t *testing.T) {
	store, p := seed(t)

	_, err := newGenerator(store).Render(context.Background(), p.ID)

	require.Error(t, err)
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodePaymentNotSuccessful))
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestRender_UnknownPayment(t *testing.T) {
	store, _ := seed(t)

	_, err := newGenerator(store).Render(context.Background(), uuid.New())

	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
