package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/adapters/razorpay"
	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/service"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest"
	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec_test"

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testEnv struct {
	store    *service.MockStore
	gateway  *service.MockGateway
	handlers *Handlers
	mux      *http.ServeMux
	logger   *slog.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := service.NewMockStore()
	store.AddCustomer(&domain.Customer{ID: 1, FirstName: "Asha", LastName: "Rao", Email: "asha@example.com"})

	gw := &service.MockGateway{
		VerifySignatureFn: func(payload []byte, signature string) bool {
			return razorpay.VerifySignature(payload, signature, webhookSecret)
		},
		ParseWebhookEventFn: razorpay.ParseWebhookEvent,
	}

	orchestrator := service.NewPaymentOrchestrator(store, gw, "INR", logger)
	h := NewHandlers(
		orchestrator,
		service.NewBookingService(store, logger),
		service.NewPassengerService(store, logger),
		service.NewPaymentQueryService(store),
		&service.MockInvoiceRenderer{},
		pingFunc(func(context.Context) error { return nil }),
		logger,
	)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return &testEnv{store: store, gateway: gw, handlers: h, mux: mux, logger: logger}
}

func (e *testEnv) seedBooking(t *testing.T, base, tax string) *domain.Booking {
	t.Helper()
	b, err := domain.NewBooking(1, 9, 2, decimal.RequireFromString(base), decimal.RequireFromString(tax), time.Now())
	require.NoError(t, err)
	e.store.AddBooking(b)
	return b
}

func (e *testEnv) do(method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	e.mux.ServeHTTP(rr, req)
	return rr
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) rest.APIResponse {
	t.Helper()
	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *rest.APIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	if dst != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, dst))
	}
	return rest.APIResponse{Success: raw.Success, Error: raw.Error}
}

func capturedPayload(order, payment string, amount int64) []byte {
	return []byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"` + payment +
		`","order_id":"` + order + `","amount":` + strconv.FormatInt(amount, 10) + `}}}}`)
}

func TestHandleCreateOrder_Success(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(t, "13000.00", "2000.00")

	rr := env.do(http.MethodPost, "/payment-gateway/create-order", mustJSON(t, CreateOrderRequest{BookingID: b.ID}), nil)

	require.Equal(t, http.StatusOK, rr.Code)
	var order rest.OrderResponse
	resp := decodeData(t, rr, &order)
	assert.True(t, resp.Success)
	assert.Equal(t, "order_1", order.TransactionRef)
	assert.Equal(t, int64(1500000), order.MinorAmount)
	assert.Equal(t, "INR", order.Currency)
}

func TestHandleCreateOrder_BookingNotFound(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/payment-gateway/create-order", mustJSON(t, CreateOrderRequest{BookingID: 404}), nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	resp := decodeData(t, rr, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, domain.ErrCodeBookingNotFound, resp.Error.Code)
}

func TestHandleCreateOrder_ValidationError(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/payment-gateway/create-order", []byte(`{"booking_id":0}`), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(http.MethodPost, "/payment-gateway/create-order", []byte(`not json`), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 0, env.gateway.GetCalls("CreateRemoteOrder"))
}

func TestHandleCreateOrder_GatewayError(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(t, "100.00", "0")
	env.gateway.CreateRemoteOrderFn = func(ctx context.Context, minor int64, currency, receipt string) (string, error) {
		return "", errors.New("connection refused")
	}

	rr := env.do(http.MethodPost, "/payment-gateway/create-order", mustJSON(t, CreateOrderRequest{BookingID: b.ID}), nil)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Empty(t, env.store.PaymentsForBooking(b.ID))
}

func TestHandleConfirmPayment_AmountMismatch(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(t, "10000.00", "1500.00")
	env.do(http.MethodPost, "/payment-gateway/create-order", mustJSON(t, CreateOrderRequest{BookingID: b.ID}), nil)

	rr := env.do(http.MethodPost, "/payment-gateway/confirm-payment", mustJSON(t, ConfirmPaymentRequest{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Amount:    1149900,
	}), nil)

	assert.Equal(t, http.StatusConflict, rr.Code)
	payments := env.store.PaymentsForBooking(b.ID)
	require.Len(t, payments, 1)
	assert.Equal(t, domain.StatusInitiated, payments[0].Status)
}

func TestHandleConfirmPayment_ThenCreateOrderConflicts(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(t, "100.00", "18.00")
	env.do(http.MethodPost, "/payment-gateway/create-order", mustJSON(t, CreateOrderRequest{BookingID: b.ID}), nil)

	rr := env.do(http.MethodPost, "/payment-gateway/confirm-payment", mustJSON(t, ConfirmPaymentRequest{
		OrderID:   "order_1",
		PaymentID: "pay_1",
		Amount:    11800,
	}), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var payment rest.PaymentResponse
	decodeData(t, rr, &payment)
	assert.Equal(t, "SUCCESS", payment.Status)
	assert.Equal(t, "pay_1", payment.TransactionRef)

	rr = env.do(http.MethodPost, "/payment-gateway/create-order", mustJSON(t, CreateOrderRequest{BookingID: b.ID}), nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandleWebhook_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(t, "13000.00", "2000.00")
	env.gateway.CreateRemoteOrderFn = func(ctx context.Context, minor int64, currency, receipt string) (string, error) {
		return "order_abc", nil
	}

	rr := env.do(http.MethodPost, "/payment-gateway/create-order", mustJSON(t, CreateOrderRequest{BookingID: b.ID}), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	payload := capturedPayload("order_abc", "pay_xyz", 1500000)
	sig := razorpay.Sign(payload, webhookSecret)

	for i := 0; i < 2; i++ {
		rr = env.do(http.MethodPost, "/payment-gateway/webhook", payload, map[string]string{signatureHeader: sig})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
	}

	payments := env.store.PaymentsForBooking(b.ID)
	require.Len(t, payments, 1)
	assert.Equal(t, "pay_xyz", payments[0].TransactionRef)
	assert.Equal(t, domain.StatusSuccess, payments[0].Status)
	assert.Len(t, env.store.Events(), 1)

	rr = env.do(http.MethodGet, "/api/bookings/status/"+strconv.FormatInt(b.ID, 10), nil, nil)
	var status rest.BookingStatusResponse
	decodeData(t, rr, &status)
	assert.Equal(t, int(domain.BookingConfirmed), status.ID)
}

func TestHandleWebhook_RejectedAndMalformedStillOK(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(t, "100.00", "0")
	env.do(http.MethodPost, "/payment-gateway/create-order", mustJSON(t, CreateOrderRequest{BookingID: b.ID}), nil)

	payload := capturedPayload("order_1", "pay_1", 10000)
	rr := env.do(http.MethodPost, "/payment-gateway/webhook", payload, map[string]string{signatureHeader: "bad"})
	assert.Equal(t, http.StatusOK, rr.Code)

	garbage := []byte(`{"event":`)
	rr = env.do(http.MethodPost, "/payment-gateway/webhook", garbage, map[string]string{signatureHeader: razorpay.Sign(garbage, webhookSecret)})
	assert.Equal(t, http.StatusOK, rr.Code)

	payments := env.store.PaymentsForBooking(b.ID)
	require.Len(t, payments, 1)
	assert.Equal(t, domain.StatusInitiated, payments[0].Status)
	assert.Empty(t, env.store.Events())
}

func TestHandleWebhook_AcknowledgesPastRequestTimeout(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(t, "100.00", "0")
	env.gateway.CreateRemoteOrderFn = func(ctx context.Context, minor int64, currency, receipt string) (string, error) {
		return "order_slow", nil
	}
	rr := env.do(http.MethodPost, "/payment-gateway/create-order", mustJSON(t, CreateOrderRequest{BookingID: b.ID}), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	env.handlers.WithWebhookTimeout(100 * time.Millisecond)
	env.store.WithTxFn = func(ctx context.Context, fn func(tx ports.Store) error) error {
		select {
		case <-time.After(300 * time.Millisecond):
			return fn(env.store)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	handler := middleware.Timeout(50*time.Millisecond, WebhookRoute)(env.mux)

	payload := capturedPayload("order_slow", "pay_slow", 10000)
	req := httptest.NewRequest(http.MethodPost, "/payment-gateway/webhook", bytes.NewReader(payload))
	req.Header.Set(signatureHeader, razorpay.Sign(payload, webhookSecret))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
	assert.Equal(t, domain.StatusInitiated, env.store.PaymentsForBooking(b.ID)[0].Status)

	req = httptest.NewRequest(http.MethodPost, "/payment-gateway/create-order", bytes.NewReader(mustJSON(t, CreateOrderRequest{BookingID: b.ID})))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHandleWebhook_PanicStillAcknowledged(t *testing.T) {
	env := newTestEnv(t)
	env.store.WithTxFn = func(ctx context.Context, fn func(tx ports.Store) error) error {
		panic("lost connection")
	}
	handler := middleware.Recovery(env.logger, nil)(env.mux)

	payload := capturedPayload("order_x", "pay_x", 10000)
	req := httptest.NewRequest(http.MethodPost, "/payment-gateway/webhook", bytes.NewReader(payload))
	req.Header.Set(signatureHeader, razorpay.Sign(payload, webhookSecret))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestHandleCreateBooking(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/api/bookings", []byte(`{"customer_id":1,"tour_id":3,"pax_count":2,"base_amount":"13000.00","tax_amount":"2000.00"}`), nil)

	require.Equal(t, http.StatusCreated, rr.Code)
	var booking rest.BookingResponse
	decodeData(t, rr, &booking)
	assert.Equal(t, "15000.00", booking.TotalAmount)
	assert.Equal(t, "PENDING", booking.Status)

	rr = env.do(http.MethodPost, "/api/bookings", []byte(`{"customer_id":99,"tour_id":3,"pax_count":2,"base_amount":"1","tax_amount":"0"}`), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleGetBooking_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodGet, "/api/bookings/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(http.MethodGet, "/api/bookings/77", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleListBookingStatusesAndStats(t *testing.T) {
	env := newTestEnv(t)
	env.seedBooking(t, "10.00", "0")

	rr := env.do(http.MethodGet, "/api/booking-status", nil, nil)
	var statuses []rest.BookingStatusResponse
	decodeData(t, rr, &statuses)
	assert.Equal(t, []rest.BookingStatusResponse{
		{ID: 1, Name: "PENDING"},
		{ID: 2, Name: "CONFIRMED"},
		{ID: 3, Name: "CANCELLED"},
	}, statuses)

	rr = env.do(http.MethodGet, "/api/stats/bookings", nil, nil)
	var stats BookingStatsResponse
	decodeData(t, rr, &stats)
	assert.Equal(t, int64(1), stats.TotalBookings)
}

func TestHandlePaymentQueries(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(t, "100.00", "0")

	rr := env.do(http.MethodGet, "/api/payment/receipt/"+strconv.FormatInt(b.ID, 10), nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	env.do(http.MethodPost, "/payment-gateway/create-order", mustJSON(t, CreateOrderRequest{BookingID: b.ID}), nil)
	env.do(http.MethodPost, "/payment-gateway/confirm-payment", mustJSON(t, ConfirmPaymentRequest{OrderID: "order_1", PaymentID: "pay_1", Amount: 10000}), nil)

	rr = env.do(http.MethodGet, "/api/payment/receipt/"+strconv.FormatInt(b.ID, 10), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var receipt rest.PaymentResponse
	decodeData(t, rr, &receipt)
	assert.Equal(t, "100.00", receipt.Amount)

	rr = env.do(http.MethodGet, "/api/payment/"+receipt.ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(http.MethodGet, "/api/payment/"+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(http.MethodGet, "/api/payment/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleDownloadInvoice(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()

	rr := env.do(http.MethodGet, "/api/invoices/"+id.String()+"/download", nil, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), id.String())
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	h := NewHandlers(nil, nil, nil, nil, nil, pingFunc(func(context.Context) error { return errors.New("down") }), slog.New(slog.NewTextHandler(io.Discard, nil)))
	rr = httptest.NewRecorder()
	h.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestHandlePassengers(t *testing.T) {
	env := newTestEnv(t)
	b := env.seedBooking(t, "1000.00", "0")
	bookingPath := "/api/passengers/booking/" + strconv.FormatInt(b.ID, 10)

	rr := env.do(http.MethodPost, "/api/passengers/add",
		[]byte(`{"booking_id":`+strconv.FormatInt(b.ID, 10)+`,"pax_name":"Asha Rao","pax_birthdate":"1990-01-02","pax_amount":"500.00"}`), nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	var added rest.PassengerResponse
	decodeData(t, rr, &added)
	assert.Equal(t, "ADULT", added.Type)
	assert.Equal(t, "1990-01-02", added.Birthdate)
	assert.Equal(t, "500.00", added.Amount)

	rr = env.do(http.MethodGet, bookingPath, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []rest.PassengerResponse
	decodeData(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, added.ID, list[0].ID)

	rr = env.do(http.MethodGet, "/api/passengers/"+strconv.FormatInt(added.ID, 10), nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(http.MethodGet, "/api/passengers/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(http.MethodGet, "/api/passengers/booking/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(http.MethodPost, "/api/passengers/add",
		[]byte(`{"booking_id":999,"pax_name":"Ghost","pax_birthdate":"1990-01-02","pax_amount":"1"}`), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(http.MethodPost, "/api/passengers/add",
		[]byte(`{"booking_id":`+strconv.FormatInt(b.ID, 10)+`,"pax_name":"Asha","pax_birthdate":"02/01/1990","pax_amount":"1"}`), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
