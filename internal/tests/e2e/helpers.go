package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest"
	"github.com/stretchr/testify/require"
)

// TestClient wraps HTTP calls to the service
type TestClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *rest.APIError  `json:"error"`
}

// do sends a request and decodes the data field of the envelope into out.
func (c *TestClient) do(t *testing.T, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env), "body: %s", raw)
	if out != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode
}

func (c *TestClient) CreateBooking(t *testing.T, customerID int64, base, tax string) rest.BookingResponse {
	var b rest.BookingResponse
	status := c.do(t, http.MethodPost, "/api/bookings", map[string]interface{}{
		"customer_id": customerID,
		"tour_id":     5,
		"pax_count":   2,
		"base_amount": base,
		"tax_amount":  tax,
	}, &b)
	require.Equal(t, http.StatusCreated, status)
	return b
}

func (c *TestClient) CreateOrder(t *testing.T, bookingID int64) (rest.OrderResponse, int) {
	var o rest.OrderResponse
	status := c.do(t, http.MethodPost, "/payment-gateway/create-order", map[string]int64{"booking_id": bookingID}, &o)
	return o, status
}

func (c *TestClient) ConfirmPayment(t *testing.T, orderID, paymentID string, amount int64) (rest.PaymentResponse, int) {
	var p rest.PaymentResponse
	status := c.do(t, http.MethodPost, "/payment-gateway/confirm-payment", map[string]interface{}{
		"order_id":   orderID,
		"payment_id": paymentID,
		"amount":     amount,
	}, &p)
	return p, status
}

func (c *TestClient) BookingStatus(t *testing.T, bookingID int64) rest.BookingStatusResponse {
	var s rest.BookingStatusResponse
	status := c.do(t, http.MethodGet, "/api/bookings/status/"+strconv.FormatInt(bookingID, 10), nil, &s)
	require.Equal(t, http.StatusOK, status)
	return s
}

func (c *TestClient) Receipt(t *testing.T, bookingID int64) (rest.PaymentResponse, int) {
	var p rest.PaymentResponse
	status := c.do(t, http.MethodGet, "/api/payment/receipt/"+strconv.FormatInt(bookingID, 10), nil, &p)
	return p, status
}

// SendWebhook posts a raw body with the given signature and returns the
// status and body text.
func (c *TestClient) SendWebhook(t *testing.T, payload []byte, signature string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/payment-gateway/webhook", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Razorpay-Signature", signature)

	resp, err := c.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func CapturedWebhook(orderID, paymentID string, amount int64) []byte {
	return []byte(fmt.Sprintf(`{"entity":"event","event":"payment.captured","payload":{"payment":{"entity":{"id":%q,"order_id":%q,"amount":%d,"currency":"INR","status":"captured"}}}}`,
		paymentID, orderID, amount))
}

// FakeRazorpay answers order creation with sequential order ids.
type FakeRazorpay struct {
	mu     sync.Mutex
	orders int
	Fail   bool
}

func (f *FakeRazorpay) Orders() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders
}

func (f *FakeRazorpay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
		http.NotFound(w, r)
		return
	}
	var req struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Receipt  string `json:"receipt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	if f.Fail {
		f.mu.Unlock()
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"rejected"}}`))
		return
	}
	f.orders++
	id := fmt.Sprintf("order_e2e_%d", f.orders)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"id":       id,
		"entity":   "order",
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"status":   "created",
	})
}
