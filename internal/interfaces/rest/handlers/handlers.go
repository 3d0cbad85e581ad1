package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
	"github.com/DanielPopoola/tourvista-payments/internal/core/service"
	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
)

const maxBodyBytes = 1 << 20

type OrderService interface {
	CreateOrder(ctx context.Context, bookingID int64) (*domain.OrderResult, error)
	ConfirmPayment(ctx context.Context, orderRef, paymentRef string, minorAmount int64) (*domain.Payment, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (service.WebhookOutcome, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, cmd service.CreateBookingCommand) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, error)
	GetBookingStatus(ctx context.Context, bookingID int64) (domain.BookingStatus, error)
	ListStatuses() []domain.BookingStatus
	CountBookings(ctx context.Context) (int64, error)
}

type PaymentQueryService interface {
	GetPayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
	GetReceipt(ctx context.Context, bookingID int64) (*domain.Payment, error)
}

type PassengerService interface {
	AddPassenger(ctx context.Context, cmd service.AddPassengerCommand) (*domain.Passenger, error)
	GetPassenger(ctx context.Context, passengerID int64) (*domain.Passenger, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]*domain.Passenger, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	orders     OrderService
	bookings   BookingService
	passengers PassengerService
	payments   PaymentQueryService
	invoices   ports.InvoiceRenderer
	health     HealthChecker
	validate   *validator.Validate
	logger     *slog.Logger

	webhookTimeout time.Duration
}

func NewHandlers(
	orders OrderService,
	bookings BookingService,
	passengers PassengerService,
	payments PaymentQueryService,
	invoices ports.InvoiceRenderer,
	health HealthChecker,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		orders:     orders,
		bookings:   bookings,
		passengers: passengers,
		payments:   payments,
		invoices:   invoices,
		health:     health,
		validate:   validator.New(),
		logger:     logger,

		webhookTimeout: defaultWebhookTimeout,
	}
}

// WithWebhookTimeout bounds webhook processing. Non-positive values keep
// the default.
func (h *Handlers) WithWebhookTimeout(d time.Duration) *Handlers {
	if d > 0 {
		h.webhookTimeout = d
	}
	return h
}

func (h *Handlers) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /payment-gateway/create-order", h.HandleCreateOrder)
	mux.HandleFunc("POST /payment-gateway/confirm-payment", h.HandleConfirmPayment)
	mux.HandleFunc(WebhookRoute, h.HandleWebhook)

	mux.HandleFunc("POST /api/bookings", h.HandleCreateBooking)
	mux.HandleFunc("GET /api/bookings/{bookingId}", h.HandleGetBooking)
	mux.HandleFunc("GET /api/bookings/status/{bookingId}", h.HandleGetBookingStatus)
	mux.HandleFunc("GET /api/booking-status", h.HandleListBookingStatuses)
	mux.HandleFunc("GET /api/stats/bookings", h.HandleBookingStats)

	mux.HandleFunc("POST /api/passengers/add", h.HandleAddPassenger)
	mux.HandleFunc("GET /api/passengers/booking/{bookingId}", h.HandleListPassengers)
	mux.HandleFunc("GET /api/passengers/{passengerId}", h.HandleGetPassenger)

	mux.HandleFunc("GET /api/payment/{paymentId}", h.HandleGetPayment)
	mux.HandleFunc("GET /api/payment/receipt/{bookingId}", h.HandleGetReceipt)
	mux.HandleFunc("GET /api/invoices/{paymentId}/download", h.HandleDownloadInvoice)

	mux.HandleFunc("GET /health", h.HandleHealth)
}

func (h *Handlers) respondWithError(w http.ResponseWriter, err error) {
	rest.WriteError(w, err, h.logger)
}

// decodeBody reads a JSON body into dst and runs struct validation.
func (h *Handlers) decodeBody(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return domain.NewInvalidRequestError("failed to read request body", err)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return domain.NewInvalidRequestError("request body is not valid JSON", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return domain.NewInvalidRequestError(err.Error(), err)
	}
	return nil
}

func bindPathInt64(r *http.Request, name string) (int64, error) {
	var v int64
	err := runtime.BindStyledParameterWithOptions("simple", name, r.PathValue(name), &v, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return 0, domain.NewInvalidRequestError("invalid path parameter "+name, err)
	}
	if v <= 0 {
		return 0, domain.NewInvalidRequestError(name+" must be positive", nil)
	}
	return v, nil
}

func bindPathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var raw string
	err := runtime.BindStyledParameterWithOptions("simple", name, r.PathValue(name), &raw, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return uuid.Nil, domain.NewInvalidRequestError("invalid path parameter "+name, err)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewInvalidRequestError(name+" must be a UUID", err)
	}
	return id, nil
}
