package handlers

import (
	"context"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest"
)

const (
	signatureHeader = "X-Razorpay-Signature"

	// WebhookRoute is served outside the request timeout middleware; the
	// handler applies its own deadline so it can always acknowledge.
	WebhookRoute = "POST /payment-gateway/webhook"

	defaultWebhookTimeout = 20 * time.Second
)

type CreateOrderRequest struct {
	BookingID int64 `json:"booking_id" validate:"required,gt=0" example:"42"`
}

type ConfirmPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required" example:"order_abc"`
	PaymentID string `json:"payment_id" validate:"required" example:"pay_xyz"`
	Amount    int64  `json:"amount" validate:"required,gt=0" example:"1500000"`
}

// HandleCreateOrder opens a gateway order for a booking
// @Summary      Create a payment order
// @Description  Creates a gateway order for the booking total, or returns the order already pending for it.
// @Tags         payment-gateway
// @Accept       json
// @Produce      json
// @Param        request  body      CreateOrderRequest  true  "Booking to pay for"
// @Success      200      {object}  rest.APIResponse{data=rest.OrderResponse}
// @Failure      400      {object}  rest.APIResponse  "Invalid request"
// @Failure      404      {object}  rest.APIResponse  "Booking not found"
// @Failure      409      {object}  rest.APIResponse  "Booking already paid"
// @Failure      502      {object}  rest.APIResponse  "Gateway error"
// @Router       /payment-gateway/create-order [post]
func (h *Handlers) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), req.BookingID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToOrderResponse(order))
}

// HandleConfirmPayment records a payment reported by the checkout client
// @Summary      Confirm a payment
// @Description  Marks the payment SUCCESS and the booking CONFIRMED. Repeating a confirmation is a no-op.
// @Tags         payment-gateway
// @Accept       json
// @Produce      json
// @Param        request  body      ConfirmPaymentRequest  true  "Gateway order, payment and amount in minor units"
// @Success      200      {object}  rest.APIResponse{data=rest.PaymentResponse}
// @Failure      400      {object}  rest.APIResponse  "Invalid request"
// @Failure      404      {object}  rest.APIResponse  "Payment not found"
// @Failure      409      {object}  rest.APIResponse  "Amount mismatch"
// @Router       /payment-gateway/confirm-payment [post]
func (h *Handlers) HandleConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req ConfirmPaymentRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	payment, err := h.orders.ConfirmPayment(r.Context(), req.OrderID, req.PaymentID, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

// HandleWebhook receives gateway event deliveries. Every delivery is
// acknowledged so the gateway does not redeliver events we chose to drop.
// @Summary      Gateway webhook
// @Tags         payment-gateway
// @Accept       json
// @Produce      plain
// @Param        X-Razorpay-Signature  header  string  true  "HMAC-SHA256 of the raw body"
// @Success      200  {string}  string  "OK"
// @Router       /payment-gateway/webhook [post]
func (h *Handlers) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if rec == http.ErrAbortHandler {
			panic(rec)
		}
		h.logger.Error("panic while handling webhook",
			"panic", rec,
			"stack", string(debug.Stack()))
		writeOK(w)
	}()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warn("failed to read webhook body", "error", err)
		writeOK(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.webhookTimeout)
	defer cancel()

	outcome, err := h.orders.HandleWebhook(ctx, payload, r.Header.Get(signatureHeader))
	if err != nil {
		h.logger.Warn("webhook not applied",
			"outcome", outcome,
			"kind", domain.KindOf(err),
			"error", err)
	}

	writeOK(w)
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
