package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest"
)

// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Param        paymentId  path      string  true  "Payment ID"  format(uuid)
// @Success      200        {object}  rest.APIResponse{data=rest.PaymentResponse}
// @Failure      400        {object}  rest.APIResponse  "Invalid payment id"
// @Failure      404        {object}  rest.APIResponse  "Payment not found"
// @Router       /api/payment/{paymentId} [get]
func (h *Handlers) HandleGetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := bindPathUUID(r, "paymentId")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	payment, err := h.payments.GetPayment(r.Context(), paymentID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

// HandleGetReceipt returns the successful payment of a booking
// @Summary      Get a booking's receipt
// @Tags         payments
// @Produce      json
// @Param        bookingId  path      int  true  "Booking ID"
// @Success      200        {object}  rest.APIResponse{data=rest.PaymentResponse}
// @Failure      404        {object}  rest.APIResponse  "Booking or successful payment not found"
// @Router       /api/payment/receipt/{bookingId} [get]
func (h *Handlers) HandleGetReceipt(w http.ResponseWriter, r *http.Request) {
	bookingID, err := bindPathInt64(r, "bookingId")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	payment, err := h.payments.GetReceipt(r.Context(), bookingID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPaymentResponse(payment))
}

// @Summary      Download an invoice
// @Tags         payments
// @Produce      application/pdf
// @Param        paymentId  path      string  true  "Payment ID"  format(uuid)
// @Success      200        {file}    file
// @Failure      404        {object}  rest.APIResponse  "Payment not found"
// @Failure      409        {object}  rest.APIResponse  "Payment not successful"
// @Router       /api/invoices/{paymentId}/download [get]
func (h *Handlers) HandleDownloadInvoice(w http.ResponseWriter, r *http.Request) {
	paymentID, err := bindPathUUID(r, "paymentId")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	pdf, err := h.invoices.Render(r.Context(), paymentID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, paymentID))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
