package handlers

import (
	"net/http"

	"github.com/DanielPopoola/tourvista-payments/internal/core/service"
	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

type CreateBookingRequest struct {
	CustomerID int64           `json:"customer_id" validate:"required,gt=0" example:"7"`
	TourID     int64           `json:"tour_id" validate:"required,gt=0" example:"3"`
	PaxCount   int             `json:"pax_count" validate:"required,gt=0" example:"2"`
	BaseAmount decimal.Decimal `json:"base_amount" swaggertype:"string" example:"13000.00"`
	TaxAmount  decimal.Decimal `json:"tax_amount" swaggertype:"string" example:"2000.00"`
}

type BookingStatsResponse struct {
	TotalBookings int64 `json:"total_bookings"`
}

// HandleCreateBooking creates a PENDING booking
// @Summary      Create a booking
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Booking details"
// @Success      201      {object}  rest.APIResponse{data=rest.BookingResponse}
// @Failure      400      {object}  rest.APIResponse  "Invalid request"
// @Failure      404      {object}  rest.APIResponse  "Customer not found"
// @Router       /api/bookings [post]
func (h *Handlers) HandleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), service.CreateBookingCommand{
		CustomerID: req.CustomerID,
		TourID:     req.TourID,
		PaxCount:   req.PaxCount,
		BaseAmount: req.BaseAmount,
		TaxAmount:  req.TaxAmount,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.ToBookingResponse(booking))
}

// @Summary      Get a booking
// @Tags         bookings
// @Produce      json
// @Param        bookingId  path      int  true  "Booking ID"
// @Success      200        {object}  rest.APIResponse{data=rest.BookingResponse}
// @Failure      404        {object}  rest.APIResponse  "Booking not found"
// @Router       /api/bookings/{bookingId} [get]
func (h *Handlers) HandleGetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := bindPathInt64(r, "bookingId")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	booking, err := h.bookings.GetBooking(r.Context(), bookingID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToBookingResponse(booking))
}

// @Summary      Get a booking's status
// @Tags         bookings
// @Produce      json
// @Param        bookingId  path      int  true  "Booking ID"
// @Success      200        {object}  rest.APIResponse{data=rest.BookingStatusResponse}
// @Failure      404        {object}  rest.APIResponse  "Booking not found"
// @Router       /api/bookings/status/{bookingId} [get]
func (h *Handlers) HandleGetBookingStatus(w http.ResponseWriter, r *http.Request) {
	bookingID, err := bindPathInt64(r, "bookingId")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	status, err := h.bookings.GetBookingStatus(r.Context(), bookingID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.BookingStatusResponse{ID: int(status), Name: status.String()})
}

// @Summary      List booking statuses
// @Tags         bookings
// @Produce      json
// @Success      200  {object}  rest.APIResponse{data=[]rest.BookingStatusResponse}
// @Router       /api/booking-status [get]
func (h *Handlers) HandleListBookingStatuses(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.ToBookingStatuses(h.bookings.ListStatuses()))
}

// @Summary      Booking statistics
// @Tags         stats
// @Produce      json
// @Success      200  {object}  rest.APIResponse{data=BookingStatsResponse}
// @Router       /api/stats/bookings [get]
func (h *Handlers) HandleBookingStats(w http.ResponseWriter, r *http.Request) {
	count, err := h.bookings.CountBookings(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, BookingStatsResponse{TotalBookings: count})
}
