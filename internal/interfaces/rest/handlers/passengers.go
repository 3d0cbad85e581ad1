package handlers

import (
	"net/http"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/service"
	"github.com/DanielPopoola/tourvista-payments/internal/interfaces/rest"
	"github.com/shopspring/decimal"
)

type AddPassengerRequest struct {
	BookingID int64           `json:"booking_id" validate:"required,gt=0" example:"42"`
	Name      string          `json:"pax_name" validate:"required,max=200" example:"Asha Rao"`
	Birthdate string          `json:"pax_birthdate" validate:"required" example:"1990-01-02"`
	Amount    decimal.Decimal `json:"pax_amount" swaggertype:"string" example:"6500.00"`
}

// HandleAddPassenger adds a traveller to a booking
// @Summary      Add a passenger
// @Description  The pax type (ADULT, CHILD, INFANT) is derived from the birthdate.
// @Tags         passengers
// @Accept       json
// @Produce      json
// @Param        request  body      AddPassengerRequest  true  "Passenger details"
// @Success      201      {object}  rest.APIResponse{data=rest.PassengerResponse}
// @Failure      400      {object}  rest.APIResponse  "Invalid request"
// @Failure      404      {object}  rest.APIResponse  "Booking not found"
// @Failure      409      {object}  rest.APIResponse  "Booking already has all its passengers"
// @Router       /api/passengers/add [post]
func (h *Handlers) HandleAddPassenger(w http.ResponseWriter, r *http.Request) {
	var req AddPassengerRequest
	if err := h.decodeBody(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	birthdate, err := time.Parse(rest.DateLayout, req.Birthdate)
	if err != nil {
		h.respondWithError(w, domain.NewInvalidRequestError("pax_birthdate must be YYYY-MM-DD", err))
		return
	}

	passenger, err := h.passengers.AddPassenger(r.Context(), service.AddPassengerCommand{
		BookingID: req.BookingID,
		Name:      req.Name,
		Birthdate: birthdate,
		Amount:    req.Amount,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusCreated, rest.ToPassengerResponse(passenger))
}

// @Summary      List a booking's passengers
// @Tags         passengers
// @Produce      json
// @Param        bookingId  path      int  true  "Booking ID"
// @Success      200        {object}  rest.APIResponse{data=[]rest.PassengerResponse}
// @Failure      404        {object}  rest.APIResponse  "Booking not found"
// @Router       /api/passengers/booking/{bookingId} [get]
func (h *Handlers) HandleListPassengers(w http.ResponseWriter, r *http.Request) {
	bookingID, err := bindPathInt64(r, "bookingId")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	passengers, err := h.passengers.ListByBooking(r.Context(), bookingID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPassengerResponses(passengers))
}

// @Summary      Get a passenger
// @Tags         passengers
// @Produce      json
// @Param        passengerId  path      int  true  "Passenger ID"
// @Success      200          {object}  rest.APIResponse{data=rest.PassengerResponse}
// @Failure      404          {object}  rest.APIResponse  "Passenger not found"
// @Router       /api/passengers/{passengerId} [get]
func (h *Handlers) HandleGetPassenger(w http.ResponseWriter, r *http.Request) {
	passengerID, err := bindPathInt64(r, "passengerId")
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	passenger, err := h.passengers.GetPassenger(r.Context(), passengerID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, rest.ToPassengerResponse(passenger))
}
