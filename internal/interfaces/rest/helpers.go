package rest

import (
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/google/uuid"
)

type BookingResponse struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customer_id"`
	TourID      int64     `json:"tour_id"`
	PaxCount    int       `json:"pax_count"`
	BaseAmount  string    `json:"base_amount" example:"13000.00"`
	TaxAmount   string    `json:"tax_amount" example:"2000.00"`
	TotalAmount string    `json:"total_amount" example:"15000.00"`
	StatusID    int       `json:"status_id" example:"1"`
	Status      string    `json:"status" example:"PENDING"`
	BookingDate time.Time `json:"booking_date"`
}

type PaymentResponse struct {
	ID             uuid.UUID `json:"id"`
	BookingID      int64     `json:"booking_id"`
	Mode           string    `json:"mode" example:"RAZORPAY"`
	TransactionRef string    `json:"transaction_ref" example:"pay_xyz"`
	Status         string    `json:"status" example:"SUCCESS"`
	Amount         string    `json:"amount" example:"15000.00"`
	PaidAt         time.Time `json:"paid_at"`
}

type OrderResponse struct {
	TransactionRef string `json:"transaction_ref" example:"order_abc"`
	MinorAmount    int64  `json:"minor_amount" example:"1500000"`
	Currency       string `json:"currency" example:"INR"`
}

type BookingStatusResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func ToBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		TourID:      b.TourID,
		PaxCount:    b.PaxCount,
		BaseAmount:  b.BaseAmount.StringFixed(2),
		TaxAmount:   b.TaxAmount.StringFixed(2),
		TotalAmount: b.TotalAmount().StringFixed(2),
		StatusID:    int(b.Status),
		Status:      b.Status.String(),
		BookingDate: b.BookingDate,
	}
}

func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:             p.ID,
		BookingID:      p.BookingID,
		Mode:           p.Mode,
		TransactionRef: p.TransactionRef,
		Status:         string(p.Status),
		Amount:         p.Amount.StringFixed(2),
		PaidAt:         p.PaidAt,
	}
}

func ToOrderResponse(o *domain.OrderResult) OrderResponse {
	return OrderResponse{
		TransactionRef: o.TransactionRef,
		MinorAmount:    o.MinorAmount,
		Currency:       o.Currency,
	}
}

func ToBookingStatuses(statuses []domain.BookingStatus) []BookingStatusResponse {
	out := make([]BookingStatusResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, BookingStatusResponse{ID: int(s), Name: s.String()})
	}
	return out
}

type PassengerResponse struct {
	ID        int64  `json:"id"`
	BookingID int64  `json:"booking_id"`
	Name      string `json:"pax_name" example:"Asha Rao"`
	Birthdate string `json:"pax_birthdate" example:"1990-01-02"`
	Type      string `json:"pax_type" example:"ADULT"`
	Amount    string `json:"pax_amount" example:"6500.00"`
}

const DateLayout = "2006-01-02"

func ToPassengerResponse(p *domain.Passenger) PassengerResponse {
	return PassengerResponse{
		ID:        p.ID,
		BookingID: p.BookingID,
		Name:      p.Name,
		Birthdate: p.Birthdate.Format(DateLayout),
		Type:      string(p.Type),
		Amount:    p.Amount.StringFixed(2),
	}
}

func ToPassengerResponses(passengers []*domain.Passenger) []PassengerResponse {
	out := make([]PassengerResponse, 0, len(passengers))
	for _, p := range passengers {
		out = append(out, ToPassengerResponse(p))
	}
	return out
}
