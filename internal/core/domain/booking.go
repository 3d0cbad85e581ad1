package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the numeric status id stored with a booking.
type BookingStatus int

const (
	BookingPending   BookingStatus = 1
	BookingConfirmed BookingStatus = 2
	BookingCancelled BookingStatus = 3
)

var bookingStatusNames = map[BookingStatus]string{
	BookingPending:   "PENDING",
	BookingConfirmed: "CONFIRMED",
	BookingCancelled: "CANCELLED",
}

func (s BookingStatus) String() string {
	if name, ok := bookingStatusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingStatusNames[s]
	return ok
}

// KnownBookingStatuses lists every status in id order.
func KnownBookingStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled}
}

// Booking is a customer's reservation of a tour. The total is always
// derived from base and tax amounts.
type Booking struct {
	ID          int64
	CustomerID  int64
	TourID      int64
	PaxCount    int
	BaseAmount  decimal.Decimal
	TaxAmount   decimal.Decimal
	Status      BookingStatus
	BookingDate time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewBooking(customerID, tourID int64, paxCount int, base, tax decimal.Decimal, now time.Time) (*Booking, error) {
	if customerID <= 0 {
		return nil, NewMissingRequiredFieldError("customer_id")
	}
	if tourID <= 0 {
		return nil, NewMissingRequiredFieldError("tour_id")
	}
	if paxCount <= 0 {
		return nil, NewInvalidAmountError("pax count must be positive")
	}
	if base.IsNegative() || tax.IsNegative() {
		return nil, NewInvalidAmountError("booking amounts must not be negative")
	}

	b := &Booking{
		CustomerID:  customerID,
		TourID:      tourID,
		PaxCount:    paxCount,
		BaseAmount:  base,
		TaxAmount:   tax,
		Status:      BookingPending,
		BookingDate: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := ToMinorUnits(b.TotalAmount()); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Booking) TotalAmount() decimal.Decimal {
	return b.BaseAmount.Add(b.TaxAmount)
}

// ReceiptLabel is the receipt id sent to the gateway for this booking.
func ReceiptLabel(bookingID int64) string {
	return "BOOKING_" + itoa(bookingID)
}
