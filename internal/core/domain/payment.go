package domain

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current state of a payment attempt
type PaymentStatus string

const (
	StatusInitiated PaymentStatus = "INITIATED"
	StatusSuccess   PaymentStatus = "SUCCESS"
	StatusFailed    PaymentStatus = "FAILED"
)

const PaymentModeRazorpay = "RAZORPAY"

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusInitiated, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// Payment is one attempt to pay for a booking.
//
// GatewayOrderID is fixed at creation. TransactionRef starts as the order id
// and is rewritten to the gateway payment id on confirmation.
type Payment struct {
	ID             uuid.UUID
	BookingID      int64
	Mode           string
	GatewayOrderID string
	TransactionRef string
	Status         PaymentStatus
	Amount         decimal.Decimal
	PaidAt         time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPayment(bookingID int64, orderID string, amount decimal.Decimal, now time.Time) (*Payment, error) {
	if orderID == "" {
		return nil, NewMissingRequiredFieldError("order_id")
	}
	if !amount.IsPositive() {
		return nil, NewInvalidAmountError("payment amount must be positive")
	}
	return &Payment{
		ID:             uuid.New(),
		BookingID:      bookingID,
		Mode:           PaymentModeRazorpay,
		GatewayOrderID: orderID,
		TransactionRef: orderID,
		Status:         StatusInitiated,
		Amount:         amount,
		PaidAt:         now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// MinorAmount is the stored amount in gateway minor units.
func (p *Payment) MinorAmount() (int64, error) {
	return ToMinorUnits(p.Amount)
}

func (p *Payment) IsSuccessful() bool {
	return p.Status == StatusSuccess
}

// CanTransitionTo reports whether target is reachable from the current status.
//
// Valid transitions are:
//   - Initiated → Success, Failed
//
// Success and Failed are terminal.
func (p *Payment) CanTransitionTo(target PaymentStatus) error {
	if p.Status == StatusInitiated && (target == StatusSuccess || target == StatusFailed) {
		return nil
	}
	return NewInvalidTransitionError(p.Status, target)
}

// Confirm records a captured payment. The amount reported by the gateway
// must equal the stored amount in minor units.
func (p *Payment) Confirm(paymentRef string, minorAmount int64, now time.Time) error {
	if paymentRef == "" {
		return NewMissingRequiredFieldError("payment_id")
	}
	if err := p.CanTransitionTo(StatusSuccess); err != nil {
		return err
	}
	expected, err := p.MinorAmount()
	if err != nil {
		return err
	}
	if expected != minorAmount {
		return NewAmountMismatchError(expected, minorAmount)
	}

	p.TransactionRef = paymentRef
	p.Status = StatusSuccess
	p.PaidAt = now
	p.UpdatedAt = now
	return nil
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
