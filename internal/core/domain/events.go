package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const EventBookingConfirmed EventType = "booking.confirmed"

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "PENDING"
	OutboxDispatched OutboxStatus = "DISPATCHED"
	OutboxFailed     OutboxStatus = "FAILED"
)

// OutboxEvent is written in the same transaction as the state change it
// announces and delivered later by the dispatcher.
type OutboxEvent struct {
	ID            uuid.UUID
	Type          EventType
	AggregateID   int64
	Payload       json.RawMessage
	Status        OutboxStatus
	Attempts      int
	NextAttemptAt time.Time
	LastError     *string
	CreatedAt     time.Time
	DispatchedAt  *time.Time
}

// BookingConfirmedPayload is the payload of a booking.confirmed event.
type BookingConfirmedPayload struct {
	BookingID      int64     `json:"booking_id"`
	CustomerID     int64     `json:"customer_id"`
	PaymentID      uuid.UUID `json:"payment_id"`
	TransactionRef string    `json:"transaction_ref"`
	MinorAmount    int64     `json:"minor_amount"`
	Currency       string    `json:"currency"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

func NewBookingConfirmedEvent(b *Booking, p *Payment, currency string, now time.Time) (*OutboxEvent, error) {
	minor, err := p.MinorAmount()
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(BookingConfirmedPayload{
		BookingID:      b.ID,
		CustomerID:     b.CustomerID,
		PaymentID:      p.ID,
		TransactionRef: p.TransactionRef,
		MinorAmount:    minor,
		Currency:       currency,
		ConfirmedAt:    p.PaidAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal booking confirmed: %w", err)
	}
	return &OutboxEvent{
		ID:            uuid.New(),
		Type:          EventBookingConfirmed,
		AggregateID:   b.ID,
		Payload:       payload,
		Status:        OutboxPending,
		NextAttemptAt: now,
		CreatedAt:     now,
	}, nil
}

func (e *OutboxEvent) BookingConfirmed() (*BookingConfirmedPayload, error) {
	if e.Type != EventBookingConfirmed {
		return nil, fmt.Errorf("event %s is %s, not %s", e.ID, e.Type, EventBookingConfirmed)
	}
	var bc BookingConfirmedPayload
	if err := json.Unmarshal(e.Payload, &bc); err != nil {
		return nil, fmt.Errorf("decode booking confirmed payload: %w", err)
	}
	return &bc, nil
}

func (e *OutboxEvent) MarkDispatched(now time.Time) {
	e.Status = OutboxDispatched
	e.DispatchedAt = &now
	e.LastError = nil
}

// RecordFailure counts a failed attempt. Once maxAttempts is reached the
// event is parked as FAILED, otherwise it is rescheduled after backoff.
func (e *OutboxEvent) RecordFailure(cause error, maxAttempts int, backoff time.Duration, now time.Time) {
	e.Attempts++
	msg := cause.Error()
	e.LastError = &msg
	if e.Attempts >= maxAttempts {
		e.Status = OutboxFailed
		return
	}
	e.NextAttemptAt = now.Add(backoff)
}

// IntegrityGap is a SUCCESS payment whose booking was never confirmed.
type IntegrityGap struct {
	BookingID      int64
	BookingStatus  BookingStatus
	PaymentID      uuid.UUID
	TransactionRef string
	PaidAt         time.Time
}
