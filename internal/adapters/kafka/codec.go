package kafka

import (
	"fmt"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/google/uuid"
	goavro "github.com/linkedin/goavro/v2"
)

const bookingConfirmedSchema = `{
  "type": "record",
  "name": "BookingConfirmed",
  "namespace": "com.tourvista.payments",
  "fields": [
    {"name": "event_id", "type": "string"},
    {"name": "booking_id", "type": "long"},
    {"name": "customer_id", "type": "long"},
    {"name": "payment_id", "type": "string"},
    {"name": "transaction_ref", "type": "string"},
    {"name": "minor_amount", "type": "long"},
    {"name": "currency", "type": "string"},
    {"name": "confirmed_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
  ]
}`

// Codec encodes booking events as Avro binary.
type Codec struct {
	bookingConfirmed *goavro.Codec
}

func NewCodec() (*Codec, error) {
	c, err := goavro.NewCodec(bookingConfirmedSchema)
	if err != nil {
		return nil, fmt.Errorf("compile booking confirmed schema: %w", err)
	}
	return &Codec{bookingConfirmed: c}, nil
}

func (c *Codec) EncodeBookingConfirmed(eventID uuid.UUID, bc *domain.BookingConfirmedPayload) ([]byte, error) {
	native := map[string]interface{}{
		"event_id":        eventID.String(),
		"booking_id":      bc.BookingID,
		"customer_id":     bc.CustomerID,
		"payment_id":      bc.PaymentID.String(),
		"transaction_ref": bc.TransactionRef,
		"minor_amount":    bc.MinorAmount,
		"currency":        bc.Currency,
		"confirmed_at":    bc.ConfirmedAt.UTC(),
	}
	out, err := c.bookingConfirmed.BinaryFromNative(nil, native)
	if err != nil {
		return nil, fmt.Errorf("encode booking confirmed: %w", err)
	}
	return out, nil
}

// DecodeBookingConfirmed is used by consumers and tests.
func (c *Codec) DecodeBookingConfirmed(data []byte) (uuid.UUID, *domain.BookingConfirmedPayload, error) {
	native, _, err := c.bookingConfirmed.NativeFromBinary(data)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("decode booking confirmed: %w", err)
	}
	record, ok := native.(map[string]interface{})
	if !ok {
		return uuid.Nil, nil, fmt.Errorf("decode booking confirmed: unexpected %T", native)
	}

	eventID, err := uuid.Parse(record["event_id"].(string))
	if err != nil {
		return uuid.Nil, nil, err
	}
	paymentID, err := uuid.Parse(record["payment_id"].(string))
	if err != nil {
		return uuid.Nil, nil, err
	}

	return eventID, &domain.BookingConfirmedPayload{
		BookingID:      record["booking_id"].(int64),
		CustomerID:     record["customer_id"].(int64),
		PaymentID:      paymentID,
		TransactionRef: record["transaction_ref"].(string),
		MinorAmount:    record["minor_amount"].(int64),
		Currency:       record["currency"].(string),
		ConfirmedAt:    record["confirmed_at"].(time.Time),
	}, nil
}
