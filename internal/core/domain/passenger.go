package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaxType string

const (
	PaxAdult  PaxType = "ADULT"
	PaxChild  PaxType = "CHILD"
	PaxInfant PaxType = "INFANT"
)

const (
	adultFromAge = 12
	childFromAge = 1
)

// Passenger is one traveller on a booking. The pax type is derived from the
// birthdate at the time the passenger is added.
type Passenger struct {
	ID        int64
	BookingID int64
	Name      string
	Birthdate time.Time
	Type      PaxType
	Amount    decimal.Decimal
	CreatedAt time.Time
}

func NewPassenger(bookingID int64, name string, birthdate time.Time, amount decimal.Decimal, now time.Time) (*Passenger, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewMissingRequiredFieldError("pax_name")
	}
	if birthdate.IsZero() {
		return nil, NewMissingRequiredFieldError("pax_birthdate")
	}
	if birthdate.After(now) {
		return nil, NewInvalidRequestError("pax_birthdate is in the future", nil)
	}
	if amount.IsNegative() {
		return nil, NewInvalidAmountError("passenger amount must not be negative")
	}
	if _, err := ToMinorUnits(amount); err != nil {
		return nil, err
	}

	return &Passenger{
		BookingID: bookingID,
		Name:      name,
		Birthdate: birthdate,
		Type:      PaxTypeFor(birthdate, now),
		Amount:    amount,
		CreatedAt: now,
	}, nil
}

// PaxTypeFor classifies by completed years of age on now.
func PaxTypeFor(birthdate, now time.Time) PaxType {
	switch age := AgeOn(birthdate, now); {
	case age >= adultFromAge:
		return PaxAdult
	case age >= childFromAge:
		return PaxChild
	default:
		return PaxInfant
	}
}

// AgeOn returns completed years between birthdate and now.
func AgeOn(birthdate, now time.Time) int {
	by, bm, bd := birthdate.Date()
	ny, nm, nd := now.Date()
	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	return age
}
