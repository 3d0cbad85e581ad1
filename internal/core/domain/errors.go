package domain

import (
	"errors"
	"fmt"
)

// ErrorKind groups error codes into the classes callers react to.
type ErrorKind string

const (
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindConflict     ErrorKind = "CONFLICT"
	KindValidation   ErrorKind = "VALIDATION"
	KindGateway      ErrorKind = "GATEWAY"
	KindIntegrityGap ErrorKind = "INTEGRITY_GAP"
	KindInternal     ErrorKind = "INTERNAL"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Kind reports the class of the error code.
func (e *DomainError) Kind() ErrorKind {
	if k, ok := codeKinds[e.Code]; ok {
		return k
	}
	return KindInternal
}

const (
	ErrCodeBookingNotFound         = "BOOKING_NOT_FOUND"
	ErrCodePaymentNotFound         = "PAYMENT_NOT_FOUND"
	ErrCodeCustomerNotFound        = "CUSTOMER_NOT_FOUND"
	ErrCodePassengerNotFound       = "PASSENGER_NOT_FOUND"
	ErrCodePassengerLimitReached   = "PASSENGER_LIMIT_REACHED"
	ErrCodePaymentAlreadyCompleted = "PAYMENT_ALREADY_COMPLETED"
	ErrCodeAmountMismatch          = "AMOUNT_MISMATCH"
	ErrCodeInvalidTransition       = "INVALID_TRANSITION"
	ErrCodeDuplicateTransactionRef = "DUPLICATE_TRANSACTION_REF"
	ErrCodePaymentNotSuccessful    = "PAYMENT_NOT_SUCCESSFUL"
	ErrCodeInvalidAmount           = "INVALID_AMOUNT"
	ErrCodeArithmetic              = "ARITHMETIC_ERROR"
	ErrCodeInvalidStatus           = "INVALID_STATUS"
	ErrCodeMissingRequiredField    = "MISSING_REQUIRED_FIELD"
	ErrCodeMalformedWebhook        = "MALFORMED_WEBHOOK"
	ErrCodeInvalidSignature        = "INVALID_SIGNATURE"
	ErrCodeGateway                 = "GATEWAY_ERROR"
	ErrCodeIntegrityGap            = "INTEGRITY_GAP"
	ErrCodeInvalidRequest          = "INVALID_REQUEST"
)

var codeKinds = map[string]ErrorKind{
	ErrCodeBookingNotFound:         KindNotFound,
	ErrCodePaymentNotFound:         KindNotFound,
	ErrCodeCustomerNotFound:        KindNotFound,
	ErrCodePassengerNotFound:       KindNotFound,
	ErrCodePassengerLimitReached:   KindConflict,
	ErrCodePaymentAlreadyCompleted: KindConflict,
	ErrCodeAmountMismatch:          KindConflict,
	ErrCodeInvalidTransition:       KindConflict,
	ErrCodeDuplicateTransactionRef: KindConflict,
	ErrCodePaymentNotSuccessful:    KindConflict,
	ErrCodeInvalidAmount:           KindValidation,
	ErrCodeArithmetic:              KindValidation,
	ErrCodeInvalidStatus:           KindValidation,
	ErrCodeMissingRequiredField:    KindValidation,
	ErrCodeMalformedWebhook:        KindValidation,
	ErrCodeInvalidSignature:        KindValidation,
	ErrCodeGateway:                 KindGateway,
	ErrCodeIntegrityGap:            KindIntegrityGap,
	ErrCodeInvalidRequest:          KindValidation,
}

func NewBookingNotFoundError(bookingID int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeBookingNotFound,
		Message: fmt.Sprintf("booking %d not found", bookingID),
	}
}

func NewPaymentNotFoundError(ref string) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentNotFound,
		Message: fmt.Sprintf("payment %s not found", ref),
	}
}

func NewCustomerNotFoundError(customerID int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeCustomerNotFound,
		Message: fmt.Sprintf("customer %d not found", customerID),
	}
}

func NewPassengerNotFoundError(passengerID int64) *DomainError {
	return &DomainError{
		Code:    ErrCodePassengerNotFound,
		Message: fmt.Sprintf("passenger %d not found", passengerID),
	}
}

func NewPassengerLimitReachedError(bookingID int64, paxCount int) *DomainError {
	return &DomainError{
		Code:    ErrCodePassengerLimitReached,
		Message: fmt.Sprintf("booking %d already has %d passengers", bookingID, paxCount),
	}
}

func NewPaymentAlreadyCompletedError(bookingID int64) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentAlreadyCompleted,
		Message: fmt.Sprintf("payment already completed for booking %d", bookingID),
	}
}

func NewAmountMismatchError(expected, actual int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeAmountMismatch,
		Message: fmt.Sprintf("amount mismatch: expected %d, got %d", expected, actual),
	}
}

func NewInvalidTransitionError(from, to PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewDuplicateTransactionRefError(ref string, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateTransactionRef,
		Message: fmt.Sprintf("transaction reference %s already recorded", ref),
		Err:     err,
	}
}

func NewPaymentNotSuccessfulError(ref string, status PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodePaymentNotSuccessful,
		Message: fmt.Sprintf("payment %s is %s, expected %s", ref, status, StatusSuccess),
	}
}

func NewInvalidAmountError(msg string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: msg,
	}
}

func NewArithmeticError(msg string) *DomainError {
	return &DomainError{
		Code:    ErrCodeArithmetic,
		Message: msg,
	}
}

func NewInvalidStatusError(status int) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidStatus,
		Message: fmt.Sprintf("unknown booking status %d", status),
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

func NewMalformedWebhookError(msg string, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeMalformedWebhook,
		Message: msg,
		Err:     err,
	}
}

func NewInvalidSignatureError() *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidSignature,
		Message: "webhook signature verification failed",
	}
}

func NewGatewayError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeGateway,
		Message: "payment gateway request failed",
		Err:     err,
	}
}

func NewIntegrityGapError(bookingID int64, paymentRef string) *DomainError {
	return &DomainError{
		Code:    ErrCodeIntegrityGap,
		Message: fmt.Sprintf("payment %s succeeded but booking %d is not confirmed", paymentRef, bookingID),
	}
}

func NewInvalidRequestError(msg string, err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidRequest,
		Message: msg,
		Err:     err,
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// KindOf classifies any error; non-domain errors are internal.
func KindOf(err error) ErrorKind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind()
	}
	return KindInternal
}
