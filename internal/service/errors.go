package service

import "errors"

var (
	// ErrInvalidOrderData covers request-shape failures: missing payment
	// reference or an empty cart. Checked before any gateway or store call.
	ErrInvalidOrderData = errors.New("invalid order data")

	// ErrPaymentNotSuccessful means the gateway's authoritative status for
	// the reference is not "success".
	ErrPaymentNotSuccessful = errors.New("payment not successful")

	// ErrAmountMismatch means the claimed total does not equal the amount
	// the gateway actually authorized.
	ErrAmountMismatch = errors.New("payment amount mismatch")

	// ErrOrderNotFound is returned on the webhook path when no order exists
	// for the event's reference.
	ErrOrderNotFound = errors.New("order not found for reference")
)
