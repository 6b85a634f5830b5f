package repo

import "errors"

var (
	// ErrDuplicateReference is returned when an order with the same
	// payment_reference already exists. The unique constraint is the only
	// concurrency control for racing submissions.
	ErrDuplicateReference = errors.New("order with this payment reference already exists")

	ErrOrderNotFound = errors.New("order not found")
)
