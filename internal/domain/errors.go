package domain

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPayableNotFound = errors.New("no order or booking matches this reference")
	ErrOutOfStock      = errors.New("insufficient stock")
	ErrAlreadyPaid     = errors.New("already paid")
	ErrNotPayable      = errors.New("booking is no longer payable")
	ErrAmountMismatch  = errors.New("paid amount does not match expected total")
)
