package events

import (
	"encoding/json"
	"fmt"
)

// Routing keys published on the payment exchange.
const (
	RKBookingCreated = "booking.created"

	RKPaymentPaid   = "payment.paid"
	RKPaymentFailed = "payment.failed"
)

type BookingCreated struct {
	BookingID     string `json:"booking_id"`
	BookingNumber string `json:"booking_number"`
	Service       string `json:"service"`
	Start         int64  `json:"start"` // unix seconds
	End           int64  `json:"end"`
}

// PaymentPaid carries exactly one of OrderID / BookingID.
type PaymentPaid struct {
	OrderID   string `json:"order_id,omitempty"`
	BookingID string `json:"booking_id,omitempty"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"` // minor units
	Currency  string `json:"currency"`
	Email     string `json:"email,omitempty"`
}

type PaymentFailed struct {
	OrderID   string `json:"order_id,omitempty"`
	BookingID string `json:"booking_id,omitempty"`
	Reference string `json:"reference"`
	Reason    string `json:"reason,omitempty"`
}

func MustUnmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
