package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	BookingStatusPending   = "PENDING"
	BookingStatusConfirmed = "CONFIRMED"
	BookingStatusCancelled = "CANCELLED"
)

type Booking struct {
	ID            string `gorm:"primaryKey"`
	BookingNumber string `gorm:"uniqueIndex"`
	ClientName    string
	ClientEmail   string `gorm:"index"`
	ClientPhone   string
	Service       string
	StartTime     time.Time `gorm:"index"`
	EndTime       time.Time
	Price         decimal.Decimal `gorm:"type:numeric(12,2)"`
	Paid          bool            `gorm:"index"`
	Status        string          `gorm:"index"`
	// PaymentReference is the gateway transaction reference for the
	// latest checkout attempt. Legacy rows carry it only inside Notes.
	PaymentReference string `gorm:"index"`
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Notes markers. Older bookings recorded the gateway reference as a
// bracketed marker in the free-text notes; the suffix tracks outcome.
func PaymentMarker(ref string) string {
	return "[Payment Reference: " + ref + "]"
}

func PaidMarker(ref string) string {
	return "[Payment Reference: " + ref + " - PAID]"
}

func FailedMarker(ref string) string {
	return "[Payment Reference: " + ref + " - FAILED]"
}
