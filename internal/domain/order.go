package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order fulfillment states.
const (
	OrderStatusPending    = "PENDING"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
	OrderStatusCancelled  = "CANCELLED"
)

// Payment states. PENDING -> PAID happens exactly once; FAILED may
// still move to PAID when the customer retries with a fresh reference.
const (
	PaymentStatusPending  = "PENDING"
	PaymentStatusPaid     = "PAID"
	PaymentStatusFailed   = "FAILED"
	PaymentStatusRefunded = "REFUNDED"
)

type Product struct {
	ID        string          `gorm:"primaryKey"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2)"`
	Stock     int
	IsDigital bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID              string `gorm:"primaryKey"`
	OrderNumber     string `gorm:"uniqueIndex"`
	CustomerName    string
	CustomerEmail   string `gorm:"index"`
	ShippingAddress string
	Items           []OrderItem     `gorm:"foreignKey:OrderID"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2)"`
	Tax             decimal.Decimal `gorm:"type:numeric(12,2)"`
	Shipping        decimal.Decimal `gorm:"type:numeric(12,2)"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2)"`
	Status          string          `gorm:"index"`
	PaymentStatus   string          `gorm:"index"`
	// PaymentIntent holds the gateway transaction reference set at checkout.
	PaymentIntent string `gorm:"index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderItem struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"index"`
	ProductID string `gorm:"index"`
	Product   Product
	Quantity  int
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2)"`
}
