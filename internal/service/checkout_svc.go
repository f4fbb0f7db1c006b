package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/you/wellness-commerce/internal/domain"
	"github.com/you/wellness-commerce/internal/paystack"
	"github.com/you/wellness-commerce/internal/repository"
)

// Gateway is the slice of the payment gateway the services depend on.
type Gateway interface {
	InitializeTransaction(ctx context.Context, in paystack.InitializeRequest) (*paystack.Authorization, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error)
}

// Publisher matches pkg/mq.Publisher; nil disables event publishing.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type CheckoutConfig struct {
	CallbackURL string
	Currency    string
	TaxRate     decimal.Decimal // fraction of subtotal, e.g. 0.16
	ShippingFee decimal.Decimal // flat fee for physical goods
}

type CheckoutSvc struct {
	orders   *repository.OrderRepo
	bookings *repository.BookingRepo
	gw       Gateway
	cfg      CheckoutConfig
}

func NewCheckoutSvc(orders *repository.OrderRepo, bookings *repository.BookingRepo, gw Gateway, cfg CheckoutConfig) *CheckoutSvc {
	return &CheckoutSvc{orders: orders, bookings: bookings, gw: gw, cfg: cfg}
}

type CheckoutOrderInput struct {
	ProductID       string
	Quantity        int
	CustomerEmail   string
	CustomerName    string
	ShippingAddress string
}

type CheckoutResult struct {
	AuthorizationURL string
	Reference        string
	Order            *domain.Order
	Booking          *domain.Booking
}

// CheckoutOrder creates a PENDING order and opens a gateway
// transaction for its total. The order number doubles as the gateway
// reference so either side can correlate later. When the gateway call
// fails the order stays PENDING with no payment intent; nothing looks
// paid.
func (s *CheckoutSvc) CheckoutOrder(ctx context.Context, in CheckoutOrderInput) (*CheckoutResult, error) {
	qty := in.Quantity
	if qty <= 0 {
		qty = 1
	}

	p, err := s.orders.ProductByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.IsDigital && p.Stock < qty {
		return nil, domain.ErrOutOfStock
	}

	subtotal := p.Price.Mul(decimal.NewFromInt(int64(qty)))
	tax := subtotal.Mul(s.cfg.TaxRate).Round(2)
	shipping := decimal.Zero
	if !p.IsDigital {
		shipping = s.cfg.ShippingFee
	}
	total := subtotal.Add(tax).Add(shipping)

	order := &domain.Order{
		ID:              uuid.NewString(),
		OrderNumber:     newOrderNumber(),
		CustomerName:    in.CustomerName,
		CustomerEmail:   in.CustomerEmail,
		ShippingAddress: in.ShippingAddress,
		Subtotal:        subtotal,
		Tax:             tax,
		Shipping:        shipping,
		Total:           total,
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		Items: []domain.OrderItem{{
			ProductID: p.ID,
			Quantity:  qty,
			UnitPrice: p.Price,
		}},
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	auth, err := s.gw.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       in.CustomerEmail,
		Amount:      paystack.ToMinorUnits(total),
		Reference:   order.OrderNumber,
		CallbackURL: s.cfg.CallbackURL,
		Currency:    s.cfg.Currency,
		Metadata:    map[string]any{"order_id": order.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize transaction: %w", err)
	}
	if err := s.orders.SetPaymentIntent(ctx, order.ID, auth.Reference); err != nil {
		return nil, err
	}
	order.PaymentIntent = auth.Reference

	return &CheckoutResult{
		AuthorizationURL: auth.AuthorizationURL,
		Reference:        auth.Reference,
		Order:            order,
	}, nil
}

type CheckoutBookingInput struct {
	BookingID     string
	CustomerEmail string
}

// CheckoutBooking opens a gateway transaction for an existing PENDING
// booking. The first attempt uses the booking number as the reference;
// retries need a fresh reference (the gateway refuses reuse), which is
// stamped on the booking so verification can still find it.
func (s *CheckoutSvc) CheckoutBooking(ctx context.Context, in CheckoutBookingInput) (*CheckoutResult, error) {
	b, err := s.bookings.ByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Paid {
		return nil, domain.ErrAlreadyPaid
	}
	if b.Status != domain.BookingStatusPending {
		return nil, domain.ErrNotPayable
	}

	reference := b.BookingNumber
	if b.PaymentReference != "" {
		reference = newTxnReference()
	}

	email := in.CustomerEmail
	if email == "" {
		email = b.ClientEmail
	}

	auth, err := s.gw.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:       email,
		Amount:      paystack.ToMinorUnits(b.Price),
		Reference:   reference,
		CallbackURL: s.cfg.CallbackURL,
		Currency:    s.cfg.Currency,
		Metadata:    map[string]any{"booking_id": b.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("initialize transaction: %w", err)
	}
	if err := s.bookings.SetPaymentReference(ctx, b.ID, auth.Reference); err != nil {
		return nil, err
	}
	b.PaymentReference = auth.Reference

	return &CheckoutResult{
		AuthorizationURL: auth.AuthorizationURL,
		Reference:        auth.Reference,
		Booking:          b,
	}, nil
}

func newOrderNumber() string {
	return "ORD-" + shortID()
}

func newBookingNumber() string {
	return "BK-" + shortID()
}

func newTxnReference() string {
	return "PSK-" + shortID()
}

func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
