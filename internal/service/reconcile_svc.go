package service

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/you/wellness-commerce/internal/domain"
	"github.com/you/wellness-commerce/internal/events"
	"github.com/you/wellness-commerce/internal/paystack"
	"github.com/you/wellness-commerce/internal/repository"
)

// ReconcileSvc applies gateway-confirmed outcomes to orders and
// bookings. Both the browser-redirect verify call and the webhook run
// through it; the repositories' guarded updates make the second
// arrival a no-op, so the two may race freely.
type ReconcileSvc struct {
	orders   *repository.OrderRepo
	bookings *repository.BookingRepo
	gw       Gateway
	pub      Publisher
}

func NewReconcileSvc(orders *repository.OrderRepo, bookings *repository.BookingRepo, gw Gateway, pub Publisher) *ReconcileSvc {
	return &ReconcileSvc{orders: orders, bookings: bookings, gw: gw, pub: pub}
}

// Payable is whichever entity a gateway reference resolved to.
type Payable struct {
	Order   *domain.Order
	Booking *domain.Booking
}

func (p Payable) expectedTotal() decimal.Decimal {
	if p.Order != nil {
		return p.Order.Total
	}
	return p.Booking.Price
}

type VerifyResult struct {
	Status      string
	Transaction *paystack.Transaction
	Payable     Payable
}

// VerifyByReference is the synchronous path: ask the gateway for the
// transaction outcome and apply it. A transport error talking to the
// gateway is returned as-is — it is not a failed payment.
func (s *ReconcileSvc) VerifyByReference(ctx context.Context, reference string) (*VerifyResult, error) {
	tx, err := s.gw.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verify transaction: %w", err)
	}

	p, err := s.resolve(ctx, tx.Reference)
	if err != nil {
		return nil, err
	}

	switch tx.Status {
	case "success":
		if err := s.applySuccess(ctx, p, tx); err != nil {
			return nil, err
		}
	case "failed", "abandoned":
		s.applyFailure(ctx, p, tx)
	default:
		// still pending at the gateway; nothing to apply
	}

	return &VerifyResult{Status: tx.Status, Transaction: tx, Payable: p}, nil
}

// HandleWebhook is the asynchronous path. Signature validation happens
// in the transport layer before this is called. Only charge.success
// mutates state; every other event type is ignored.
func (s *ReconcileSvc) HandleWebhook(ctx context.Context, ev paystack.WebhookEvent) error {
	if ev.Event != "charge.success" {
		log.Printf("[reconcile] ignoring webhook event %q", ev.Event)
		return nil
	}

	p, err := s.resolve(ctx, ev.Data.Reference)
	if err != nil {
		return err
	}
	data := ev.Data
	return s.applySuccess(ctx, p, &data)
}

// resolve locates the entity a reference belongs to: orders first
// (intent or order number), then bookings (number, reference column,
// notes marker).
func (s *ReconcileSvc) resolve(ctx context.Context, reference string) (Payable, error) {
	o, err := s.orders.FindByReference(ctx, reference)
	if err != nil {
		return Payable{}, err
	}
	if o != nil {
		return Payable{Order: o}, nil
	}

	b, err := s.bookings.FindByReference(ctx, reference)
	if err != nil {
		return Payable{}, err
	}
	if b != nil {
		return Payable{Booking: b}, nil
	}
	return Payable{}, domain.ErrPayableNotFound
}

// applySuccess checks the paid amount against the entity's total and
// applies the PAID transition at most once. A replay that finds the
// transition already applied logs and succeeds without writing.
func (s *ReconcileSvc) applySuccess(ctx context.Context, p Payable, tx *paystack.Transaction) error {
	expected := paystack.ToMinorUnits(p.expectedTotal())
	if expected != tx.Amount {
		log.Printf("[reconcile] amount mismatch ref=%s expected=%d received=%d",
			tx.Reference, expected, tx.Amount)
		return domain.ErrAmountMismatch
	}

	if p.Order != nil {
		applied, err := s.orders.MarkPaid(ctx, p.Order.ID)
		if err != nil {
			return err
		}
		if !applied {
			log.Printf("[reconcile] order %s already reconciled ref=%s", p.Order.OrderNumber, tx.Reference)
			return nil
		}
		log.Printf("[reconcile] order %s paid ref=%s amount=%d %s",
			p.Order.OrderNumber, tx.Reference, tx.Amount, tx.Currency)
		s.publishPaid(ctx, events.PaymentPaid{
			OrderID:   p.Order.ID,
			Reference: tx.Reference,
			Amount:    tx.Amount,
			Currency:  tx.Currency,
			Email:     p.Order.CustomerEmail,
		})
		return nil
	}

	applied, err := s.bookings.MarkPaid(ctx, p.Booking.ID, tx.Reference)
	if err != nil {
		return err
	}
	if !applied {
		log.Printf("[reconcile] booking %s already reconciled ref=%s", p.Booking.BookingNumber, tx.Reference)
		return nil
	}
	log.Printf("[reconcile] booking %s paid ref=%s amount=%d %s",
		p.Booking.BookingNumber, tx.Reference, tx.Amount, tx.Currency)
	s.publishPaid(ctx, events.PaymentPaid{
		BookingID: p.Booking.ID,
		Reference: tx.Reference,
		Amount:    tx.Amount,
		Currency:  tx.Currency,
		Email:     p.Booking.ClientEmail,
	})
	return nil
}

// applyFailure records the failed attempt. Guards in the repositories
// keep a stale failure from downgrading an entity that is already paid.
func (s *ReconcileSvc) applyFailure(ctx context.Context, p Payable, tx *paystack.Transaction) {
	var (
		applied bool
		err     error
	)
	if p.Order != nil {
		applied, err = s.orders.MarkFailed(ctx, p.Order.ID)
	} else {
		applied, err = s.bookings.MarkFailed(ctx, p.Booking.ID, tx.Reference)
	}
	if err != nil {
		log.Printf("[reconcile] record failure ref=%s: %v", tx.Reference, err)
		return
	}
	if !applied {
		log.Printf("[reconcile] stale failure ignored ref=%s", tx.Reference)
		return
	}
	log.Printf("[reconcile] transaction failed ref=%s: %s", tx.Reference, tx.GatewayResponse)
	if s.pub != nil {
		ev := events.PaymentFailed{Reference: tx.Reference, Reason: tx.GatewayResponse}
		if p.Order != nil {
			ev.OrderID = p.Order.ID
		} else {
			ev.BookingID = p.Booking.ID
		}
		_ = s.pub.PublishJSON(ctx, events.RKPaymentFailed, ev)
	}
}

func (s *ReconcileSvc) publishPaid(ctx context.Context, ev events.PaymentPaid) {
	if s.pub == nil {
		return
	}
	if err := s.pub.PublishJSON(ctx, events.RKPaymentPaid, ev); err != nil {
		log.Printf("[reconcile] publish %s: %v", events.RKPaymentPaid, err)
	}
}
