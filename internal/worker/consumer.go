package worker

import (
	"context"
	"fmt"
	"log"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/you/wellness-commerce/internal/events"
	"github.com/you/wellness-commerce/internal/notifier"
	"github.com/you/wellness-commerce/internal/paystack"
	"github.com/you/wellness-commerce/pkg/mq"
)

// Consumer turns payment and booking events into notifications.
type Consumer struct {
	source   *mq.Consumer
	notifier notifier.Notifier
}

func NewConsumer(source *mq.Consumer, n notifier.Notifier) *Consumer {
	return &Consumer{source: source, notifier: n}
}

func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.source.Deliveries(ctx)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := c.handleDelivery(d); err != nil {
				log.Printf("[notify] handle error key=%s err=%v -> Nack&requeue", d.RoutingKey, err)
				_ = d.Nack(false, true)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handleDelivery(d amqp.Delivery) error {
	switch d.RoutingKey {
	case events.RKBookingCreated:
		ev, err := events.MustUnmarshal[events.BookingCreated](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Booking Created",
			fmt.Sprintf("Booking %s (%s) %s", ev.BookingNumber, ev.Service,
				notifier.HumanTimeRange(ev.Start, ev.End)))

	case events.RKPaymentPaid:
		ev, err := events.MustUnmarshal[events.PaymentPaid](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Payment Received",
			fmt.Sprintf("%s paid %s %s (ref=%s)", entityLabel(ev.OrderID, ev.BookingID),
				paystack.FromMinorUnits(ev.Amount), strings.ToUpper(ev.Currency), ev.Reference))

	case events.RKPaymentFailed:
		ev, err := events.MustUnmarshal[events.PaymentFailed](d.Body)
		if err != nil {
			return err
		}
		return c.notifier.Notify("Payment Failed",
			fmt.Sprintf("%s payment failed (ref=%s): %s", entityLabel(ev.OrderID, ev.BookingID),
				ev.Reference, ev.Reason))

	default:
		// not ours; ack and move on
		return nil
	}
}

func entityLabel(orderID, bookingID string) string {
	if orderID != "" {
		return "Order " + orderID
	}
	return "Booking " + bookingID
}
