package worker

import (
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/wellness-commerce/internal/events"
)

type captureNotifier struct {
	subjects []string
	messages []string
}

func (c *captureNotifier) Notify(subject, message string) error {
	c.subjects = append(c.subjects, subject)
	c.messages = append(c.messages, message)
	return nil
}

func delivery(t *testing.T, key string, v any) amqp.Delivery {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return amqp.Delivery{RoutingKey: key, Body: b}
}

func TestHandlePaymentPaid(t *testing.T) {
	n := &captureNotifier{}
	c := NewConsumer(nil, n)

	err := c.handleDelivery(delivery(t, events.RKPaymentPaid, events.PaymentPaid{
		OrderID:   "order-1",
		Reference: "ORD-1",
		Amount:    100000,
		Currency:  "kes",
	}))
	require.NoError(t, err)
	require.Len(t, n.subjects, 1)
	assert.Equal(t, "Payment Received", n.subjects[0])
	assert.Contains(t, n.messages[0], "Order order-1")
	assert.Contains(t, n.messages[0], "1000 KES")
	assert.Contains(t, n.messages[0], "ORD-1")
}

func TestHandlePaymentFailed(t *testing.T) {
	n := &captureNotifier{}
	c := NewConsumer(nil, n)

	err := c.handleDelivery(delivery(t, events.RKPaymentFailed, events.PaymentFailed{
		BookingID: "booking-1",
		Reference: "BK-1",
		Reason:    "Declined",
	}))
	require.NoError(t, err)
	require.Len(t, n.subjects, 1)
	assert.Equal(t, "Payment Failed", n.subjects[0])
	assert.Contains(t, n.messages[0], "Booking booking-1")
	assert.Contains(t, n.messages[0], "Declined")
}

func TestHandleUnknownKeyIsIgnored(t *testing.T) {
	n := &captureNotifier{}
	c := NewConsumer(nil, n)

	err := c.handleDelivery(amqp.Delivery{RoutingKey: "something.else", Body: []byte("{}")})
	require.NoError(t, err)
	assert.Empty(t, n.subjects)
}

func TestHandleBadPayload(t *testing.T) {
	n := &captureNotifier{}
	c := NewConsumer(nil, n)

	err := c.handleDelivery(amqp.Delivery{RoutingKey: events.RKPaymentPaid, Body: []byte("{")})
	require.Error(t, err)
	assert.Empty(t, n.subjects)
}
