package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you/wellness-commerce/internal/domain"
	"github.com/you/wellness-commerce/internal/paystack"
	"github.com/you/wellness-commerce/internal/repository"
	"github.com/you/wellness-commerce/internal/testutil"
)

// fakeGateway returns canned transactions instead of calling Paystack.
type fakeGateway struct {
	auth    *paystack.Authorization
	authErr error
	tx      *paystack.Transaction
	txErr   error
}

func (f *fakeGateway) InitializeTransaction(ctx context.Context, in paystack.InitializeRequest) (*paystack.Authorization, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	if f.auth != nil {
		return f.auth, nil
	}
	return &paystack.Authorization{
		AuthorizationURL: "https://checkout.paystack.com/test",
		AccessCode:       "test",
		Reference:        in.Reference,
	}, nil
}

func (f *fakeGateway) VerifyTransaction(ctx context.Context, reference string) (*paystack.Transaction, error) {
	return f.tx, f.txErr
}

// recordPublisher captures published events.
type recordPublisher struct {
	keys []string
}

func (r *recordPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	r.keys = append(r.keys, key)
	return nil
}

type fixture struct {
	orders   *repository.OrderRepo
	bookings *repository.BookingRepo
	gw       *fakeGateway
	pub      *recordPublisher
	svc      *ReconcileSvc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	orders := repository.NewOrderRepo(gdb)
	require.NoError(t, orders.Migrate())
	bookings := repository.NewBookingRepo(gdb)
	require.NoError(t, bookings.Migrate())

	gw := &fakeGateway{}
	pub := &recordPublisher{}
	return &fixture{
		orders:   orders,
		bookings: bookings,
		gw:       gw,
		pub:      pub,
		svc:      NewReconcileSvc(orders, bookings, gw, pub),
	}
}

func (f *fixture) seedOrder(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.orders.CreateProduct(ctx, &domain.Product{
		ID:    "prod-1",
		Name:  "Detox Tea",
		Price: decimal.RequireFromString("500.00"),
		Stock: 5,
	}))
	require.NoError(t, f.orders.Create(ctx, &domain.Order{
		ID:            "order-1",
		OrderNumber:   "ORD-1",
		CustomerEmail: "jane@example.com",
		Subtotal:      decimal.RequireFromString("1000.00"),
		Total:         decimal.RequireFromString("1000.00"),
		Status:        domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Items: []domain.OrderItem{{
			ProductID: "prod-1",
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("500.00"),
		}},
	}))
}

func successTx(ref string, amount int64) *paystack.Transaction {
	return &paystack.Transaction{
		Status:    "success",
		Reference: ref,
		Amount:    amount,
		Currency:  "KES",
		PaidAt:    "2026-03-01T10:00:00.000Z",
	}
}

func TestVerifyOrderSuccess(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t)
	f.gw.tx = successTx("ORD-1", 100000)
	ctx := context.Background()

	res, err := f.svc.VerifyByReference(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	require.NotNil(t, res.Payable.Order)

	got, err := f.orders.ByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, got.PaymentStatus)
	assert.Equal(t, domain.OrderStatusProcessing, got.Status)

	p, err := f.orders.ProductByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)

	assert.Equal(t, []string{"payment.paid"}, f.pub.keys)
}

func TestVerifyThenWebhookReplayIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t)
	f.gw.tx = successTx("ORD-1", 100000)
	ctx := context.Background()

	_, err := f.svc.VerifyByReference(ctx, "ORD-1")
	require.NoError(t, err)

	// the webhook observing the same transaction must change nothing
	err = f.svc.HandleWebhook(ctx, paystack.WebhookEvent{
		Event: "charge.success",
		Data:  *successTx("ORD-1", 100000),
	})
	require.NoError(t, err)

	p, err := f.orders.ProductByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock, "stock must decrement exactly once")

	assert.Equal(t, []string{"payment.paid"}, f.pub.keys, "paid event published exactly once")
}

func TestWebhookReplayTwice(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t)
	ctx := context.Background()

	ev := paystack.WebhookEvent{Event: "charge.success", Data: *successTx("ORD-1", 100000)}
	require.NoError(t, f.svc.HandleWebhook(ctx, ev))
	require.NoError(t, f.svc.HandleWebhook(ctx, ev))

	p, err := f.orders.ProductByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestAmountMismatchRejected(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t)
	// short payment: 999.00 against an expected 1000.00
	f.gw.tx = successTx("ORD-1", 99900)
	ctx := context.Background()

	_, err := f.svc.VerifyByReference(ctx, "ORD-1")
	require.ErrorIs(t, err, domain.ErrAmountMismatch)

	got, err := f.orders.ByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, got.PaymentStatus)

	p, err := f.orders.ProductByID(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
	assert.Empty(t, f.pub.keys)
}

func TestWebhookAmountMismatchRejected(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t)
	ctx := context.Background()

	err := f.svc.HandleWebhook(ctx, paystack.WebhookEvent{
		Event: "charge.success",
		Data:  *successTx("ORD-1", 100100),
	})
	require.ErrorIs(t, err, domain.ErrAmountMismatch)

	got, err := f.orders.ByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, got.PaymentStatus)
}

func TestBookingResolvedByMarkerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.bookings.Create(ctx, &domain.Booking{
		ID:            "booking-1",
		BookingNumber: "BK-1",
		ClientEmail:   "amina@example.com",
		Service:       "Consultation",
		Price:         decimal.RequireFromString("1500.00"),
		Status:        domain.BookingStatusPending,
		Notes:         domain.PaymentMarker("txn_abc"),
	}))
	f.gw.tx = successTx("txn_abc", 150000)

	res, err := f.svc.VerifyByReference(ctx, "txn_abc")
	require.NoError(t, err)
	require.NotNil(t, res.Payable.Booking)
	assert.Equal(t, "BK-1", res.Payable.Booking.BookingNumber)

	b, err := f.bookings.ByID(ctx, "booking-1")
	require.NoError(t, err)
	assert.True(t, b.Paid)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
	assert.Contains(t, b.Notes, domain.PaidMarker("txn_abc"))
}

func TestUnknownReference(t *testing.T) {
	f := newFixture(t)
	f.gw.tx = successTx("txn_ghost", 1000)

	_, err := f.svc.VerifyByReference(context.Background(), "txn_ghost")
	require.ErrorIs(t, err, domain.ErrPayableNotFound)
}

func TestGatewayErrorIsNotAFailedPayment(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t)
	f.gw.txErr = context.DeadlineExceeded
	ctx := context.Background()

	_, err := f.svc.VerifyByReference(ctx, "ORD-1")
	require.Error(t, err)

	got, err := f.orders.ByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, got.PaymentStatus, "transport error must not mark the order failed")
}

func TestPendingStatusLeavesEntityUntouched(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t)
	f.gw.tx = &paystack.Transaction{Status: "pending", Reference: "ORD-1", Amount: 100000}
	ctx := context.Background()

	res, err := f.svc.VerifyByReference(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Status)

	got, err := f.orders.ByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, got.PaymentStatus)
}

func TestFailedObservationRecordsFailure(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t)
	f.gw.tx = &paystack.Transaction{Status: "failed", Reference: "ORD-1", Amount: 100000, GatewayResponse: "Declined"}
	ctx := context.Background()

	res, err := f.svc.VerifyByReference(ctx, "ORD-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", res.Status)

	got, err := f.orders.ByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, got.PaymentStatus)
	assert.Equal(t, []string{"payment.failed"}, f.pub.keys)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	f := newFixture(t)
	f.seedOrder(t)
	ctx := context.Background()

	err := f.svc.HandleWebhook(ctx, paystack.WebhookEvent{
		Event: "transfer.success",
		Data:  *successTx("ORD-1", 100000),
	})
	require.NoError(t, err)

	got, err := f.orders.ByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, got.PaymentStatus)
}
