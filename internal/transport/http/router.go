package http

import (
	"github.com/gin-gonic/gin"

	"github.com/you/wellness-commerce/internal/service"
)

// WebhookVerifier authenticates a webhook body before it is parsed.
type WebhookVerifier interface {
	VerifyWebhookSignature(body []byte, signature string) bool
}

func NewRouter(
	checkout *service.CheckoutSvc,
	reconcile *service.ReconcileSvc,
	bookings *service.BookingSvc,
	catalog *CatalogHandler,
	verifier WebhookVerifier,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	ph := NewPaymentHandler(checkout, reconcile, verifier)
	pay := r.Group("/api/payments")
	{
		pay.POST("/checkout", ph.CheckoutOrder)
		pay.POST("/checkout-booking", ph.CheckoutBooking)
		// both verify routes share one handler: resolution is by
		// reference, so either route settles whichever entity the
		// reference belongs to
		pay.GET("/verify", ph.Verify)
		pay.GET("/verify-booking", ph.Verify)
		pay.POST("/webhook", ph.Webhook)
	}

	bh := NewBookingHandler(bookings)
	r.POST("/api/bookings", bh.Create)
	r.GET("/api/bookings/:id", bh.Get)

	r.POST("/api/products", catalog.Create)
	r.GET("/api/products/:id", catalog.Get)

	return r
}
