package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/wellness-commerce/internal/domain"
	"github.com/you/wellness-commerce/internal/paystack"
	"github.com/you/wellness-commerce/internal/service"
)

type PaymentHandler struct {
	checkout  *service.CheckoutSvc
	reconcile *service.ReconcileSvc
	verifier  WebhookVerifier
}

func NewPaymentHandler(checkout *service.CheckoutSvc, reconcile *service.ReconcileSvc, verifier WebhookVerifier) *PaymentHandler {
	return &PaymentHandler{checkout: checkout, reconcile: reconcile, verifier: verifier}
}

type checkoutOrderBody struct {
	ProductID       string `json:"productId" binding:"required"`
	Quantity        int    `json:"quantity"`
	CustomerEmail   string `json:"customerEmail" binding:"required,email"`
	CustomerName    string `json:"customerName" binding:"required"`
	ShippingAddress string `json:"shippingAddress"`
}

func (h *PaymentHandler) CheckoutOrder(c *gin.Context) {
	var body checkoutOrderBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.checkout.CheckoutOrder(c.Request.Context(), service.CheckoutOrderInput{
		ProductID:       body.ProductID,
		Quantity:        body.Quantity,
		CustomerEmail:   body.CustomerEmail,
		CustomerName:    body.CustomerName,
		ShippingAddress: body.ShippingAddress,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrOutOfStock):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"authorizationUrl": res.AuthorizationURL,
		"reference":        res.Reference,
		"orderId":          res.Order.ID,
		"orderNumber":      res.Order.OrderNumber,
	})
}

type checkoutBookingBody struct {
	BookingID     string `json:"bookingId" binding:"required"`
	CustomerEmail string `json:"customerEmail"`
}

func (h *PaymentHandler) CheckoutBooking(c *gin.Context) {
	var body checkoutBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.checkout.CheckoutBooking(c.Request.Context(), service.CheckoutBookingInput{
		BookingID:     body.BookingID,
		CustomerEmail: body.CustomerEmail,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookingNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrAlreadyPaid), errors.Is(err, domain.ErrNotPayable):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"authorizationUrl": res.AuthorizationURL,
		"reference":        res.Reference,
		"bookingId":        res.Booking.ID,
		"bookingNumber":    res.Booking.BookingNumber,
	})
}

// Verify serves both /verify and /verify-booking; the resolver works
// out which entity the reference belongs to.
func (h *PaymentHandler) Verify(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing reference"})
		return
	}

	res, err := h.reconcile.VerifyByReference(c.Request.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPayableNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrAmountMismatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	out := gin.H{
		"success": res.Status == "success",
		"status":  res.Status,
		"transaction": gin.H{
			"reference": res.Transaction.Reference,
			"amount":    paystack.FromMinorUnits(res.Transaction.Amount),
			"currency":  res.Transaction.Currency,
			"paidAt":    res.Transaction.PaidAt,
		},
	}
	if o := res.Payable.Order; o != nil {
		// reload-free summary: reflect the transition we just applied
		status, payment := o.Status, o.PaymentStatus
		if res.Status == "success" {
			status, payment = domain.OrderStatusProcessing, domain.PaymentStatusPaid
		}
		out["order"] = gin.H{
			"id":            o.ID,
			"orderNumber":   o.OrderNumber,
			"status":        status,
			"paymentStatus": payment,
			"total":         o.Total,
		}
	}
	if b := res.Payable.Booking; b != nil {
		status, paid := b.Status, b.Paid
		if res.Status == "success" {
			status, paid = domain.BookingStatusConfirmed, true
		}
		out["booking"] = gin.H{
			"id":            b.ID,
			"bookingNumber": b.BookingNumber,
			"status":        status,
			"paid":          paid,
			"price":         b.Price,
		}
	}
	c.JSON(http.StatusOK, out)
}
