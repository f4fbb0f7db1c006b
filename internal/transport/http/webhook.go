package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/wellness-commerce/internal/paystack"
)

// Webhook handles the gateway's server-to-server push. The signature
// is checked over the raw bytes before anything else. Once the sender
// is authenticated the response is always 200: the gateway's retries
// cannot fix a missing entity or a bad amount, and a non-200 here
// only provokes a retry storm. Internal failures are logged instead.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	signature := c.GetHeader(paystack.SignatureHeader)
	if !h.verifier.VerifyWebhookSignature(body, signature) {
		log.Printf("[webhook] invalid signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var ev paystack.WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		log.Printf("[webhook] unparseable event: %v", err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.reconcile.HandleWebhook(c.Request.Context(), ev); err != nil {
		log.Printf("[webhook] event %s ref=%s: %v", ev.Event, ev.Data.Reference, err)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
