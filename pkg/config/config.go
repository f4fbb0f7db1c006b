package config

import (
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// DB
	PGCommerceDSN string `envconfig:"PG_COMMERCE_DSN" required:"true"`

	// Paystack
	PaystackSecretKey string `envconfig:"PAYSTACK_SECRET_KEY" required:"true"`
	PaystackBaseURL   string `envconfig:"PAYSTACK_BASE_URL" default:""`
	CheckoutCallback  string `envconfig:"CHECKOUT_CALLBACK_URL" default:"http://localhost:3000/payment/callback"`
	Currency          string `envconfig:"CURRENCY" default:"KES"`
	TaxRate           string `envconfig:"TAX_RATE" default:"0"`
	ShippingFee       string `envconfig:"SHIPPING_FEE" default:"0"`

	// RabbitMQ for payment/booking events (empty disables publishing)
	RabbitURL       string `envconfig:"RABBIT_URL" default:""`
	PaymentExchange string `envconfig:"PAYMENT_EXCHANGE" default:"payment.exchange"`

	// Network
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Observability
	OTELEnabled bool `envconfig:"OTEL_ENABLED" default:"false"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
