package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/you/wellness-commerce/internal/paystack"
	"github.com/you/wellness-commerce/internal/repository"
	"github.com/you/wellness-commerce/internal/service"
	transport "github.com/you/wellness-commerce/internal/transport/http"
	"github.com/you/wellness-commerce/pkg/config"
	"github.com/you/wellness-commerce/pkg/db"
	"github.com/you/wellness-commerce/pkg/mq"
	"github.com/you/wellness-commerce/pkg/obs"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	_ = godotenv.Load()
	cfg := must(config.Load())

	gdb := db.Open(cfg.PGCommerceDSN)
	orders := repository.NewOrderRepo(gdb)
	must(0, orders.Migrate())
	bookings := repository.NewBookingRepo(gdb)
	must(0, bookings.Migrate())

	var pub service.Publisher
	if cfg.RabbitURL != "" {
		p := must(mq.NewPublisher(cfg.RabbitURL, cfg.PaymentExchange))
		defer p.Close()
		pub = p
	}

	if cfg.OTELEnabled {
		shutdown := obs.InitTracer("wellness-commerce-api")
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	gw := paystack.NewClient(cfg.PaystackSecretKey, cfg.PaystackBaseURL)
	checkout := service.NewCheckoutSvc(orders, bookings, gw, service.CheckoutConfig{
		CallbackURL: cfg.CheckoutCallback,
		Currency:    cfg.Currency,
		TaxRate:     must(decimal.NewFromString(cfg.TaxRate)),
		ShippingFee: must(decimal.NewFromString(cfg.ShippingFee)),
	})
	reconcile := service.NewReconcileSvc(orders, bookings, gw, pub)
	bookingSvc := service.NewBookingSvc(bookings, pub)
	catalog := transport.NewCatalogHandler(orders)

	r := transport.NewRouter(checkout, reconcile, bookingSvc, catalog, gw)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r}

	go func() {
		log.Println("[api] listening on", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Println("[api] stopped")
}
