package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/you/wellness-commerce/internal/events"
	"github.com/you/wellness-commerce/internal/notifier"
	"github.com/you/wellness-commerce/internal/worker"
	"github.com/you/wellness-commerce/pkg/config"
	"github.com/you/wellness-commerce/pkg/mq"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.RabbitURL == "" {
		log.Fatal("RABBIT_URL is required for the notify worker")
	}

	src, err := mq.NewConsumer(cfg.RabbitURL, cfg.PaymentExchange, "notify.q", []string{
		events.RKPaymentPaid,
		events.RKPaymentFailed,
		events.RKBookingCreated,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	c := worker.NewConsumer(src, notifier.NewConsole())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	log.Println("[notify] consuming payment and booking events")
	if err := c.Run(ctx); err != nil {
		log.Fatal(err)
	}
	log.Println("[notify] stopped")
}
