package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/notify"
	"golang.org/x/sync/errgroup"
)

func main() {
	log := logger.New("email-service")
	if err := run(log); err != nil {
		log.Fatalf("main", "%v", err)
	}
}

func run(log *logger.Logger) error {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer, err := notify.NewConsumer(*cfg, log)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	defer consumer.Close()

	var sender email.Sender = email.NewSMTPSender(cfg.Email)
	if cfg.Email.SMTPHost == "" {
		log.Warn("main", "smtp_host is empty, confirmations are only logged")
		sender = email.NewLogSender(log)
	}
	relay := email.NewRelay(sender, cfg.Email.From, log)

	srv, err := bootstrap.New("email-service", cfg.Email.ServiceConfig, bootstrap.NewEngine(log), log)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error {
		log.Infof("main", "consuming booking events from %s", cfg.Broker)
		return consumer.Consume(ctx, relay.HandleMessage)
	})
	return g.Wait()
}
