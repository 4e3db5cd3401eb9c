package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/client"
	"github.com/Domenick1991/flightbooking/internal/itinerary"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/notify"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/tickets"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	log := logger.New("ticket-service")
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

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool, repository.TicketSchema); err != nil {
		return err
	}

	publisher, err := notify.NewPublisher(*cfg, log)
	if err != nil {
		return fmt.Errorf("connect %s: %w", cfg.Broker, err)
	}
	defer publisher.Close()

	timeout := time.Duration(cfg.Ticket.ClientTimeout) * time.Second
	threshold := cfg.Ticket.Breaker.FailureThreshold
	openFor := time.Duration(cfg.Ticket.Breaker.OpenSeconds) * time.Second

	ticketService := tickets.NewTicketService(
		repository.NewTicketRepository(pool),
		client.NewFlightClient(cfg.Ticket.FlightURL, timeout),
		client.NewPassengerClient(cfg.Ticket.PassengerURL, timeout),
		publisher,
		tickets.WithLogger(log),
		tickets.WithRenderer(itinerary.NewPDFRenderer("Flight Booking")),
		tickets.WithBreakers(
			tickets.NewPNRBreaker(threshold, openFor, log),
			tickets.NewEmailBreaker(threshold, openFor, log),
		),
	)

	engine := bootstrap.NewEngine(log)
	api.NewTicketHandler(ticketService).Register(engine.Group("/ticket"))

	srv, err := bootstrap.New("ticket-service", cfg.Ticket.ServiceConfig, engine, log)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
