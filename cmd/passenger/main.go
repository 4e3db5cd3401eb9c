package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/passengers"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	log := logger.New("passenger-service")
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

	if err := repository.EnsureSchema(ctx, pool, repository.PassengerSchema); err != nil {
		return err
	}

	passengerService := passengers.NewPassengerService(repository.NewPassengerRepository(pool), passengers.WithLogger(log))

	engine := bootstrap.NewEngine(log)
	api.NewPassengerHandler(passengerService).Register(engine.Group("/passenger"))

	srv, err := bootstrap.New("passenger-service", cfg.Passenger, engine, log)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
