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
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	log := logger.New("flight-service")
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

	if err := repository.EnsureSchema(ctx, pool, repository.FlightSchema); err != nil {
		return err
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Flight.FlightsCacheTTL)*time.Second)
	if err := redisCache.Ping(ctx); err != nil {
		log.Warnf("main", "redis unreachable, flight list will be read from postgres: %v", err)
	}

	flightService := flights.NewFlightService(
		repository.NewFlightRepository(pool),
		redisCache,
		flights.WithLogger(log),
	)

	engine := bootstrap.NewEngine(log)
	api.NewFlightHandler(flightService).Register(engine.Group("/flight"))

	srv, err := bootstrap.New("flight-service", cfg.Flight.ServiceConfig, engine, log)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
