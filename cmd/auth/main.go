package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/security"
	"github.com/Domenick1991/flightbooking/internal/service/auth"
	_ "github.com/go-sql-driver/mysql"
)

func main() {
	log := logger.New("auth-service")
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

	db, err := sql.Open("mysql", cfg.MySQL.DSN())
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	defer db.Close()
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(10)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("connect mysql: %w", err)
	}

	users := repository.NewUserRepository(db)
	if err := users.InitTables(ctx); err != nil {
		return err
	}

	authService := auth.NewAuthService(
		users,
		security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL()),
		cfg.Auth.BcryptCost,
		time.Duration(cfg.Auth.PasswordMaxAgeDays)*24*time.Hour,
		auth.WithLogger(log),
	)

	engine := bootstrap.NewEngine(log)
	api.NewAuthHandler(authService, cfg.JWT.CookieName).Register(engine.Group("/api/auth"))

	srv, err := bootstrap.New("auth-service", cfg.Auth.ServiceConfig, engine, log)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
