package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/bootstrap"
	"github.com/Domenick1991/flightbooking/internal/gateway"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/middleware"
	"github.com/Domenick1991/flightbooking/internal/security"
)

func main() {
	log := logger.New("gateway")
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

	proxy, err := gateway.NewProxy(cfg.Gateway.Routes, log)
	if err != nil {
		return err
	}
	acl := gateway.NewACL(gateway.DefaultRules()...)
	tokens := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL())

	engine := bootstrap.NewEngine(log)
	engine.Use(
		middleware.CORS(cfg.Gateway.AllowOrigins),
		middleware.RateLimit(cfg.Gateway.RateLimit.RequestsPerSecond, cfg.Gateway.RateLimit.Burst, log),
		middleware.Authenticate(tokens, cfg.JWT.CookieName),
	)
	bootstrap.MountSwagger(engine, cfg.Gateway.HTTP.SwaggerDir)
	// everything not served locally is access-checked and proxied
	engine.NoRoute(acl.Guard(), proxy.Handler())

	srv, err := bootstrap.New("gateway", cfg.Gateway.ServiceConfig, engine, log)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
