package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	SwaggerFile = "flightbooking.swagger.json"
	swaggerSpec = "/swagger-spec/" + SwaggerFile

	shutdownTimeout = 5 * time.Second
)

// Server runs one service: the gin API plus a gRPC health service that
// grpc-gateway exposes over HTTP at /healthz.
type Server struct {
	name       string
	grpcServer *grpc.Server
	health     *health.Server
	healthConn *grpc.ClientConn
	httpServer *http.Server
	grpcLis    net.Listener
	httpLis    net.Listener
	log        *logger.Logger
}

// NewEngine returns a gin engine with the middleware every service shares.
func NewEngine(log *logger.Logger) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.RequestLogger(log), middleware.Recovery(log))
	return engine
}

// New binds both listeners and mounts /healthz on the engine.
func New(name string, cfg config.ServiceConfig, engine *gin.Engine, log *logger.Logger) (*Server, error) {
	grpcLis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return nil, fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	httpLis, err := net.Listen("tcp", cfg.HTTP.Address)
	if err != nil {
		grpcLis.Close()
		return nil, fmt.Errorf("listen HTTP %s: %w", cfg.HTTP.Address, err)
	}

	grpcSrv := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcSrv, hs)

	conn, err := grpc.NewClient(grpcLis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		grpcLis.Close()
		httpLis.Close()
		return nil, fmt.Errorf("dial health endpoint: %w", err)
	}
	mux := runtime.NewServeMux(runtime.WithHealthzEndpoint(healthpb.NewHealthClient(conn)))
	engine.GET("/healthz", gin.WrapH(mux))

	return &Server{
		name:       name,
		grpcServer: grpcSrv,
		health:     hs,
		healthConn: conn,
		httpServer: &http.Server{Handler: engine, ReadHeaderTimeout: 10 * time.Second},
		grpcLis:    grpcLis,
		httpLis:    httpLis,
		log:        log,
	}, nil
}

func (s *Server) HTTPAddr() string { return s.httpLis.Addr().String() }

func (s *Server) GRPCAddr() string { return s.grpcLis.Addr().String() }

// Run serves until ctx is cancelled or a server fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() { errCh <- s.grpcServer.Serve(s.grpcLis) }()
	go func() {
		if err := s.httpServer.Serve(s.httpLis); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Infof("server", "%s listening: http=%s grpc=%s", s.name, s.HTTPAddr(), s.GRPCAddr())

	select {
	case err := <-errCh:
		_ = s.httpServer.Close()
		s.stop()
		return err
	case <-ctx.Done():
		s.log.Infof("server", "%s shutting down", s.name)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.health.Shutdown()
		httpErr := s.httpServer.Shutdown(shutdownCtx)
		s.stop()
		if httpErr != nil {
			return fmt.Errorf("shutdown http server: %w", httpErr)
		}
		return nil
	}
}

func (s *Server) stop() {
	s.grpcServer.GracefulStop()
	_ = s.healthConn.Close()
}

// MountSwagger serves the API description from dir and the swagger UI under /swagger/.
func MountSwagger(engine *gin.Engine, dir string) {
	if dir == "" {
		return
	}
	engine.StaticFile(swaggerSpec, filepath.Join(dir, SwaggerFile))
	engine.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerSpec))))
}
