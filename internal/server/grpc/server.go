// Package grpc serves the playground service to console clients.
package grpc

import (
	"context"
	"net"

	"github.com/Aditya-creator173/SQL-Compiler/internal/api"
	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/metrics"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Backend bundles the services the handlers call.
type Backend struct {
	Accounts services.Accounts
	Raw      services.RawExecutor
	Block    services.BlockExecutor
	Schema   services.SchemaReader
	Export   services.Exporter
}

type GRPCServer struct {
	address   string
	backend   Backend
	logger    logging.Logger
	metrics   *metrics.Metrics
	jwtSecret []byte
}

var _ api.PlaygroundServer = (*GRPCServer)(nil)

func NewGRPCServer(a string, l logging.Logger, b Backend, mx *metrics.Metrics, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		backend:   b,
		metrics:   mx,
		jwtSecret: []byte(secretKey),
	}
}

// newServer builds the grpc.Server with interceptors, the playground
// service and the health service registered.
func (s *GRPCServer) newServer() (*grpc.Server, *health.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))

	api.RegisterPlaygroundServer(srv, s)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(api.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return srv, hs
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv, hs := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
