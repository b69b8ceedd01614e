// Package grpcserver exposes the standard gRPC health service for the
// opportunity service.
//
// Status follows storage reachability: SERVING while Postgres answers,
// NOT_SERVING otherwise. It is set at startup and refreshed by every
// scheduler check.
package grpcserver

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// ServiceName is the health service name reported alongside the overall ("") status.
const ServiceName = "opportunity-service"

// Pinger checks storage reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps a grpc.Server carrying only the health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	pinger Pinger
	log    *zap.Logger
}

// NewServer constructs a Server. Status starts as NOT_SERVING until the first
// Refresh or SetServing call.
func NewServer(pinger Pinger, log *zap.Logger) *Server {
	s := &Server{
		health: health.NewServer(),
		pinger: pinger,
		log:    log.Named("grpc"),
	}
	s.grpc = grpc.NewServer(grpc.UnaryInterceptor(s.logUnary))
	healthpb.RegisterHealthServer(s.grpc, s.health)
	s.SetServing(false)
	return s
}

// SetServing updates the overall and per-service status.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

// Refresh pings storage and updates the status accordingly.
func (s *Server) Refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := s.pinger.Ping(ctx)
	if err != nil {
		s.log.Warn("storage ping failed", zap.Error(err))
	}
	s.SetServing(err == nil)
}

// Serve blocks serving on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("gRPC health server listening", zap.String("addr", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Stop marks every service NOT_SERVING and drains in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) logUnary(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.log.Debug("rpc",
		zap.String("method", info.FullMethod),
		zap.String("code", status.Code(err).String()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, err
}
