package grpc_control

import (
	"fmt"
	"net"

	"market-simulator/src/logger"
	"market-simulator/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// -----------------------------------------------------------------------------
// ControlServer exposes the service over gRPC for infrastructure probes. It
// serves the standard health protocol plus reflection, so grpcurl and
// orchestrator liveness checks work without a client stub.
// -----------------------------------------------------------------------------

// ServiceName is the per-service key reported to health watchers
const ServiceName = "market-simulator"

type ControlServer struct {
	Config *models.MConfig
	Logger *logger.Logger

	server *grpc.Server
	health *health.Server
}

// -----------------------------------------------------------------------------

// NewControlServer creates the probe server. It does not listen yet
func NewControlServer(cfg *models.MConfig, log *logger.Logger) *ControlServer {
	return &ControlServer{
		Config: cfg,
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Start listens on the configured gRPC port in the background. A zero port
// disables the probe entirely
func (s *ControlServer) Start() error {
	if s.Config.GrpcPort == 0 {
		s.Logger.Info("gRPC control server disabled (no port configured)")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.Config.GrpcHost, s.Config.GrpcPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.server = grpc.NewServer()
	s.health = health.NewServer()

	healthpb.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	s.Logger.Info("gRPC control server listening on %s", addr)

	go func() {
		if err := s.server.Serve(listener); err != nil {
			s.Logger.Error("gRPC server error: %v", err)
		}
	}()

	return nil
}

// -----------------------------------------------------------------------------

// SetNotServing flips the health status, probes see the shutdown before the
// listener goes away
func (s *ControlServer) SetNotServing() {
	if s.health == nil {
		return
	}
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
}

// -----------------------------------------------------------------------------

// Stop drains in-flight RPCs and closes the listener
func (s *ControlServer) Stop() {
	if s.server != nil {
		s.server.GracefulStop()
	}
}
