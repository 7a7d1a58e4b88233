package server

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// RegistrationFunc registers a grpc service with the server.
type RegistrationFunc func(*grpc.Server)

// GRPCOptions configures NewGRPCServer.
type GRPCOptions struct {
	Reflection bool
	// RequestTimeout bounds every unary call; zero disables the bound.
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewGRPCServer creates a gRPC server instrumented with OpenTelemetry, with optional reflection and service registration.
func NewGRPCServer(opts GRPCOptions, registerFunc ...RegistrationFunc) *grpc.Server {
	var unary []grpc.UnaryServerInterceptor
	if opts.RequestTimeout > 0 {
		unary = append(unary, UnaryServerTimeoutInterceptor(opts.RequestTimeout))
	}
	if opts.Logger != nil {
		unary = append(unary, UnaryServerLoggingInterceptor(opts.Logger))
	}

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(unary...),
	)

	if opts.Reflection {
		reflection.Register(grpcServer)
	}

	for _, regFunc := range registerFunc {
		regFunc(grpcServer)
	}

	return grpcServer
}

// RegisterHealth exposes h as the standard grpc.health.v1 service.
func RegisterHealth(h *health.Server) RegistrationFunc {
	return func(s *grpc.Server) {
		healthpb.RegisterHealthServer(s, h)
	}
}

// UnaryServerTimeoutInterceptor returns a unary server interceptor that applies a timeout to the context of the request.
func UnaryServerTimeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return handler(callCtx, req)
	}
}

// UnaryServerLoggingInterceptor logs every unary call with its status code and duration.
func UnaryServerLoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		logger.Log(ctx, level, "grpc call completed",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", float64(time.Since(start).Nanoseconds())/1e6,
		)
		return resp, err
	}
}
