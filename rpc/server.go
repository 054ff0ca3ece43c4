package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/infinity-go/auth"
	"github.com/hugr-lab/infinity-go/internal/logging"
	"github.com/hugr-lab/infinity-go/internal/recovery"
	"github.com/hugr-lab/infinity-go/internal/session"
	"github.com/hugr-lab/infinity-go/result"
	"github.com/hugr-lab/infinity-go/sqlexpr"
	"github.com/hugr-lab/infinity-go/translate"
	"github.com/hugr-lab/infinity-go/wire"
)

// ErrInvalidConfig indicates ServerConfig validation failed.
var ErrInvalidConfig = errors.New("invalid server config")

// ServerConfig contains configuration for the engine RPC service.
type ServerConfig struct {
	// Engine executes select requests.
	// REQUIRED: MUST NOT be nil.
	Engine Engine

	// Auth provides authentication logic.
	// OPTIONAL: If nil, no authentication (all requests allowed).
	Auth auth.Authenticator

	// Logger for internal logging.
	// OPTIONAL: Uses slog.Default() if nil.
	// If LogLevel is specified and Logger is nil, a text logger with that level is created.
	Logger *slog.Logger

	// LogLevel sets the logging level.
	// OPTIONAL: Ignored when Logger is provided.
	LogLevel *slog.Level

	// MaxMessageSize sets maximum gRPC message size in bytes.
	// OPTIONAL: If 0, uses gRPC default (4MB).
	MaxMessageSize int
}

// NewServer registers the engine service on the provided gRPC server.
// Does NOT start the gRPC server - user controls lifecycle via grpcServer.Serve().
//
// For authentication, create the gRPC server with ServerOptions:
//
//	config := rpc.ServerConfig{
//	    Engine: engine,
//	    Auth:   auth.StaticToken(secret, "admin"),
//	}
//	grpcServer := grpc.NewServer(rpc.ServerOptions(config)...)
//	if err := rpc.NewServer(grpcServer, config); err != nil {
//	    log.Fatal(err)
//	}
//	lis, _ := net.Listen("tcp", ":23817")
//	grpcServer.Serve(lis)
func NewServer(grpcServer *grpc.Server, config ServerConfig) error {
	if config.Engine == nil {
		return fmt.Errorf("%w: engine is required", ErrInvalidConfig)
	}

	logger := logging.Resolve(config.Logger, config.LogLevel)

	grpcServer.RegisterService(&serviceDesc, &server{
		engine: config.Engine,
		logger: logger,
	})

	logger.Info("Engine service registered",
		"service", ServiceName,
		"has_auth", config.Auth != nil,
		"max_message_size", config.MaxMessageSize,
	)
	return nil
}

// ServerOptions returns gRPC server options for config: the auth interceptor
// when Auth is set and message size limits when MaxMessageSize is set.
func ServerOptions(config ServerConfig) []grpc.ServerOption {
	var opts []grpc.ServerOption

	if config.Auth != nil {
		opts = append(opts, grpc.UnaryInterceptor(auth.UnaryServerInterceptor(config.Auth)))
	}

	if config.MaxMessageSize > 0 {
		opts = append(opts,
			grpc.MaxRecvMsgSize(config.MaxMessageSize),
			grpc.MaxSendMsgSize(config.MaxMessageSize),
		)
	}

	return opts
}

// server adapts an Engine to the gRPC service.
type server struct {
	engine Engine
	logger *slog.Logger
}

func (s *server) Select(ctx context.Context, req *wire.SelectRequest) (*wire.Response, error) {
	ctx = session.Incoming(ctx)
	sessionID, _ := session.FromContext(ctx)
	start := time.Now()

	if err := auth.CheckSelect(ctx, req.DB); err != nil {
		s.logger.Warn("Select denied",
			"db", req.DB,
			"table", req.Table,
			"session", sessionID,
			"identity", auth.IdentityFromContext(ctx),
		)
		return nil, StatusError(err)
	}

	resp, err := recovery.Call(s.logger, "Select", func() (*wire.Response, error) {
		return s.engine.Select(ctx, req)
	})
	if err == nil && resp == nil {
		err = status.Error(codes.Internal, "engine returned no response")
	}
	if err != nil {
		s.logger.Error("Select failed",
			"db", req.DB,
			"table", req.Table,
			"session", sessionID,
			"identity", auth.IdentityFromContext(ctx),
			"error", err,
		)
		return nil, StatusError(err)
	}

	s.logger.Debug("Select served",
		"db", req.DB,
		"table", req.Table,
		"session", sessionID,
		"where", wire.Format(req.Where),
		"columns", len(resp.ColumnDefs),
		"error_code", resp.ErrorCode,
		"duration", time.Since(start),
	)
	return resp, nil
}

// StatusError converts an error into a gRPC status error. Errors that
// already carry a status keep it.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(codeFor(err), err.Error())
}

func codeFor(err error) codes.Code {
	switch {
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, auth.ErrForbidden):
		return codes.PermissionDenied
	case errors.Is(err, auth.ErrUnauthenticated):
		return codes.Unauthenticated
	case errors.Is(err, result.ErrUnsupportedColumnType):
		return codes.Unimplemented
	case errors.Is(err, result.ErrMalformedColumnBuffer),
		errors.Is(err, result.ErrMissingColumnField):
		return codes.DataLoss
	case errors.Is(err, wire.ErrMalformedNode),
		errors.Is(err, sqlexpr.ErrSyntax),
		errors.Is(err, translate.ErrUnsupportedOperator),
		errors.Is(err, translate.ErrUnsupportedLiteral),
		errors.Is(err, translate.ErrUnsupportedExpression):
		return codes.InvalidArgument
	}
	return codes.Internal
}
