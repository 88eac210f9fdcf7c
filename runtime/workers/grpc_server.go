package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
)

// GRPCServerWorker serves the gRPC surface until the context is canceled.
type GRPCServerWorker struct {
	log    *slog.Logger
	listen ListenFunc
	server *grpc.Server
}

func NewGRPCServerWorker(log *slog.Logger, listen ListenFunc, server *grpc.Server) *GRPCServerWorker {
	return &GRPCServerWorker{log: log, listen: listen, server: server}
}

func (w *GRPCServerWorker) Run(ctx context.Context) error {
	listener, err := w.listen()
	if err != nil {
		return fmt.Errorf("grpc listen failed: %w", err)
	}
	w.log.Info("Starting gRPC server", "address", listener.Addr().String(), "at", time.Now().UTC())

	errChan := make(chan error, 1)
	go func() {
		errChan <- w.server.Serve(listener)
	}()

	select {
	case err = <-errChan:
		if err == nil || err == grpc.ErrServerStopped {
			return nil
		}
		return fmt.Errorf("gRPC server error: %w", err)
	case <-ctx.Done():
		w.stop()
		return ctx.Err()
	}
}

// stop drains in-flight calls, then cuts the open Connect streams.
func (w *GRPCServerWorker) stop() {
	done := make(chan struct{})
	go func() {
		w.server.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		w.log.Warn("gRPC graceful stop timed out, forcing")
		w.server.Stop()
	}
	w.log.Info("gRPC server stopped")
}
