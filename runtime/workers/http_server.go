package workers

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// HTTPServerWorker serves the REST and channel surface until the context is canceled.
type HTTPServerWorker struct {
	log    *slog.Logger
	listen ListenFunc
	server *http.Server
}

func NewHTTPServerWorker(log *slog.Logger, listen ListenFunc, handler http.Handler) *HTTPServerWorker {
	return &HTTPServerWorker{
		log:    log,
		listen: listen,
		server: &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
	}
}

func (w *HTTPServerWorker) Run(ctx context.Context) error {
	listener, err := w.listen()
	if err != nil {
		return fmt.Errorf("http listen failed: %w", err)
	}
	w.log.Info("Starting HTTP server", "address", listener.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		errChan <- w.server.Serve(listener)
	}()

	select {
	case err = <-errChan:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Hijacked websocket connections are not tracked by Shutdown
		if err = w.server.Shutdown(shutdownCtx); err != nil {
			w.log.Warn("HTTP server shutdown incomplete", "error", err)
		}
		w.log.Info("HTTP server stopped")
		return ctx.Err()
	}
}
