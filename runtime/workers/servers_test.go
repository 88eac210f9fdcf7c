package workers

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

func openListener(t *testing.T) (ListenFunc, string) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return func() (net.Listener, error) { return listener, nil }, listener.Addr().String()
}

func TestHTTPServerWorker_ServesUntilCanceled(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	listen, address := openListener(t)
	worker := NewHTTPServerWorker(log, listen, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Given the worker is serving
	var res *http.Response
	req.Eventually(func() bool {
		var err error
		res, err = http.Get("http://" + address)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, err := io.ReadAll(res.Body)
	_ = res.Body.Close()
	req.NoError(err)
	req.Equal("pong", string(body))

	// When the context is canceled
	cancel()

	// Then Run returns with the context error
	select {
	case err = <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		req.Fail("http worker did not stop")
	}
}

func TestHTTPServerWorker_ListenFailure(t *testing.T) {
	worker := NewHTTPServerWorker(slog.Default(), func() (net.Listener, error) {
		return nil, io.ErrClosedPipe
	}, http.NotFoundHandler())

	err := worker.Run(context.Background())

	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestGRPCServerWorker_StopsOnCancel(t *testing.T) {
	req := require.New(t)
	listen, _ := openListener(t)
	worker := NewGRPCServerWorker(slog.Default(), listen, grpc.NewServer())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(2 * time.Second):
		req.Fail("grpc worker did not stop")
	}
}

func TestBadgerGCWorker_InMemoryFinishes(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer func() { _ = db.Close() }()

	worker := NewBadgerGCWorker(slog.Default(), db, 10*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// In-memory databases cannot be collected, so the worker ends cleanly
	req.NoError(worker.Run(ctx))
}

func TestBadgerGCWorker_StopsOnCancel(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	worker := NewBadgerGCWorker(slog.Default(), db, 5*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = worker.Run(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}
