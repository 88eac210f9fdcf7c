package workers

import (
	"context"
	"log/slog"
	"messenger/domain"
	"messenger/domain/event"
	"messenger/runtime"
	"messenger/sink"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChannelCapacityWorker_Sample(t *testing.T) {
	req := require.New(t)
	registry := runtime.NewRegistry(nil)

	// Given one idle channel and one with three of four slots taken
	idle := sink.NewChannelSink("idle", 4)
	busy := sink.NewChannelSink("busy", 4)
	req.NoError(registry.Bind("alice@example.com", idle))
	req.NoError(registry.Bind("bob@example.com", busy))
	for i := 0; i < 3; i++ {
		req.NoError(busy.Consume(context.Background(), event.MessageReceived{Sender: domain.Identity("alice@example.com")}))
	}

	worker := NewChannelCapacityWorker(slog.Default(), registry, nil, time.Second, 0.5)

	// When the channels are sampled
	highest := worker.sample()

	// Then the fullest queue is reported
	req.InDelta(0.75, highest, 0.0001)
}

func TestChannelCapacityWorker_StopsOnCancel(t *testing.T) {
	worker := NewChannelCapacityWorker(slog.Default(), runtime.NewRegistry(nil), nil, 5*time.Millisecond, 0.8)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := worker.Run(ctx)

	require.ErrorIs(t, err, context.DeadlineExceeded)
}
