package workers

import (
	"context"
	"log/slog"
	"messenger/contract"
	"messenger/observability"
	"time"
)

// ChannelSource lists the bound channels to sample.
type ChannelSource interface {
	Channels() []contract.EventSink
	Identities() int
}

// backlogged is implemented by sinks with a bounded outbound queue.
type backlogged interface {
	Backlog() (length, capacity int)
}

// ChannelCapacityWorker periodically samples the outbound queue of every bound channel.
// Reading len and cap of a channel is non-blocking, so this won't interfere
// with delivery. A queue above the threshold means its reader is falling behind
// and pushes to it will soon fail with ErrChannelFull.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	source         ChannelSource
	metrics        *observability.Metrics
	metricInterval time.Duration
	threshold      float64
}

func NewChannelCapacityWorker(log *slog.Logger, source ChannelSource, metrics *observability.Metrics,
	metricInterval time.Duration, threshold float64) *ChannelCapacityWorker {
	if metricInterval <= 0 {
		metricInterval = 15 * time.Second
	}
	return &ChannelCapacityWorker{
		log:            log,
		source:         source,
		metrics:        metrics,
		metricInterval: metricInterval,
		threshold:      threshold,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel sampling")
			return ctx.Err()
		case <-ticker.C:
			w.sample()
		}
	}
}

// sample returns the highest fill ratio seen, for tests.
func (w *ChannelCapacityWorker) sample() float64 {
	highest := 0.0
	for _, channel := range w.source.Channels() {
		queue, ok := channel.(backlogged)
		if !ok {
			continue
		}
		length, capacity := queue.Backlog()
		if capacity == 0 {
			continue
		}
		ratio := float64(length) / float64(capacity)
		if ratio > highest {
			highest = ratio
		}
		if w.threshold > 0 && ratio >= w.threshold {
			w.log.Warn("Channel outbound queue is filling up",
				"channel_id", channel.ID(),
				"length", length,
				"capacity", capacity)
		}
	}
	w.metrics.ChannelsSampled(w.source.Identities(), highest)
	return highest
}
