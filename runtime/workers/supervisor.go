package workers

import (
	"context"
	"fmt"
	"log/slog"
	"messenger/contract"
	"messenger/errors"
	"messenger/observability"
	"sync"
	"time"
)

const defaultRestartInterval = 200 * time.Millisecond

// Supervisor keeps the background workers of the messenger alive.
// A worker returning nil is done for good. A worker failing or panicking is
// restarted after restartInterval until the supervised context ends.
type Supervisor struct {
	log             *slog.Logger
	metrics         *observability.Metrics
	restartInterval time.Duration
	wg              sync.WaitGroup

	mu      sync.Mutex
	workers []contract.Worker
	cancel  context.CancelFunc
	stopped bool
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration, metrics *observability.Metrics) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = defaultRestartInterval
	}
	return &Supervisor{log: log, metrics: metrics, restartInterval: restartInterval}
}

func (s *Supervisor) Add(workers ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, workers...)
	return s
}

// Run blocks until every worker has returned for good.
// Cancelling ctx or calling Stop ends all of them.
func (s *Supervisor) Run(ctx context.Context) {
	supervised, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.cancel = cancel
	workers := append([]contract.Worker(nil), s.workers...)
	s.mu.Unlock()

	for _, worker := range workers {
		s.Start(supervised, worker)
	}
	s.wg.Wait()
}

// Start runs worker in its own goroutine under supervision.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	name := contract.GetWorkerName(worker)
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		for attempt := 1; ; attempt++ {
			err := s.runOnce(ctx, worker)
			switch {
			case err == nil:
				s.log.Info("Worker finished", "name", name)
				return
			case ctx.Err() != nil:
				s.log.Info("Worker stopped", "name", name)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", name, "attempt", attempt, "error", err)
			s.metrics.WorkerRestarted(name)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartInterval):
			}
		}
	}()
}

// runOnce turns a panic into an error so one worker cannot take the process down.
func (s *Supervisor) runOnce(ctx context.Context, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	return worker.Run(ctx)
}

// Stop cancels every worker. A Run starting after Stop returns immediately.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
}
