// Package runtime holds the live state of the messenger and runs its background workers.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"messenger/contract"
	"sync"
)

// Orchestrator owns the session registry and the supervised workers serving it.
type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	registry   *Registry
	workers    []contract.Worker
	done       chan struct{}
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry *Registry) *Orchestrator {
	return &Orchestrator{log: log, supervisor: supervisor, registry: registry}
}

func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Add queues workers started by Start. Workers added after Start are ignored.
func (o *Orchestrator) Add(workers ...contract.Worker) *Orchestrator {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.workers = append(o.workers, workers...)
	return o
}

// Start hands every worker to the supervisor and returns without blocking.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.done != nil {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator already started")
	}
	if len(o.workers) == 0 {
		o.mu.Unlock()
		return fmt.Errorf("orchestrator has no worker to run")
	}
	o.supervisor.Add(o.workers...)
	o.done = make(chan struct{})
	done := o.done
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "workers", len(o.workers))
	go func() {
		defer close(done)
		o.supervisor.Run(ctx)
	}()
	return nil
}

// Done is closed once every supervised worker has returned.
func (o *Orchestrator) Done() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.done
}

// Stop cancels the supervised workers and waits for them.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown", "open_channels", o.registry.Count())
	o.supervisor.Stop()
	if done := o.Done(); done != nil {
		<-done
	}
	o.log.Info("Orchestrator stopped")
}
