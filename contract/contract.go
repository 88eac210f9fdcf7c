//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"messenger/domain"
	"messenger/domain/event"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker is a background loop run under an ISupervisor. It needs no panic
// handling of its own; returning nil means it is done for good.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName labels a worker in logs and metrics by its concrete type,
// "HTTPServerWorker" for a *workers.HTTPServerWorker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "nil"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}

// EventSink is the outbound side of one open delivery channel.
// Consume must not block longer than ctx allows.
type EventSink interface {
	ID() domain.ChannelID
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry maps live identities to their open channels.
type IRegistry interface {
	Bind(identity domain.Identity, channel EventSink) error
	Unbind(channelID domain.ChannelID)
	ChannelsFor(identity domain.Identity) []EventSink
	Sessions(identity domain.Identity) []domain.Session
}

// IMessageStore is the durable, append-only message log.
type IMessageStore interface {
	Append(ctx context.Context, message domain.Message) (domain.Message, error)
	Query(ctx context.Context, a, b domain.Identity) ([]domain.Message, error)
}

type IRouter interface {
	Route(ctx context.Context, sender, receiver domain.Identity, text string) (domain.Message, error)
}

type IHistoryResolver interface {
	History(ctx context.Context, caller, other domain.Identity) ([]domain.Message, error)
}
