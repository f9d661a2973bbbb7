//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"campus-desk/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

// Worker doesn't protect itself; the supervisor recovers panics and restarts.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one consumer of engine output: a live connection, the disk
// appender, the search indexer, or a telemetry counter.
type EventSink interface {
	Consume(ctx context.Context, e event.DeskEvent) error
}

// ISessionRegistry resolves connection IDs to their live sinks. Looked up
// fresh on every fanout, so no handler is ever rebound on room transitions.
type ISessionRegistry interface {
	Attach(connID, identity string, sink EventSink)
	Detach(connID string)
	Sink(connID string) (EventSink, bool)
	SinkByIdentity(identity string) (EventSink, bool)
}
