// Package sink contains the event consumers fed by the fanout worker: one
// per live connection plus the permanent disk and index appenders.
package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"campus-desk/domain/event"
)

// WsSink buffers events for one websocket connection. The engine loop must
// never block on a slow client, so Consume drops the event after the timeout
// instead of waiting for the write pump to drain.
type WsSink struct {
	log     *slog.Logger
	out     chan event.DeskEvent
	timeout time.Duration
	once    sync.Once
	closed  chan struct{}
}

func NewWsSink(log *slog.Logger, bufferSize int, timeout time.Duration) *WsSink {
	return &WsSink{
		log:     log,
		out:     make(chan event.DeskEvent, bufferSize),
		timeout: timeout,
		closed:  make(chan struct{}),
	}
}

func (w *WsSink) Consume(ctx context.Context, e event.DeskEvent) error {
	select {
	case w.out <- e:
		return nil
	case <-w.closed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(w.timeout):
		w.log.Warn("Slow client, dropping event", "kind", e.Kind())
		return nil
	}
}

// Out is drained by the connection's write pump.
func (w *WsSink) Out() <-chan event.DeskEvent { return w.out }

// Done closes when the sink is shut down.
func (w *WsSink) Done() <-chan struct{} { return w.closed }

// Close releases pending Consume calls. Safe to call twice.
func (w *WsSink) Close() {
	w.once.Do(func() { close(w.closed) })
}
