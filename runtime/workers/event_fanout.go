package workers

import (
	"context"
	"log/slog"

	"campus-desk/contract"
	"campus-desk/domain/event"
)

// EventFanout drains the engine's event channel and distributes each
// envelope. Recipients are resolved against the session registry at delivery
// time, never cached, so a participant moving between rooms keeps a single
// live sink. Permanent sinks (disk, index) see every event exactly once, no
// matter how many recipients the envelope names.
//
// Fanout is best-effort: no delivery guarantee, no ordering across sinks,
// no retry. It is not a message broker.
type EventFanout struct {
	log       *slog.Logger
	envelopes <-chan event.Envelope
	sessions  contract.ISessionRegistry
	permanent []contract.EventSink
}

func NewEventFanout(log *slog.Logger, envelopes <-chan event.Envelope,
	sessions contract.ISessionRegistry) *EventFanout {
	return &EventFanout{log: log, envelopes: envelopes, sessions: sessions}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.permanent = append(w.permanent, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case envelope := <-w.envelopes:
			w.Fanout(ctx, envelope)
		}
	}
}

func (w *EventFanout) Fanout(ctx context.Context, envelope event.Envelope) {
	for _, connID := range envelope.To {
		sink, ok := w.sessions.Sink(connID)
		if !ok {
			// The connection dropped between emit and delivery.
			w.log.Debug("No live sink for recipient", "conn", connID, "kind", envelope.Event.Kind())
			continue
		}
		if err := sink.Consume(ctx, envelope.Event); err != nil {
			w.log.Warn("Connection sink rejected event", "conn", connID, "error", err)
		}
	}
	for _, sink := range w.permanent {
		if err := sink.Consume(ctx, envelope.Event); err != nil {
			w.log.Warn("Permanent sink rejected event", "kind", envelope.Event.Kind(), "error", err)
		}
	}
}
