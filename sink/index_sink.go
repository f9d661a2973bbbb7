package sink

import (
	"context"
	"log/slog"

	"campus-desk/domain"
	"campus-desk/domain/event"
	"campus-desk/search"
)

// IndexSink feeds delivered messages to the full-text index. Indexing is
// best-effort; a failed write is logged and never retried.
type IndexSink struct {
	index search.IChatIndex
	log   *slog.Logger
}

func NewIndexSink(index search.IChatIndex, log *slog.Logger) IndexSink {
	return IndexSink{index: index, log: log}
}

func (i IndexSink) Consume(_ context.Context, e event.DeskEvent) error {
	evt, ok := e.(event.MessageDelivered)
	if !ok {
		return nil
	}
	err := i.index.Index(domain.Message{
		ID:      evt.ID,
		Room:    evt.Room,
		From:    evt.From,
		Content: evt.Content,
		At:      evt.At,
	})
	if err != nil {
		i.log.Warn("Failed to index message", "id", evt.ID, "error", err)
	}
	return nil
}
