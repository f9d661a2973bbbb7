package sink

import (
	"context"
	"fmt"
	"log/slog"

	"campus-desk/domain"
	"campus-desk/domain/event"
	"campus-desk/repositories"
)

type DiskSink struct {
	repository repositories.IChatRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IChatRepository, log *slog.Logger) DiskSink {
	return DiskSink{repository: repository, log: log}
}

func (d DiskSink) Consume(_ context.Context, e event.DeskEvent) error {
	switch evt := e.(type) {
	case event.MessageDelivered:
		return d.repository.Append(toDiskMessage(evt))
	default:
		d.log.Debug(fmt.Sprintf("Not persisted event : %s", evt.Kind()))
		return nil
	}
}

func toDiskMessage(event event.MessageDelivered) domain.Message {
	return domain.Message{
		ID:       event.ID,
		Room:     event.Room,
		From:     event.From,
		FromName: event.FromName,
		Operator: event.Operator,
		Content:  event.Content,
		At:       event.At,
	}
}
