package workers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"go.uber.org/mock/gomock"

	"campus-desk/domain/event"
	"campus-desk/mocks"
)

func TestEventFanout_DeliversToEveryRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockISessionRegistry(ctrl)
	sinkA := mocks.NewMockEventSink(ctrl)
	sinkB := mocks.NewMockEventSink(ctrl)

	evt := event.MessageDelivered{ID: "msg-1", Content: "hi"}

	// Given two connected recipients
	sessions.EXPECT().Sink("conn-a").Return(sinkA, true)
	sessions.EXPECT().Sink("conn-b").Return(sinkB, true)
	sinkA.EXPECT().Consume(gomock.Any(), evt).Return(nil)
	sinkB.EXPECT().Consume(gomock.Any(), evt).Return(nil)

	fanout := NewEventFanout(slog.Default(), nil, sessions)

	// When distributing one envelope
	fanout.Fanout(context.Background(), event.Envelope{
		To:    []string{"conn-a", "conn-b"},
		Event: evt,
	})
}

func TestEventFanout_DroppedConnectionIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockISessionRegistry(ctrl)
	sinkB := mocks.NewMockEventSink(ctrl)

	evt := event.StatusChanged{Code: event.StatusWaitingPeer}

	// Given one recipient that went away between emit and delivery
	sessions.EXPECT().Sink("conn-gone").Return(nil, false)
	sessions.EXPECT().Sink("conn-b").Return(sinkB, true)
	sinkB.EXPECT().Consume(gomock.Any(), evt).Return(nil)

	fanout := NewEventFanout(slog.Default(), nil, sessions)

	fanout.Fanout(context.Background(), event.Envelope{
		To:    []string{"conn-gone", "conn-b"},
		Event: evt,
	})
}

func TestEventFanout_PermanentSinksSeeEveryEventOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockISessionRegistry(ctrl)
	sinkA := mocks.NewMockEventSink(ctrl)
	disk := mocks.NewMockEventSink(ctrl)

	evt := event.MessageDelivered{ID: "msg-1"}

	// Given two recipients sharing one live sink lookup each, plus a
	// permanent sink
	sessions.EXPECT().Sink(gomock.Any()).Return(sinkA, true).Times(2)
	sinkA.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(2)
	disk.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	fanout := NewEventFanout(slog.Default(), nil, sessions).Add(disk)

	// Then the permanent sink consumes once however many recipients exist
	fanout.Fanout(context.Background(), event.Envelope{
		To:    []string{"conn-a", "conn-b"},
		Event: evt,
	})
}

func TestEventFanout_SinkErrorDoesNotStopTheOthers(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockISessionRegistry(ctrl)
	angry := mocks.NewMockEventSink(ctrl)
	calm := mocks.NewMockEventSink(ctrl)

	evt := event.StatusChanged{Code: event.StatusError, Text: "nope"}

	sessions.EXPECT().Sink("conn-a").Return(angry, true)
	sessions.EXPECT().Sink("conn-b").Return(calm, true)
	angry.EXPECT().Consume(gomock.Any(), evt).Return(errors.New("buffer full"))
	calm.EXPECT().Consume(gomock.Any(), evt).Return(nil)

	fanout := NewEventFanout(slog.Default(), nil, sessions)

	fanout.Fanout(context.Background(), event.Envelope{
		To:    []string{"conn-a", "conn-b"},
		Event: evt,
	})
}

func TestEventFanout_RunStopsOnContextCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	sessions := mocks.NewMockISessionRegistry(ctrl)

	envelopes := make(chan event.Envelope)
	fanout := NewEventFanout(slog.Default(), envelopes, sessions)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := fanout.Run(ctx); err != nil {
		t.Fatalf("fanout returned %v on cancellation", err)
	}
}
