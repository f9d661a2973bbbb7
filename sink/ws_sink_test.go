package sink

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campus-desk/domain/event"
)

func TestWsSink_BuffersUntilThePumpDrains(t *testing.T) {
	req := require.New(t)
	ws := NewWsSink(slog.Default(), 2, 50*time.Millisecond)

	// Given two buffered events
	req.NoError(ws.Consume(context.Background(), event.StatusChanged{Code: event.StatusWaitingPeer}))
	req.NoError(ws.Consume(context.Background(), event.MessageDelivered{ID: "msg-1"}))

	// Then the pump reads them back in order
	first := <-ws.Out()
	second := <-ws.Out()
	req.Equal("status", first.Kind())
	req.Equal("message", second.Kind())
}

func TestWsSink_DropsWhenTheBufferStaysFull(t *testing.T) {
	req := require.New(t)
	ws := NewWsSink(slog.Default(), 1, 20*time.Millisecond)

	// Given a full buffer nobody drains
	req.NoError(ws.Consume(context.Background(), event.MessageDelivered{ID: "msg-1"}))

	// When consuming one more
	start := time.Now()
	err := ws.Consume(context.Background(), event.MessageDelivered{ID: "msg-2"})

	// Then the event is dropped after the timeout instead of blocking
	req.NoError(err)
	req.GreaterOrEqual(time.Since(start), 20*time.Millisecond)
	req.Equal("msg-1", (<-ws.Out()).(event.MessageDelivered).ID)
	req.Empty(ws.Out())
}

func TestWsSink_CloseReleasesPendingConsumers(t *testing.T) {
	req := require.New(t)
	ws := NewWsSink(slog.Default(), 0, time.Minute)

	// Given a Consume blocked on an unbuffered channel
	done := make(chan error, 1)
	go func() {
		done <- ws.Consume(context.Background(), event.StatusChanged{Code: event.StatusError})
	}()

	// When closing the sink
	time.Sleep(10 * time.Millisecond)
	ws.Close()
	ws.Close() // idempotent

	// Then the pending Consume unblocks without an error
	select {
	case err := <-done:
		req.NoError(err)
	case <-time.After(time.Second):
		t.Fatal("Consume stayed blocked after Close")
	}

	select {
	case <-ws.Done():
	default:
		t.Fatal("Done not signalled after Close")
	}
}

func TestWsSink_ContextCancellationWins(t *testing.T) {
	req := require.New(t)
	ws := NewWsSink(slog.Default(), 0, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ws.Consume(ctx, event.MessageDelivered{ID: "msg-1"})

	req.ErrorIs(err, context.Canceled)
}
