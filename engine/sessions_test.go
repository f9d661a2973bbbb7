package engine

import (
	"context"
	"testing"

	"campus-desk/domain/event"

	"github.com/stretchr/testify/require"
)

type nopSink struct{}

func (nopSink) Consume(context.Context, event.DeskEvent) error { return nil }

func TestSessionRegistry_AttachAndResolve(t *testing.T) {
	req := require.New(t)
	r := NewSessionRegistry()
	sink := nopSink{}

	r.Attach("c1", "alice", sink)

	got, ok := r.Sink("c1")
	req.True(ok)
	req.Equal(sink, got)

	got, ok = r.SinkByIdentity("alice")
	req.True(ok)
	req.Equal(sink, got)
}

func TestSessionRegistry_DetachClearsIdentity(t *testing.T) {
	req := require.New(t)
	r := NewSessionRegistry()
	r.Attach("c1", "alice", nopSink{})

	r.Detach("c1")

	_, ok := r.Sink("c1")
	req.False(ok)
	_, ok = r.SinkByIdentity("alice")
	req.False(ok)

	// Detaching twice is safe
	r.Detach("c1")
}

func TestSessionRegistry_UnknownLookups(t *testing.T) {
	req := require.New(t)
	r := NewSessionRegistry()

	_, ok := r.Sink("ghost")
	req.False(ok)
	_, ok = r.SinkByIdentity("ghost")
	req.False(ok)
}
