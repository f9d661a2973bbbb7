package engine

import (
	"testing"

	"campus-desk/domain"
	apperrors "campus-desk/errors"

	"github.com/stretchr/testify/require"
)

func TestConnectionRegistry_RegisterIdempotent(t *testing.T) {
	req := require.New(t)
	r := NewConnectionRegistry()

	first := r.Register("c1", "alice", "Alice", false)
	second := r.Register("c1", "other", "Other", true)

	req.Same(first, second)
	req.Equal("alice", second.Identity)
	req.Equal("Alice", second.Name)
}

func TestConnectionRegistry_BlankNameGetsPlaceholder(t *testing.T) {
	req := require.New(t)
	r := NewConnectionRegistry()

	c := r.Register("conn-1234-5678", "alice", "   ", false)
	req.Equal("visitor-conn-123", c.Name)

	r.SetDisplayName("conn-1234-5678", "\t ")
	req.Equal("visitor-conn-123", c.Name)

	r.SetDisplayName("conn-1234-5678", "Alice")
	req.Equal("Alice", c.Name)
}

func TestConnectionRegistry_BindRoomRejectsDoubleBooking(t *testing.T) {
	req := require.New(t)
	r := NewConnectionRegistry()
	r.Register("c1", "alice", "Alice", false)

	req.NoError(r.BindRoom("c1", domain.RoomID(1)))
	// Re-binding the same room is a no-op
	req.NoError(r.BindRoom("c1", domain.RoomID(1)))

	err := r.BindRoom("c1", domain.RoomID(2))
	req.ErrorIs(err, apperrors.ErrInvariantViolation)

	// Prior state intact
	roomID, ok := r.RoomOf("c1")
	req.True(ok)
	req.Equal(domain.RoomID(1), roomID)
}

func TestConnectionRegistry_RemoveClearsEverything(t *testing.T) {
	req := require.New(t)
	r := NewConnectionRegistry()
	r.Register("c1", "alice", "Alice", false)
	req.NoError(r.BindRoom("c1", domain.RoomID(1)))

	r.Remove("c1")

	_, ok := r.Get("c1")
	req.False(ok)
	_, ok = r.ConnOf("alice")
	req.False(ok)
	_, ok = r.RoomOf("c1")
	req.False(ok)

	// Removing again is safe
	r.Remove("c1")
}

func TestConnectionRegistry_ReconnectRebindsIdentity(t *testing.T) {
	req := require.New(t)
	r := NewConnectionRegistry()

	r.Register("c1", "alice", "Alice", false)
	r.Register("c2", "alice", "Alice", false)

	// The identity index follows the newest connection
	connID, ok := r.ConnOf("alice")
	req.True(ok)
	req.Equal("c2", connID)

	// Removing the stale session must not clear the newer mapping
	r.Remove("c1")
	connID, ok = r.ConnOf("alice")
	req.True(ok)
	req.Equal("c2", connID)
}
