package engine

import (
	"testing"

	apperrors "campus-desk/errors"

	"github.com/stretchr/testify/require"
)

func TestOperatorDirectory_AttachReturnsPrevious(t *testing.T) {
	req := require.New(t)
	d := NewOperatorDirectory(sequence())

	req.Empty(d.Attach("op1"))
	req.Equal("op1", d.Attach("op2"))

	active, ok := d.Active()
	req.True(ok)
	req.Equal("op2", active)
}

func TestOperatorDirectory_QueueIsOrderedAndDeduplicated(t *testing.T) {
	req := require.New(t)
	d := NewOperatorDirectory(sequence())

	req.True(d.EnqueueWaiting("alice"))
	req.True(d.EnqueueWaiting("bob"))
	req.False(d.EnqueueWaiting("alice"))
	req.False(d.EnqueueWaiting(""))

	req.Equal([]string{"alice", "bob"}, d.Snapshot())

	req.True(d.RemoveWaiting("alice"))
	req.False(d.RemoveWaiting("alice"))
	req.Equal([]string{"bob"}, d.Snapshot())
}

func TestOperatorDirectory_PickUpMovesVisitorIntoRoom(t *testing.T) {
	req := require.New(t)
	d := NewOperatorDirectory(sequence())
	d.Attach("op")
	d.EnqueueWaiting("alice")

	room, err := d.PickUp("op", "alice", "v1")

	req.NoError(err)
	req.True(room.Operator)
	req.ElementsMatch([]string{"op", "v1"}, room.Members)
	req.False(d.IsWaiting("alice"))

	stored, ok := d.Room(room.ID)
	req.True(ok)
	req.Same(room, stored)
}

func TestOperatorDirectory_PickUpNotWaiting(t *testing.T) {
	req := require.New(t)
	d := NewOperatorDirectory(sequence())
	d.Attach("op")

	_, err := d.PickUp("op", "ghost", "v1")
	req.ErrorIs(err, apperrors.ErrNotAvailable)
}

func TestOperatorDirectory_PickUpDeadConnectionCleansQueue(t *testing.T) {
	req := require.New(t)
	d := NewOperatorDirectory(sequence())
	d.Attach("op")
	d.EnqueueWaiting("alice")

	_, err := d.PickUp("op", "alice", "")

	req.ErrorIs(err, apperrors.ErrNotAvailable)
	req.False(d.IsWaiting("alice"))
}

func TestOperatorDirectory_ClearActiveReturnsOrphanedRooms(t *testing.T) {
	req := require.New(t)
	d := NewOperatorDirectory(sequence())
	d.Attach("op")
	d.EnqueueWaiting("alice")
	room, err := d.PickUp("op", "alice", "v1")
	req.NoError(err)

	orphans := d.ClearActive()

	req.Len(orphans, 1)
	req.Equal(room.ID, orphans[0].ID)
	_, ok := d.Active()
	req.False(ok)
}
