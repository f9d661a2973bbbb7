package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEscalationTracker_EdgeFiresExactlyOnce(t *testing.T) {
	req := require.New(t)
	tracker := NewEscalationTracker(3)

	req.False(tracker.RecordTurn("alice").JustReachedLimit)
	req.False(tracker.RecordTurn("alice").JustReachedLimit)

	// The limit crossing fires on this turn only
	res := tracker.RecordTurn("alice")
	req.True(res.JustReachedLimit)
	req.Equal(3, res.Count)
	req.True(tracker.Saturated("alice"))

	// Saturated: the count no longer moves and the edge never re-fires
	res = tracker.RecordTurn("alice")
	req.False(res.JustReachedLimit)
	req.Equal(3, res.Count)
}

func TestEscalationTracker_IdentitiesAreIndependent(t *testing.T) {
	req := require.New(t)
	tracker := NewEscalationTracker(2)

	tracker.RecordTurn("alice")
	tracker.RecordTurn("alice")
	req.True(tracker.Saturated("alice"))
	req.False(tracker.Saturated("bob"))

	res := tracker.RecordTurn("bob")
	req.Equal(1, res.Count)
}

func TestEscalationTracker_EmptyIdentityIgnored(t *testing.T) {
	req := require.New(t)
	tracker := NewEscalationTracker(1)

	res := tracker.RecordTurn("")
	req.Equal(0, res.Count)
	req.False(res.JustReachedLimit)
	req.False(tracker.Saturated(""))
}

func TestEscalationTracker_TracksLastInteraction(t *testing.T) {
	req := require.New(t)
	tracker := NewEscalationTracker(5)
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return frozen }

	tracker.RecordTurn("alice")

	req.Equal(frozen, tracker.states["alice"].LastInteraction)
}
