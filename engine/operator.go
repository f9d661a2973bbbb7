package engine

import (
	"fmt"

	"campus-desk/domain"
	apperrors "campus-desk/errors"
)

// OperatorDirectory owns the single active operator connection, the set of
// escalated identities awaiting pickup, and the operator rooms. An identity
// leaves the waiting set either by being picked up or by disconnecting,
// never silently.
type OperatorDirectory struct {
	active     string
	waiting    []string
	waitingSet map[string]struct{}
	rooms      map[domain.RoomID]*domain.Room
	nextID     func() domain.RoomID
}

func NewOperatorDirectory(nextID func() domain.RoomID) *OperatorDirectory {
	return &OperatorDirectory{
		waitingSet: make(map[string]struct{}),
		rooms:      make(map[domain.RoomID]*domain.Room),
		nextID:     nextID,
	}
}

// Attach sets the active operator, replacing any previous one, and returns
// the replaced connection ID (empty when there was none).
func (d *OperatorDirectory) Attach(connID string) string {
	previous := d.active
	d.active = connID
	return previous
}

func (d *OperatorDirectory) Active() (string, bool) {
	return d.active, d.active != ""
}

// ClearActive drops the operator slot and hands back the now-orphaned
// operator rooms so the caller can reconcile their visitors.
func (d *OperatorDirectory) ClearActive() []*domain.Room {
	d.active = ""
	orphans := make([]*domain.Room, 0, len(d.rooms))
	for _, room := range d.rooms {
		orphans = append(orphans, room)
	}
	return orphans
}

// EnqueueWaiting adds the identity unless it is already queued. Reports
// whether the set changed.
func (d *OperatorDirectory) EnqueueWaiting(identity string) bool {
	if identity == "" {
		return false
	}
	if _, ok := d.waitingSet[identity]; ok {
		return false
	}
	d.waitingSet[identity] = struct{}{}
	d.waiting = append(d.waiting, identity)
	return true
}

// RemoveWaiting drops an identity from the queue (pickup or disconnect).
func (d *OperatorDirectory) RemoveWaiting(identity string) bool {
	if _, ok := d.waitingSet[identity]; !ok {
		return false
	}
	delete(d.waitingSet, identity)
	for i, w := range d.waiting {
		if w == identity {
			d.waiting = append(d.waiting[:i], d.waiting[i+1:]...)
			break
		}
	}
	return true
}

func (d *OperatorDirectory) IsWaiting(identity string) bool {
	_, ok := d.waitingSet[identity]
	return ok
}

// Snapshot returns the queue in arrival order.
func (d *OperatorDirectory) Snapshot() []string {
	out := make([]string, len(d.waiting))
	copy(out, d.waiting)
	return out
}

// PickUp moves a waiting identity into a fresh operator room. The race where
// the identity disconnected between notification and pickup surfaces as
// ErrNotAvailable, a recoverable status for the operator, not a fault.
func (d *OperatorDirectory) PickUp(operatorConnID, identity, visitorConnID string) (*domain.Room, error) {
	if !d.IsWaiting(identity) {
		return nil, apperrors.ErrNotAvailable
	}
	if visitorConnID == "" {
		// Queued but no live connection anymore; clean up and report.
		d.RemoveWaiting(identity)
		return nil, apperrors.ErrNotAvailable
	}
	d.RemoveWaiting(identity)
	room := domain.NewRoom(d.nextID(), true, operatorConnID)
	if err := room.Join(visitorConnID); err != nil {
		return nil, fmt.Errorf("operator room %d: %w", room.ID, err)
	}
	d.rooms[room.ID] = room
	return room, nil
}

func (d *OperatorDirectory) Room(id domain.RoomID) (*domain.Room, bool) {
	room, ok := d.rooms[id]
	return room, ok
}

func (d *OperatorDirectory) CloseRoom(id domain.RoomID) {
	delete(d.rooms, id)
}
