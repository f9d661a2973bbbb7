package engine

import (
	"campus-desk/domain"
)

type MatchRole string

const (
	RoleWaiting MatchRole = "waiting"
	RoleJoined  MatchRole = "joined"
)

// RoomMatcher pairs a waiting connection with another waiting connection, or
// opens a new pending peer room. It owns peer rooms only; operator rooms
// live in the OperatorDirectory.
//
// The matcher trusts its caller on the "not already in a room" precondition;
// the membership index is the ConnectionRegistry's job.
type RoomMatcher struct {
	rooms  map[domain.RoomID]*domain.Room
	order  []domain.RoomID
	nextID func() domain.RoomID
}

func NewRoomMatcher(nextID func() domain.RoomID) *RoomMatcher {
	return &RoomMatcher{
		rooms:  make(map[domain.RoomID]*domain.Room),
		nextID: nextID,
	}
}

// RequestPeerMatch scans peer rooms in creation order for the first one with
// a free seat. The linear scan is intentional: room counts are bounded by
// concurrent visitor count and first-fit preserves FIFO fairness for waiting
// visitors. When no seat exists a fresh room is opened with the caller as
// sole, initiating member.
func (m *RoomMatcher) RequestPeerMatch(connID string) (*domain.Room, MatchRole, error) {
	for _, id := range m.order {
		room, ok := m.rooms[id]
		if !ok || room.Full() {
			continue
		}
		if err := room.Join(connID); err != nil {
			return nil, "", err
		}
		return room, RoleJoined, nil
	}
	room := domain.NewRoom(m.nextID(), false, connID)
	m.rooms[room.ID] = room
	m.order = append(m.order, room.ID)
	return room, RoleWaiting, nil
}

func (m *RoomMatcher) Room(id domain.RoomID) (*domain.Room, bool) {
	room, ok := m.rooms[id]
	return room, ok
}

// Remove deletes a room. A deleted room ID is never reused; the order slice
// is compacted lazily when it accumulates holes.
func (m *RoomMatcher) Remove(id domain.RoomID) {
	delete(m.rooms, id)
	if len(m.order) > 2*len(m.rooms)+8 {
		kept := m.order[:0]
		for _, rid := range m.order {
			if _, ok := m.rooms[rid]; ok {
				kept = append(kept, rid)
			}
		}
		m.order = kept
	}
}

func (m *RoomMatcher) Len() int { return len(m.rooms) }
