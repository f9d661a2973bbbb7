package domain

import (
	apperrors "campus-desk/errors"
)

type RoomID int64

// MaxRoomMembers is a hard cap: a desk conversation is always two-party.
const MaxRoomMembers = 2

// Room holds at most two connection IDs, in join order. Operator rooms are
// created by escalation pickup, peer rooms by anonymous matching.
type Room struct {
	ID       RoomID
	Members  []string
	Operator bool
}

func NewRoom(id RoomID, operator bool, first string) *Room {
	return &Room{ID: id, Operator: operator, Members: []string{first}}
}

// Join seats a second participant. Rejecting the mutation (instead of
// corrupting the member list) is the contract for invariant violations.
func (r *Room) Join(connID string) error {
	if len(r.Members) >= MaxRoomMembers {
		return apperrors.ErrInvariantViolation
	}
	if r.Has(connID) {
		return apperrors.ErrInvariantViolation
	}
	r.Members = append(r.Members, connID)
	return nil
}

func (r *Room) Has(connID string) bool {
	for _, m := range r.Members {
		if m == connID {
			return true
		}
	}
	return false
}

// Leave removes a participant and reports whether it was present.
func (r *Room) Leave(connID string) bool {
	for i, m := range r.Members {
		if m == connID {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return true
		}
	}
	return false
}

// Other returns the remaining member once connID is taken out of the picture.
func (r *Room) Other(connID string) (string, bool) {
	for _, m := range r.Members {
		if m != connID {
			return m, true
		}
	}
	return "", false
}

func (r *Room) Empty() bool { return len(r.Members) == 0 }
func (r *Room) Full() bool  { return len(r.Members) >= MaxRoomMembers }
