package engine

import (
	"fmt"
	"strings"

	"campus-desk/domain"
	apperrors "campus-desk/errors"

	"github.com/google/uuid"
)

// ConnectionRegistry is pure bookkeeping: live connections, their declared
// display name, and the connID -> current room index. All room and operator
// policy is delegated to the other engine components.
//
// The room index lives here (not in RoomMatcher) so that every inbound event
// resolves its target room with a fresh lookup instead of listeners being
// rebound on room transitions.
type ConnectionRegistry struct {
	conns      map[string]*domain.Connection
	byIdentity map[string]string
	roomOf     map[string]domain.RoomID
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		conns:      make(map[string]*domain.Connection),
		byIdentity: make(map[string]string),
		roomOf:     make(map[string]domain.RoomID),
	}
}

// Register is idempotent per connection ID: a duplicate connect event for a
// live session returns the existing entry untouched.
func (r *ConnectionRegistry) Register(connID, identity, name string, operator bool) *domain.Connection {
	if c, ok := r.conns[connID]; ok {
		return c
	}
	c := &domain.Connection{ID: connID, Identity: identity, Name: name, Operator: operator}
	if strings.TrimSpace(c.Name) == "" {
		c.Name = placeholderName(connID)
	}
	r.conns[connID] = c
	if identity != "" {
		r.byIdentity[identity] = connID
	}
	return c
}

// SetDisplayName never stores a blank name; empty or whitespace input is
// substituted with a generated placeholder.
func (r *ConnectionRegistry) SetDisplayName(connID, name string) {
	c, ok := r.conns[connID]
	if !ok {
		return
	}
	if strings.TrimSpace(name) == "" {
		name = placeholderName(connID)
	}
	c.Name = name
}

// Remove is safe to call on a connection not present.
func (r *ConnectionRegistry) Remove(connID string) {
	c, ok := r.conns[connID]
	if !ok {
		return
	}
	if c.Identity != "" && r.byIdentity[c.Identity] == connID {
		delete(r.byIdentity, c.Identity)
	}
	delete(r.conns, connID)
	delete(r.roomOf, connID)
}

func (r *ConnectionRegistry) Get(connID string) (*domain.Connection, bool) {
	c, ok := r.conns[connID]
	return c, ok
}

func (r *ConnectionRegistry) ConnOf(identity string) (string, bool) {
	id, ok := r.byIdentity[identity]
	return id, ok
}

func (r *ConnectionRegistry) RoomOf(connID string) (domain.RoomID, bool) {
	id, ok := r.roomOf[connID]
	return id, ok
}

// BindRoom enforces the single-membership invariant: a connection already in
// a different room cannot be double-booked, the mutation is rejected and the
// prior state stays intact.
func (r *ConnectionRegistry) BindRoom(connID string, roomID domain.RoomID) error {
	if current, ok := r.roomOf[connID]; ok && current != roomID {
		return fmt.Errorf("%w: connection %s already in room %d", apperrors.ErrInvariantViolation, connID, current)
	}
	r.roomOf[connID] = roomID
	return nil
}

func (r *ConnectionRegistry) UnbindRoom(connID string) {
	delete(r.roomOf, connID)
}

func placeholderName(connID string) string {
	suffix := connID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	if suffix == "" {
		suffix = uuid.NewString()[:8]
	}
	return "visitor-" + suffix
}
