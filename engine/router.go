package engine

import (
	"time"

	"campus-desk/domain"
	"campus-desk/domain/event"
	apperrors "campus-desk/errors"
)

// MessageRouter turns a chat payload into a delivery event for the correct
// room, deduplicating by message identifier. The seen set grows for the
// process lifetime; its size is exported so monitoring can watch it.
type MessageRouter struct {
	seen   map[string]struct{}
	censor func(string) string
}

// NewMessageRouter takes the censor applied to every payload before
// broadcast. Pass nil to deliver payloads untouched.
func NewMessageRouter(censor func(string) string) *MessageRouter {
	if censor == nil {
		censor = func(s string) string { return s }
	}
	return &MessageRouter{seen: make(map[string]struct{}), censor: censor}
}

// Deliver resolves the broadcast targets for one message. A retransmitted
// message ID is absorbed with ErrDuplicate. Peer rooms never echo the sender
// back; operator rooms do, matching the source behavior of the escalation
// flow. A missing member is not an error, the broadcast degrades.
func (r *MessageRouter) Deliver(room *domain.Room, sender *domain.Connection,
	content, messageID string, at time.Time) (event.MessageDelivered, []string, error) {

	if !r.Remember(messageID) {
		return event.MessageDelivered{}, nil, apperrors.ErrDuplicate
	}

	var recipients []string
	for _, m := range room.Members {
		if m == sender.ID && !room.Operator {
			continue
		}
		recipients = append(recipients, m)
	}

	delivered := event.MessageDelivered{
		ID:       messageID,
		Room:     room.ID,
		From:     sender.Identity,
		FromName: sender.Name,
		Operator: sender.Operator,
		Content:  r.censor(content),
		At:       at,
	}
	return delivered, recipients, nil
}

// Remember records a message ID, reporting false when it was already seen.
// Clients may omit the ID entirely; an empty ID is never deduplicated.
func (r *MessageRouter) Remember(messageID string) bool {
	if messageID == "" {
		return true
	}
	if _, ok := r.seen[messageID]; ok {
		return false
	}
	r.seen[messageID] = struct{}{}
	return true
}

// Seen reports whether a message ID was already delivered.
func (r *MessageRouter) Seen(messageID string) bool {
	_, ok := r.seen[messageID]
	return ok
}

func (r *MessageRouter) SeenCount() int { return len(r.seen) }
