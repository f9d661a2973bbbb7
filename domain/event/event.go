// Package event defines what the engine publishes to connected clients and
// to permanent sinks (persistence, search index, telemetry).
package event

import (
	"time"

	"campus-desk/domain"
)

type DeskEvent interface {
	Kind() string
}

// Envelope pairs an event with the connection IDs it must reach. Permanent
// sinks receive the event exactly once regardless of the recipient count.
type Envelope struct {
	To    []string
	Event DeskEvent
}

// Status codes carried by StatusChanged. The wire values are part of the
// client contract.
const (
	StatusWaitingPeer          = "waiting_peer"
	StatusPeerDisconnected     = "peer_disconnected"
	StatusOperatorDisconnected = "operator_disconnected"
	StatusAssistantExhausted   = "assistant_limit_reached"
	StatusWaitingOperator      = "waiting_operator"
	StatusNotAvailable         = "not_available"
	StatusOperatorReplaced     = "operator_replaced"
	StatusError                = "error"
)

type StatusChanged struct {
	Code string
	Text string
}

func (StatusChanged) Kind() string { return "status" }

type ConversationStarted struct {
	Room     domain.RoomID
	PeerName string
	Operator bool
}

func (ConversationStarted) Kind() string { return "conversation_started" }

// CapabilityChanged toggles the peer-match capability: locked while the
// participant sits in any room, unlocked when the room releases them.
type CapabilityChanged struct {
	Locked bool
}

func (CapabilityChanged) Kind() string { return "capability" }

type MessageDelivered struct {
	ID       string
	Room     domain.RoomID
	From     string
	FromName string
	Operator bool
	Content  string
	At       time.Time
}

func (MessageDelivered) Kind() string { return "message" }

// QueueSnapshot is pushed to a freshly attached operator; QueueUpdated is the
// incremental form sent on every waiting-set change afterwards.
type QueueSnapshot struct {
	Waiting []string
}

func (QueueSnapshot) Kind() string { return "queue_snapshot" }

type QueueUpdated struct {
	Identity string
	Joined   bool
}

func (QueueUpdated) Kind() string { return "queue_updated" }

// AssistantPrompt leaves the engine loop for the assistant worker, which
// composes a reply off-loop and dispatches it back as a command.
type AssistantPrompt struct {
	ConnID   string
	Identity string
	Content  string
	Turn     int
}

func (AssistantPrompt) Kind() string { return "assistant_prompt" }

type NotificationCreated struct {
	ID      string
	Message string
	User    string
	At      time.Time
}

func (NotificationCreated) Kind() string { return "notification" }

type TaskChanged struct {
	TaskID  string
	Title   string
	Subject string
	Status  string
	Action  string // created | updated | deleted
}

func (TaskChanged) Kind() string { return "task_changed" }
