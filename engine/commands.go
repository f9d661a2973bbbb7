package engine

// Commands are the inbound event surface of the engine. The gateway and the
// background workers translate wire events and timer ticks into these; the
// engine processes each to completion before picking the next one.

type Command interface {
	ConnID() string
}

// Connect creates the registry entry for an authenticated transport session.
type Connect struct {
	ID       string
	Identity string
	Name     string
	Operator bool
}

func (c Connect) ConnID() string { return c.ID }

type RegisterName struct {
	ID   string
	Name string
}

func (c RegisterName) ConnID() string { return c.ID }

// AssistantTurn is a chat message addressed to the scripted assistant.
type AssistantTurn struct {
	ID        string
	MessageID string
	Content   string
}

func (c AssistantTurn) ConnID() string { return c.ID }

// AssistantReply comes back from the assistant worker once the response is
// composed off-loop.
type AssistantReply struct {
	ID       string
	Identity string
	Content  string
}

func (c AssistantReply) ConnID() string { return c.ID }

type RequestPeerMatch struct {
	ID   string
	Name string
}

func (c RequestPeerMatch) ConnID() string { return c.ID }

type RoomMessage struct {
	ID        string
	MessageID string
	Content   string
}

func (c RoomMessage) ConnID() string { return c.ID }

type OperatorAttach struct {
	ID string
}

func (c OperatorAttach) ConnID() string { return c.ID }

type OperatorPickUp struct {
	ID     string
	Target string
}

func (c OperatorPickUp) ConnID() string { return c.ID }

type LeaveRoom struct {
	ID string
}

func (c LeaveRoom) ConnID() string { return c.ID }

type Disconnect struct {
	ID string
}

func (c Disconnect) ConnID() string { return c.ID }

// Notify pushes a stored notification (and optionally a task change) to the
// identity's live connection, if any. Emitted by the task service and the
// deadline scan worker; persistence happens before dispatch.
type Notify struct {
	User           string
	NotificationID string
	Message        string
	TaskID         string
	TaskTitle      string
	TaskSubject    string
	TaskStatus     string
	TaskAction     string
}

func (c Notify) ConnID() string { return "" }
