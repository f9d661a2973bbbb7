// Package engine is the session/room lifecycle core of the desk: matching
// unpaired visitors into rooms, tracking the privileged operator,
// deduplicating messages, and reconciling state on disconnect so no room or
// participant reference outlives its session.
//
// Every inbound event is a Command consumed by a single goroutine; each one
// is processed to completion before the next, so the room table, the waiting
// set and the operator slot have exactly one writer and no locking
// discipline beyond the command channel. Persistence and delivery happen on
// the event side, downstream of the loop.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"campus-desk/domain"
	"campus-desk/domain/event"
	apperrors "campus-desk/errors"
	"campus-desk/observability"
)

type Engine struct {
	log        *slog.Logger
	registry   *ConnectionRegistry
	escalation *EscalationTracker
	matcher    *RoomMatcher
	operators  *OperatorDirectory
	router     *MessageRouter
	monitor    *observability.Monitor

	commands chan Command
	events   chan event.Envelope
	prompts  chan event.AssistantPrompt

	roomSeq domain.RoomID
	now     func() time.Time
}

// New wires the six engine components around a shared room ID sequence.
// State is owned here, injected nowhere else; a fresh Engine per test gives a
// fresh world.
func New(log *slog.Logger, turnLimit, bufferSize int,
	censor func(string) string, monitor *observability.Monitor) *Engine {

	e := &Engine{
		log:        log,
		escalation: NewEscalationTracker(turnLimit),
		registry:   NewConnectionRegistry(),
		router:     NewMessageRouter(censor),
		monitor:    monitor,
		commands:   make(chan Command, bufferSize),
		events:     make(chan event.Envelope, bufferSize),
		prompts:    make(chan event.AssistantPrompt, bufferSize),
		now:        time.Now,
	}
	e.matcher = NewRoomMatcher(e.nextRoomID)
	e.operators = NewOperatorDirectory(e.nextRoomID)
	return e
}

func (e *Engine) nextRoomID() domain.RoomID {
	e.roomSeq++
	return e.roomSeq
}

// Events is consumed by the fanout worker.
func (e *Engine) Events() <-chan event.Envelope { return e.events }

// Prompts is consumed by the assistant worker.
func (e *Engine) Prompts() <-chan event.AssistantPrompt { return e.prompts }

// Dispatch queues a command behind whatever is in flight. A disconnect
// arriving while another command for the same connection is being handled is
// therefore processed after it, never concurrently.
func (e *Engine) Dispatch(ctx context.Context, cmd Command) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case e.commands <- cmd:
		return nil
	}
}

// Run implements contract.Worker.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			e.log.Debug("Stopping engine loop")
			return ctx.Err()
		case cmd, ok := <-e.commands:
			if !ok {
				return nil
			}
			e.process(ctx, cmd)
		}
	}
}

func (e *Engine) process(ctx context.Context, cmd Command) {
	switch c := cmd.(type) {
	case Connect:
		e.handleConnect(c)
	case RegisterName:
		e.registry.SetDisplayName(c.ID, c.Name)
	case AssistantTurn:
		e.handleAssistantTurn(ctx, c)
	case AssistantReply:
		e.handleAssistantReply(ctx, c)
	case RequestPeerMatch:
		e.handlePeerMatch(ctx, c)
	case RoomMessage:
		e.handleRoomMessage(ctx, c)
	case OperatorAttach:
		e.handleOperatorAttach(ctx, c)
	case OperatorPickUp:
		e.handlePickUp(ctx, c)
	case LeaveRoom:
		e.reconcileRoomExit(ctx, c.ID, true)
	case Disconnect:
		e.handleDisconnect(ctx, c)
	case Notify:
		e.handleNotify(ctx, c)
	default:
		e.log.Warn("Unknown command dropped", "command", cmd)
	}
}

func (e *Engine) emit(ctx context.Context, to []string, evt event.DeskEvent) {
	select {
	case <-ctx.Done():
	case e.events <- event.Envelope{To: to, Event: evt}:
	}
}

func (e *Engine) status(ctx context.Context, connID, code, text string) {
	e.emit(ctx, []string{connID}, event.StatusChanged{Code: code, Text: text})
}

func (e *Engine) handleConnect(c Connect) {
	if _, ok := e.registry.Get(c.ID); ok {
		return
	}
	e.registry.Register(c.ID, c.Identity, c.Name, c.Operator)
	e.monitor.AddConnections(1)
}

// handleAssistantTurn persists the visitor message (via the fanout sinks),
// counts the turn and either prompts the assistant or, once the budget is
// exhausted, pushes the identity into the operator queue. The limit crossing
// enqueues exactly once; later turns only remind the visitor they are
// waiting.
func (e *Engine) handleAssistantTurn(ctx context.Context, c AssistantTurn) {
	conn, ok := e.registry.Get(c.ID)
	if !ok {
		return
	}
	if conn.Identity == "" {
		e.status(ctx, c.ID, event.StatusError, "identity required for assistant chat")
		return
	}
	if c.MessageID != "" && !e.router.Remember(c.MessageID) {
		e.monitor.IncrDuplicates()
		return
	}

	// Echoed back to the sender and recorded by the permanent sinks, like
	// any other chat line.
	e.emit(ctx, []string{c.ID}, event.MessageDelivered{
		ID:       c.MessageID,
		From:     conn.Identity,
		FromName: conn.Name,
		Content:  c.Content,
		At:       e.now().UTC(),
	})
	e.monitor.IncrDelivered()
	e.monitor.SetSeenIDs(int64(e.router.SeenCount()))

	res := e.escalation.RecordTurn(conn.Identity)
	switch {
	case res.JustReachedLimit:
		e.monitor.IncrEscalations()
		// The assistant still answers this turn with its hand-off script.
		e.prompt(ctx, conn, c.Content, res.Count)
		e.status(ctx, c.ID, event.StatusAssistantExhausted, "assistant turns exhausted, an operator has been notified")
		e.enqueueWaiting(ctx, conn.Identity)
	case e.escalation.Saturated(conn.Identity):
		e.status(ctx, c.ID, event.StatusWaitingOperator, "an operator will pick up your conversation")
	default:
		e.prompt(ctx, conn, c.Content, res.Count)
	}
}

func (e *Engine) prompt(ctx context.Context, conn *domain.Connection, content string, turn int) {
	select {
	case <-ctx.Done():
	case e.prompts <- event.AssistantPrompt{ConnID: conn.ID, Identity: conn.Identity, Content: content, Turn: turn}:
	}
}

// handleAssistantReply re-validates that the visitor is still connected: the
// assistant worker runs off-loop and the session may have died in between.
func (e *Engine) handleAssistantReply(ctx context.Context, c AssistantReply) {
	conn, ok := e.registry.Get(c.ID)
	if !ok || conn.Identity != c.Identity {
		return
	}
	e.emit(ctx, []string{c.ID}, event.MessageDelivered{
		From:     "assistant",
		FromName: "Assistant",
		Content:  c.Content,
		At:       e.now().UTC(),
	})
	e.monitor.IncrDelivered()
}

func (e *Engine) handlePeerMatch(ctx context.Context, c RequestPeerMatch) {
	if _, ok := e.registry.Get(c.ID); !ok {
		return
	}
	if c.Name != "" {
		e.registry.SetDisplayName(c.ID, c.Name)
	}
	// The matcher trusts this check; it is the caller's job.
	if _, busy := e.registry.RoomOf(c.ID); busy {
		e.status(ctx, c.ID, event.StatusError, "already in a conversation")
		return
	}

	room, role, err := e.matcher.RequestPeerMatch(c.ID)
	if err != nil {
		e.log.Error("Peer match rejected", "conn_id", c.ID, "error", err)
		e.status(ctx, c.ID, event.StatusError, "matching failed, please retry")
		return
	}
	if err := e.registry.BindRoom(c.ID, room.ID); err != nil {
		// Reject the mutation, leave prior state intact.
		room.Leave(c.ID)
		if room.Empty() {
			e.matcher.Remove(room.ID)
		}
		e.log.Error("Room binding rejected", "conn_id", c.ID, "error", err)
		e.status(ctx, c.ID, event.StatusError, "matching failed, please retry")
		return
	}

	if role == RoleWaiting {
		e.monitor.AddRooms(1)
		e.status(ctx, c.ID, event.StatusWaitingPeer, "waiting for another visitor")
		return
	}

	// Second seat taken: both participants learn the conversation started
	// and their peer-match capability locks until the room releases them.
	for _, member := range room.Members {
		other, _ := room.Other(member)
		otherName := ""
		if oc, ok := e.registry.Get(other); ok {
			otherName = oc.Name
		}
		e.emit(ctx, []string{member}, event.ConversationStarted{Room: room.ID, PeerName: otherName})
		e.emit(ctx, []string{member}, event.CapabilityChanged{Locked: true})
	}
}

func (e *Engine) handleRoomMessage(ctx context.Context, c RoomMessage) {
	conn, ok := e.registry.Get(c.ID)
	if !ok {
		return
	}
	roomID, ok := e.registry.RoomOf(c.ID)
	if !ok {
		e.status(ctx, c.ID, event.StatusError, "no active conversation")
		return
	}
	room, ok := e.roomByID(roomID)
	if !ok {
		// Stale index entry; repair instead of corrupting further.
		e.registry.UnbindRoom(c.ID)
		e.status(ctx, c.ID, event.StatusError, "no active conversation")
		return
	}

	delivered, recipients, err := e.router.Deliver(room, conn, c.Content, c.MessageID, e.now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			e.monitor.IncrDuplicates()
			return
		}
		e.status(ctx, c.ID, event.StatusError, "delivery failed")
		return
	}
	e.emit(ctx, recipients, delivered)
	e.monitor.IncrDelivered()
	e.monitor.SetSeenIDs(int64(e.router.SeenCount()))
}

func (e *Engine) handleOperatorAttach(ctx context.Context, c OperatorAttach) {
	conn, ok := e.registry.Get(c.ID)
	if !ok {
		return
	}
	if !conn.Operator {
		e.status(ctx, c.ID, event.StatusError, "operator privilege required")
		return
	}
	previous := e.operators.Attach(c.ID)
	if previous != "" && previous != c.ID {
		e.status(ctx, previous, event.StatusOperatorReplaced, "another operator took over the desk")
	}
	e.emit(ctx, []string{c.ID}, event.QueueSnapshot{Waiting: e.operators.Snapshot()})
}

func (e *Engine) handlePickUp(ctx context.Context, c OperatorPickUp) {
	active, ok := e.operators.Active()
	if !ok || active != c.ID {
		e.status(ctx, c.ID, event.StatusError, "not the active operator")
		return
	}

	visitorConn, _ := e.registry.ConnOf(c.Target)
	if visitorConn != "" {
		if _, busy := e.registry.RoomOf(visitorConn); busy {
			e.status(ctx, c.ID, event.StatusNotAvailable, c.Target+" is no longer waiting")
			return
		}
	}
	room, err := e.operators.PickUp(c.ID, c.Target, visitorConn)
	if err != nil {
		// Recoverable race: the visitor vanished between notification and
		// pickup. The operator gets a status line, nothing more.
		e.status(ctx, c.ID, event.StatusNotAvailable, c.Target+" is no longer waiting")
		e.monitor.SetWaiting(int64(len(e.operators.Snapshot())))
		return
	}
	if err := e.bindOperatorRoom(room, c.ID, visitorConn); err != nil {
		// Roll back: the visitor goes back to the queue instead of being
		// silently dropped from it.
		e.operators.CloseRoom(room.ID)
		e.operators.EnqueueWaiting(c.Target)
		e.log.Error("Pickup binding rejected", "room_id", room.ID, "error", err)
		e.status(ctx, c.ID, event.StatusError, "pickup failed")
		return
	}

	e.monitor.AddRooms(1)
	e.monitor.SetWaiting(int64(len(e.operators.Snapshot())))
	visitorName := c.Target
	if vc, ok := e.registry.Get(visitorConn); ok {
		visitorName = vc.Name
	}
	operatorName := ""
	if oc, ok := e.registry.Get(c.ID); ok {
		operatorName = oc.Name
	}
	e.emit(ctx, []string{c.ID}, event.ConversationStarted{Room: room.ID, PeerName: visitorName, Operator: true})
	e.emit(ctx, []string{c.ID}, event.QueueUpdated{Identity: c.Target, Joined: false})
	e.emit(ctx, []string{visitorConn}, event.ConversationStarted{Room: room.ID, PeerName: operatorName, Operator: true})
	e.emit(ctx, []string{visitorConn}, event.CapabilityChanged{Locked: true})
}

func (e *Engine) bindOperatorRoom(room *domain.Room, operatorConn, visitorConn string) error {
	if err := e.registry.BindRoom(operatorConn, room.ID); err != nil {
		return err
	}
	if err := e.registry.BindRoom(visitorConn, room.ID); err != nil {
		e.registry.UnbindRoom(operatorConn)
		return err
	}
	return nil
}

// handleDisconnect is the reconciler: idempotent, and safe when steps find
// no matching state (a connection may disconnect having done nothing more
// than connect).
func (e *Engine) handleDisconnect(ctx context.Context, c Disconnect) {
	conn, ok := e.registry.Get(c.ID)
	if !ok {
		return
	}

	// The vanished operator first: every assigned operator room is orphaned
	// and its visitor goes back to the queue rather than being left in a
	// room with nobody on the other side.
	if active, ok := e.operators.Active(); ok && active == c.ID {
		for _, room := range e.operators.ClearActive() {
			e.closeOperatorRoomFor(ctx, room, c.ID, event.StatusOperatorDisconnected, true)
		}
	}

	if e.operators.RemoveWaiting(conn.Identity) {
		e.pushQueueUpdate(ctx, conn.Identity, false)
	}
	e.monitor.SetWaiting(int64(len(e.operators.Snapshot())))

	e.reconcileRoomExit(ctx, c.ID, false)

	e.registry.Remove(c.ID)
	e.monitor.AddConnections(-1)
}

// reconcileRoomExit handles both the explicit leave and the abrupt close.
// Peer rooms are dissolved entirely: the survivor is notified, unlocked and
// free to request a new match, so no half-empty room lingers in the table.
func (e *Engine) reconcileRoomExit(ctx context.Context, connID string, voluntary bool) {
	roomID, ok := e.registry.RoomOf(connID)
	if !ok {
		return
	}

	if room, ok := e.matcher.Room(roomID); ok {
		room.Leave(connID)
		e.registry.UnbindRoom(connID)
		if voluntary {
			e.emit(ctx, []string{connID}, event.CapabilityChanged{Locked: false})
		}
		if !room.Empty() {
			survivor := room.Members[0]
			room.Leave(survivor)
			e.registry.UnbindRoom(survivor)
			e.status(ctx, survivor, event.StatusPeerDisconnected, "the other visitor left the conversation")
			e.emit(ctx, []string{survivor}, event.CapabilityChanged{Locked: false})
		}
		e.matcher.Remove(roomID)
		e.monitor.AddRooms(-1)
		return
	}

	if room, ok := e.operators.Room(roomID); ok {
		operatorSide := false
		if conn, ok := e.registry.Get(connID); ok {
			operatorSide = conn.Operator
		}
		code := event.StatusPeerDisconnected
		if operatorSide {
			code = event.StatusOperatorDisconnected
		}
		e.closeOperatorRoomFor(ctx, room, connID, code, operatorSide)
		if voluntary && !operatorSide {
			e.emit(ctx, []string{connID}, event.CapabilityChanged{Locked: false})
		}
	}
}

// closeOperatorRoomFor applies the release semantics: close the room, unlock
// the surviving party, and re-queue an escalated visitor when the release
// came from the operator side (the observed default).
func (e *Engine) closeOperatorRoomFor(ctx context.Context, room *domain.Room,
	leaver, survivorCode string, requeue bool) {

	survivor, hasSurvivor := room.Other(leaver)
	for _, m := range room.Members {
		e.registry.UnbindRoom(m)
	}
	e.operators.CloseRoom(room.ID)
	e.monitor.AddRooms(-1)

	if !hasSurvivor {
		return
	}
	sc, ok := e.registry.Get(survivor)
	if !ok {
		return
	}
	if sc.Operator {
		e.status(ctx, survivor, event.StatusPeerDisconnected, "the visitor left the conversation")
		return
	}
	e.status(ctx, survivor, survivorCode, "you have been returned to the operator queue")
	e.emit(ctx, []string{survivor}, event.CapabilityChanged{Locked: false})
	if requeue && e.escalation.Saturated(sc.Identity) {
		e.enqueueWaiting(ctx, sc.Identity)
	}
}

// enqueueWaiting adds the identity unless it is already queued or already
// sitting in an operator room, and pushes the incremental update to the
// attached operator.
func (e *Engine) enqueueWaiting(ctx context.Context, identity string) {
	if connID, ok := e.registry.ConnOf(identity); ok {
		if roomID, busy := e.registry.RoomOf(connID); busy {
			if _, operatorRoom := e.operators.Room(roomID); operatorRoom {
				return
			}
		}
	}
	if e.operators.EnqueueWaiting(identity) {
		e.pushQueueUpdate(ctx, identity, true)
	}
	e.monitor.SetWaiting(int64(len(e.operators.Snapshot())))
}

func (e *Engine) pushQueueUpdate(ctx context.Context, identity string, joined bool) {
	if active, ok := e.operators.Active(); ok {
		e.emit(ctx, []string{active}, event.QueueUpdated{Identity: identity, Joined: joined})
	}
}

func (e *Engine) handleNotify(ctx context.Context, c Notify) {
	connID, ok := e.registry.ConnOf(c.User)
	if !ok {
		return
	}
	e.emit(ctx, []string{connID}, event.NotificationCreated{
		ID:      c.NotificationID,
		Message: c.Message,
		User:    c.User,
		At:      e.now().UTC(),
	})
	if c.TaskID != "" {
		e.emit(ctx, []string{connID}, event.TaskChanged{
			TaskID:  c.TaskID,
			Title:   c.TaskTitle,
			Subject: c.TaskSubject,
			Status:  c.TaskStatus,
			Action:  c.TaskAction,
		})
	}
}

func (e *Engine) roomByID(id domain.RoomID) (*domain.Room, bool) {
	if room, ok := e.matcher.Room(id); ok {
		return room, true
	}
	return e.operators.Room(id)
}
