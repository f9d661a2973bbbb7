package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"campus-desk/contract"
	"campus-desk/domain/event"
	"campus-desk/services"
	"campus-desk/sink"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// WSRequest is one client frame, routed by Event. Fields outside the routed
// event are ignored.
type WSRequest struct {
	Event     string `json:"event"`
	MessageID string `json:"messageId,omitempty"`
	Content   string `json:"content,omitempty"`
	Name      string `json:"name,omitempty"`
	Identity  string `json:"identity,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
}

type WebsocketHandler struct {
	log        *slog.Logger
	desk       services.IDeskService
	sessions   contract.ISessionRegistry
	bufferSize int
	timeout    time.Duration
}

func NewWebsocketHandler(log *slog.Logger, desk services.IDeskService,
	sessions contract.ISessionRegistry, bufferSize int, timeout time.Duration) *WebsocketHandler {
	return &WebsocketHandler{
		log:        log,
		desk:       desk,
		sessions:   sessions,
		bufferSize: bufferSize,
		timeout:    timeout,
	}
}

// Handle upgrades the connection and runs the read loop. Every transport
// session gets a fresh connection ID; identity comes from the token and may
// span several sessions.
func (h *WebsocketHandler) Handle(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()

	claims := MustClaims(c)
	connID := uuid.NewString()
	operator := claims.Role == "admin"
	h.log.Info("Websocket client connected", "conn", connID, "identity", claims.Username)

	wsSink := sink.NewWsSink(h.log, h.bufferSize, h.timeout)
	h.sessions.Attach(connID, claims.Username, wsSink)

	ctx := c.Request.Context()
	defer func() {
		// Disconnect first so the engine reconciles rooms while the
		// registry entry is still resolvable for farewell events.
		if err := h.desk.Disconnect(ctx, connID); err != nil {
			h.log.Warn("Disconnect dispatch failed", "conn", connID, "error", err)
		}
		h.sessions.Detach(connID)
		wsSink.Close()
	}()

	if err := h.desk.Connect(ctx, connID, claims.Username, claims.Name, operator); err != nil {
		h.log.Error("Connect dispatch failed", "conn", connID, "error", err)
		return
	}

	if err := ws.WriteJSON(gin.H{"event": "session_created", "connId": connID}); err != nil {
		return
	}

	writeDone := make(chan struct{})
	go h.writePump(ws, wsSink, connID, writeDone)
	// Stop the pump before waiting on it; this runs ahead of the disconnect
	// defer above, which closes the sink again harmlessly.
	defer func() {
		wsSink.Close()
		<-writeDone
	}()

	for {
		var req WSRequest
		if err := ws.ReadJSON(&req); err != nil {
			h.log.Info("Websocket client disconnected", "conn", connID, "error", err.Error())
			return
		}
		if err := h.route(c, connID, req); err != nil {
			// The pump owns the socket; errors go back through the sink.
			h.log.Warn("Rejected frame", "conn", connID, "event", req.Event, "error", err)
			_ = wsSink.Consume(ctx, event.StatusChanged{Code: event.StatusError, Text: err.Error()})
		}
	}
}

func (h *WebsocketHandler) route(c *gin.Context, connID string, req WSRequest) error {
	ctx := c.Request.Context()
	switch req.Event {
	case "register":
		return h.desk.RegisterName(ctx, connID, req.Name)
	case "assistant_message":
		return h.desk.AssistantTurn(ctx, connID, req.MessageID, req.Content)
	case "request_peer":
		return h.desk.RequestPeerMatch(ctx, connID, req.Name)
	case "room_message":
		return h.desk.RoomMessage(ctx, connID, req.MessageID, req.Content)
	case "operator_attach":
		return h.desk.OperatorAttach(ctx, connID)
	case "operator_pickup":
		return h.desk.OperatorPickUp(ctx, connID, req.Identity)
	case "leave_room":
		return h.desk.LeaveRoom(ctx, connID)
	default:
		h.log.Debug("Unknown event", "event", req.Event)
		return nil
	}
}

// writePump is the only goroutine writing to the socket after the greeting.
// Stops when the sink shuts down or the socket rejects a write.
func (h *WebsocketHandler) writePump(ws *websocket.Conn, wsSink *sink.WsSink,
	connID string, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-wsSink.Done():
			return
		case evt := <-wsSink.Out():
			if err := ws.WriteJSON(toWire(evt)); err != nil {
				h.log.Debug("Write failed, stopping pump", "conn", connID, "error", err)
				return
			}
		}
	}
}

// toWire flattens a desk event into the JSON frame the client expects.
func toWire(e event.DeskEvent) gin.H {
	frame := gin.H{"event": e.Kind()}
	switch evt := e.(type) {
	case event.StatusChanged:
		frame["code"] = evt.Code
		frame["text"] = evt.Text
	case event.ConversationStarted:
		frame["room"] = evt.Room
		frame["peerName"] = evt.PeerName
		frame["operator"] = evt.Operator
	case event.CapabilityChanged:
		frame["locked"] = evt.Locked
	case event.MessageDelivered:
		frame["id"] = evt.ID
		frame["room"] = evt.Room
		frame["from"] = evt.From
		frame["fromName"] = evt.FromName
		frame["operator"] = evt.Operator
		frame["content"] = evt.Content
		frame["at"] = evt.At
	case event.QueueSnapshot:
		frame["waiting"] = evt.Waiting
	case event.QueueUpdated:
		frame["identity"] = evt.Identity
		frame["joined"] = evt.Joined
	case event.NotificationCreated:
		frame["id"] = evt.ID
		frame["message"] = evt.Message
		frame["at"] = evt.At
	case event.TaskChanged:
		frame["taskId"] = evt.TaskID
		frame["title"] = evt.Title
		frame["subject"] = evt.Subject
		frame["status"] = evt.Status
		frame["action"] = evt.Action
	}
	return frame
}
