package services

import (
	"context"

	"campus-desk/domain"
	"campus-desk/engine"
	"campus-desk/repositories"
)

// IDeskService is the gateway's view of the chat core: every wire event maps
// to one dispatch into the serialized engine loop, plus read access to the
// stored history.
type IDeskService interface {
	Connect(ctx context.Context, connID, identity, name string, operator bool) error
	Disconnect(ctx context.Context, connID string) error
	RegisterName(ctx context.Context, connID, name string) error
	AssistantTurn(ctx context.Context, connID, messageID, content string) error
	RequestPeerMatch(ctx context.Context, connID, name string) error
	RoomMessage(ctx context.Context, connID, messageID, content string) error
	OperatorAttach(ctx context.Context, connID string) error
	OperatorPickUp(ctx context.Context, connID, target string) error
	LeaveRoom(ctx context.Context, connID string) error
	History(room domain.RoomID, cursor *string) ([]domain.Message, *string, error)
}

type DeskService struct {
	engine *engine.Engine
	chats  repositories.IChatRepository
}

func NewDeskService(e *engine.Engine, chats repositories.IChatRepository) *DeskService {
	return &DeskService{engine: e, chats: chats}
}

func (s *DeskService) Connect(ctx context.Context, connID, identity, name string, operator bool) error {
	return s.engine.Dispatch(ctx, engine.Connect{ID: connID, Identity: identity, Name: name, Operator: operator})
}

func (s *DeskService) Disconnect(ctx context.Context, connID string) error {
	return s.engine.Dispatch(ctx, engine.Disconnect{ID: connID})
}

func (s *DeskService) RegisterName(ctx context.Context, connID, name string) error {
	return s.engine.Dispatch(ctx, engine.RegisterName{ID: connID, Name: name})
}

func (s *DeskService) AssistantTurn(ctx context.Context, connID, messageID, content string) error {
	return s.engine.Dispatch(ctx, engine.AssistantTurn{ID: connID, MessageID: messageID, Content: content})
}

func (s *DeskService) RequestPeerMatch(ctx context.Context, connID, name string) error {
	return s.engine.Dispatch(ctx, engine.RequestPeerMatch{ID: connID, Name: name})
}

func (s *DeskService) RoomMessage(ctx context.Context, connID, messageID, content string) error {
	return s.engine.Dispatch(ctx, engine.RoomMessage{ID: connID, MessageID: messageID, Content: content})
}

func (s *DeskService) OperatorAttach(ctx context.Context, connID string) error {
	return s.engine.Dispatch(ctx, engine.OperatorAttach{ID: connID})
}

func (s *DeskService) OperatorPickUp(ctx context.Context, connID, target string) error {
	return s.engine.Dispatch(ctx, engine.OperatorPickUp{ID: connID, Target: target})
}

func (s *DeskService) LeaveRoom(ctx context.Context, connID string) error {
	return s.engine.Dispatch(ctx, engine.LeaveRoom{ID: connID})
}

func (s *DeskService) History(room domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	return s.chats.GetMessages(room, cursor)
}
