//go:generate go run go.uber.org/mock/mockgen -source=chat.go -destination=../mocks/mock_chat_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"time"

	"campus-desk/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

type IChatRepository interface {
	Append(message domain.Message) error
	GetMessages(room domain.RoomID, cursor *string) ([]domain.Message, *string, error)
}

type chatRecord struct {
	ID       string    `cbor:"1,keyasint"`
	Room     int64     `cbor:"2,keyasint"`
	From     string    `cbor:"3,keyasint"`
	FromName string    `cbor:"4,keyasint"`
	Operator bool      `cbor:"5,keyasint"`
	Content  string    `cbor:"6,keyasint"`
	At       time.Time `cbor:"7,keyasint"`
}

// ChatRepository appends delivered messages, best-effort. The key is
// "chat:{room}:{timestamp_padded}:{message_id}":
//  1. 19-digit zero padding keeps chronological order lexicographic.
//  2. The message id disambiguates two messages in the same nanosecond.
type ChatRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewChatRepository(db *badger.DB, log *slog.Logger, limitMessages *int) ChatRepository {
	return ChatRepository{db: db, log: log, limitMessages: limitMessages}
}

func (c ChatRepository) Append(message domain.Message) error {
	key := fmt.Sprintf("chat:%d:%019d:%s", message.Room, message.At.UnixNano(), message.ID)
	data, err := cbor.Marshal(chatRecord{
		ID:       message.ID,
		Room:     int64(message.Room),
		From:     message.From,
		FromName: message.FromName,
		Operator: message.Operator,
		Content:  message.Content,
		At:       message.At,
	})
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// GetMessages pages backwards through a room's history, newest first. The
// returned cursor resumes the next page.
func (c ChatRepository) GetMessages(room domain.RoomID, cursor *string) ([]domain.Message, *string, error) {
	var raw [][]byte
	var lastKey string
	err := c.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("chat:%d:", room)
		prefix := []byte(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		if cursor == nil {
			seekKey = append(prefix, []byte("9999999999999999999")...)
		} else {
			seekKey = append(prefix, []byte(*cursor)...)
		}
		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if c.limitMessages != nil && len(raw) == *c.limitMessages {
				c.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *c.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefixStr):])
			err := item.Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		var record chatRecord
		if err := cbor.Unmarshal(b, &record); err != nil {
			return nil, nil, err
		}
		messages = append(messages, domain.Message{
			ID:       record.ID,
			Room:     domain.RoomID(record.Room),
			From:     record.From,
			FromName: record.FromName,
			Operator: record.Operator,
			Content:  record.Content,
			At:       record.At,
		})
	}
	return messages, &lastKey, nil
}
