//go:generate go run go.uber.org/mock/mockgen -source=index.go -destination=../mocks/mock_chat_index.go -package=mocks

// Package search maintains the full-text index over delivered chat messages.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"campus-desk/domain"

	"github.com/blugelabs/bluge"
)

type IChatIndex interface {
	Index(message domain.Message) error
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

// Hit is one search result. Content comes back from the stored fields, so
// the caller does not need a second lookup in badger.
type Hit struct {
	MessageID string        `json:"messageId"`
	Room      domain.RoomID `json:"room"`
	From      string        `json:"from"`
	Content   string        `json:"content"`
	At        time.Time     `json:"at"`
}

type ChatIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewChatIndex(writer *bluge.Writer, log *slog.Logger) *ChatIndex {
	return &ChatIndex{writer: writer, log: log}
}

// Index upserts one message document, keyed by message id so a redelivery
// never duplicates a hit.
func (c *ChatIndex) Index(message domain.Message) error {
	doc := bluge.NewDocument(message.ID).
		AddField(bluge.NewTextField("content", message.Content).StoreValue()).
		AddField(bluge.NewKeywordField("from", message.From).StoreValue()).
		AddField(bluge.NewKeywordField("room", strconv.FormatInt(int64(message.Room), 10)).StoreValue()).
		AddField(bluge.NewDateTimeField("at", message.At).StoreValue())
	if err := c.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("failed to index message %s: %w", message.ID, err)
	}
	return nil
}

func (c *ChatIndex) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	reader, err := c.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("failed to open index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			c.log.Warn("Failed to close index reader", "error", err)
		}
	}()

	match := bluge.NewMatchQuery(query).SetField("content")
	request := bluge.NewTopNSearch(limit, match).SortBy([]string{"-_score"})
	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var hits []Hit
	for {
		next, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}
		var hit Hit
		err = next.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "content":
				hit.Content = string(value)
			case "from":
				hit.From = string(value)
			case "room":
				if id, err := strconv.ParseInt(string(value), 10, 64); err == nil {
					hit.Room = domain.RoomID(id)
				}
			case "at":
				if at, err := bluge.DecodeDateTime(value); err == nil {
					hit.At = at
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
