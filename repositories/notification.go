//go:generate go run go.uber.org/mock/mockgen -source=notification.go -destination=../mocks/mock_notification_repository.go -package=mocks
package repositories

import (
	"fmt"
	"time"

	"campus-desk/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type INotificationRepository interface {
	Store(notification domain.Notification) (domain.Notification, error)
	ListForUser(username string) ([]domain.Notification, error)
}

type notificationRecord struct {
	ID        string    `cbor:"1,keyasint"`
	Message   string    `cbor:"2,keyasint"`
	User      string    `cbor:"3,keyasint"`
	CreatedAt time.Time `cbor:"4,keyasint"`
}

type NotificationRepository struct {
	db *badger.DB
}

func NewNotificationRepository(db *badger.DB) INotificationRepository {
	return &NotificationRepository{db: db}
}

func (n *NotificationRepository) Store(notification domain.Notification) (domain.Notification, error) {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	key := fmt.Sprintf("notif:%019d:%s", notification.CreatedAt.UnixNano(), notification.ID)
	data, err := cbor.Marshal(notificationRecord{
		ID:        notification.ID,
		Message:   notification.Message,
		User:      notification.User,
		CreatedAt: notification.CreatedAt,
	})
	if err != nil {
		return domain.Notification{}, err
	}
	err = n.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	return notification, err
}

// ListForUser returns the user's notifications plus the broadcast ones
// (empty User), oldest first thanks to the padded key.
func (n *NotificationRepository) ListForUser(username string) ([]domain.Notification, error) {
	var all []domain.Notification
	err := n.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte("notif:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record notificationRecord
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			all = append(all, domain.Notification{
				ID:        record.ID,
				Message:   record.Message,
				User:      record.User,
				CreatedAt: record.CreatedAt,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(item domain.Notification, _ int) bool {
		return item.User == "" || item.User == username
	}), nil
}
