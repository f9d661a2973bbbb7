//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"errors"
	"fmt"
	"time"

	apperrors "campus-desk/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

type IUserRepository interface {
	CreateUser(username, name, registration, hashedPassword, role string) (string, error)
	GetUserByUsername(username string) (User, error)
	ListByRole(role string) ([]User, error)
}

// User is the stored account record. Role is either "student" or "admin";
// admins carry the operator privilege on the desk.
type User struct {
	ID           string    `cbor:"1,keyasint"`
	Username     string    `cbor:"2,keyasint"`
	Name         string    `cbor:"3,keyasint"`
	Registration string    `cbor:"4,keyasint"`
	PasswordHash string    `cbor:"5,keyasint"`
	Role         string    `cbor:"6,keyasint"`
	CreatedAt    time.Time `cbor:"7,keyasint"`
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

func userKey(username string) []byte {
	return []byte("user:" + username)
}

// CreateUser persists the account under its username. The uniqueness check
// and the write share one transaction.
func (u *UserRepository) CreateUser(username, name, registration, hashedPassword, role string) (string, error) {
	record := User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         name,
		Registration: registration,
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	data, err := cbor.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}
	err = u.db.Update(func(txn *badger.Txn) error {
		key := userKey(username)
		if _, err := txn.Get(key); err == nil {
			return apperrors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return "", err
	}
	return record.ID, nil
}

func (u *UserRepository) GetUserByUsername(username string) (User, error) {
	var record User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(username))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.ErrInvalidCredentials
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &record)
		})
	})
	return record, err
}

// ListByRole scans the user prefix; account counts are small enough that the
// linear pass is fine.
func (u *UserRepository) ListByRole(role string) ([]User, error) {
	var users []User
	err := u.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte("user:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record User
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			if role == "" || record.Role == role {
				users = append(users, record)
			}
		}
		return nil
	})
	return users, err
}
