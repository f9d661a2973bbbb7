package repositories

import (
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	apperrors "campus-desk/errors"
)

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUserRepository_CreateAndFetch(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	// When creating an account and fetching it back
	id, err := repo.CreateUser("alice", "Alice Santos", "RA123", "hashed-secret", "student")
	req.NoError(err)
	req.NotEmpty(id)

	user, err := repo.GetUserByUsername("alice")

	// Then the stored record round trips
	req.NoError(err)
	req.Equal(id, user.ID)
	req.Equal("Alice Santos", user.Name)
	req.Equal("RA123", user.Registration)
	req.Equal("hashed-secret", user.PasswordHash)
	req.Equal("student", user.Role)
	req.False(user.CreatedAt.IsZero())
}

func TestUserRepository_DuplicateUsernameRejected(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	// Given an existing account
	_, err := repo.CreateUser("alice", "Alice", "", "hash-1", "student")
	req.NoError(err)

	// When registering the same username again
	_, err = repo.CreateUser("alice", "Impostor", "", "hash-2", "student")

	// Then the write is rejected and the original record survives
	req.ErrorIs(err, apperrors.ErrUserAlreadyExists)
	user, err := repo.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal("Alice", user.Name)
}

func TestUserRepository_UnknownUsername(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	_, err := repo.GetUserByUsername("nobody")

	req.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func TestUserRepository_ListByRole(t *testing.T) {
	req := require.New(t)
	repo := NewUserRepository(newTestDB(t))

	// Given a mix of students and an admin
	_, err := repo.CreateUser("alice", "Alice", "", "h", "student")
	req.NoError(err)
	_, err = repo.CreateUser("bob", "Bob", "", "h", "student")
	req.NoError(err)
	_, err = repo.CreateUser("staff", "Staff", "", "h", "admin")
	req.NoError(err)

	// When listing by role
	students, err := repo.ListByRole("student")
	req.NoError(err)
	everyone, err := repo.ListByRole("")
	req.NoError(err)

	// Then the filter applies and the empty role means everyone
	req.Len(students, 2)
	req.Len(everyone, 3)
}
