package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campus-desk/domain"
	apperrors "campus-desk/errors"
)

func sampleTask(assignedTo string, deadline time.Time) domain.Task {
	return domain.Task{
		Title:      "Linear algebra problem set",
		Type:       domain.TaskIndividual,
		Subject:    "math",
		AssignedTo: assignedTo,
		Deadline:   deadline,
		Status:     domain.TaskPending,
		Priority:   "high",
	}
}

func TestTaskRepository_StoreAssignsIDAndTimestamp(t *testing.T) {
	req := require.New(t)
	repo := NewTaskRepository(newTestDB(t))

	// When storing a task without an id
	stored, err := repo.Store(sampleTask("alice", time.Now().Add(48*time.Hour)))

	// Then the repository fills id and creation time
	req.NoError(err)
	req.NotEmpty(stored.ID)
	req.False(stored.CreatedAt.IsZero())

	fetched, err := repo.Get(stored.ID)
	req.NoError(err)
	req.Equal(stored.Title, fetched.Title)
	req.Equal(domain.TaskPending, fetched.Status)
}

func TestTaskRepository_GetUnknown(t *testing.T) {
	req := require.New(t)
	repo := NewTaskRepository(newTestDB(t))

	_, err := repo.Get("missing")

	req.ErrorIs(err, apperrors.ErrTaskNotFound)
}

func TestTaskRepository_UpdateExistingTask(t *testing.T) {
	req := require.New(t)
	repo := NewTaskRepository(newTestDB(t))

	// Given a stored task
	stored, err := repo.Store(sampleTask("alice", time.Now().Add(time.Hour)))
	req.NoError(err)

	// When moving it through its lifecycle
	stored.Status = domain.TaskDone
	req.NoError(repo.Update(stored))

	// Then the new status is persisted
	fetched, err := repo.Get(stored.ID)
	req.NoError(err)
	req.Equal(domain.TaskDone, fetched.Status)
}

func TestTaskRepository_UpdateUnknownTask(t *testing.T) {
	req := require.New(t)
	repo := NewTaskRepository(newTestDB(t))

	task := sampleTask("alice", time.Now())
	task.ID = "missing"

	req.ErrorIs(repo.Update(task), apperrors.ErrTaskNotFound)
}

func TestTaskRepository_Delete(t *testing.T) {
	req := require.New(t)
	repo := NewTaskRepository(newTestDB(t))

	stored, err := repo.Store(sampleTask("alice", time.Now()))
	req.NoError(err)

	req.NoError(repo.Delete(stored.ID))
	_, err = repo.Get(stored.ID)
	req.ErrorIs(err, apperrors.ErrTaskNotFound)

	// Deleting again reports the missing task
	req.ErrorIs(repo.Delete(stored.ID), apperrors.ErrTaskNotFound)
}

func TestTaskRepository_ListByUser(t *testing.T) {
	req := require.New(t)
	repo := NewTaskRepository(newTestDB(t))

	// Given tasks for two students
	_, err := repo.Store(sampleTask("alice", time.Now().Add(time.Hour)))
	req.NoError(err)
	_, err = repo.Store(sampleTask("alice", time.Now().Add(2*time.Hour)))
	req.NoError(err)
	_, err = repo.Store(sampleTask("bob", time.Now().Add(time.Hour)))
	req.NoError(err)

	// When listing per student and globally
	mine, err := repo.ListByUser("alice")
	req.NoError(err)
	all, err := repo.ListAll()
	req.NoError(err)

	// Then the assignment filter applies
	req.Len(mine, 2)
	req.Len(all, 3)
}

func TestTaskRepository_DueBetween(t *testing.T) {
	req := require.New(t)
	repo := NewTaskRepository(newTestDB(t))
	now := time.Now().UTC()

	// Given tasks inside and outside the window, plus a finished one inside
	inside, err := repo.Store(sampleTask("alice", now.Add(24*time.Hour)))
	req.NoError(err)
	_, err = repo.Store(sampleTask("alice", now.Add(30*24*time.Hour)))
	req.NoError(err)
	done := sampleTask("bob", now.Add(24*time.Hour))
	done.Status = domain.TaskDone
	_, err = repo.Store(done)
	req.NoError(err)

	// When scanning a seven day window
	due, err := repo.DueBetween(now, now.Add(7*24*time.Hour))

	// Then only the pending task inside the window shows up
	req.NoError(err)
	req.Len(due, 1)
	req.Equal(inside.ID, due[0].ID)
}
