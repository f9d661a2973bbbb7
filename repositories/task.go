//go:generate go run go.uber.org/mock/mockgen -source=task.go -destination=../mocks/mock_task_repository.go -package=mocks
package repositories

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"campus-desk/domain"
	apperrors "campus-desk/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type ITaskRepository interface {
	Store(task domain.Task) (domain.Task, error)
	Get(id string) (domain.Task, error)
	Update(task domain.Task) error
	Delete(id string) error
	ListByUser(username string) ([]domain.Task, error)
	ListAll() ([]domain.Task, error)
	DueBetween(from, to time.Time) ([]domain.Task, error)
}

type taskRecord struct {
	ID            string    `cbor:"1,keyasint"`
	Title         string    `cbor:"2,keyasint"`
	Type          string    `cbor:"3,keyasint"`
	Description   string    `cbor:"4,keyasint"`
	Deadline      time.Time `cbor:"5,keyasint"`
	Subject       string    `cbor:"6,keyasint"`
	AssignedTo    string    `cbor:"7,keyasint"`
	Priority      string    `cbor:"8,keyasint"`
	EstimatedTime string    `cbor:"9,keyasint"`
	Status        string    `cbor:"10,keyasint"`
	CreatedAt     time.Time `cbor:"11,keyasint"`
}

type TaskRepository struct {
	db *badger.DB
}

func NewTaskRepository(db *badger.DB) ITaskRepository {
	return &TaskRepository{db: db}
}

func taskKey(id string) []byte {
	return []byte("task:" + id)
}

func (t *TaskRepository) Store(task domain.Task) (domain.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	data, err := cbor.Marshal(fromTask(task))
	if err != nil {
		return domain.Task{}, fmt.Errorf("marshal failed: %w", err)
	}
	err = t.db.Update(func(txn *badger.Txn) error {
		return txn.Set(taskKey(task.ID), data)
	})
	return task, err
}

func (t *TaskRepository) Get(id string) (domain.Task, error) {
	var record taskRecord
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(taskKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.ErrTaskNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &record)
		})
	})
	return toTask(record), err
}

func (t *TaskRepository) Update(task domain.Task) error {
	if _, err := t.Get(task.ID); err != nil {
		return err
	}
	_, err := t.Store(task)
	return err
}

func (t *TaskRepository) Delete(id string) error {
	return t.db.Update(func(txn *badger.Txn) error {
		key := taskKey(id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return apperrors.ErrTaskNotFound
			}
			return err
		}
		return txn.Delete(key)
	})
}

func (t *TaskRepository) ListByUser(username string) ([]domain.Task, error) {
	all, err := t.ListAll()
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(task domain.Task, _ int) bool {
		return task.AssignedTo == username
	}), nil
}

// ListAll scans the task prefix and sorts by creation time. Task volume per
// desk is small; no pagination needed here.
func (t *TaskRepository) ListAll() ([]domain.Task, error) {
	var tasks []domain.Task
	err := t.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte("task:")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var record taskRecord
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			tasks = append(tasks, toTask(record))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// DueBetween feeds the deadline scan: pending tasks whose deadline falls in
// the window.
func (t *TaskRepository) DueBetween(from, to time.Time) ([]domain.Task, error) {
	all, err := t.ListAll()
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(task domain.Task, _ int) bool {
		if task.Status == domain.TaskDone || task.Deadline.IsZero() {
			return false
		}
		return task.Deadline.After(from) && task.Deadline.Before(to)
	}), nil
}

func fromTask(task domain.Task) taskRecord {
	return taskRecord{
		ID:            task.ID,
		Title:         task.Title,
		Type:          string(task.Type),
		Description:   task.Description,
		Deadline:      task.Deadline,
		Subject:       task.Subject,
		AssignedTo:    task.AssignedTo,
		Priority:      task.Priority,
		EstimatedTime: task.EstimatedTime,
		Status:        string(task.Status),
		CreatedAt:     task.CreatedAt,
	}
}

func toTask(record taskRecord) domain.Task {
	return domain.Task{
		ID:            record.ID,
		Title:         record.Title,
		Type:          domain.TaskType(record.Type),
		Description:   record.Description,
		Deadline:      record.Deadline,
		Subject:       record.Subject,
		AssignedTo:    record.AssignedTo,
		Priority:      record.Priority,
		EstimatedTime: record.EstimatedTime,
		Status:        domain.TaskStatus(record.Status),
		CreatedAt:     record.CreatedAt,
	}
}
