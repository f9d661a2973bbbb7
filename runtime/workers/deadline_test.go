package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"campus-desk/domain"
	"campus-desk/engine"
	"campus-desk/mocks"
	"campus-desk/observability"
)

func newDeadlineFixture(t *testing.T, now time.Time) (*DeadlineWorker, *mocks.MockITaskRepository, *mocks.MockINotificationRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	tasks := mocks.NewMockITaskRepository(ctrl)
	notifications := mocks.NewMockINotificationRepository(ctrl)
	desk := engine.New(slog.Default(), 3, 64, nil, observability.NewMonitor())
	worker := NewDeadlineWorker(slog.Default(), tasks, notifications, desk,
		time.Minute, 7*24*time.Hour)
	worker.now = func() time.Time { return now }
	return worker, tasks, notifications
}

func TestDeadlineWorker_RemindsOncePerTask(t *testing.T) {
	req := require.New(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	worker, tasks, notifications := newDeadlineFixture(t, now)

	due := []domain.Task{{
		ID:         "task-1",
		Title:      "Essay draft",
		Subject:    "literature",
		AssignedTo: "alice",
		Status:     domain.TaskPending,
		Deadline:   now.Add(48 * time.Hour),
	}}

	// Given the same task showing up in two consecutive scans
	tasks.EXPECT().DueBetween(gomock.Any(), gomock.Any()).Return(due, nil).Times(2)
	notifications.EXPECT().Store(gomock.Any()).DoAndReturn(
		func(n domain.Notification) (domain.Notification, error) {
			require.Equal(t, "alice", n.User)
			require.Contains(t, n.Message, "Essay draft")
			n.ID = "notif-1"
			return n, nil
		}).Times(1)

	// When scanning twice
	req.NoError(worker.Scan(context.Background()))
	req.NoError(worker.Scan(context.Background()))
}

func TestDeadlineWorker_SkipsFinishedTasks(t *testing.T) {
	req := require.New(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	worker, tasks, _ := newDeadlineFixture(t, now)

	// Given only a finished task inside the window
	tasks.EXPECT().DueBetween(gomock.Any(), gomock.Any()).Return([]domain.Task{{
		ID:       "task-1",
		Status:   domain.TaskDone,
		Deadline: now.Add(time.Hour),
	}}, nil)

	// Then no reminder is stored
	req.NoError(worker.Scan(context.Background()))
}

func TestDeadlineWorker_StoreFailureDoesNotPoisonTheSet(t *testing.T) {
	req := require.New(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	worker, tasks, notifications := newDeadlineFixture(t, now)

	due := []domain.Task{{
		ID:         "task-1",
		AssignedTo: "alice",
		Status:     domain.TaskPending,
		Deadline:   now.Add(time.Hour),
	}}
	tasks.EXPECT().DueBetween(gomock.Any(), gomock.Any()).Return(due, nil)
	notifications.EXPECT().Store(gomock.Any()).
		Return(domain.Notification{}, context.DeadlineExceeded)

	// The task is marked notified even when the store fails; repeating a
	// broken write every minute would just spam the log.
	req.NoError(worker.Scan(context.Background()))
}
