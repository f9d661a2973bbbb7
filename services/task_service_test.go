package services

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"campus-desk/domain"
	apperrors "campus-desk/errors"
	"campus-desk/engine"
	"campus-desk/mocks"
	"campus-desk/observability"
	"campus-desk/repositories"
)

type taskServiceFixture struct {
	tasks         *mocks.MockITaskRepository
	notifications *mocks.MockINotificationRepository
	users         *mocks.MockIUserRepository
	service       *TaskService
}

func newTaskServiceFixture(t *testing.T) taskServiceFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := taskServiceFixture{
		tasks:         mocks.NewMockITaskRepository(ctrl),
		notifications: mocks.NewMockINotificationRepository(ctrl),
		users:         mocks.NewMockIUserRepository(ctrl),
	}
	// The commands buffer absorbs the dispatched notifications; nothing
	// drains it in these tests.
	desk := engine.New(slog.Default(), 3, 64, nil, observability.NewMonitor())
	f.service = NewTaskService(f.tasks, f.notifications, f.users, desk)
	return f
}

func TestTaskService_CreateAssignsOwnerAndNotifies(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)

	// Given storage that echoes the task back with an id
	f.tasks.EXPECT().Store(gomock.Any()).DoAndReturn(func(task domain.Task) (domain.Task, error) {
		task.ID = "task-1"
		return task, nil
	})
	f.notifications.EXPECT().Store(gomock.Any()).DoAndReturn(
		func(n domain.Notification) (domain.Notification, error) {
			n.ID = "notif-1"
			return n, nil
		})

	// When a student creates a task without a status
	stored, err := f.service.Create(context.Background(), "alice", domain.Task{
		Title:   "Essay draft",
		Type:    domain.TaskIndividual,
		Subject: "literature",
	})

	// Then ownership and the pending default are applied
	req.NoError(err)
	req.Equal("alice", stored.AssignedTo)
	req.Equal(domain.TaskPending, stored.Status)
	req.Equal("task-1", stored.ID)
}

func TestTaskService_UpdateByOwner(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)
	created := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	// Given an existing task owned by alice
	f.tasks.EXPECT().Get("task-1").Return(domain.Task{
		ID: "task-1", Title: "Essay draft", AssignedTo: "alice", CreatedAt: created,
	}, nil)
	f.tasks.EXPECT().Update(gomock.Any()).DoAndReturn(func(task domain.Task) error {
		// Ownership and creation time survive the edit.
		require.Equal(t, "alice", task.AssignedTo)
		require.Equal(t, created, task.CreatedAt)
		return nil
	})
	f.notifications.EXPECT().Store(gomock.Any()).DoAndReturn(
		func(n domain.Notification) (domain.Notification, error) { return n, nil })

	// When the owner marks it done
	err := f.service.Update(context.Background(), "alice", false, domain.Task{
		ID: "task-1", Title: "Essay draft", Status: domain.TaskDone,
	})

	req.NoError(err)
}

func TestTaskService_UpdateByStrangerDenied(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)

	f.tasks.EXPECT().Get("task-1").Return(domain.Task{
		ID: "task-1", AssignedTo: "alice",
	}, nil)

	// When somebody else tries to edit without the admin flag
	err := f.service.Update(context.Background(), "bob", false, domain.Task{ID: "task-1"})

	req.ErrorIs(err, apperrors.ErrAccessDenied)
}

func TestTaskService_UpdateByAdminAllowed(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)

	f.tasks.EXPECT().Get("task-1").Return(domain.Task{
		ID: "task-1", AssignedTo: "alice",
	}, nil)
	f.tasks.EXPECT().Update(gomock.Any()).Return(nil)
	f.notifications.EXPECT().Store(gomock.Any()).DoAndReturn(
		func(n domain.Notification) (domain.Notification, error) {
			// The owner gets the notification, not the admin.
			require.Equal(t, "alice", n.User)
			return n, nil
		})

	err := f.service.Update(context.Background(), "staff", true, domain.Task{ID: "task-1"})

	req.NoError(err)
}

func TestTaskService_DeleteByStrangerDenied(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)

	f.tasks.EXPECT().Get("task-1").Return(domain.Task{
		ID: "task-1", AssignedTo: "alice",
	}, nil)

	// When somebody else tries to delete without the admin flag
	err := f.service.Delete("bob", false, "task-1")

	// Then the record is never touched
	req.ErrorIs(err, apperrors.ErrAccessDenied)
}

func TestTaskService_DeleteByOwnerOrAdminAllowed(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)

	f.tasks.EXPECT().Get("task-1").Return(domain.Task{
		ID: "task-1", AssignedTo: "alice",
	}, nil).Times(2)
	f.tasks.EXPECT().Delete("task-1").Return(nil).Times(2)

	req.NoError(f.service.Delete("alice", false, "task-1"))
	req.NoError(f.service.Delete("staff", true, "task-1"))
}

func TestTaskService_ListForUserFilter(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)

	stored := []domain.Task{
		{ID: "t1", Status: domain.TaskPending},
		{ID: "t2", Status: domain.TaskDone},
		{ID: "t3", Status: domain.TaskPending},
	}
	f.tasks.EXPECT().ListByUser("alice").Return(stored, nil).Times(2)

	all, err := f.service.ListForUser("alice", "all")
	req.NoError(err)
	pending, err := f.service.ListForUser("alice", "pending")
	req.NoError(err)

	req.Len(all, 3)
	req.Len(pending, 2)
}

func TestTaskService_UserOverviewBuckets(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	f.tasks.EXPECT().ListByUser("alice").Return([]domain.Task{
		{Status: domain.TaskDone, Deadline: now.Add(-time.Hour)},
		{Status: domain.TaskPending, Deadline: now.Add(-time.Hour)},
		{Status: domain.TaskPending, Deadline: now.Add(48 * time.Hour)},
		{Status: domain.TaskInProgress, Deadline: now.Add(30 * 24 * time.Hour)},
	}, nil)

	ov, err := f.service.UserOverview("alice", now)

	req.NoError(err)
	req.Equal(1, ov.CompletedTasks)
	req.Equal(3, ov.PendingTasks)
	req.Equal(1, ov.OverdueTasks)
	req.Equal(1, ov.UpcomingTasks)
}

func TestTaskService_AdminOverviewCountsStudents(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	f.tasks.EXPECT().ListAll().Return([]domain.Task{
		{AssignedTo: "alice", Status: domain.TaskPending, Deadline: now.Add(-time.Hour)},
		{AssignedTo: "alice", Status: domain.TaskDone},
		{AssignedTo: "bob", Status: domain.TaskInProgress, Deadline: now.Add(time.Hour)},
	}, nil)

	ov, err := f.service.AdminOverviewStats(now)

	req.NoError(err)
	req.Equal(3, ov.TotalTasks)
	req.Equal(2, ov.PendingTasks)
	req.Equal(1, ov.OverdueTasks)
	req.Equal(2, ov.ActiveStudents)
}

func TestTaskService_ReportsGroupBySubjectAndType(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)

	f.tasks.EXPECT().ListAll().Return([]domain.Task{
		{Subject: "math", Type: domain.TaskIndividual, Status: domain.TaskDone},
		{Subject: "math", Type: domain.TaskGroup, Status: domain.TaskPending},
		{Subject: "", Type: domain.TaskRevision, Status: domain.TaskPending},
	}, nil)

	reports, err := f.service.AllReports()

	req.NoError(err)
	req.Equal(2, reports.BySubject["math"]["total"])
	req.Equal(1, reports.BySubject["math"]["done"])
	req.Equal(1, reports.BySubject["unspecified"]["total"])
	req.Equal(1, reports.ByType["individual"])
	req.Equal(1, reports.ByType["group"])
	req.Equal(1, reports.ByType["revision"])
}

func TestTaskService_StudentReportIncludesTasklessStudents(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)

	f.users.EXPECT().ListByRole("student").Return([]repositories.User{
		{Username: "bob", Name: "Bob Lima"},
		{Username: "alice", Name: "Alice Santos"},
	}, nil)
	f.tasks.EXPECT().ListAll().Return([]domain.Task{
		{AssignedTo: "alice", Status: domain.TaskDone},
		{AssignedTo: "alice", Status: domain.TaskPending},
		{AssignedTo: "ghost", Status: domain.TaskPending},
	}, nil)

	report, err := f.service.StudentReport()

	// Then every student shows up, sorted by name, with correct splits
	req.NoError(err)
	req.Len(report, 2)
	req.Equal("Alice Santos", report[0].Name)
	req.Equal(1, report[0].CompletedTasks)
	req.Equal(1, report[0].PendingTasks)
	req.Equal("Bob Lima", report[1].Name)
	req.Equal(0, report[1].CompletedTasks+report[1].PendingTasks)
}

func TestTaskService_NotificationStoreFailureDoesNotFailTheWrite(t *testing.T) {
	req := require.New(t)
	f := newTaskServiceFixture(t)

	f.tasks.EXPECT().Store(gomock.Any()).DoAndReturn(func(task domain.Task) (domain.Task, error) {
		task.ID = "task-1"
		return task, nil
	})
	f.notifications.EXPECT().Store(gomock.Any()).
		Return(domain.Notification{}, apperrors.ErrInvariantViolation)

	_, err := f.service.Create(context.Background(), "alice", domain.Task{Title: "Essay"})

	req.NoError(err)
}
