package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"campus-desk/domain"
	apperrors "campus-desk/errors"
	"campus-desk/engine"
	"campus-desk/repositories"

	"github.com/samber/lo"
)

type Overview struct {
	PendingTasks   int `json:"pendingTasks"`
	CompletedTasks int `json:"completedTasks"`
	OverdueTasks   int `json:"overdueTasks"`
	UpcomingTasks  int `json:"upcomingTasks"`
}

type AdminOverview struct {
	TotalTasks     int `json:"totalTasks"`
	PendingTasks   int `json:"pendingTasks"`
	ActiveStudents int `json:"activeStudents"`
	OverdueTasks   int `json:"overdueTasks"`
}

type StudentPerformance struct {
	Name           string `json:"name"`
	CompletedTasks int    `json:"completedTasks"`
	PendingTasks   int    `json:"pendingTasks"`
}

type Reports struct {
	BySubject map[string]map[string]int `json:"bySubject"`
	ByType    map[string]int            `json:"byType"`
}

type ITaskService interface {
	Create(ctx context.Context, username string, task domain.Task) (domain.Task, error)
	ListForUser(username, filter string) ([]domain.Task, error)
	ListAll() ([]domain.Task, error)
	Update(ctx context.Context, username string, admin bool, task domain.Task) error
	Delete(username string, admin bool, id string) error
	UserOverview(username string, now time.Time) (Overview, error)
	AdminOverviewStats(now time.Time) (AdminOverview, error)
	UserReports(username string) (Reports, error)
	AllReports() (Reports, error)
	StudentReport() ([]StudentPerformance, error)
	Notifications(username string) ([]domain.Notification, error)
}

// TaskService owns the task/notification records and tells the engine when
// something changed so online owners see it live. Storage happens before the
// dispatch: the push is best-effort, the record is not.
type TaskService struct {
	tasks         repositories.ITaskRepository
	notifications repositories.INotificationRepository
	users         repositories.IUserRepository
	engine        *engine.Engine
}

func NewTaskService(tasks repositories.ITaskRepository,
	notifications repositories.INotificationRepository,
	users repositories.IUserRepository, e *engine.Engine) *TaskService {
	return &TaskService{tasks: tasks, notifications: notifications, users: users, engine: e}
}

func (s *TaskService) Create(ctx context.Context, username string, task domain.Task) (domain.Task, error) {
	task.AssignedTo = username
	if task.Status == "" {
		task.Status = domain.TaskPending
	}
	stored, err := s.tasks.Store(task)
	if err != nil {
		return domain.Task{}, err
	}
	s.notifyTask(ctx, username, stored, "created",
		fmt.Sprintf("New task created: %s (%s)", stored.Title, stored.Subject))
	return stored, nil
}

func (s *TaskService) ListForUser(username, filter string) ([]domain.Task, error) {
	tasks, err := s.tasks.ListByUser(username)
	if err != nil {
		return nil, err
	}
	if filter == "" || filter == "all" {
		return tasks, nil
	}
	return lo.Filter(tasks, func(t domain.Task, _ int) bool {
		return string(t.Status) == filter
	}), nil
}

func (s *TaskService) ListAll() ([]domain.Task, error) {
	return s.tasks.ListAll()
}

// Update rejects edits on tasks the caller does not own unless the caller is
// an admin.
func (s *TaskService) Update(ctx context.Context, username string, admin bool, task domain.Task) error {
	current, err := s.tasks.Get(task.ID)
	if err != nil {
		return err
	}
	if !admin && current.AssignedTo != username {
		return apperrors.ErrAccessDenied
	}
	task.AssignedTo = current.AssignedTo
	if task.CreatedAt.IsZero() {
		task.CreatedAt = current.CreatedAt
	}
	if err := s.tasks.Update(task); err != nil {
		return err
	}
	s.notifyTask(ctx, current.AssignedTo, task, "updated",
		fmt.Sprintf("Task updated: %s (%s) - status: %s", task.Title, task.Subject, task.Status))
	return nil
}

// Delete applies the same owner-or-admin rule as Update.
func (s *TaskService) Delete(username string, admin bool, id string) error {
	current, err := s.tasks.Get(id)
	if err != nil {
		return err
	}
	if !admin && current.AssignedTo != username {
		return apperrors.ErrAccessDenied
	}
	return s.tasks.Delete(id)
}

// upcomingWindow bounds the "due soon" bucket of the overviews.
const upcomingWindow = 7 * 24 * time.Hour

func overdue(t domain.Task, now time.Time) bool {
	return t.Status != domain.TaskDone && !t.Deadline.IsZero() && t.Deadline.Before(now)
}

func upcoming(t domain.Task, now time.Time) bool {
	return t.Status != domain.TaskDone && t.Deadline.After(now) &&
		t.Deadline.Before(now.Add(upcomingWindow))
}

func (s *TaskService) UserOverview(username string, now time.Time) (Overview, error) {
	tasks, err := s.tasks.ListByUser(username)
	if err != nil {
		return Overview{}, err
	}
	var ov Overview
	for _, t := range tasks {
		switch t.Status {
		case domain.TaskDone:
			ov.CompletedTasks++
		default:
			ov.PendingTasks++
		}
		if overdue(t, now) {
			ov.OverdueTasks++
		}
		if upcoming(t, now) {
			ov.UpcomingTasks++
		}
	}
	return ov, nil
}

func (s *TaskService) AdminOverviewStats(now time.Time) (AdminOverview, error) {
	tasks, err := s.tasks.ListAll()
	if err != nil {
		return AdminOverview{}, err
	}
	students := map[string]struct{}{}
	ov := AdminOverview{TotalTasks: len(tasks)}
	for _, t := range tasks {
		if t.Status != domain.TaskDone {
			ov.PendingTasks++
		}
		if overdue(t, now) {
			ov.OverdueTasks++
		}
		if t.AssignedTo != "" {
			students[t.AssignedTo] = struct{}{}
		}
	}
	ov.ActiveStudents = len(students)
	return ov, nil
}

func buildReports(tasks []domain.Task) Reports {
	r := Reports{BySubject: map[string]map[string]int{}, ByType: map[string]int{}}
	for _, t := range tasks {
		subject := t.Subject
		if subject == "" {
			subject = "unspecified"
		}
		bucket, ok := r.BySubject[subject]
		if !ok {
			bucket = map[string]int{}
			r.BySubject[subject] = bucket
		}
		bucket["total"]++
		bucket[string(t.Status)]++
		r.ByType[string(t.Type)]++
	}
	return r
}

func (s *TaskService) UserReports(username string) (Reports, error) {
	tasks, err := s.tasks.ListByUser(username)
	if err != nil {
		return Reports{}, err
	}
	return buildReports(tasks), nil
}

func (s *TaskService) AllReports() (Reports, error) {
	tasks, err := s.tasks.ListAll()
	if err != nil {
		return Reports{}, err
	}
	return buildReports(tasks), nil
}

// StudentReport lists every student account with its done/remaining split,
// including students with no tasks at all.
func (s *TaskService) StudentReport() ([]StudentPerformance, error) {
	students, err := s.users.ListByRole("student")
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListAll()
	if err != nil {
		return nil, err
	}
	byUser := map[string]*StudentPerformance{}
	out := make([]StudentPerformance, 0, len(students))
	for _, u := range students {
		out = append(out, StudentPerformance{Name: u.Name})
		byUser[u.Username] = &out[len(out)-1]
	}
	for _, t := range tasks {
		perf, ok := byUser[t.AssignedTo]
		if !ok {
			continue
		}
		if t.Status == domain.TaskDone {
			perf.CompletedTasks++
		} else {
			perf.PendingTasks++
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *TaskService) Notifications(username string) ([]domain.Notification, error) {
	return s.notifications.ListForUser(username)
}

func (s *TaskService) notifyTask(ctx context.Context, username string, task domain.Task, action, text string) {
	stored, err := s.notifications.Store(domain.Notification{Message: text, User: username})
	if err != nil {
		// Best-effort: the task write already succeeded.
		return
	}
	_ = s.engine.Dispatch(ctx, engine.Notify{
		User:           username,
		NotificationID: stored.ID,
		Message:        stored.Message,
		TaskID:         task.ID,
		TaskTitle:      task.Title,
		TaskSubject:    task.Subject,
		TaskStatus:     string(task.Status),
		TaskAction:     action,
	})
}
