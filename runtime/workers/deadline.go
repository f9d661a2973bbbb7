package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"campus-desk/domain"
	"campus-desk/engine"
	"campus-desk/repositories"
)

// DeadlineWorker periodically scans for tasks due inside the warning window
// and pushes one reminder per task. The notified set lives in memory only, so
// a restart may repeat a reminder; a missed one never happens twice in the
// same process.
type DeadlineWorker struct {
	log           *slog.Logger
	tasks         repositories.ITaskRepository
	notifications repositories.INotificationRepository
	desk          *engine.Engine
	interval      time.Duration
	window        time.Duration
	notified      map[string]struct{}
	now           func() time.Time
}

func NewDeadlineWorker(log *slog.Logger, tasks repositories.ITaskRepository,
	notifications repositories.INotificationRepository, desk *engine.Engine,
	interval, window time.Duration) *DeadlineWorker {
	return &DeadlineWorker{
		log:           log,
		tasks:         tasks,
		notifications: notifications,
		desk:          desk,
		interval:      interval,
		window:        window,
		notified:      map[string]struct{}{},
		now:           time.Now,
	}
}

func (w *DeadlineWorker) Run(ctx context.Context) error {
	w.log.Info("Starting deadline scan", "interval", w.interval, "window", w.window)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Scan(ctx); err != nil {
				w.log.Error("Deadline scan failed", "error", err)
			}
		}
	}
}

// Scan runs one pass. Exported so a startup pass and tests can trigger it
// without waiting for the ticker.
func (w *DeadlineWorker) Scan(ctx context.Context) error {
	now := w.now().UTC()
	due, err := w.tasks.DueBetween(now, now.Add(w.window))
	if err != nil {
		return err
	}
	for _, task := range due {
		if task.Status == domain.TaskDone {
			continue
		}
		if _, seen := w.notified[task.ID]; seen {
			continue
		}
		w.notified[task.ID] = struct{}{}
		w.remind(ctx, task)
	}
	return nil
}

func (w *DeadlineWorker) remind(ctx context.Context, task domain.Task) {
	text := fmt.Sprintf("Deadline approaching: %s (%s) due %s",
		task.Title, task.Subject, task.Deadline.Format("2006-01-02 15:04"))
	stored, err := w.notifications.Store(domain.Notification{Message: text, User: task.AssignedTo})
	if err != nil {
		w.log.Warn("Failed to store deadline reminder", "task", task.ID, "error", err)
		return
	}
	err = w.desk.Dispatch(ctx, engine.Notify{
		User:           task.AssignedTo,
		NotificationID: stored.ID,
		Message:        stored.Message,
		TaskID:         task.ID,
		TaskTitle:      task.Title,
		TaskSubject:    task.Subject,
		TaskStatus:     string(task.Status),
		TaskAction:     "deadline",
	})
	if err != nil {
		w.log.Warn("Failed to push deadline reminder", "task", task.ID, "error", err)
	}
}
