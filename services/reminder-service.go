package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/TechSupportz/tasky-server/logging"
	"github.com/TechSupportz/tasky-server/models"
)

// ReminderService periodically sweeps the task store and notifies about
// tasks that are due today or overdue.
type ReminderService struct {
	tasks TaskStore
	sink  NotificationSink
	cron  *cron.Cron
	now   func() time.Time
}

func NewReminderService(tasks TaskStore, sink NotificationSink) *ReminderService {
	return &ReminderService{
		tasks: tasks,
		sink:  sink,
		cron:  cron.New(),
		now:   time.Now,
	}
}

// Start schedules the sweep with a cron spec such as "@hourly".
func (s *ReminderService) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		if err := s.Sweep(context.Background()); err != nil {
			logging.Logger.Warnf("Event ID: REMINDER_SWEEP_FAILED, Description: Reminder sweep failed: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	s.cron.Start()
	logging.Logger.Infof("Event ID: REMINDER_STARTED, Description: Reminder sweep scheduled with %q", spec)
	return nil
}

func (s *ReminderService) Stop() {
	s.cron.Stop()
}

// Sweep runs one pass over every task.
func (s *ReminderService) Sweep(ctx context.Context) error {
	tasks, err := s.tasks.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	today := s.now().Truncate(24 * time.Hour)
	for _, task := range tasks {
		due, ok := parseDueDate(task.DueDate)
		if !ok {
			continue
		}
		if due.After(today) {
			continue
		}
		s.sink.Notify(models.SeverityInfo, "Task due",
			fmt.Sprintf("%q is due on %s", task.Name, task.DueDate))
	}
	return nil
}

// parseDueDate accepts the date-only and RFC3339 forms the client sends.
func parseDueDate(raw string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Truncate(24 * time.Hour), true
		}
	}
	return time.Time{}, false
}
