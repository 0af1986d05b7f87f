package services

import (
	"strconv"
	"sync"
	"time"

	"github.com/TechSupportz/tasky-server/logging"
	"github.com/TechSupportz/tasky-server/models"
	"github.com/TechSupportz/tasky-server/repositories"
)

// NotificationSink receives user-facing notifications. Delivery is
// fire-and-forget; no sink reports failure to the caller.
type NotificationSink interface {
	Notify(severity models.Severity, summary, detail string)
}

// LogNotificationSink writes notifications to the service log.
type LogNotificationSink struct{}

func (LogNotificationSink) Notify(severity models.Severity, summary, detail string) {
	logging.Logger.Infof("Event ID: USER_NOTIFICATION, Description: [%s] %s: %s", severity, summary, detail)
}

// NotificationRecorder collects notifications in memory. The page handlers
// drain it into view-state responses; tests assert against it.
type NotificationRecorder struct {
	mu            sync.Mutex
	notifications []models.Notification
}

func NewNotificationRecorder() *NotificationRecorder {
	return &NotificationRecorder{}
}

func (r *NotificationRecorder) Notify(severity models.Severity, summary, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, models.Notification{
		Severity:  severity,
		Summary:   summary,
		Detail:    detail,
		CreatedAt: time.Now(),
	})
}

// Drain returns the collected notifications and clears the recorder.
func (r *NotificationRecorder) Drain() []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notifications
	r.notifications = nil
	return out
}

// HistorySink persists notifications for one user in the notification
// history store.
type HistorySink struct {
	Repo *repositories.NotificationRepo
	User models.User
}

func (s HistorySink) Notify(severity models.Severity, summary, detail string) {
	notification := &models.Notification{
		UserID:    strconv.FormatInt(s.User.ID, 10),
		Username:  s.User.Username,
		Severity:  severity,
		Summary:   summary,
		Detail:    detail,
		CreatedAt: time.Now(),
	}
	if err := s.Repo.CreateNotification(notification); err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_PERSIST_FAILED, Description: Failed to store notification for %s: %v", s.User.Username, err)
	}
}

// MultiSink fans a notification out to every sink.
type MultiSink []NotificationSink

func (m MultiSink) Notify(severity models.Severity, summary, detail string) {
	for _, sink := range m {
		sink.Notify(severity, summary, detail)
	}
}
