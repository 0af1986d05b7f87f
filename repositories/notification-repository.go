package repositories

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"

	"github.com/TechSupportz/tasky-server/logging"
	"github.com/TechSupportz/tasky-server/models"
)

// NotificationRepo stores notification history in Cassandra, clustered by
// username so a user's feed reads newest-first.
type NotificationRepo struct {
	session *gocql.Session
}

// NewNotificationRepo connects to the cluster at host, bootstrapping the
// keyspace and table when missing.
func NewNotificationRepo(host string) (*NotificationRepo, error) {
	cluster := gocql.NewCluster(host)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cassandra: %w", err)
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS notifications
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to create notifications keyspace: %w", err)
	}
	session.Close()

	cluster.Keyspace = "notifications"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to notifications keyspace: %w", err)
	}

	repo := &NotificationRepo{session: session}
	if err := repo.createTable(); err != nil {
		session.Close()
		return nil, err
	}

	logging.Logger.Info("Event ID: CASSANDRA_CONNECTED, Description: Connected to Cassandra notifications keyspace.")
	return repo, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
}

func (nr *NotificationRepo) createTable() error {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID,
			username TEXT,
			user_id TEXT,
			severity TEXT,
			summary TEXT,
			detail TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((username), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		return fmt.Errorf("failed to create notifications table: %w", err)
	}
	return nil
}

func (nr *NotificationRepo) CreateNotification(notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = gocql.TimeUUID().String()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	err := nr.session.Query(
		`INSERT INTO notifications (id, username, user_id, severity, summary, detail, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.Username, notification.UserID,
		notification.Severity, notification.Summary, notification.Detail,
		notification.CreatedAt, notification.IsRead,
	).Exec()
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (nr *NotificationRepo) GetNotificationsByUsername(username string) ([]models.Notification, error) {
	query := `SELECT id, user_id, username, severity, summary, detail, created_at, is_read
			  FROM notifications WHERE username = ?`

	iter := nr.session.Query(query, username).Iter()
	var notifications []models.Notification
	var n models.Notification

	for iter.Scan(&n.ID, &n.UserID, &n.Username, &n.Severity, &n.Summary,
		&n.Detail, &n.CreatedAt, &n.IsRead) {
		notifications = append(notifications, n)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to read notifications for %s: %w", username, err)
	}
	return notifications, nil
}

func (nr *NotificationRepo) MarkNotificationAsRead(username, notificationID, createdAt string) error {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	parsedCreatedAt, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return fmt.Errorf("invalid created_at: %w", err)
	}

	query := `UPDATE notifications SET is_read = true WHERE username = ? AND id = ? AND created_at = ?`
	if err := nr.session.Query(query, username, uuid, parsedCreatedAt).Exec(); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

func (nr *NotificationRepo) DeleteNotification(username, notificationID, createdAt string) error {
	uuid, err := gocql.ParseUUID(notificationID)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	parsedCreatedAt, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return fmt.Errorf("invalid created_at: %w", err)
	}

	query := `DELETE FROM notifications WHERE username = ? AND id = ? AND created_at = ?`
	if err := nr.session.Query(query, username, uuid, parsedCreatedAt).Exec(); err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}
