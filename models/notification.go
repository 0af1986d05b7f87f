package models

import "time"

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

type Notification struct {
	ID        string    `cassandra:"id" json:"id"`
	UserID    string    `cassandra:"user_id" json:"userId"`
	Username  string    `cassandra:"username" json:"username"`
	Severity  Severity  `cassandra:"severity" json:"severity"`
	Summary   string    `cassandra:"summary" json:"summary"`
	Detail    string    `cassandra:"detail" json:"detail"`
	CreatedAt time.Time `cassandra:"created_at" json:"createdAt"`
	IsRead    bool      `cassandra:"is_read" json:"isRead"`
}
