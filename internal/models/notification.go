package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// NotificationType enumerates notification categories.
type NotificationType string

const (
	NotificationReminder NotificationType = "reminder"
	NotificationAlert    NotificationType = "alert"
	NotificationInfo     NotificationType = "info"
)

// Notification is a persisted in-app message, written by the background worker.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	Metadata  types.JSONText   `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// Notification job types pushed through the queue.
const (
	JobFacilitatorLogReminder = "facilitator_log_reminder"
	JobFacilitatorLogMissed   = "facilitator_log_missed"
	JobManagerAlert           = "manager_alert"
)
