// Package worker consumes notification jobs from the queue, persists the
// in-app notification and delivers the matching email.
package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	"github.com/noah-isme/course-mgmt-api/pkg/jobs"
	"github.com/noah-isme/course-mgmt-api/pkg/mailer"
)

type userLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type notificationWriter interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type jobMetrics interface {
	RecordJobProcessed(jobType string, err error)
}

// NotificationWorker turns queue envelopes into persisted notifications and
// outbound email.
type NotificationWorker struct {
	users   userLookup
	store   notificationWriter
	mail    mailer.Mailer
	metrics jobMetrics
	logger  *zap.Logger
}

// NewNotificationWorker constructs a NotificationWorker.
func NewNotificationWorker(users userLookup, store notificationWriter, mail mailer.Mailer, metrics jobMetrics, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{users: users, store: store, mail: mail, metrics: metrics, logger: logger}
}

// Handle processes a single job envelope. A missing recipient drops the job;
// any other failure is returned so the queue can retry it.
func (w *NotificationWorker) Handle(ctx context.Context, env jobs.Envelope) error {
	err := w.process(ctx, env)
	if w.metrics != nil {
		w.metrics.RecordJobProcessed(env.Type, err)
	}
	return err
}

func (w *NotificationWorker) process(ctx context.Context, env jobs.Envelope) error {
	user, err := w.users.FindByID(ctx, env.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			w.logger.Warn("dropping notification for unknown user",
				zap.String("job_id", env.ID), zap.String("user_id", env.UserID))
			return nil
		}
		return fmt.Errorf("load recipient: %w", err)
	}

	title, message, kind, err := render(env, user)
	if err != nil {
		w.logger.Error("dropping malformed notification job",
			zap.String("job_id", env.ID), zap.String("type", env.Type), zap.Error(err))
		return nil
	}

	var metadata []byte
	if len(env.Data) > 0 {
		metadata, err = json.Marshal(env.Data)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
	}

	notification := &models.Notification{
		UserID:   user.ID,
		Title:    title,
		Message:  message,
		Type:     kind,
		Metadata: metadata,
	}
	if err := w.store.Create(ctx, notification); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	if err := w.mail.Send(ctx, mailer.Message{To: user.Email, Subject: title, Text: message}); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	w.logger.Info("notification delivered",
		zap.String("job_id", env.ID),
		zap.String("type", env.Type),
		zap.String("user_id", user.ID))
	return nil
}

func render(env jobs.Envelope, user *models.User) (title, message string, kind models.NotificationType, err error) {
	week := intField(env.Data, "week")

	switch env.Type {
	case models.JobFacilitatorLogReminder:
		title = "Weekly Activity Log Reminder"
		message = fmt.Sprintf("Hi %s, your activity log for week %d has not been submitted yet. The deadline is Friday at 5 PM.", user.FirstName, week)
		kind = models.NotificationReminder
	case models.JobFacilitatorLogMissed:
		title = "Weekly Activity Log Missed"
		message = fmt.Sprintf("Hi %s, the deadline for the week %d activity log has passed. Please submit it as soon as possible.", user.FirstName, week)
		kind = models.NotificationAlert
	case models.JobManagerAlert:
		name, _ := env.Data["facilitator_name"].(string)
		if name == "" {
			name = "A facilitator"
		}
		title = "Missing Activity Log"
		message = fmt.Sprintf("%s has not submitted the activity log for week %d.", name, week)
		kind = models.NotificationAlert
	default:
		return "", "", "", fmt.Errorf("unknown job type %q", env.Type)
	}
	return title, message, kind, nil
}

// intField reads a numeric map entry, tolerating the float64 produced by JSON
// round-trips.
func intField(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	}
	return 0
}
