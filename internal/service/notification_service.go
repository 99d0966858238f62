package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
	"github.com/noah-isme/course-mgmt-api/pkg/jobs"
)

type notificationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
}

type jobEnqueuer interface {
	Enqueue(ctx context.Context, env jobs.Envelope) (string, error)
}

// NotificationService lists persisted notifications and accepts delivery jobs
// for the background worker.
type NotificationService struct {
	repo   notificationRepository
	users  offeringUserLookup
	queue  jobEnqueuer
	logger *zap.Logger
}

// NewNotificationService constructs a NotificationService instance.
func NewNotificationService(repo notificationRepository, users offeringUserLookup, queue jobEnqueuer, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, users: users, queue: queue, logger: logger}
}

// ListOwn returns the caller's most recent notifications.
func (s *NotificationService) ListOwn(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	notifications, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flips the read flag. Only the recipient may mark their own
// notification.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) (*models.Notification, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}

	if notification.UserID != userID {
		return nil, appErrors.ErrForbidden
	}

	if err := s.repo.MarkRead(ctx, id); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	notification.IsRead = true
	return notification, nil
}

// Enqueue validates the recipient and pushes a delivery job, returning the
// job id immediately. Delivery happens asynchronously in the worker.
func (s *NotificationService) Enqueue(ctx context.Context, jobType, userID string, data map[string]interface{}) (string, error) {
	switch jobType {
	case models.JobFacilitatorLogReminder, models.JobFacilitatorLogMissed, models.JobManagerAlert:
	default:
		return "", appErrors.Validation("type", "unknown notification job type")
	}

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "recipient not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recipient")
	}

	jobID, err := s.queue.Enqueue(ctx, jobs.Envelope{
		Type:   jobType,
		UserID: userID,
		Data:   data,
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue notification")
	}

	s.logger.Debug("notification job enqueued",
		zap.String("job_id", jobID),
		zap.String("type", jobType),
		zap.String("user_id", userID))
	return jobID, nil
}
