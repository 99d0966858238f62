package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	"github.com/noah-isme/course-mgmt-api/internal/validation"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
)

type activityLogRepository interface {
	FindByID(ctx context.Context, id string) (*models.ActivityLog, error)
	List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLog, error)
	Create(ctx context.Context, log *models.ActivityLog) error
	Update(ctx context.Context, log *models.ActivityLog) error
	Delete(ctx context.Context, id string) error
}

type activityOfferingLookup interface {
	FindByID(ctx context.Context, id string) (*models.CourseOffering, error)
}

// ActivityLogService provides weekly activity log use cases.
type ActivityLogService struct {
	repo      activityLogRepository
	offerings activityOfferingLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityLogService constructs an ActivityLogService instance.
func NewActivityLogService(repo activityLogRepository, offerings activityOfferingLookup, validate *validator.Validate, logger *zap.Logger) *ActivityLogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ActivityLogService{repo: repo, offerings: offerings, validator: validate, logger: logger}
}

// List returns activity logs matching the filter.
func (s *ActivityLogService) List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLog, error) {
	logs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity logs")
	}
	return logs, nil
}

// Get returns an activity log by id.
func (s *ActivityLogService) Get(ctx context.Context, id string) (*models.ActivityLog, error) {
	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity log not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity log")
	}
	return log, nil
}

// Create validates and stores a new weekly report. Omitted task statuses
// default to Not Started.
func (s *ActivityLogService) Create(ctx context.Context, req models.CreateActivityLogRequest) (*models.ActivityLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity log payload")
	}

	if fieldErr := validation.WeekNumber(req.WeekNumber); fieldErr != nil {
		return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
	}

	if _, err := s.offerings.FindByID(ctx, req.OfferingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Validation("offering_id", "course offering does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}

	log := &models.ActivityLog{
		OfferingID:          req.OfferingID,
		WeekNumber:          req.WeekNumber,
		Attendance:          req.Attendance,
		FormativeOneGrading: defaultTaskStatus(req.FormativeOneGrading),
		FormativeTwoGrading: defaultTaskStatus(req.FormativeTwoGrading),
		SummativeGrading:    defaultTaskStatus(req.SummativeGrading),
		CourseModeration:    defaultTaskStatus(req.CourseModeration),
		IntranetSync:        defaultTaskStatus(req.IntranetSync),
		GradebookStatus:     defaultTaskStatus(req.GradebookStatus),
		Notes:               req.Notes,
	}

	if fieldErr := validation.TaskStatuses(taskStatusFields(log)); fieldErr != nil {
		return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
	}

	if err := s.repo.Create(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity log")
	}
	return log, nil
}

// Update applies a partial update to a weekly report.
func (s *ActivityLogService) Update(ctx context.Context, id string, req models.UpdateActivityLogRequest) (*models.ActivityLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid activity log payload")
	}

	log, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.WeekNumber != nil {
		if fieldErr := validation.WeekNumber(*req.WeekNumber); fieldErr != nil {
			return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
		}
		log.WeekNumber = *req.WeekNumber
	}
	if req.Attendance != nil {
		log.Attendance = req.Attendance
	}
	if req.FormativeOneGrading != nil {
		log.FormativeOneGrading = *req.FormativeOneGrading
	}
	if req.FormativeTwoGrading != nil {
		log.FormativeTwoGrading = *req.FormativeTwoGrading
	}
	if req.SummativeGrading != nil {
		log.SummativeGrading = *req.SummativeGrading
	}
	if req.CourseModeration != nil {
		log.CourseModeration = *req.CourseModeration
	}
	if req.IntranetSync != nil {
		log.IntranetSync = *req.IntranetSync
	}
	if req.GradebookStatus != nil {
		log.GradebookStatus = *req.GradebookStatus
	}
	if req.Notes != nil {
		log.Notes = req.Notes
	}

	if fieldErr := validation.TaskStatuses(taskStatusFields(log)); fieldErr != nil {
		return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
	}

	if err := s.repo.Update(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity log")
	}
	return log, nil
}

// Delete removes an activity log.
func (s *ActivityLogService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity log")
	}
	return nil
}

func defaultTaskStatus(s models.TaskStatus) models.TaskStatus {
	if s == "" {
		return models.TaskNotStarted
	}
	return s
}

func taskStatusFields(log *models.ActivityLog) map[string]models.TaskStatus {
	return map[string]models.TaskStatus{
		"formative_one_grading": log.FormativeOneGrading,
		"formative_two_grading": log.FormativeTwoGrading,
		"summative_grading":     log.SummativeGrading,
		"course_moderation":     log.CourseModeration,
		"intranet_sync":         log.IntranetSync,
		"gradebook_status":      log.GradebookStatus,
	}
}
