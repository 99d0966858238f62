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

type gradeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Grade, error)
	List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	UpdateStatus(ctx context.Context, id string, status models.GradeStatus) error
	Delete(ctx context.Context, id string) error
}

type gradeUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// GradeService provides grade recording and publishing use cases.
type GradeService struct {
	repo      gradeRepository
	users     gradeUserLookup
	offerings activityOfferingLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService instance.
func NewGradeService(repo gradeRepository, users gradeUserLookup, offerings activityOfferingLookup, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradeService{repo: repo, users: users, offerings: offerings, validator: validate, logger: logger}
}

// List returns grade records matching the filter. Students only ever see
// their own published grades.
func (s *GradeService) List(ctx context.Context, filter models.GradeFilter, actor *models.AuthUser) ([]models.Grade, error) {
	if actor != nil && actor.Role == models.RoleStudent {
		filter.StudentID = actor.ID
		filter.GradeStatus = string(models.GradePublished)
	}

	grades, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// Get returns a grade record. A student may only read their own published grade.
func (s *GradeService) Get(ctx context.Context, id string, actor *models.AuthUser) (*models.Grade, error) {
	grade, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor != nil && actor.Role == models.RoleStudent {
		if grade.StudentID != actor.ID || grade.GradeStatus != models.GradePublished {
			return nil, appErrors.ErrForbidden
		}
	}
	return grade, nil
}

// Create validates and stores a new draft grade record.
func (s *GradeService) Create(ctx context.Context, req models.CreateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	if fieldErr := validation.GradeScores(map[string]*float64{
		"formative_one": req.FormativeOne,
		"formative_two": req.FormativeTwo,
		"summative":     req.Summative,
		"final_grade":   req.FinalGrade,
	}); fieldErr != nil {
		return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
	}

	student, err := s.users.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Validation("student_id", "student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Role != models.RoleStudent {
		return nil, appErrors.Validation("student_id", "user is not a student")
	}

	if _, err := s.offerings.FindByID(ctx, req.OfferingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Validation("offering_id", "course offering does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}

	grade := &models.Grade{
		StudentID:    req.StudentID,
		OfferingID:   req.OfferingID,
		FormativeOne: req.FormativeOne,
		FormativeTwo: req.FormativeTwo,
		Summative:    req.Summative,
		FinalGrade:   req.FinalGrade,
		GradeStatus:  models.GradeDraft,
		Feedback:     req.Feedback,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	return grade, nil
}

// Update applies a partial update to the scores and feedback of a grade.
func (s *GradeService) Update(ctx context.Context, id string, req models.UpdateGradeRequest) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	grade, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FormativeOne != nil {
		grade.FormativeOne = req.FormativeOne
	}
	if req.FormativeTwo != nil {
		grade.FormativeTwo = req.FormativeTwo
	}
	if req.Summative != nil {
		grade.Summative = req.Summative
	}
	if req.FinalGrade != nil {
		grade.FinalGrade = req.FinalGrade
	}
	if req.Feedback != nil {
		grade.Feedback = req.Feedback
	}

	if fieldErr := validation.GradeScores(map[string]*float64{
		"formative_one": grade.FormativeOne,
		"formative_two": grade.FormativeTwo,
		"summative":     grade.Summative,
		"final_grade":   grade.FinalGrade,
	}); fieldErr != nil {
		return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
	}

	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	return grade, nil
}

// Publish transitions a draft grade to published. Publishing twice is a
// conflict; the stored record is never modified by the failed attempt.
func (s *GradeService) Publish(ctx context.Context, id string, actorID string, meta models.RequestMeta) (*models.Grade, error) {
	grade, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !validation.Publishable(grade.GradeStatus) {
		return nil, appErrors.Conflict("grade is already published", "published grades cannot be republished")
	}

	if err := s.repo.UpdateStatus(ctx, grade.ID, models.GradePublished); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish grade")
	}
	grade.GradeStatus = models.GradePublished

	if err := s.users.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionGradePublish,
		Resource:   "grades",
		ResourceID: &grade.ID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record grade publish audit log", zap.Error(err))
	}

	return grade, nil
}

// Delete removes a grade record.
func (s *GradeService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	return nil
}

func (s *GradeService) find(ctx context.Context, id string) (*models.Grade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}
