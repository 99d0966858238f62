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

type cohortRepository interface {
	FindByID(ctx context.Context, id string) (*models.Cohort, error)
	List(ctx context.Context) ([]models.Cohort, error)
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, cohort *models.Cohort) error
	Update(ctx context.Context, cohort *models.Cohort) error
	Delete(ctx context.Context, id string) error
	CountClasses(ctx context.Context, cohortID string) (int, error)
}

// CohortService provides cohort management use cases.
type CohortService struct {
	repo      cohortRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCohortService constructs a CohortService instance.
func NewCohortService(repo cohortRepository, validate *validator.Validate, logger *zap.Logger) *CohortService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CohortService{repo: repo, validator: validate, logger: logger}
}

// List returns all cohorts.
func (s *CohortService) List(ctx context.Context) ([]models.Cohort, error) {
	cohorts, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cohorts")
	}
	return cohorts, nil
}

// Get returns a cohort by id.
func (s *CohortService) Get(ctx context.Context, id string) (*models.Cohort, error) {
	cohort, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cohort not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort")
	}
	return cohort, nil
}

// Create validates and stores a new cohort.
func (s *CohortService) Create(ctx context.Context, req models.CreateCohortRequest) (*models.Cohort, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cohort payload")
	}

	if fieldErr := validation.DateRange(req.StartDate, req.EndDate); fieldErr != nil {
		return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
	}

	if taken, err := s.repo.NameExists(ctx, req.Name, ""); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check cohort name")
	} else if taken {
		return nil, appErrors.Conflict("cohort name already exists", "choose a different name")
	}

	status := req.Status
	if status == "" {
		status = models.CohortPlanned
	}

	cohort := &models.Cohort{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    status,
	}
	if err := s.repo.Create(ctx, cohort); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create cohort")
	}
	return cohort, nil
}

// Update applies a partial update. A one-sided date change is validated
// against the stored counterpart so the range never inverts.
func (s *CohortService) Update(ctx context.Context, id string, req models.UpdateCohortRequest) (*models.Cohort, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cohort payload")
	}

	cohort, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start := cohort.StartDate
	end := cohort.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if fieldErr := validation.DateRange(start, end); fieldErr != nil {
		return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
	}

	if req.Name != nil && *req.Name != cohort.Name {
		if taken, err := s.repo.NameExists(ctx, *req.Name, cohort.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check cohort name")
		} else if taken {
			return nil, appErrors.Conflict("cohort name already exists", "choose a different name")
		}
		cohort.Name = *req.Name
	}
	cohort.StartDate = start
	cohort.EndDate = end
	if req.Status != nil {
		cohort.Status = *req.Status
	}

	if err := s.repo.Update(ctx, cohort); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update cohort")
	}
	return cohort, nil
}

// Delete removes a cohort unless classes still reference it.
func (s *CohortService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountClasses(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}
	if count > 0 {
		return appErrors.Conflict("cohort has classes", "delete or move the classes first")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete cohort")
	}
	return nil
}
