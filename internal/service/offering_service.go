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

type offeringRepository interface {
	FindByID(ctx context.Context, id string) (*models.CourseOffering, error)
	List(ctx context.Context, filter models.OfferingFilter) ([]models.CourseOffering, int, error)
	Create(ctx context.Context, offering *models.CourseOffering) error
	Update(ctx context.Context, offering *models.CourseOffering) error
	Delete(ctx context.Context, id string) error
}

type offeringUserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type offeringModuleLookup interface {
	FindByID(ctx context.Context, id string) (*models.Module, error)
}

// OfferingService provides course offering management use cases.
type OfferingService struct {
	repo      offeringRepository
	modules   offeringModuleLookup
	classes   classLookup
	users     offeringUserLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOfferingService constructs an OfferingService instance.
func NewOfferingService(repo offeringRepository, modules offeringModuleLookup, classes classLookup, users offeringUserLookup, validate *validator.Validate, logger *zap.Logger) *OfferingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &OfferingService{repo: repo, modules: modules, classes: classes, users: users, validator: validate, logger: logger}
}

// List returns offerings matching the filter with pagination metadata.
func (s *OfferingService) List(ctx context.Context, filter models.OfferingFilter) ([]models.CourseOffering, *models.Pagination, error) {
	offerings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return offerings, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns an offering by id with nested module and class references.
func (s *OfferingService) Get(ctx context.Context, id string) (*models.CourseOffering, error) {
	offering, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	return offering, nil
}

// Create validates references and invariants, then stores a new offering.
func (s *OfferingService) Create(ctx context.Context, req models.CreateOfferingRequest) (*models.CourseOffering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}

	if fieldErr := validation.DateRange(req.StartDate, req.EndDate); fieldErr != nil {
		return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
	}
	if fieldErr := validation.CapacityBounds(req.Capacity, req.CurrentEnrollment); fieldErr != nil {
		return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
	}

	if _, err := s.modules.FindByID(ctx, req.ModuleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Validation("module_id", "module does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Validation("class_id", "class does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if err := s.checkFacilitator(ctx, req.FacilitatorID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = models.OfferingPlanned
	}

	offering := &models.CourseOffering{
		ModuleID:          req.ModuleID,
		ClassID:           req.ClassID,
		FacilitatorID:     req.FacilitatorID,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            status,
		Capacity:          req.Capacity,
		CurrentEnrollment: req.CurrentEnrollment,
	}
	if err := s.repo.Create(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create offering")
	}
	return s.Get(ctx, offering.ID)
}

// Update applies a partial update. Date and capacity invariants are checked
// against the merged state, so a one-sided change cannot break them.
func (s *OfferingService) Update(ctx context.Context, id string, req models.UpdateOfferingRequest) (*models.CourseOffering, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid offering payload")
	}

	offering, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	start := offering.StartDate
	end := offering.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if fieldErr := validation.DateRange(start, end); fieldErr != nil {
		return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
	}

	capacity := offering.Capacity
	enrollment := offering.CurrentEnrollment
	if req.Capacity != nil {
		capacity = *req.Capacity
	}
	if req.CurrentEnrollment != nil {
		enrollment = *req.CurrentEnrollment
	}
	if fieldErr := validation.CapacityBounds(capacity, enrollment); fieldErr != nil {
		return nil, appErrors.Validation(fieldErr.Field, fieldErr.Message)
	}

	if req.ModuleID != nil && *req.ModuleID != offering.ModuleID {
		if _, err := s.modules.FindByID(ctx, *req.ModuleID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Validation("module_id", "module does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
		}
		offering.ModuleID = *req.ModuleID
	}
	if req.ClassID != nil && *req.ClassID != offering.ClassID {
		if _, err := s.classes.FindByID(ctx, *req.ClassID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Validation("class_id", "class does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
		offering.ClassID = *req.ClassID
	}
	if req.FacilitatorID != nil && *req.FacilitatorID != offering.FacilitatorID {
		if err := s.checkFacilitator(ctx, *req.FacilitatorID); err != nil {
			return nil, err
		}
		offering.FacilitatorID = *req.FacilitatorID
	}

	offering.StartDate = start
	offering.EndDate = end
	offering.Capacity = capacity
	offering.CurrentEnrollment = enrollment
	if req.Status != nil {
		offering.Status = *req.Status
	}

	if err := s.repo.Update(ctx, offering); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update offering")
	}
	return s.Get(ctx, offering.ID)
}

// Delete removes an offering.
func (s *OfferingService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete offering")
	}
	return nil
}

func (s *OfferingService) checkFacilitator(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Validation("facilitator_id", "facilitator does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load facilitator")
	}
	if user.Role != models.RoleFacilitator {
		return appErrors.Validation("facilitator_id", "user is not a facilitator")
	}
	return nil
}
