package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
)

const classCacheNamespace = "classes"

type classRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error)
	CodeExists(ctx context.Context, code, excludeID string) (bool, error)
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
	CountEnrollments(ctx context.Context, classID string) (int, error)
	CountOfferings(ctx context.Context, classID string) (int, error)
}

type classCohortLookup interface {
	FindByID(ctx context.Context, id string) (*models.Cohort, error)
}

type listingCache interface {
	Key(ctx context.Context, namespace, suffix string) string
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, namespace string) error
}

type classListing struct {
	Classes    []models.Class    `json:"classes"`
	Pagination models.Pagination `json:"pagination"`
}

// ClassService provides class management use cases. Listings are served
// through a read cache invalidated on every mutation.
type ClassService struct {
	repo      classRepository
	cohorts   classCohortLookup
	cache     listingCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(repo classRepository, cohorts classCohortLookup, cache listingCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, cohorts: cohorts, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// List returns classes matching the filter with pagination metadata.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, *models.Pagination, error) {
	var cacheKey string
	if s.cache != nil {
		suffix := fmt.Sprintf("cohort=%s&intake=%s&mode=%s&page=%d&size=%d",
			filter.CohortID, filter.IntakePeriod, filter.Mode, filter.Page, filter.PageSize)
		cacheKey = s.cache.Key(ctx, classCacheNamespace, suffix)

		var cached classListing
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("class listing cache read failed", zap.Error(err))
		} else {
			s.metrics.RecordCacheLookup(hit)
			if hit {
				return cached.Classes, &cached.Pagination, nil
			}
		}
	}

	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	pagination := models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, classListing{Classes: classes, Pagination: pagination}); err != nil {
			s.logger.Warn("class listing cache write failed", zap.Error(err))
		}
	}

	return classes, &pagination, nil
}

// Get returns a class by id with its cohort reference.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// Create validates and stores a new class.
func (s *ClassService) Create(ctx context.Context, req models.CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	if _, err := s.cohorts.FindByID(ctx, req.CohortID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Validation("cohort_id", "cohort does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort")
	}

	if taken, err := s.repo.CodeExists(ctx, req.Code, ""); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class code")
	} else if taken {
		return nil, appErrors.Conflict("class code already exists", "choose a different code")
	}
	if taken, err := s.repo.NameExists(ctx, req.Name, ""); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name")
	} else if taken {
		return nil, appErrors.Conflict("class name already exists", "choose a different name")
	}

	class := &models.Class{
		Name:         req.Name,
		Code:         req.Code,
		Trimester:    req.Trimester,
		IntakePeriod: req.IntakePeriod,
		Mode:         req.Mode,
		CohortID:     req.CohortID,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	s.invalidateListings(ctx)
	return s.Get(ctx, class.ID)
}

// Update applies a partial update to a class.
func (s *ClassService) Update(ctx context.Context, id string, req models.UpdateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}

	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.CohortID != nil && *req.CohortID != class.CohortID {
		if _, err := s.cohorts.FindByID(ctx, *req.CohortID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Validation("cohort_id", "cohort does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cohort")
		}
		class.CohortID = *req.CohortID
	}
	if req.Code != nil && *req.Code != class.Code {
		if taken, err := s.repo.CodeExists(ctx, *req.Code, class.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class code")
		} else if taken {
			return nil, appErrors.Conflict("class code already exists", "choose a different code")
		}
		class.Code = *req.Code
	}
	if req.Name != nil && *req.Name != class.Name {
		if taken, err := s.repo.NameExists(ctx, *req.Name, class.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class name")
		} else if taken {
			return nil, appErrors.Conflict("class name already exists", "choose a different name")
		}
		class.Name = *req.Name
	}
	if req.Trimester != nil {
		class.Trimester = *req.Trimester
	}
	if req.IntakePeriod != nil {
		class.IntakePeriod = *req.IntakePeriod
	}
	if req.Mode != nil {
		class.Mode = *req.Mode
	}

	if err := s.repo.Update(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}

	s.invalidateListings(ctx)
	return s.Get(ctx, class.ID)
}

// Delete removes a class unless students or offerings still reference it.
func (s *ClassService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	enrolled, err := s.repo.CountEnrollments(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if enrolled > 0 {
		return appErrors.Conflict("class has enrolled students", "move the students to another class first")
	}

	offerings, err := s.repo.CountOfferings(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count offerings")
	}
	if offerings > 0 {
		return appErrors.Conflict("class has course offerings", "delete the offerings first")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}

	s.invalidateListings(ctx)
	return nil
}

func (s *ClassService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, classCacheNamespace); err != nil {
		s.logger.Warn("class listing cache invalidation failed", zap.Error(err))
	}
}
