package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
)

type moduleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Module, error)
	List(ctx context.Context, active *bool) ([]models.Module, error)
	CodeExists(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, module *models.Module) error
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id string) error
	CountOfferings(ctx context.Context, moduleID string) (int, error)
}

// ModuleService provides study module management use cases.
type ModuleService struct {
	repo      moduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewModuleService constructs a ModuleService instance.
func NewModuleService(repo moduleRepository, validate *validator.Validate, logger *zap.Logger) *ModuleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ModuleService{repo: repo, validator: validate, logger: logger}
}

// List returns modules, optionally filtered by the active flag.
func (s *ModuleService) List(ctx context.Context, active *bool) ([]models.Module, error) {
	modules, err := s.repo.List(ctx, active)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list modules")
	}
	return modules, nil
}

// Get returns a module by id.
func (s *ModuleService) Get(ctx context.Context, id string) (*models.Module, error) {
	module, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "module not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
	}
	return module, nil
}

// Create validates and stores a new module. Modules are active by default.
func (s *ModuleService) Create(ctx context.Context, req models.CreateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}

	if taken, err := s.repo.CodeExists(ctx, req.Code, ""); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check module code")
	} else if taken {
		return nil, appErrors.Conflict("module code already exists", "choose a different code")
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	module := &models.Module{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Credits:     req.Credits,
		IsActive:    active,
	}
	if err := s.repo.Create(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create module")
	}
	return module, nil
}

// Update applies a partial update to a module.
func (s *ModuleService) Update(ctx context.Context, id string, req models.UpdateModuleRequest) (*models.Module, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid module payload")
	}

	module, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Code != nil && *req.Code != module.Code {
		if taken, err := s.repo.CodeExists(ctx, *req.Code, module.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check module code")
		} else if taken {
			return nil, appErrors.Conflict("module code already exists", "choose a different code")
		}
		module.Code = *req.Code
	}
	if req.Name != nil {
		module.Name = *req.Name
	}
	if req.Description != nil {
		module.Description = req.Description
	}
	if req.Credits != nil {
		module.Credits = *req.Credits
	}
	if req.IsActive != nil {
		module.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, module); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update module")
	}
	return module, nil
}

// Delete removes a module unless offerings still reference it.
func (s *ModuleService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountOfferings(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count offerings")
	}
	if count > 0 {
		return appErrors.Conflict("module has course offerings", "deactivate the module instead of deleting it")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete module")
	}
	return nil
}
