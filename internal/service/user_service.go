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

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindProfile(ctx context.Context, user *models.User) (*models.RoleProfile, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Update(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User, profile *models.RoleProfile) error
	Delete(ctx context.Context, id string) error
	UsernameExists(ctx context.Context, username, excludeID string) (bool, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	StudentNumberExists(ctx context.Context, studentID, excludeUserID string) (bool, error)
	AssignStudentClass(ctx context.Context, userID string, classID *string) error
	CountOfferingsByFacilitator(ctx context.Context, userID string) (int, error)
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type classLookup interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// UserService provides user management use cases.
type UserService struct {
	repo      userRepository
	classes   classLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, classes classLookup, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// List returns flattened identity views matching the filter with pagination
// metadata. Each row is merged with its role profile, like single-user reads.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.AuthUser, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	flattened := make([]models.AuthUser, 0, len(users))
	for i := range users {
		user := &users[i]
		profile, err := s.repo.FindProfile(ctx, user)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
		}
		flattened = append(flattened, models.NewAuthUser(user, profile))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return flattened, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns the flattened identity for the given user.
func (s *UserService) Get(ctx context.Context, id string) (*models.AuthUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	profile, err := s.repo.FindProfile(ctx, user)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	authUser := models.NewAuthUser(user, profile)
	return &authUser, nil
}

// Update applies a partial update to the base identity and cascades role
// profile fields into the profile row matching the user's role. Fields for a
// different role are ignored.
func (s *UserService) Update(ctx context.Context, id string, req models.UpdateUserRequest, actorID string, meta models.RequestMeta) (*models.AuthUser, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if req.Username != nil && *req.Username != user.Username {
		if taken, err := s.repo.UsernameExists(ctx, *req.Username, user.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
		} else if taken {
			return nil, appErrors.Conflict("username already exists", "choose a different username")
		}
		user.Username = *req.Username
	}
	if req.Email != nil && *req.Email != user.Email {
		if taken, err := s.repo.EmailExists(ctx, *req.Email, user.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
		} else if taken {
			return nil, appErrors.Conflict("email already exists", "choose a different email")
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}

	profile, err := s.repo.FindProfile(ctx, user)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	if profile == nil {
		profile = &models.RoleProfile{}
	}

	profileChanged := false
	switch user.Role {
	case models.RoleStudent:
		if profile.Student == nil {
			profile.Student = &models.StudentProfile{UserID: user.ID}
		}
		if req.StudentID != nil && *req.StudentID != profile.Student.StudentID {
			if taken, err := s.repo.StudentNumberExists(ctx, *req.StudentID, user.ID); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student id")
			} else if taken {
				return nil, appErrors.Conflict("student id already exists", "choose a different student id")
			}
			profile.Student.StudentID = *req.StudentID
			profileChanged = true
		}
		if req.EnrollmentDate != nil {
			profile.Student.EnrollmentDate = req.EnrollmentDate
			profileChanged = true
		}
	case models.RoleFacilitator:
		if profile.Facilitator == nil {
			profile.Facilitator = &models.FacilitatorProfile{UserID: user.ID}
		}
		if req.FacultyPosition != nil {
			profile.Facilitator.FacultyPosition = req.FacultyPosition
			profileChanged = true
		}
		if req.Specialization != nil {
			profile.Facilitator.Specialization = req.Specialization
			profileChanged = true
		}
		if req.OfficeLocation != nil {
			profile.Facilitator.OfficeLocation = req.OfficeLocation
			profileChanged = true
		}
	case models.RoleManager:
		if profile.Manager == nil {
			profile.Manager = &models.ManagerProfile{UserID: user.ID}
		}
		if req.Department != nil {
			profile.Manager.Department = req.Department
			profileChanged = true
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	if profileChanged {
		if err := s.repo.UpdateProfile(ctx, user, profile); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
		}
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionUserUpdate,
		Resource:   "users",
		ResourceID: &user.ID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record user update audit log", zap.Error(err))
	}

	authUser := models.NewAuthUser(user, profile)
	return &authUser, nil
}

// Delete removes a user and its role profile. Facilitators still assigned to
// course offerings cannot be deleted.
func (s *UserService) Delete(ctx context.Context, id string, actorID string, meta models.RequestMeta) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if user.Role == models.RoleFacilitator {
		count, err := s.repo.CountOfferingsByFacilitator(ctx, user.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check offerings")
		}
		if count > 0 {
			return appErrors.Conflict("facilitator has assigned course offerings", "reassign the offerings before deleting")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionUserDelete,
		Resource:   "users",
		ResourceID: &id,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to record user delete audit log", zap.Error(err))
	}

	return nil
}

// AssignClass moves a student into a class, or detaches them when the class id
// is null. Only student accounts can be assigned.
func (s *UserService) AssignClass(ctx context.Context, userID string, req models.AssignClassRequest) (*models.AuthUser, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if user.Role != models.RoleStudent {
		return nil, appErrors.Validation("user_id", "only students can be assigned to a class")
	}

	if req.ClassID != nil {
		if _, err := s.classes.FindByID(ctx, *req.ClassID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
	}

	if err := s.repo.AssignStudentClass(ctx, userID, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign class")
	}

	return s.Get(ctx, userID)
}
