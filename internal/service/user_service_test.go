package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
)

type mockUserRepo struct {
	user            *models.User
	profile         *models.RoleProfile
	usernameTaken   bool
	emailTaken      bool
	studentIDTaken  bool
	offeringCount   int
	updated         *models.User
	updatedProfile  *models.RoleProfile
	deleted         string
	assignedClassID *string
	assignCalled    bool
	auditLogs       []*models.AuditLog
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockUserRepo) FindProfile(ctx context.Context, user *models.User) (*models.RoleProfile, error) {
	if m.profile == nil {
		return nil, sql.ErrNoRows
	}
	return m.profile, nil
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	if m.user == nil {
		return nil, 0, nil
	}
	return []models.User{*m.user}, 1, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	m.updated = user
	return nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *models.User, profile *models.RoleProfile) error {
	m.updatedProfile = profile
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func (m *mockUserRepo) UsernameExists(ctx context.Context, username, excludeID string) (bool, error) {
	return m.usernameTaken, nil
}

func (m *mockUserRepo) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockUserRepo) StudentNumberExists(ctx context.Context, studentID, excludeUserID string) (bool, error) {
	return m.studentIDTaken, nil
}

func (m *mockUserRepo) AssignStudentClass(ctx context.Context, userID string, classID *string) error {
	m.assignCalled = true
	m.assignedClassID = classID
	return nil
}

func (m *mockUserRepo) CountOfferingsByFacilitator(ctx context.Context, userID string) (int, error) {
	return m.offeringCount, nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockClassLookup struct {
	class *models.Class
}

func (m *mockClassLookup) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if m.class == nil || m.class.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.class, nil
}

func TestUserListFlattensRoleProfiles(t *testing.T) {
	repo := &mockUserRepo{
		user:    &models.User{ID: "user-1", Username: "alice", Role: models.RoleStudent},
		profile: &models.RoleProfile{Student: &models.StudentProfile{UserID: "user-1", StudentID: "S-1001"}},
	}
	svc := NewUserService(repo, &mockClassLookup{}, nil, nil)

	users, pagination, err := svc.List(context.Background(), models.UserFilter{})
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NotNil(t, users[0].StudentID)
	assert.Equal(t, "S-1001", *users[0].StudentID)
	assert.Equal(t, 1, pagination.TotalCount)
}

func TestUserUpdateCascadesIntoRoleProfile(t *testing.T) {
	repo := &mockUserRepo{
		user: &models.User{ID: "user-1", Username: "dave", Email: "dave@example.com", Role: models.RoleFacilitator},
	}
	svc := NewUserService(repo, &mockClassLookup{}, nil, nil)

	pos := "Senior Lecturer"
	first := "David"
	user, err := svc.Update(context.Background(), "user-1", models.UpdateUserRequest{
		FirstName:       &first,
		FacultyPosition: &pos,
	}, "manager-1", models.RequestMeta{})
	require.NoError(t, err)

	require.NotNil(t, repo.updated)
	assert.Equal(t, "David", repo.updated.FirstName)

	require.NotNil(t, repo.updatedProfile)
	require.NotNil(t, repo.updatedProfile.Facilitator)
	assert.Equal(t, pos, *repo.updatedProfile.Facilitator.FacultyPosition)

	require.NotNil(t, user.FacultyPosition)
	assert.Equal(t, pos, *user.FacultyPosition)

	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionUserUpdate, repo.auditLogs[0].Action)
}

func TestUserUpdateIgnoresForeignRoleFields(t *testing.T) {
	repo := &mockUserRepo{
		user: &models.User{ID: "user-1", Username: "dave", Role: models.RoleFacilitator},
	}
	svc := NewUserService(repo, &mockClassLookup{}, nil, nil)

	dept := "Engineering"
	sid := "S-2001"
	user, err := svc.Update(context.Background(), "user-1", models.UpdateUserRequest{
		Department: &dept,
		StudentID:  &sid,
	}, "manager-1", models.RequestMeta{})
	require.NoError(t, err)

	assert.Nil(t, repo.updatedProfile)
	assert.Nil(t, user.Department)
	assert.Nil(t, user.StudentID)
}

func TestUserUpdateUsernameConflict(t *testing.T) {
	repo := &mockUserRepo{
		user:          &models.User{ID: "user-1", Username: "dave", Role: models.RoleManager},
		usernameTaken: true,
	}
	svc := NewUserService(repo, &mockClassLookup{}, nil, nil)

	taken := "alice"
	_, err := svc.Update(context.Background(), "user-1", models.UpdateUserRequest{Username: &taken}, "manager-1", models.RequestMeta{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
}

func TestUserDeleteGuardsAssignedFacilitator(t *testing.T) {
	repo := &mockUserRepo{
		user:          &models.User{ID: "user-1", Role: models.RoleFacilitator},
		offeringCount: 3,
	}
	svc := NewUserService(repo, &mockClassLookup{}, nil, nil)

	err := svc.Delete(context.Background(), "user-1", "manager-1", models.RequestMeta{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, repo.deleted)

	repo.offeringCount = 0
	require.NoError(t, svc.Delete(context.Background(), "user-1", "manager-1", models.RequestMeta{}))
	assert.Equal(t, "user-1", repo.deleted)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionUserDelete, repo.auditLogs[0].Action)
}

func TestAssignClassRejectsNonStudents(t *testing.T) {
	repo := &mockUserRepo{
		user: &models.User{ID: "user-1", Role: models.RoleFacilitator},
	}
	svc := NewUserService(repo, &mockClassLookup{}, nil, nil)

	classID := "class-1"
	_, err := svc.AssignClass(context.Background(), "user-1", models.AssignClassRequest{ClassID: &classID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.False(t, repo.assignCalled)
}

func TestAssignClassDetachesWithNull(t *testing.T) {
	repo := &mockUserRepo{
		user: &models.User{ID: "user-1", Role: models.RoleStudent},
	}
	svc := NewUserService(repo, &mockClassLookup{}, nil, nil)

	_, err := svc.AssignClass(context.Background(), "user-1", models.AssignClassRequest{})
	require.NoError(t, err)
	assert.True(t, repo.assignCalled)
	assert.Nil(t, repo.assignedClassID)
}

func TestAssignClassUnknownClass(t *testing.T) {
	repo := &mockUserRepo{
		user: &models.User{ID: "user-1", Role: models.RoleStudent},
	}
	svc := NewUserService(repo, &mockClassLookup{}, nil, nil)

	classID := "missing"
	_, err := svc.AssignClass(context.Background(), "user-1", models.AssignClassRequest{ClassID: &classID})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
	assert.False(t, repo.assignCalled)
}
