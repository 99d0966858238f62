package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
)

type mockAuthRepo struct {
	users          map[string]*models.User
	profiles       map[string]*models.RoleProfile
	usernameTaken  bool
	emailTaken     bool
	studentIDTaken bool
	created        *models.User
	createdProfile *models.RoleProfile
	auditLogs      []*models.AuditLog
}

func newMockAuthRepo() *mockAuthRepo {
	return &mockAuthRepo{
		users:    make(map[string]*models.User),
		profiles: make(map[string]*models.RoleProfile),
	}
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockAuthRepo) UsernameExists(ctx context.Context, username, excludeID string) (bool, error) {
	return m.usernameTaken, nil
}

func (m *mockAuthRepo) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	return m.emailTaken, nil
}

func (m *mockAuthRepo) StudentNumberExists(ctx context.Context, studentID, excludeUserID string) (bool, error) {
	return m.studentIDTaken, nil
}

func (m *mockAuthRepo) FindProfile(ctx context.Context, user *models.User) (*models.RoleProfile, error) {
	p, ok := m.profiles[user.ID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p, nil
}

func (m *mockAuthRepo) CreateWithProfile(ctx context.Context, user *models.User, profile *models.RoleProfile) error {
	user.ID = "user-1"
	m.created = user
	m.createdProfile = profile
	m.users[user.Username] = user
	m.profiles[user.ID] = profile
	return nil
}

func (m *mockAuthRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "test"}
}

func TestRegisterDiscardsForeignRoleFields(t *testing.T) {
	repo := newMockAuthRepo()
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	dept := "Engineering"
	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Username:   "alice",
		Email:      "alice@example.com",
		Password:   "supersecret",
		Role:       models.RoleStudent,
		FirstName:  "Alice",
		LastName:   "Nguyen",
		StudentID:  "S-1001",
		Department: &dept,
	}, models.RequestMeta{})
	require.NoError(t, err)

	require.NotNil(t, repo.createdProfile.Student)
	assert.Nil(t, repo.createdProfile.Manager)
	assert.Equal(t, "S-1001", repo.createdProfile.Student.StudentID)

	assert.NotEmpty(t, res.Token)
	assert.Equal(t, models.RoleStudent, res.User.Role)
	assert.Nil(t, res.User.Department)
}

func TestRegisterStudentRequiresStudentID(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(), nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username:  "bob",
		Email:     "bob@example.com",
		Password:  "supersecret",
		Role:      models.RoleStudent,
		FirstName: "Bob",
		LastName:  "Reyes",
	}, models.RequestMeta{})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "student_id")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	repo := newMockAuthRepo()
	repo.usernameTaken = true
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "supersecret",
		Role:      models.RoleManager,
		FirstName: "Alice",
		LastName:  "Nguyen",
	}, models.RequestMeta{})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.NotEmpty(t, appErr.Hint)
}

func TestLogin(t *testing.T) {
	repo := newMockAuthRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("supersecret"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["carol"] = &models.User{
		ID:           "user-2",
		Username:     "carol",
		Email:        "carol@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleFacilitator,
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	res, err := svc.Login(context.Background(), models.LoginRequest{Username: "carol", Password: "supersecret"}, models.RequestMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "carol", res.User.Username)
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionLogin, repo.auditLogs[0].Action)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "carol", Password: "wrong"}, models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "nobody", Password: "supersecret"}, models.RequestMeta{})
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestValidateTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(), nil, nil, testAuthConfig())

	token, err := svc.generateAccessToken(&models.User{ID: "user-3", Role: models.RoleManager})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-3", claims.UserID)
	assert.Equal(t, models.RoleManager, claims.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(), nil, nil, AuthConfig{Secret: "test-secret", Expiry: -time.Minute})

	token, err := svc.generateAccessToken(&models.User{ID: "user-3", Role: models.RoleManager})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestValidateTokenTampered(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(), nil, nil, testAuthConfig())

	other := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.JWTClaims{UserID: "user-3"})
	token, err := other.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)

	_, err = svc.ValidateToken("not-a-token")
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
}

func TestResolveIdentityDeletedAccount(t *testing.T) {
	svc := NewAuthService(newMockAuthRepo(), nil, nil, testAuthConfig())

	_, err := svc.ResolveIdentity(context.Background(), &models.JWTClaims{UserID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
}

func TestResolveIdentityFlattensProfile(t *testing.T) {
	repo := newMockAuthRepo()
	pos := "Senior Lecturer"
	repo.users["dave"] = &models.User{ID: "user-4", Username: "dave", Role: models.RoleFacilitator}
	repo.profiles["user-4"] = &models.RoleProfile{
		Facilitator: &models.FacilitatorProfile{UserID: "user-4", FacultyPosition: &pos},
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	user, err := svc.ResolveIdentity(context.Background(), &models.JWTClaims{UserID: "user-4"})
	require.NoError(t, err)
	require.NotNil(t, user.FacultyPosition)
	assert.Equal(t, pos, *user.FacultyPosition)
	assert.Nil(t, user.StudentID)
}
