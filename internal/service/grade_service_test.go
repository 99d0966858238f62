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

type mockGradeRepo struct {
	grade      *models.Grade
	lastFilter models.GradeFilter
	created    *models.Grade
	updated    *models.Grade
	newStatus  models.GradeStatus
	deleted    string
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	if m.grade == nil || m.grade.ID != id {
		return nil, sql.ErrNoRows
	}
	clone := *m.grade
	return &clone, nil
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	m.lastFilter = filter
	if m.grade == nil {
		return nil, nil
	}
	return []models.Grade{*m.grade}, nil
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	grade.ID = "grade-1"
	m.created = grade
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	m.updated = grade
	return nil
}

func (m *mockGradeRepo) UpdateStatus(ctx context.Context, id string, status models.GradeStatus) error {
	m.newStatus = status
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

type mockGradeUsers struct {
	user      *models.User
	auditLogs []*models.AuditLog
}

func (m *mockGradeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func (m *mockGradeUsers) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockOfferingLookup struct {
	offering *models.CourseOffering
}

func (m *mockOfferingLookup) FindByID(ctx context.Context, id string) (*models.CourseOffering, error) {
	if m.offering == nil || m.offering.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.offering, nil
}

func f64(v float64) *float64 { return &v }

func TestGradeListScopesStudents(t *testing.T) {
	repo := &mockGradeRepo{}
	svc := NewGradeService(repo, &mockGradeUsers{}, &mockOfferingLookup{}, nil, nil)

	actor := &models.AuthUser{ID: "student-1", Role: models.RoleStudent}
	_, err := svc.List(context.Background(), models.GradeFilter{StudentID: "someone-else"}, actor)
	require.NoError(t, err)

	assert.Equal(t, "student-1", repo.lastFilter.StudentID)
	assert.Equal(t, string(models.GradePublished), repo.lastFilter.GradeStatus)
}

func TestGradeGetHidesDraftsFromStudents(t *testing.T) {
	repo := &mockGradeRepo{grade: &models.Grade{
		ID:          "grade-1",
		StudentID:   "student-1",
		GradeStatus: models.GradeDraft,
	}}
	svc := NewGradeService(repo, &mockGradeUsers{}, &mockOfferingLookup{}, nil, nil)

	actor := &models.AuthUser{ID: "student-1", Role: models.RoleStudent}
	_, err := svc.Get(context.Background(), "grade-1", actor)
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)

	repo.grade.GradeStatus = models.GradePublished
	grade, err := svc.Get(context.Background(), "grade-1", actor)
	require.NoError(t, err)
	assert.Equal(t, "grade-1", grade.ID)

	other := &models.AuthUser{ID: "student-2", Role: models.RoleStudent}
	_, err = svc.Get(context.Background(), "grade-1", other)
	require.Error(t, err)
	assert.Equal(t, 403, appErrors.FromError(err).Status)
}

func TestGradeCreateStartsAsDraft(t *testing.T) {
	repo := &mockGradeRepo{}
	users := &mockGradeUsers{user: &models.User{ID: "student-1", Role: models.RoleStudent}}
	offerings := &mockOfferingLookup{offering: &models.CourseOffering{ID: "offering-1"}}
	svc := NewGradeService(repo, users, offerings, nil, nil)

	grade, err := svc.Create(context.Background(), models.CreateGradeRequest{
		StudentID:    "student-1",
		OfferingID:   "offering-1",
		FormativeOne: f64(70),
	})
	require.NoError(t, err)
	assert.Equal(t, models.GradeDraft, grade.GradeStatus)
	require.NotNil(t, repo.created)
}

func TestGradeCreateRejectsOutOfRangeScore(t *testing.T) {
	users := &mockGradeUsers{user: &models.User{ID: "student-1", Role: models.RoleStudent}}
	offerings := &mockOfferingLookup{offering: &models.CourseOffering{ID: "offering-1"}}
	svc := NewGradeService(&mockGradeRepo{}, users, offerings, nil, nil)

	_, err := svc.Create(context.Background(), models.CreateGradeRequest{
		StudentID:  "student-1",
		OfferingID: "offering-1",
		Summative:  f64(100.5),
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "summative")
}

func TestGradeCreateRejectsNonStudent(t *testing.T) {
	users := &mockGradeUsers{user: &models.User{ID: "user-1", Role: models.RoleManager}}
	offerings := &mockOfferingLookup{offering: &models.CourseOffering{ID: "offering-1"}}
	svc := NewGradeService(&mockGradeRepo{}, users, offerings, nil, nil)

	_, err := svc.Create(context.Background(), models.CreateGradeRequest{
		StudentID:  "user-1",
		OfferingID: "offering-1",
	})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "student_id")
}

func TestGradeUpdateValidatesMergedScores(t *testing.T) {
	repo := &mockGradeRepo{grade: &models.Grade{
		ID:           "grade-1",
		StudentID:    "student-1",
		GradeStatus:  models.GradeDraft,
		FormativeOne: f64(95),
	}}
	svc := NewGradeService(repo, &mockGradeUsers{}, &mockOfferingLookup{}, nil, nil)

	_, err := svc.Update(context.Background(), "grade-1", models.UpdateGradeRequest{FormativeTwo: f64(120)})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "formative_two")

	grade, err := svc.Update(context.Background(), "grade-1", models.UpdateGradeRequest{FormativeTwo: f64(80)})
	require.NoError(t, err)
	require.NotNil(t, grade.FormativeTwo)
	assert.Equal(t, 80.0, *grade.FormativeTwo)
	assert.Equal(t, 95.0, *grade.FormativeOne)
}

func TestGradePublishIsOneWay(t *testing.T) {
	repo := &mockGradeRepo{grade: &models.Grade{
		ID:          "grade-1",
		StudentID:   "student-1",
		GradeStatus: models.GradeDraft,
	}}
	users := &mockGradeUsers{}
	svc := NewGradeService(repo, users, &mockOfferingLookup{}, nil, nil)

	grade, err := svc.Publish(context.Background(), "grade-1", "manager-1", models.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.GradePublished, grade.GradeStatus)
	assert.Equal(t, models.GradePublished, repo.newStatus)
	require.Len(t, users.auditLogs, 1)
	assert.Equal(t, models.AuditActionGradePublish, users.auditLogs[0].Action)

	repo.grade.GradeStatus = models.GradePublished
	_, err = svc.Publish(context.Background(), "grade-1", "manager-1", models.RequestMeta{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	require.Len(t, users.auditLogs, 1)
}
