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

type mockActivityLogRepo struct {
	log     *models.ActivityLog
	created *models.ActivityLog
	updated *models.ActivityLog
}

func (m *mockActivityLogRepo) FindByID(ctx context.Context, id string) (*models.ActivityLog, error) {
	if m.log == nil || m.log.ID != id {
		return nil, sql.ErrNoRows
	}
	clone := *m.log
	return &clone, nil
}

func (m *mockActivityLogRepo) List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLog, error) {
	if m.log == nil {
		return nil, nil
	}
	return []models.ActivityLog{*m.log}, nil
}

func (m *mockActivityLogRepo) Create(ctx context.Context, log *models.ActivityLog) error {
	log.ID = "log-1"
	m.created = log
	return nil
}

func (m *mockActivityLogRepo) Update(ctx context.Context, log *models.ActivityLog) error {
	m.updated = log
	return nil
}

func (m *mockActivityLogRepo) Delete(ctx context.Context, id string) error {
	m.log = nil
	return nil
}

func newActivityLogFixture() (*ActivityLogService, *mockActivityLogRepo) {
	repo := &mockActivityLogRepo{}
	offerings := &mockOfferingLookup{offering: &models.CourseOffering{ID: "offering-1"}}
	return NewActivityLogService(repo, offerings, nil, nil), repo
}

func TestActivityLogCreateDefaultsTaskStatuses(t *testing.T) {
	svc, repo := newActivityLogFixture()

	log, err := svc.Create(context.Background(), models.CreateActivityLogRequest{
		OfferingID:       "offering-1",
		WeekNumber:       12,
		SummativeGrading: models.TaskDone,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)

	assert.Equal(t, models.TaskDone, log.SummativeGrading)
	assert.Equal(t, models.TaskNotStarted, log.FormativeOneGrading)
	assert.Equal(t, models.TaskNotStarted, log.GradebookStatus)
}

func TestActivityLogCreateRejectsBadWeek(t *testing.T) {
	svc, _ := newActivityLogFixture()

	_, err := svc.Create(context.Background(), models.CreateActivityLogRequest{
		OfferingID: "offering-1",
		WeekNumber: 53,
	})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "week_number")
}

func TestActivityLogCreateRejectsUnknownTaskStatus(t *testing.T) {
	svc, _ := newActivityLogFixture()

	_, err := svc.Create(context.Background(), models.CreateActivityLogRequest{
		OfferingID:   "offering-1",
		WeekNumber:   12,
		IntranetSync: models.TaskStatus("Complete"),
	})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "intranet_sync")
}

func TestActivityLogCreateRequiresOffering(t *testing.T) {
	svc := NewActivityLogService(&mockActivityLogRepo{}, &mockOfferingLookup{}, nil, nil)

	_, err := svc.Create(context.Background(), models.CreateActivityLogRequest{
		OfferingID: "missing",
		WeekNumber: 12,
	})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "offering_id")
}

func TestActivityLogUpdateRevalidatesTaskStatus(t *testing.T) {
	svc, repo := newActivityLogFixture()
	repo.log = &models.ActivityLog{
		ID:                  "log-1",
		OfferingID:          "offering-1",
		WeekNumber:          12,
		FormativeOneGrading: models.TaskNotStarted,
		FormativeTwoGrading: models.TaskNotStarted,
		SummativeGrading:    models.TaskNotStarted,
		CourseModeration:    models.TaskNotStarted,
		IntranetSync:        models.TaskNotStarted,
		GradebookStatus:     models.TaskNotStarted,
	}

	bogus := models.TaskStatus("Complete")
	_, err := svc.Update(context.Background(), "log-1", models.UpdateActivityLogRequest{SummativeGrading: &bogus})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "summative_grading")

	done := models.TaskDone
	log, err := svc.Update(context.Background(), "log-1", models.UpdateActivityLogRequest{SummativeGrading: &done})
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, log.SummativeGrading)
	assert.Equal(t, models.TaskNotStarted, log.CourseModeration)
}
