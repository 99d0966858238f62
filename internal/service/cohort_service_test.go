package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
)

type mockCohortRepo struct {
	cohort     *models.Cohort
	nameTaken  bool
	classCount int
	created    *models.Cohort
	updated    *models.Cohort
	deleted    string
}

func (m *mockCohortRepo) FindByID(ctx context.Context, id string) (*models.Cohort, error) {
	if m.cohort == nil || m.cohort.ID != id {
		return nil, sql.ErrNoRows
	}
	clone := *m.cohort
	return &clone, nil
}

func (m *mockCohortRepo) List(ctx context.Context) ([]models.Cohort, error) {
	if m.cohort == nil {
		return nil, nil
	}
	return []models.Cohort{*m.cohort}, nil
}

func (m *mockCohortRepo) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	return m.nameTaken, nil
}

func (m *mockCohortRepo) Create(ctx context.Context, cohort *models.Cohort) error {
	cohort.ID = "cohort-1"
	m.created = cohort
	return nil
}

func (m *mockCohortRepo) Update(ctx context.Context, cohort *models.Cohort) error {
	m.updated = cohort
	return nil
}

func (m *mockCohortRepo) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func (m *mockCohortRepo) CountClasses(ctx context.Context, cohortID string) (int, error) {
	return m.classCount, nil
}

func TestCohortCreateRejectsInvertedDates(t *testing.T) {
	svc := NewCohortService(&mockCohortRepo{}, nil, nil)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), models.CreateCohortRequest{
		Name:      "2026 Autumn",
		StartDate: start,
		EndDate:   start.AddDate(0, -1, 0),
	})

	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Fields, "end_date")
}

func TestCohortCreateDefaultsStatus(t *testing.T) {
	repo := &mockCohortRepo{}
	svc := NewCohortService(repo, nil, nil)

	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	cohort, err := svc.Create(context.Background(), models.CreateCohortRequest{
		Name:      "2026 Autumn",
		StartDate: start,
		EndDate:   start.AddDate(1, 0, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, models.CohortPlanned, cohort.Status)
}

func TestCohortUpdateValidatesAgainstStoredCounterpart(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockCohortRepo{cohort: &models.Cohort{
		ID:        "cohort-1",
		Name:      "2026 Autumn",
		StartDate: start,
		EndDate:   start.AddDate(1, 0, 0),
		Status:    models.CohortActive,
	}}
	svc := NewCohortService(repo, nil, nil)

	// Moving only the end date before the stored start date must fail.
	badEnd := start.AddDate(0, -1, 0)
	_, err := svc.Update(context.Background(), "cohort-1", models.UpdateCohortRequest{EndDate: &badEnd})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	goodEnd := start.AddDate(2, 0, 0)
	cohort, err := svc.Update(context.Background(), "cohort-1", models.UpdateCohortRequest{EndDate: &goodEnd})
	require.NoError(t, err)
	assert.Equal(t, goodEnd, cohort.EndDate)
	assert.Equal(t, start, cohort.StartDate)
}

func TestCohortDeleteGuardedByClasses(t *testing.T) {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	repo := &mockCohortRepo{
		cohort:     &models.Cohort{ID: "cohort-1", StartDate: start, EndDate: start.AddDate(1, 0, 0)},
		classCount: 2,
	}
	svc := NewCohortService(repo, nil, nil)

	err := svc.Delete(context.Background(), "cohort-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Empty(t, repo.deleted)

	repo.classCount = 0
	require.NoError(t, svc.Delete(context.Background(), "cohort-1"))
	assert.Equal(t, "cohort-1", repo.deleted)
}

func TestCohortGetNotFound(t *testing.T) {
	svc := NewCohortService(&mockCohortRepo{}, nil, nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
