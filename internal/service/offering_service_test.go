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

type mockOfferingRepo struct {
	offering *models.CourseOffering
	created  *models.CourseOffering
	updated  *models.CourseOffering
}

func (m *mockOfferingRepo) FindByID(ctx context.Context, id string) (*models.CourseOffering, error) {
	if m.offering == nil || m.offering.ID != id {
		return nil, sql.ErrNoRows
	}
	clone := *m.offering
	return &clone, nil
}

func (m *mockOfferingRepo) List(ctx context.Context, filter models.OfferingFilter) ([]models.CourseOffering, int, error) {
	if m.offering == nil {
		return nil, 0, nil
	}
	return []models.CourseOffering{*m.offering}, 1, nil
}

func (m *mockOfferingRepo) Create(ctx context.Context, offering *models.CourseOffering) error {
	offering.ID = "offering-1"
	m.created = offering
	m.offering = offering
	return nil
}

func (m *mockOfferingRepo) Update(ctx context.Context, offering *models.CourseOffering) error {
	m.updated = offering
	m.offering = offering
	return nil
}

func (m *mockOfferingRepo) Delete(ctx context.Context, id string) error {
	m.offering = nil
	return nil
}

type mockModuleLookup struct {
	module *models.Module
}

func (m *mockModuleLookup) FindByID(ctx context.Context, id string) (*models.Module, error) {
	if m.module == nil || m.module.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.module, nil
}

type mockOfferingUsers struct {
	user *models.User
}

func (m *mockOfferingUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil || m.user.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

func newOfferingFixture() (*OfferingService, *mockOfferingRepo) {
	repo := &mockOfferingRepo{}
	modules := &mockModuleLookup{module: &models.Module{ID: "module-1"}}
	classes := &mockClassLookup{class: &models.Class{ID: "class-1"}}
	users := &mockOfferingUsers{user: &models.User{ID: "fac-1", Role: models.RoleFacilitator}}
	return NewOfferingService(repo, modules, classes, users, nil, nil), repo
}

func validOfferingRequest() models.CreateOfferingRequest {
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	return models.CreateOfferingRequest{
		ModuleID:      "module-1",
		ClassID:       "class-1",
		FacilitatorID: "fac-1",
		StartDate:     start,
		EndDate:       start.AddDate(0, 3, 0),
		Capacity:      30,
	}
}

func TestOfferingCreateDefaultsStatus(t *testing.T) {
	svc, repo := newOfferingFixture()

	offering, err := svc.Create(context.Background(), validOfferingRequest())
	require.NoError(t, err)
	assert.Equal(t, models.OfferingPlanned, offering.Status)
	require.NotNil(t, repo.created)
}

func TestOfferingCreateRejectsNonFacilitator(t *testing.T) {
	repo := &mockOfferingRepo{}
	modules := &mockModuleLookup{module: &models.Module{ID: "module-1"}}
	classes := &mockClassLookup{class: &models.Class{ID: "class-1"}}
	users := &mockOfferingUsers{user: &models.User{ID: "fac-1", Role: models.RoleStudent}}
	svc := NewOfferingService(repo, modules, classes, users, nil, nil)

	_, err := svc.Create(context.Background(), validOfferingRequest())
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "facilitator_id")
	assert.Nil(t, repo.created)
}

func TestOfferingCreateRejectsOverEnrollment(t *testing.T) {
	svc, _ := newOfferingFixture()

	req := validOfferingRequest()
	req.Capacity = 10
	req.CurrentEnrollment = 11
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "current_enrollment")
}

func TestOfferingUpdateChecksMergedCapacity(t *testing.T) {
	svc, repo := newOfferingFixture()
	_, err := svc.Create(context.Background(), validOfferingRequest())
	require.NoError(t, err)
	repo.offering.CurrentEnrollment = 25

	// Shrinking capacity below the stored enrollment must fail.
	smaller := 20
	_, err = svc.Update(context.Background(), "offering-1", models.UpdateOfferingRequest{Capacity: &smaller})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "current_enrollment")

	larger := 40
	offering, err := svc.Update(context.Background(), "offering-1", models.UpdateOfferingRequest{Capacity: &larger})
	require.NoError(t, err)
	assert.Equal(t, 40, offering.Capacity)
	assert.Equal(t, 25, offering.CurrentEnrollment)
}

func TestOfferingUpdateChecksMergedDates(t *testing.T) {
	svc, repo := newOfferingFixture()
	_, err := svc.Create(context.Background(), validOfferingRequest())
	require.NoError(t, err)

	badEnd := repo.offering.StartDate.AddDate(0, 0, -1)
	_, err = svc.Update(context.Background(), "offering-1", models.UpdateOfferingRequest{EndDate: &badEnd})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestOfferingGetNotFound(t *testing.T) {
	svc, _ := newOfferingFixture()

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
