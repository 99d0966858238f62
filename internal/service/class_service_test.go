package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-mgmt-api/internal/models"
	appErrors "github.com/noah-isme/course-mgmt-api/pkg/errors"
)

type mockClassRepo struct {
	class           *models.Class
	codeTaken       bool
	nameTaken       bool
	enrollmentCount int
	offeringCount   int
	listCalls       int
	created         *models.Class
	deleted         string
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if m.class == nil || m.class.ID != id {
		return nil, sql.ErrNoRows
	}
	clone := *m.class
	return &clone, nil
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	m.listCalls++
	if m.class == nil {
		return nil, 0, nil
	}
	return []models.Class{*m.class}, 1, nil
}

func (m *mockClassRepo) CodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	return m.codeTaken, nil
}

func (m *mockClassRepo) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	return m.nameTaken, nil
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	class.ID = "class-1"
	m.created = class
	m.class = class
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class) error {
	m.class = class
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func (m *mockClassRepo) CountEnrollments(ctx context.Context, classID string) (int, error) {
	return m.enrollmentCount, nil
}

func (m *mockClassRepo) CountOfferings(ctx context.Context, classID string) (int, error) {
	return m.offeringCount, nil
}

type mockCohortLookup struct {
	cohort *models.Cohort
}

func (m *mockCohortLookup) FindByID(ctx context.Context, id string) (*models.Cohort, error) {
	if m.cohort == nil || m.cohort.ID != id {
		return nil, sql.ErrNoRows
	}
	return m.cohort, nil
}

// fakeListingCache mimics the versioned namespace scheme of the Redis store.
type fakeListingCache struct {
	version int
	entries map[string][]byte
}

func newFakeListingCache() *fakeListingCache {
	return &fakeListingCache{version: 1, entries: make(map[string][]byte)}
}

func (f *fakeListingCache) Key(ctx context.Context, namespace, suffix string) string {
	return fmt.Sprintf("%s:%d:%s", namespace, f.version, suffix)
}

func (f *fakeListingCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeListingCache) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeListingCache) Invalidate(ctx context.Context, namespace string) error {
	f.version++
	return nil
}

func seededClass() *models.Class {
	return &models.Class{
		ID:           "class-1",
		Name:         "Cyber Cohort A",
		Code:         "CC-A",
		Trimester:    "T1",
		IntakePeriod: models.IntakeHT1,
		Mode:         models.ModeOnline,
		CohortID:     "cohort-1",
	}
}

func TestClassListCacheAside(t *testing.T) {
	repo := &mockClassRepo{class: seededClass()}
	cache := newFakeListingCache()
	svc := NewClassService(repo, &mockCohortLookup{}, cache, nil, nil, nil)

	filter := models.ClassFilter{Page: 1, PageSize: 10}

	classes, pagination, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, 1, pagination.TotalCount)
	assert.Equal(t, 1, repo.listCalls)

	// Second identical request is served from the cache.
	classes, _, err = svc.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, 1, repo.listCalls)

	// A different filter misses and goes back to the repository.
	_, _, err = svc.List(context.Background(), models.ClassFilter{CohortID: "cohort-1", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestClassListRecordsCacheMetrics(t *testing.T) {
	repo := &mockClassRepo{class: seededClass()}
	cache := newFakeListingCache()
	metrics := NewMetricsService()
	svc := NewClassService(repo, &mockCohortLookup{}, cache, metrics, nil, nil)

	filter := models.ClassFilter{Page: 1, PageSize: 10}
	_, _, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	_, _, err = svc.List(context.Background(), filter)
	require.NoError(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
}

func TestClassMutationInvalidatesListings(t *testing.T) {
	repo := &mockClassRepo{class: seededClass()}
	cache := newFakeListingCache()
	svc := NewClassService(repo, &mockCohortLookup{}, cache, nil, nil, nil)

	filter := models.ClassFilter{Page: 1, PageSize: 10}
	_, _, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	name := "Cyber Cohort B"
	_, err = svc.Update(context.Background(), "class-1", models.UpdateClassRequest{Name: &name})
	require.NoError(t, err)

	// The version bump moved the key space, so the stale entry is invisible.
	_, _, err = svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}

func TestClassCreateRequiresCohort(t *testing.T) {
	svc := NewClassService(&mockClassRepo{}, &mockCohortLookup{}, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), models.CreateClassRequest{
		Name:         "Cyber Cohort A",
		Code:         "CC-A",
		Trimester:    "T1",
		IntakePeriod: models.IntakeHT1,
		Mode:         models.ModeOnline,
		CohortID:     "missing",
	})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Fields, "cohort_id")
}

func TestClassCreateCodeConflict(t *testing.T) {
	repo := &mockClassRepo{codeTaken: true}
	cohorts := &mockCohortLookup{cohort: &models.Cohort{ID: "cohort-1"}}
	svc := NewClassService(repo, cohorts, nil, nil, nil, nil)

	_, err := svc.Create(context.Background(), models.CreateClassRequest{
		Name:         "Cyber Cohort A",
		Code:         "CC-A",
		Trimester:    "T1",
		IntakePeriod: models.IntakeHT1,
		Mode:         models.ModeOnline,
		CohortID:     "cohort-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestClassDeleteGuards(t *testing.T) {
	repo := &mockClassRepo{class: seededClass(), enrollmentCount: 5}
	svc := NewClassService(repo, &mockCohortLookup{}, nil, nil, nil, nil)

	err := svc.Delete(context.Background(), "class-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	repo.enrollmentCount = 0
	repo.offeringCount = 2
	err = svc.Delete(context.Background(), "class-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)

	repo.offeringCount = 0
	require.NoError(t, svc.Delete(context.Background(), "class-1"))
	assert.Equal(t, "class-1", repo.deleted)
}
