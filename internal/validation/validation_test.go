package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-mgmt-api/internal/models"
)

func TestDateRange(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	assert.Nil(t, DateRange(start, start.AddDate(0, 6, 0)))

	err := DateRange(start, start)
	require.NotNil(t, err)
	assert.Equal(t, "end_date", err.Field)

	assert.NotNil(t, DateRange(start, start.AddDate(0, 0, -1)))
}

func TestCapacityBounds(t *testing.T) {
	assert.Nil(t, CapacityBounds(30, 0))
	assert.Nil(t, CapacityBounds(30, 30))

	err := CapacityBounds(0, 0)
	require.NotNil(t, err)
	assert.Equal(t, "capacity", err.Field)

	err = CapacityBounds(30, 31)
	require.NotNil(t, err)
	assert.Equal(t, "current_enrollment", err.Field)

	err = CapacityBounds(30, -1)
	require.NotNil(t, err)
	assert.Equal(t, "current_enrollment", err.Field)
}

func TestGradeScores(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	assert.Nil(t, GradeScores(map[string]*float64{
		"formative_one": f(0),
		"formative_two": f(100),
		"summative":     nil,
	}))

	err := GradeScores(map[string]*float64{
		"summative":     f(101),
		"formative_one": f(-0.5),
		"formative_two": f(55),
	})
	require.NotNil(t, err)
	assert.Equal(t, "formative_one, summative", err.Field)
}

func TestWeekNumber(t *testing.T) {
	assert.Nil(t, WeekNumber(1))
	assert.Nil(t, WeekNumber(52))
	assert.NotNil(t, WeekNumber(0))
	assert.NotNil(t, WeekNumber(53))
}

func TestTaskStatuses(t *testing.T) {
	assert.Nil(t, TaskStatuses(map[string]models.TaskStatus{
		"summative_grading": models.TaskDone,
		"intranet_sync":     models.TaskNotStarted,
	}))

	err := TaskStatuses(map[string]models.TaskStatus{
		"gradebook_status": models.TaskStatus("Complete"),
	})
	require.NotNil(t, err)
	assert.Equal(t, "gradebook_status", err.Field)
}

func TestPublishable(t *testing.T) {
	assert.True(t, Publishable(models.GradeDraft))
	assert.True(t, Publishable(models.GradeArchived))
	assert.False(t, Publishable(models.GradePublished))
}
