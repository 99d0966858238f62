package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// TaskStatus tracks a weekly facilitator task.
type TaskStatus string

const (
	TaskDone       TaskStatus = "Done"
	TaskPending    TaskStatus = "Pending"
	TaskNotStarted TaskStatus = "Not Started"
)

// Valid reports whether the status is one of the known values.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskDone, TaskPending, TaskNotStarted:
		return true
	}
	return false
}

// ActivityLog is a facilitator's weekly status report for a course offering.
// WeekNumber is 1..52; attendance is an ordered JSON array of per-session records.
type ActivityLog struct {
	ID                  string         `db:"id" json:"id"`
	OfferingID          string         `db:"offering_id" json:"offering_id"`
	WeekNumber          int            `db:"week_number" json:"week_number"`
	Attendance          types.JSONText `db:"attendance" json:"attendance"`
	FormativeOneGrading TaskStatus     `db:"formative_one_grading" json:"formative_one_grading"`
	FormativeTwoGrading TaskStatus     `db:"formative_two_grading" json:"formative_two_grading"`
	SummativeGrading    TaskStatus     `db:"summative_grading" json:"summative_grading"`
	CourseModeration    TaskStatus     `db:"course_moderation" json:"course_moderation"`
	IntranetSync        TaskStatus     `db:"intranet_sync" json:"intranet_sync"`
	GradebookStatus     TaskStatus     `db:"gradebook_status" json:"gradebook_status"`
	Notes               *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updated_at"`
}

// ActivityLogFilter captures filtering criteria for listing activity logs.
type ActivityLogFilter struct {
	WeekNumber *int
	OfferingID string
}
