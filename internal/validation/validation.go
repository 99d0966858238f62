// Package validation holds the pure invariant checks performed before every
// mutation: date ranges, capacity bounds, grade score ranges and state
// transitions. These are cross-field rules that struct-tag validation cannot
// express; they take prospective entity state and return a field-level failure
// or nil. They are transport- and storage-agnostic by design so services can
// compose them freely.
package validation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/course-mgmt-api/internal/models"
)

// FieldError is a structured validation failure: which field and why.
type FieldError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fail(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

// DateRange requires end to be strictly after start.
func DateRange(start, end time.Time) *FieldError {
	if !end.After(start) {
		return fail("end_date", "end date must be after start date")
	}
	return nil
}

// CapacityBounds requires a positive capacity and an enrollment within it.
func CapacityBounds(capacity, currentEnrollment int) *FieldError {
	if capacity <= 0 {
		return fail("capacity", "capacity must be positive")
	}
	if currentEnrollment < 0 {
		return fail("current_enrollment", "current enrollment cannot be negative")
	}
	if currentEnrollment > capacity {
		return fail("current_enrollment", "current enrollment cannot exceed capacity")
	}
	return nil
}

// GradeScores checks every non-null score against [0,100]. Violations are
// aggregated into a single failure naming the offending fields; 0 and 100 are
// accepted.
func GradeScores(scores map[string]*float64) *FieldError {
	var bad []string
	for field, v := range scores {
		if v != nil && (*v < 0 || *v > 100) {
			bad = append(bad, field)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	return fail(strings.Join(bad, ", "), "grades must be between 0 and 100")
}

// WeekNumber requires the week to fall in the academic range 1..52.
func WeekNumber(week int) *FieldError {
	if week < 1 || week > 52 {
		return fail("week_number", "week number must be between 1 and 52")
	}
	return nil
}

// TaskStatuses checks the six weekly task fields against the known values.
func TaskStatuses(statuses map[string]models.TaskStatus) *FieldError {
	for field, s := range statuses {
		if !s.Valid() {
			return fail(field, "must be one of Done, Pending, Not Started")
		}
	}
	return nil
}

// Publishable reports whether a grade may transition to published. The
// transition is one-way: an already-published grade stays untouched.
func Publishable(status models.GradeStatus) bool {
	return status != models.GradePublished
}
