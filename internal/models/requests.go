package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// RegisterRequest is the self-service registration payload. Profile fields
// outside the declared role are ignored.
type RegisterRequest struct {
	Username  string   `json:"username" validate:"required,min=3,max=50"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=8"`
	Role      UserRole `json:"role" validate:"required,oneof=student facilitator manager"`
	FirstName string   `json:"first_name" validate:"required"`
	LastName  string   `json:"last_name" validate:"required"`
	ClassID   *string  `json:"class_id,omitempty"`

	// Student fields.
	StudentID      string     `json:"student_id,omitempty"`
	EnrollmentDate *time.Time `json:"enrollment_date,omitempty"`

	// Facilitator fields.
	FacultyPosition *string `json:"faculty_position,omitempty"`
	Specialization  *string `json:"specialization,omitempty"`
	OfficeLocation  *string `json:"office_location,omitempty"`

	// Manager fields.
	Department *string `json:"department,omitempty"`
}

// LoginRequest authenticates by username.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued access token and the flattened identity.
type LoginResponse struct {
	Token     string   `json:"token"`
	ExpiresIn int64    `json:"expires_in"`
	User      AuthUser `json:"user"`
}

// UpdateUserRequest is a partial update of the base identity and the role
// profile. Nil fields are left untouched.
type UpdateUserRequest struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`

	StudentID      *string    `json:"student_id,omitempty"`
	EnrollmentDate *time.Time `json:"enrollment_date,omitempty"`

	FacultyPosition *string `json:"faculty_position,omitempty"`
	Specialization  *string `json:"specialization,omitempty"`
	OfficeLocation  *string `json:"office_location,omitempty"`

	Department *string `json:"department,omitempty"`
}

// AssignClassRequest moves a student into a class. A null class id detaches.
type AssignClassRequest struct {
	ClassID *string `json:"class_id"`
}

// CreateCohortRequest creates a cohort.
type CreateCohortRequest struct {
	Name      string       `json:"name" validate:"required"`
	StartDate time.Time    `json:"start_date" validate:"required"`
	EndDate   time.Time    `json:"end_date" validate:"required"`
	Status    CohortStatus `json:"status" validate:"omitempty,oneof=planned active completed archived"`
}

// UpdateCohortRequest is a partial cohort update.
type UpdateCohortRequest struct {
	Name      *string       `json:"name,omitempty"`
	StartDate *time.Time    `json:"start_date,omitempty"`
	EndDate   *time.Time    `json:"end_date,omitempty"`
	Status    *CohortStatus `json:"status,omitempty" validate:"omitempty,oneof=planned active completed archived"`
}

// CreateClassRequest creates a class inside a cohort.
type CreateClassRequest struct {
	Name         string       `json:"name" validate:"required"`
	Code         string       `json:"code" validate:"required"`
	Trimester    string       `json:"trimester" validate:"required"`
	IntakePeriod IntakePeriod `json:"intake_period" validate:"required,oneof=HT1 HT2 FT"`
	Mode         ClassMode    `json:"mode" validate:"required,oneof=online in-person hybrid"`
	CohortID     string       `json:"cohort_id" validate:"required"`
}

// UpdateClassRequest is a partial class update.
type UpdateClassRequest struct {
	Name         *string       `json:"name,omitempty"`
	Code         *string       `json:"code,omitempty"`
	Trimester    *string       `json:"trimester,omitempty"`
	IntakePeriod *IntakePeriod `json:"intake_period,omitempty" validate:"omitempty,oneof=HT1 HT2 FT"`
	Mode         *ClassMode    `json:"mode,omitempty" validate:"omitempty,oneof=online in-person hybrid"`
	CohortID     *string       `json:"cohort_id,omitempty"`
}

// CreateModuleRequest creates a study module.
type CreateModuleRequest struct {
	Code        string  `json:"code" validate:"required"`
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Credits     int     `json:"credits" validate:"required,min=1"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// UpdateModuleRequest is a partial module update.
type UpdateModuleRequest struct {
	Code        *string `json:"code,omitempty"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Credits     *int    `json:"credits,omitempty" validate:"omitempty,min=1"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CreateOfferingRequest schedules a module for a class with a facilitator.
type CreateOfferingRequest struct {
	ModuleID          string         `json:"module_id" validate:"required"`
	ClassID           string         `json:"class_id" validate:"required"`
	FacilitatorID     string         `json:"facilitator_id" validate:"required"`
	StartDate         time.Time      `json:"start_date" validate:"required"`
	EndDate           time.Time      `json:"end_date" validate:"required"`
	Status            OfferingStatus `json:"status" validate:"omitempty,oneof=planned active completed cancelled"`
	Capacity          int            `json:"capacity" validate:"required,min=1"`
	CurrentEnrollment int            `json:"current_enrollment" validate:"omitempty,min=0"`
}

// UpdateOfferingRequest is a partial offering update.
type UpdateOfferingRequest struct {
	ModuleID          *string         `json:"module_id,omitempty"`
	ClassID           *string         `json:"class_id,omitempty"`
	FacilitatorID     *string         `json:"facilitator_id,omitempty"`
	StartDate         *time.Time      `json:"start_date,omitempty"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	Status            *OfferingStatus `json:"status,omitempty" validate:"omitempty,oneof=planned active completed cancelled"`
	Capacity          *int            `json:"capacity,omitempty" validate:"omitempty,min=1"`
	CurrentEnrollment *int            `json:"current_enrollment,omitempty" validate:"omitempty,min=0"`
}

// CreateActivityLogRequest submits a weekly status report.
type CreateActivityLogRequest struct {
	OfferingID          string         `json:"offering_id" validate:"required"`
	WeekNumber          int            `json:"week_number" validate:"required"`
	Attendance          types.JSONText `json:"attendance,omitempty"`
	FormativeOneGrading TaskStatus     `json:"formative_one_grading,omitempty"`
	FormativeTwoGrading TaskStatus     `json:"formative_two_grading,omitempty"`
	SummativeGrading    TaskStatus     `json:"summative_grading,omitempty"`
	CourseModeration    TaskStatus     `json:"course_moderation,omitempty"`
	IntranetSync        TaskStatus     `json:"intranet_sync,omitempty"`
	GradebookStatus     TaskStatus     `json:"gradebook_status,omitempty"`
	Notes               *string        `json:"notes,omitempty"`
}

// UpdateActivityLogRequest is a partial weekly report update.
type UpdateActivityLogRequest struct {
	WeekNumber          *int           `json:"week_number,omitempty"`
	Attendance          types.JSONText `json:"attendance,omitempty"`
	FormativeOneGrading *TaskStatus    `json:"formative_one_grading,omitempty"`
	FormativeTwoGrading *TaskStatus    `json:"formative_two_grading,omitempty"`
	SummativeGrading    *TaskStatus    `json:"summative_grading,omitempty"`
	CourseModeration    *TaskStatus    `json:"course_moderation,omitempty"`
	IntranetSync        *TaskStatus    `json:"intranet_sync,omitempty"`
	GradebookStatus     *TaskStatus    `json:"gradebook_status,omitempty"`
	Notes               *string        `json:"notes,omitempty"`
}

// CreateGradeRequest records assessment scores for a student on an offering.
type CreateGradeRequest struct {
	StudentID    string   `json:"student_id" validate:"required"`
	OfferingID   string   `json:"offering_id" validate:"required"`
	FormativeOne *float64 `json:"formative_one,omitempty"`
	FormativeTwo *float64 `json:"formative_two,omitempty"`
	Summative    *float64 `json:"summative,omitempty"`
	FinalGrade   *float64 `json:"final_grade,omitempty"`
	Feedback     *string  `json:"feedback,omitempty"`
}

// UpdateGradeRequest is a partial grade update.
type UpdateGradeRequest struct {
	FormativeOne *float64 `json:"formative_one,omitempty"`
	FormativeTwo *float64 `json:"formative_two,omitempty"`
	Summative    *float64 `json:"summative,omitempty"`
	FinalGrade   *float64 `json:"final_grade,omitempty"`
	Feedback     *string  `json:"feedback,omitempty"`
}

// EnqueueResponse acknowledges an accepted background job.
type EnqueueResponse struct {
	JobID string `json:"job_id"`
}
