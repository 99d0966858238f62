package models

import "time"

// OfferingStatus enumerates the lifecycle of a course offering.
type OfferingStatus string

const (
	OfferingPlanned   OfferingStatus = "planned"
	OfferingActive    OfferingStatus = "active"
	OfferingCompleted OfferingStatus = "completed"
	OfferingCancelled OfferingStatus = "cancelled"
)

// CourseOffering is a scheduled instance of a module taught to a class by a
// facilitator. Invariants: end_date > start_date, 0 <= current_enrollment <= capacity.
type CourseOffering struct {
	ID                string         `db:"id" json:"id"`
	ModuleID          string         `db:"module_id" json:"module_id"`
	ClassID           string         `db:"class_id" json:"class_id"`
	FacilitatorID     string         `db:"facilitator_id" json:"facilitator_id"`
	StartDate         time.Time      `db:"start_date" json:"start_date"`
	EndDate           time.Time      `db:"end_date" json:"end_date"`
	Status            OfferingStatus `db:"status" json:"status"`
	Capacity          int            `db:"capacity" json:"capacity"`
	CurrentEnrollment int            `db:"current_enrollment" json:"current_enrollment"`
	Module            *ModuleRef     `json:"module,omitempty"`
	Class             *ClassRef      `json:"class,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// OfferingFilter captures filtering criteria for listing offerings.
type OfferingFilter struct {
	Status        string
	FacilitatorID string
	Page          int
	PageSize      int
}
