package models

import "time"

// CohortStatus enumerates the lifecycle of a cohort.
type CohortStatus string

const (
	CohortPlanned   CohortStatus = "planned"
	CohortActive    CohortStatus = "active"
	CohortCompleted CohortStatus = "completed"
	CohortArchived  CohortStatus = "archived"
)

// Cohort is a named intake with a date range. end_date > start_date always.
type Cohort struct {
	ID        string       `db:"id" json:"id"`
	Name      string       `db:"name" json:"name"`
	StartDate time.Time    `db:"start_date" json:"start_date"`
	EndDate   time.Time    `db:"end_date" json:"end_date"`
	Status    CohortStatus `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// CohortRef is the whitelisted nested representation used inside other payloads.
type CohortRef struct {
	ID   string `db:"cohort_ref_id" json:"id"`
	Name string `db:"cohort_ref_name" json:"name"`
}
