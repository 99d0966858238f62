package models

import "time"

// IntakePeriod enumerates supported intake periods.
type IntakePeriod string

const (
	IntakeHT1 IntakePeriod = "HT1"
	IntakeHT2 IntakePeriod = "HT2"
	IntakeFT  IntakePeriod = "FT"
)

// ClassMode enumerates delivery modes.
type ClassMode string

const (
	ModeOnline   ClassMode = "online"
	ModeInPerson ClassMode = "in-person"
	ModeHybrid   ClassMode = "hybrid"
)

// Class is a teaching group belonging to exactly one cohort.
type Class struct {
	ID           string       `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	Code         string       `db:"code" json:"code"`
	Trimester    string       `db:"trimester" json:"trimester"`
	IntakePeriod IntakePeriod `db:"intake_period" json:"intake_period"`
	Mode         ClassMode    `db:"mode" json:"mode"`
	CohortID     string       `db:"cohort_id" json:"cohort_id"`
	Cohort       *CohortRef   `json:"cohort,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// ClassRef is the whitelisted nested representation used inside other payloads.
type ClassRef struct {
	ID   string `db:"class_ref_id" json:"id"`
	Name string `db:"class_ref_name" json:"name"`
	Code string `db:"class_ref_code" json:"code"`
}

// ClassFilter captures filtering criteria for listing classes.
type ClassFilter struct {
	CohortID     string
	IntakePeriod string
	Mode         string
	Page         int
	PageSize     int
}
