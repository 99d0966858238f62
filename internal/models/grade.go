package models

import "time"

// GradeStatus enumerates grade visibility. draft -> published is one-way;
// published is terminal for the publish operation.
type GradeStatus string

const (
	GradeDraft     GradeStatus = "draft"
	GradePublished GradeStatus = "published"
	GradeArchived  GradeStatus = "archived"
)

// Grade records assessment scores for a student on a course offering.
// Each score is nullable and, when present, within [0,100].
type Grade struct {
	ID           string      `db:"id" json:"id"`
	StudentID    string      `db:"student_id" json:"student_id"`
	OfferingID   string      `db:"offering_id" json:"offering_id"`
	FormativeOne *float64    `db:"formative_one" json:"formative_one"`
	FormativeTwo *float64    `db:"formative_two" json:"formative_two"`
	Summative    *float64    `db:"summative" json:"summative"`
	FinalGrade   *float64    `db:"final_grade" json:"final_grade"`
	GradeStatus  GradeStatus `db:"grade_status" json:"grade_status"`
	Feedback     *string     `db:"feedback" json:"feedback,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// GradeFilter captures filtering criteria for listing grades.
type GradeFilter struct {
	GradeStatus string
	StudentID   string
	OfferingID  string
}
