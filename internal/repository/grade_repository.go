package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-mgmt-api/internal/models"
)

const gradeColumns = `id, student_id, offering_id, formative_one, formative_two, summative, final_grade, grade_status, feedback, created_at, updated_at`

// GradeRepository provides database access for grade records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new instance of GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// FindByID returns a grade record by identifier.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	query := fmt.Sprintf(`SELECT %s FROM grades WHERE id = $1 LIMIT 1`, gradeColumns)
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find grade by id: %w", err)
	}
	return &grade, nil
}

// List returns grade records matching the filter.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, error) {
	query := fmt.Sprintf(`SELECT %s FROM grades WHERE 1=1`, gradeColumns)
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.OfferingID != "" {
		conditions = append(conditions, fmt.Sprintf("offering_id = $%d", len(args)+1))
		args = append(args, filter.OfferingID)
	}
	if filter.GradeStatus != "" {
		conditions = append(conditions, fmt.Sprintf("grade_status = $%d", len(args)+1))
		args = append(args, filter.GradeStatus)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, fmt.Errorf("list grades: %w", err)
	}
	return grades, nil
}

// Create inserts a new grade record.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	grade.CreatedAt = now
	grade.UpdatedAt = now

	const query = `INSERT INTO grades (id, student_id, offering_id, formative_one, formative_two, summative, final_grade, grade_status, feedback, created_at, updated_at)
		VALUES (:id, :student_id, :offering_id, :formative_one, :formative_two, :summative, :final_grade, :grade_status, :feedback, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update rewrites the mutable grade fields.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grades SET formative_one = :formative_one, formative_two = :formative_two, summative = :summative, final_grade = :final_grade, grade_status = :grade_status, feedback = :feedback, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}

// UpdateStatus transitions a grade record to the given status.
func (r *GradeRepository) UpdateStatus(ctx context.Context, id string, status models.GradeStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE grades SET grade_status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("update grade status: %w", err)
	}
	return nil
}

// Delete removes a grade row.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}
