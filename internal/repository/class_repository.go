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

// classRow joins a class with the whitelisted cohort attributes.
type classRow struct {
	models.Class
	CohortRefID   string `db:"cohort_ref_id"`
	CohortRefName string `db:"cohort_ref_name"`
}

func (row classRow) toModel() models.Class {
	c := row.Class
	c.Cohort = &models.CohortRef{ID: row.CohortRefID, Name: row.CohortRefName}
	return c
}

const classSelect = `SELECT c.id, c.name, c.code, c.trimester, c.intake_period, c.mode, c.cohort_id, c.created_at, c.updated_at,
	co.id AS cohort_ref_id, co.name AS cohort_ref_name
	FROM classes c JOIN cohorts co ON co.id = c.cohort_id`

// ClassRepository provides database access for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository creates a new instance of ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID returns a class with its nested cohort reference.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	query := classSelect + ` WHERE c.id = $1 LIMIT 1`
	var row classRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find class by id: %w", err)
	}
	class := row.toModel()
	return &class, nil
}

// List returns classes matching the filter with total count.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	where := `WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.CohortID != "" {
		conditions = append(conditions, fmt.Sprintf("c.cohort_id = $%d", len(args)+1))
		args = append(args, filter.CohortID)
	}
	if filter.IntakePeriod != "" {
		conditions = append(conditions, fmt.Sprintf("c.intake_period = $%d", len(args)+1))
		args = append(args, filter.IntakePeriod)
	}
	if filter.Mode != "" {
		conditions = append(conditions, fmt.Sprintf("c.mode = $%d", len(args)+1))
		args = append(args, filter.Mode)
	}
	if len(conditions) > 0 {
		where += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("%s %s ORDER BY c.created_at DESC LIMIT %d OFFSET %d", classSelect, where, pageSize, offset)

	var rows []classRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	classes := make([]models.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, row.toModel())
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM classes c %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}

	return classes, total, nil
}

// CodeExists reports whether another class already holds the code.
func (r *ClassRepository) CodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM classes WHERE code = $1 AND id <> $2`, code, excludeID)
}

// NameExists reports whether another class already holds the name.
func (r *ClassRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM classes WHERE name = $1 AND id <> $2`, name, excludeID)
}

func (r *ClassRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("class existence check: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new class.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now

	const query = `INSERT INTO classes (id, name, code, trimester, intake_period, mode, cohort_id, created_at, updated_at)
		VALUES (:id, :name, :code, :trimester, :intake_period, :mode, :cohort_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update rewrites the mutable class fields.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, code = :code, trimester = :trimester, intake_period = :intake_period, mode = :mode, cohort_id = :cohort_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class row.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// CountEnrollments counts students currently assigned to the class.
func (r *ClassRepository) CountEnrollments(ctx context.Context, classID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE class_id = $1 AND role = 'student'`, classID); err != nil {
		return 0, fmt.Errorf("count class enrollments: %w", err)
	}
	return count, nil
}

// CountOfferings counts course offerings referencing the class.
func (r *ClassRepository) CountOfferings(ctx context.Context, classID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM course_offerings WHERE class_id = $1`, classID); err != nil {
		return 0, fmt.Errorf("count class offerings: %w", err)
	}
	return count, nil
}
