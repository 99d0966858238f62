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

// offeringRow joins an offering with the whitelisted module/class attributes.
type offeringRow struct {
	models.CourseOffering
	ModuleRefID   string `db:"module_ref_id"`
	ModuleRefName string `db:"module_ref_name"`
	ModuleRefCode string `db:"module_ref_code"`
	ClassRefID    string `db:"class_ref_id"`
	ClassRefName  string `db:"class_ref_name"`
	ClassRefCode  string `db:"class_ref_code"`
}

func (row offeringRow) toModel() models.CourseOffering {
	o := row.CourseOffering
	o.Module = &models.ModuleRef{ID: row.ModuleRefID, Name: row.ModuleRefName, Code: row.ModuleRefCode}
	o.Class = &models.ClassRef{ID: row.ClassRefID, Name: row.ClassRefName, Code: row.ClassRefCode}
	return o
}

const offeringSelect = `SELECT o.id, o.module_id, o.class_id, o.facilitator_id, o.start_date, o.end_date, o.status, o.capacity, o.current_enrollment, o.created_at, o.updated_at,
	m.id AS module_ref_id, m.name AS module_ref_name, m.code AS module_ref_code,
	c.id AS class_ref_id, c.name AS class_ref_name, c.code AS class_ref_code
	FROM course_offerings o
	JOIN modules m ON m.id = o.module_id
	JOIN classes c ON c.id = o.class_id`

// OfferingRepository provides database access for course offerings.
type OfferingRepository struct {
	db *sqlx.DB
}

// NewOfferingRepository creates a new instance of OfferingRepository.
func NewOfferingRepository(db *sqlx.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// FindByID returns an offering with nested module/class references.
func (r *OfferingRepository) FindByID(ctx context.Context, id string) (*models.CourseOffering, error) {
	query := offeringSelect + ` WHERE o.id = $1 LIMIT 1`
	var row offeringRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find offering by id: %w", err)
	}
	offering := row.toModel()
	return &offering, nil
}

// List returns offerings matching the filter, most recent start first.
func (r *OfferingRepository) List(ctx context.Context, filter models.OfferingFilter) ([]models.CourseOffering, int, error) {
	where := `WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.FacilitatorID != "" {
		conditions = append(conditions, fmt.Sprintf("o.facilitator_id = $%d", len(args)+1))
		args = append(args, filter.FacilitatorID)
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
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("%s %s ORDER BY o.start_date DESC LIMIT %d OFFSET %d", offeringSelect, where, pageSize, offset)

	var rows []offeringRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list offerings: %w", err)
	}

	offerings := make([]models.CourseOffering, 0, len(rows))
	for _, row := range rows {
		offerings = append(offerings, row.toModel())
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM course_offerings o %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count offerings: %w", err)
	}

	return offerings, total, nil
}

// Create inserts a new offering.
func (r *OfferingRepository) Create(ctx context.Context, offering *models.CourseOffering) error {
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	offering.CreatedAt = now
	offering.UpdatedAt = now

	const query = `INSERT INTO course_offerings (id, module_id, class_id, facilitator_id, start_date, end_date, status, capacity, current_enrollment, created_at, updated_at)
		VALUES (:id, :module_id, :class_id, :facilitator_id, :start_date, :end_date, :status, :capacity, :current_enrollment, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("create offering: %w", err)
	}
	return nil
}

// Update rewrites the mutable offering fields.
func (r *OfferingRepository) Update(ctx context.Context, offering *models.CourseOffering) error {
	offering.UpdatedAt = time.Now().UTC()
	const query = `UPDATE course_offerings SET module_id = :module_id, class_id = :class_id, facilitator_id = :facilitator_id, start_date = :start_date, end_date = :end_date, status = :status, capacity = :capacity, current_enrollment = :current_enrollment, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("update offering: %w", err)
	}
	return nil
}

// Delete removes an offering row.
func (r *OfferingRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM course_offerings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete offering: %w", err)
	}
	return nil
}
