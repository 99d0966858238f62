package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-mgmt-api/internal/models"
)

const cohortColumns = `id, name, start_date, end_date, status, created_at, updated_at`

// CohortRepository provides database access for cohorts.
type CohortRepository struct {
	db *sqlx.DB
}

// NewCohortRepository creates a new instance of CohortRepository.
func NewCohortRepository(db *sqlx.DB) *CohortRepository {
	return &CohortRepository{db: db}
}

// FindByID returns a cohort by identifier.
func (r *CohortRepository) FindByID(ctx context.Context, id string) (*models.Cohort, error) {
	query := fmt.Sprintf(`SELECT %s FROM cohorts WHERE id = $1 LIMIT 1`, cohortColumns)
	var cohort models.Cohort
	if err := r.db.GetContext(ctx, &cohort, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find cohort by id: %w", err)
	}
	return &cohort, nil
}

// List returns all cohorts, most recent intake first.
func (r *CohortRepository) List(ctx context.Context) ([]models.Cohort, error) {
	query := fmt.Sprintf(`SELECT %s FROM cohorts ORDER BY start_date DESC`, cohortColumns)
	var cohorts []models.Cohort
	if err := r.db.SelectContext(ctx, &cohorts, query); err != nil {
		return nil, fmt.Errorf("list cohorts: %w", err)
	}
	return cohorts, nil
}

// NameExists reports whether another cohort already holds the name.
func (r *CohortRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM cohorts WHERE name = $1 AND id <> $2`, name, excludeID); err != nil {
		return false, fmt.Errorf("cohort name check: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new cohort.
func (r *CohortRepository) Create(ctx context.Context, cohort *models.Cohort) error {
	if cohort.ID == "" {
		cohort.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	cohort.CreatedAt = now
	cohort.UpdatedAt = now

	const query = `INSERT INTO cohorts (id, name, start_date, end_date, status, created_at, updated_at)
		VALUES (:id, :name, :start_date, :end_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cohort); err != nil {
		return fmt.Errorf("create cohort: %w", err)
	}
	return nil
}

// Update rewrites the mutable cohort fields.
func (r *CohortRepository) Update(ctx context.Context, cohort *models.Cohort) error {
	cohort.UpdatedAt = time.Now().UTC()
	const query = `UPDATE cohorts SET name = :name, start_date = :start_date, end_date = :end_date, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, cohort); err != nil {
		return fmt.Errorf("update cohort: %w", err)
	}
	return nil
}

// Delete removes a cohort row.
func (r *CohortRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cohorts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete cohort: %w", err)
	}
	return nil
}

// CountClasses counts classes attached to the cohort.
func (r *CohortRepository) CountClasses(ctx context.Context, cohortID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM classes WHERE cohort_id = $1`, cohortID); err != nil {
		return 0, fmt.Errorf("count cohort classes: %w", err)
	}
	return count, nil
}
