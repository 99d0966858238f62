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

const moduleColumns = `id, code, name, description, credits, is_active, created_at, updated_at`

// ModuleRepository provides database access for study modules.
type ModuleRepository struct {
	db *sqlx.DB
}

// NewModuleRepository creates a new instance of ModuleRepository.
func NewModuleRepository(db *sqlx.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

// FindByID returns a module by identifier.
func (r *ModuleRepository) FindByID(ctx context.Context, id string) (*models.Module, error) {
	query := fmt.Sprintf(`SELECT %s FROM modules WHERE id = $1 LIMIT 1`, moduleColumns)
	var module models.Module
	if err := r.db.GetContext(ctx, &module, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find module by id: %w", err)
	}
	return &module, nil
}

// List returns modules, optionally filtered by the active flag.
func (r *ModuleRepository) List(ctx context.Context, active *bool) ([]models.Module, error) {
	query := fmt.Sprintf(`SELECT %s FROM modules`, moduleColumns)
	var args []interface{}
	if active != nil {
		query += ` WHERE is_active = $1`
		args = append(args, *active)
	}
	query += ` ORDER BY code`

	var modules []models.Module
	if err := r.db.SelectContext(ctx, &modules, query, args...); err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	return modules, nil
}

// CodeExists reports whether another module already holds the code.
func (r *ModuleRepository) CodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM modules WHERE code = $1 AND id <> $2`, code, excludeID); err != nil {
		return false, fmt.Errorf("module code check: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new module.
func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	module.CreatedAt = now
	module.UpdatedAt = now

	const query = `INSERT INTO modules (id, code, name, description, credits, is_active, created_at, updated_at)
		VALUES (:id, :code, :name, :description, :credits, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// Update rewrites the mutable module fields.
func (r *ModuleRepository) Update(ctx context.Context, module *models.Module) error {
	module.UpdatedAt = time.Now().UTC()
	const query = `UPDATE modules SET code = :code, name = :name, description = :description, credits = :credits, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, module); err != nil {
		return fmt.Errorf("update module: %w", err)
	}
	return nil
}

// Delete removes a module row.
func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	return nil
}

// CountOfferings counts course offerings referencing the module.
func (r *ModuleRepository) CountOfferings(ctx context.Context, moduleID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM course_offerings WHERE module_id = $1`, moduleID); err != nil {
		return 0, fmt.Errorf("count module offerings: %w", err)
	}
	return count, nil
}
