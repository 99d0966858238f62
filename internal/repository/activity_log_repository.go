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

const activityLogColumns = `id, offering_id, week_number, attendance, formative_one_grading, formative_two_grading, summative_grading, course_moderation, intranet_sync, gradebook_status, notes, created_at, updated_at`

// ActivityLogRepository provides database access for weekly activity logs.
type ActivityLogRepository struct {
	db *sqlx.DB
}

// NewActivityLogRepository creates a new instance of ActivityLogRepository.
func NewActivityLogRepository(db *sqlx.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// FindByID returns an activity log by identifier.
func (r *ActivityLogRepository) FindByID(ctx context.Context, id string) (*models.ActivityLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM activity_logs WHERE id = $1 LIMIT 1`, activityLogColumns)
	var log models.ActivityLog
	if err := r.db.GetContext(ctx, &log, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find activity log by id: %w", err)
	}
	return &log, nil
}

// List returns activity logs matching the filter, ordered by week.
func (r *ActivityLogRepository) List(ctx context.Context, filter models.ActivityLogFilter) ([]models.ActivityLog, error) {
	query := fmt.Sprintf(`SELECT %s FROM activity_logs WHERE 1=1`, activityLogColumns)
	var conditions []string
	var args []interface{}

	if filter.WeekNumber != nil {
		conditions = append(conditions, fmt.Sprintf("week_number = $%d", len(args)+1))
		args = append(args, *filter.WeekNumber)
	}
	if filter.OfferingID != "" {
		conditions = append(conditions, fmt.Sprintf("offering_id = $%d", len(args)+1))
		args = append(args, filter.OfferingID)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY week_number ASC`

	var logs []models.ActivityLog
	if err := r.db.SelectContext(ctx, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return logs, nil
}

// Create inserts a new activity log.
func (r *ActivityLogRepository) Create(ctx context.Context, log *models.ActivityLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now

	const query = `INSERT INTO activity_logs (id, offering_id, week_number, attendance, formative_one_grading, formative_two_grading, summative_grading, course_moderation, intranet_sync, gradebook_status, notes, created_at, updated_at)
		VALUES (:id, :offering_id, :week_number, :attendance, :formative_one_grading, :formative_two_grading, :summative_grading, :course_moderation, :intranet_sync, :gradebook_status, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create activity log: %w", err)
	}
	return nil
}

// Update rewrites the mutable activity log fields.
func (r *ActivityLogRepository) Update(ctx context.Context, log *models.ActivityLog) error {
	log.UpdatedAt = time.Now().UTC()
	const query = `UPDATE activity_logs SET week_number = :week_number, attendance = :attendance, formative_one_grading = :formative_one_grading, formative_two_grading = :formative_two_grading, summative_grading = :summative_grading, course_moderation = :course_moderation, intranet_sync = :intranet_sync, gradebook_status = :gradebook_status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("update activity log: %w", err)
	}
	return nil
}

// Delete removes an activity log row.
func (r *ActivityLogRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM activity_logs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete activity log: %w", err)
	}
	return nil
}

// ExistsForFacilitatorWeek reports whether the facilitator submitted a log for
// the given week on any of their offerings. Used by the deadline scanner.
func (r *ActivityLogRepository) ExistsForFacilitatorWeek(ctx context.Context, facilitatorID string, week int) (bool, error) {
	const query = `SELECT COUNT(*) FROM activity_logs l
		JOIN course_offerings o ON o.id = l.offering_id
		WHERE o.facilitator_id = $1 AND l.week_number = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, facilitatorID, week); err != nil {
		return false, fmt.Errorf("check facilitator week log: %w", err)
	}
	return count > 0, nil
}
