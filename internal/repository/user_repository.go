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

const userColumns = `id, username, email, password_hash, role, first_name, last_name, class_id, created_at, updated_at`

// UserRepository provides database access for identities and role profiles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindByUsername returns a user by username, including the credential hash.
// Callers outside the auth flow must not expose the hash.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

// UsernameExists reports whether another user already holds the username.
func (r *UserRepository) UsernameExists(ctx context.Context, username, excludeID string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM users WHERE username = $1 AND id <> $2`, username, excludeID)
}

// EmailExists reports whether another user already holds the email.
func (r *UserRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM users WHERE email = $1 AND id <> $2`, email, excludeID)
}

// StudentNumberExists reports whether another student already holds the student number.
func (r *UserRepository) StudentNumberExists(ctx context.Context, studentID, excludeUserID string) (bool, error) {
	return r.exists(ctx, `SELECT COUNT(*) FROM students WHERE student_id = $1 AND user_id <> $2`, studentID, excludeUserID)
}

func (r *UserRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return count > 0, nil
}

// FindProfile loads the role profile matching the user's role. The lookup is
// an explicit switch over the role enum; exactly one variant is populated.
func (r *UserRepository) FindProfile(ctx context.Context, user *models.User) (*models.RoleProfile, error) {
	profile := &models.RoleProfile{}
	var err error
	switch user.Role {
	case models.RoleStudent:
		var p models.StudentProfile
		err = r.db.GetContext(ctx, &p, `SELECT id, user_id, student_id, enrollment_date FROM students WHERE user_id = $1 LIMIT 1`, user.ID)
		profile.Student = &p
	case models.RoleFacilitator:
		var p models.FacilitatorProfile
		err = r.db.GetContext(ctx, &p, `SELECT id, user_id, faculty_position, specialization, office_location FROM facilitators WHERE user_id = $1 LIMIT 1`, user.ID)
		profile.Facilitator = &p
	case models.RoleManager:
		var p models.ManagerProfile
		err = r.db.GetContext(ctx, &p, `SELECT id, user_id, department FROM managers WHERE user_id = $1 LIMIT 1`, user.ID)
		profile.Manager = &p
	default:
		return nil, fmt.Errorf("unknown role %q", user.Role)
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s profile: %w", user.Role, err)
	}
	return profile, nil
}

// CreateWithProfile inserts the user and its role profile in one transaction:
// either both rows commit or neither does.
func (r *UserRepository) CreateWithProfile(ctx context.Context, user *models.User, profile *models.RoleProfile) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const userQuery = `INSERT INTO users (id, username, email, password_hash, role, first_name, last_name, class_id, created_at, updated_at)
		VALUES (:id, :username, :email, :password_hash, :role, :first_name, :last_name, :class_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, userQuery, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	if err := insertProfile(ctx, tx, user, profile); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit register tx: %w", err)
	}
	return nil
}

func insertProfile(ctx context.Context, tx *sqlx.Tx, user *models.User, profile *models.RoleProfile) error {
	switch user.Role {
	case models.RoleStudent:
		p := profile.Student
		if p == nil {
			p = &models.StudentProfile{}
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.UserID = user.ID
		const q = `INSERT INTO students (id, user_id, student_id, enrollment_date) VALUES (:id, :user_id, :student_id, :enrollment_date)`
		if _, err := tx.NamedExecContext(ctx, q, p); err != nil {
			return fmt.Errorf("create student profile: %w", err)
		}
	case models.RoleFacilitator:
		p := profile.Facilitator
		if p == nil {
			p = &models.FacilitatorProfile{}
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.UserID = user.ID
		const q = `INSERT INTO facilitators (id, user_id, faculty_position, specialization, office_location) VALUES (:id, :user_id, :faculty_position, :specialization, :office_location)`
		if _, err := tx.NamedExecContext(ctx, q, p); err != nil {
			return fmt.Errorf("create facilitator profile: %w", err)
		}
	case models.RoleManager:
		p := profile.Manager
		if p == nil {
			p = &models.ManagerProfile{}
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		p.UserID = user.ID
		const q = `INSERT INTO managers (id, user_id, department) VALUES (:id, :user_id, :department)`
		if _, err := tx.NamedExecContext(ctx, q, p); err != nil {
			return fmt.Errorf("create manager profile: %w", err)
		}
	default:
		return fmt.Errorf("unknown role %q", user.Role)
	}
	return nil
}

// List returns users based on filters with total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	baseQuery := `FROM users WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(username) LIKE $%d OR LOWER(email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
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

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", userColumns, baseQuery, pageSize, offset)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

// Update rewrites the mutable base identity fields.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET username = :username, email = :email, first_name = :first_name, last_name = :last_name, class_id = :class_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdateProfile rewrites the role profile row matching the user's role.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User, profile *models.RoleProfile) error {
	switch user.Role {
	case models.RoleStudent:
		if profile.Student == nil {
			return nil
		}
		profile.Student.UserID = user.ID
		const q = `UPDATE students SET student_id = :student_id, enrollment_date = :enrollment_date WHERE user_id = :user_id`
		if _, err := r.db.NamedExecContext(ctx, q, profile.Student); err != nil {
			return fmt.Errorf("update student profile: %w", err)
		}
	case models.RoleFacilitator:
		if profile.Facilitator == nil {
			return nil
		}
		profile.Facilitator.UserID = user.ID
		const q = `UPDATE facilitators SET faculty_position = :faculty_position, specialization = :specialization, office_location = :office_location WHERE user_id = :user_id`
		if _, err := r.db.NamedExecContext(ctx, q, profile.Facilitator); err != nil {
			return fmt.Errorf("update facilitator profile: %w", err)
		}
	case models.RoleManager:
		if profile.Manager == nil {
			return nil
		}
		profile.Manager.UserID = user.ID
		const q = `UPDATE managers SET department = :department WHERE user_id = :user_id`
		if _, err := r.db.NamedExecContext(ctx, q, profile.Manager); err != nil {
			return fmt.Errorf("update manager profile: %w", err)
		}
	}
	return nil
}

// Delete removes the user and its role profile in one transaction.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"students", "facilitators", "managers"} {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1`, table), id); err != nil {
			return fmt.Errorf("delete %s profile: %w", table, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

// AssignStudentClass moves a student into a class (nil detaches).
func (r *UserRepository) AssignStudentClass(ctx context.Context, userID string, classID *string) error {
	const query = `UPDATE users SET class_id = $2, updated_at = $3 WHERE id = $1 AND role = 'student'`
	res, err := r.db.ExecContext(ctx, query, userID, classID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("assign student class: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListByRole returns all users holding the given role.
func (r *UserRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE role = $1 ORDER BY created_at`, userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, role); err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}

// CountOfferingsByFacilitator counts offerings taught by the given user.
func (r *UserRepository) CountOfferingsByFacilitator(ctx context.Context, userID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM course_offerings WHERE facilitator_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("count facilitator offerings: %w", err)
	}
	return count, nil
}

// CreateAuditLog stores an audit log entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, old_values, new_values, ip_address, user_agent, created_at)
		VALUES (:id, :user_id, :action, :resource, :resource_id, :old_values, :new_values, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
