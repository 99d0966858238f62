package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-mgmt-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func userRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "first_name", "last_name", "class_id", "created_at", "updated_at"}).
		AddRow("u1", "alice", "alice@example.com", "hash", string(models.RoleStudent), "Alice", "Nguyen", nil, now, now)
}

func TestUserFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email, password_hash, role, first_name, last_name, class_id, created_at, updated_at FROM users WHERE id = $1 LIMIT 1")).
		WithArgs("u1").
		WillReturnRows(userRows(time.Now()))

	user, err := repo.FindByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("SELECT .* FROM users WHERE id").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserListWithRoleFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, email, password_hash, role, first_name, last_name, class_id, created_at, updated_at FROM users WHERE 1=1 AND role = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(models.RoleStudent).
		WillReturnRows(userRows(time.Now()))

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE 1=1 AND role = $1")).
		WithArgs(models.RoleStudent).
		WillReturnRows(countRows)

	role := models.RoleStudent
	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateWithProfileCommitsBothRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	user := &models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleStudent}
	profile := &models.RoleProfile{Student: &models.StudentProfile{StudentID: "S-1001"}}
	err := repo.CreateWithProfile(context.Background(), user, profile)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, user.ID, profile.Student.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateWithProfileRollsBackOnProfileFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO managers").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	user := &models.User{Username: "boss", Email: "boss@example.com", Role: models.RoleManager}
	err := repo.CreateWithProfile(context.Background(), user, &models.RoleProfile{})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignStudentClassNoMatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET class_id").
		WillReturnResult(sqlmock.NewResult(0, 0))

	classID := "class-1"
	err := repo.AssignStudentClass(context.Background(), "not-a-student", &classID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsernameExists(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE username = $1 AND id <> $2")).
		WithArgs("alice", "").
		WillReturnRows(rows)

	taken, err := repo.UsernameExists(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.True(t, taken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
