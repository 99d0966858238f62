package models

import "time"

// UserRole represents the mutually exclusive account roles.
type UserRole string

const (
	RoleStudent     UserRole = "student"
	RoleFacilitator UserRole = "facilitator"
	RoleManager     UserRole = "manager"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleFacilitator, RoleManager:
		return true
	}
	return false
}

// User is the base identity stored in the users table. Exactly one role
// profile row exists per user, matching Role.
type User struct {
	ID           string    `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	FirstName    string    `db:"first_name" json:"first_name"`
	LastName     string    `db:"last_name" json:"last_name"`
	ClassID      *string   `db:"class_id" json:"class_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// StudentProfile holds student-specific attributes (1:1 with User).
type StudentProfile struct {
	ID             string     `db:"id" json:"-"`
	UserID         string     `db:"user_id" json:"-"`
	StudentID      string     `db:"student_id" json:"student_id"`
	EnrollmentDate *time.Time `db:"enrollment_date" json:"enrollment_date,omitempty"`
}

// FacilitatorProfile holds facilitator-specific attributes (1:1 with User).
type FacilitatorProfile struct {
	ID              string  `db:"id" json:"-"`
	UserID          string  `db:"user_id" json:"-"`
	FacultyPosition *string `db:"faculty_position" json:"faculty_position,omitempty"`
	Specialization  *string `db:"specialization" json:"specialization,omitempty"`
	OfficeLocation  *string `db:"office_location" json:"office_location,omitempty"`
}

// ManagerProfile holds manager-specific attributes (1:1 with User).
type ManagerProfile struct {
	ID         string  `db:"id" json:"-"`
	UserID     string  `db:"user_id" json:"-"`
	Department *string `db:"department" json:"department,omitempty"`
}

// RoleProfile carries at most one populated profile variant, selected by the
// owning user's role.
type RoleProfile struct {
	Student     *StudentProfile
	Facilitator *FacilitatorProfile
	Manager     *ManagerProfile
}

// AuthUser is the flattened identity view exposed by the API: base identity
// merged with its role profile, credential hash stripped.
type AuthUser struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	ClassID   *string  `json:"class_id,omitempty"`

	// Student fields.
	StudentID      *string    `json:"student_id,omitempty"`
	EnrollmentDate *time.Time `json:"enrollment_date,omitempty"`

	// Facilitator fields.
	FacultyPosition *string `json:"faculty_position,omitempty"`
	Specialization  *string `json:"specialization,omitempty"`
	OfficeLocation  *string `json:"office_location,omitempty"`

	// Manager fields.
	Department *string `json:"department,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAuthUser flattens a user and its role profile into the API identity view.
// Only the profile variant matching the user's role contributes fields.
func NewAuthUser(user *User, profile *RoleProfile) AuthUser {
	out := AuthUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		ClassID:   user.ClassID,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
	if profile == nil {
		return out
	}
	switch user.Role {
	case RoleStudent:
		if p := profile.Student; p != nil {
			out.StudentID = &p.StudentID
			out.EnrollmentDate = p.EnrollmentDate
		}
	case RoleFacilitator:
		if p := profile.Facilitator; p != nil {
			out.FacultyPosition = p.FacultyPosition
			out.Specialization = p.Specialization
			out.OfficeLocation = p.OfficeLocation
		}
	case RoleManager:
		if p := profile.Manager; p != nil {
			out.Department = p.Department
		}
	}
	return out
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Search   string
	Page     int
	PageSize int
}
