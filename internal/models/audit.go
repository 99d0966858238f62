package models

import "time"

// AuditAction labels the operation recorded in an audit log entry.
type AuditAction string

const (
	AuditActionLogin        AuditAction = "LOGIN"
	AuditActionRegister     AuditAction = "REGISTER"
	AuditActionUserUpdate   AuditAction = "USER_UPDATE"
	AuditActionUserDelete   AuditAction = "USER_DELETE"
	AuditActionGradePublish AuditAction = "GRADE_PUBLISH"
)

// AuditLog captures who did what to which resource. Written best-effort; an
// audit failure never fails the request.
type AuditLog struct {
	ID         string      `db:"id" json:"id"`
	UserID     *string     `db:"user_id" json:"user_id,omitempty"`
	Action     AuditAction `db:"action" json:"action"`
	Resource   string      `db:"resource" json:"resource"`
	ResourceID *string     `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte      `db:"old_values" json:"-"`
	NewValues  []byte      `db:"new_values" json:"-"`
	IPAddress  string      `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent  string      `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
}
