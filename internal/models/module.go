package models

import "time"

// Module is a unit of study offered to classes through course offerings.
type Module struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Credits     int       `db:"credits" json:"credits"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ModuleRef is the whitelisted nested representation used inside other payloads.
type ModuleRef struct {
	ID   string `db:"module_ref_id" json:"id"`
	Name string `db:"module_ref_name" json:"name"`
	Code string `db:"module_ref_code" json:"code"`
}
