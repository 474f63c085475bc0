package models

import (
	"time"

	"audycon/internal/uuid"

	"gorm.io/gorm"
)

// Action tags the kind of mutating operation an audit entry records.
type Action string

const (
	ActionSignup       Action = "SIGNUP"
	ActionChangeRole   Action = "CHANGE_ROLE"
	ActionToggleStatus Action = "TOGGLE_STATUS"
	ActionEditUser     Action = "EDIT_USER"
	ActionDeleteUser   Action = "DELETE_USER"
)

// Actions lists every known action tag, for filter dropdowns and validation.
var Actions = []Action{ActionSignup, ActionChangeRole, ActionToggleStatus, ActionEditUser, ActionDeleteUser}

// AuditEntry is one immutable record of a mutating administrative action.
// Rows are append-only: they are never updated or deleted, and they outlive
// the accounts they reference. PerformedBy and TargetUser are deliberately
// not foreign keys so a hard-removed account cannot invalidate its history.
type AuditEntry struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Action      Action    `gorm:"size:50;not null;index" json:"action"`
	PerformedBy *string   `gorm:"type:uuid;index" json:"performed_by"`
	TargetUser  string    `gorm:"type:uuid;index" json:"target_user"`
	Detail      string    `gorm:"type:text" json:"detail"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName maps AuditEntry onto the logs table.
func (AuditEntry) TableName() string { return "logs" }

// BeforeCreate assigns a UUIDv7 primary key to new entries.
func (e *AuditEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New()
	}
	return nil
}
