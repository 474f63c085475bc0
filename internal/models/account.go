package models

import (
	"fmt"
	"strings"
	"time"

	"audycon/internal/uuid"

	"gorm.io/gorm"
)

// Role is the authorization tier of an account. The set is closed: every
// branch point switching on Role must handle all four values so that adding
// a role forces each decision site to be revisited.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleJefe     Role = "JEFE"
	RoleContador Role = "CONTADOR"
	RoleCliente  Role = "CLIENTE"
)

// Roles lists every valid role, in display order.
var Roles = []Role{RoleAdmin, RoleJefe, RoleContador, RoleCliente}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleJefe, RoleContador, RoleCliente:
		return true
	}
	return false
}

// Status is the lifecycle state of an account.
//
// Transitions: ACTIVE ⇄ SUSPENDED (reversible), ACTIVE|SUSPENDED → DELETED
// (terminal). No transition leaves DELETED.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusDeleted   Status = "DELETED"
)

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusDeleted:
		return true
	}
	return false
}

// Toggled returns the ACTIVE⇄SUSPENDED inverse of s. DELETED is terminal
// and cannot be toggled.
func (s Status) Toggled() (Status, error) {
	switch s {
	case StatusActive:
		return StatusSuspended, nil
	case StatusSuspended:
		return StatusActive, nil
	case StatusDeleted:
		return "", fmt.Errorf("cannot toggle a deleted account")
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// CanTransitionTo reports whether the state machine permits moving from s
// to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusActive, StatusSuspended:
		return next == StatusActive || next == StatusSuspended || next == StatusDeleted
	case StatusDeleted:
		return false
	}
	return false
}

// Account is one platform user's profile row. The ID is shared with the
// Identity Store, which owns the matching credential record; the profile
// row is the source of truth for role and status decisions.
//
// Deletion is a soft delete: the row is kept with Status DELETED so audit
// entries referencing the account stay resolvable.
type Account struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Role      Role      `gorm:"not null;default:'CLIENTE'" json:"role"`
	Status    Status    `gorm:"not null;default:'ACTIVE'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName maps Account onto the profiles table.
func (Account) TableName() string { return "profiles" }

// BeforeCreate fills in the ID and lifecycle defaults for new rows.
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	if a.Role == "" {
		a.Role = RoleCliente
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	if a.FullName == "" {
		a.FullName = ComposeFullName(a.FirstName, a.LastName)
	}
	return nil
}

// ComposeFullName derives the display name from first and last name.
func ComposeFullName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}
