package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"audycon/internal/models"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAccount creates an ACTIVE account with the given role and a
// unique name and email.
func CreateTestAccount(t *testing.T, db *gorm.DB, role models.Role) *models.Account {
	t.Helper()

	n := nextID()
	account := &models.Account{
		Email:     fmt.Sprintf("user%d@test.com", n),
		FirstName: "Test",
		LastName:  fmt.Sprintf("User%d", n),
		Role:      role,
		Status:    models.StatusActive,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestAccountWithStatus creates an account with the given role and status.
func CreateTestAccountWithStatus(t *testing.T, db *gorm.DB, role models.Role, status models.Status) *models.Account {
	t.Helper()

	account := CreateTestAccount(t, db, role)
	if err := db.Model(account).Update("status", status).Error; err != nil {
		t.Fatalf("failed to set test account status: %v", err)
	}
	account.Status = status
	return account
}

// CreateTestAccountNamed creates an ACTIVE CLIENTE account with the given
// name and email, for filter tests that match on text.
func CreateTestAccountNamed(t *testing.T, db *gorm.DB, firstName, lastName, email string) *models.Account {
	t.Helper()

	account := &models.Account{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      models.RoleCliente,
		Status:    models.StatusActive,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestAuditEntry appends an audit entry with the given action and target.
func CreateTestAuditEntry(t *testing.T, db *gorm.DB, action models.Action, performedBy *string, targetUser string) *models.AuditEntry {
	t.Helper()

	entry := &models.AuditEntry{
		Action:      action,
		PerformedBy: performedBy,
		TargetUser:  targetUser,
		Detail:      fmt.Sprintf(`{"description":"test entry %d"}`, nextID()),
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create test audit entry: %v", err)
	}
	return entry
}
