package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"audycon/internal/cache"
	apperrors "audycon/internal/errors"
	"audycon/internal/logger"
	"audycon/internal/models"
)

// auditSource tags where an audit entry originated, mirroring the
// detail.source field the console displays.
const (
	sourceAdminPanel = "admin_panel"
	sourceSignup     = "signup"
	sourceSettings   = "settings"
)

// accountService enforces the account lifecycle state machine and the
// safety guards that gate destructive operations.
type accountService struct {
	db       *gorm.DB
	identity IdentityStore
	audit    AuditServicer
	cache    *cache.AccountList
}

// NewAccountService creates a new AccountServicer backed by the profile
// store, the external identity store, and the audit recorder.
func NewAccountService(db *gorm.DB, identity IdentityStore, audit AuditServicer) AccountServicer {
	return &accountService{
		db:       db,
		identity: identity,
		audit:    audit,
		cache:    cache.NewAccountList(cache.DefaultTTL),
	}
}

// CreateAccount inserts the profile row for a credential the Identity Store
// already created. New accounts always start as CLIENTE/ACTIVE.
func (s *accountService) CreateAccount(id, email, firstName, lastName, phone, company string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if id == "" || email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account id and email are required")
	}

	var count int64
	s.db.Model(&models.Account{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	account := &models.Account{
		ID:        id,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		FullName:  models.ComposeFullName(firstName, lastName),
		Phone:     phone,
		Company:   company,
		Role:      models.RoleCliente,
		Status:    models.StatusActive,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Invalidate()
	s.audit.Record(models.ActionSignup, &account.ID, account.ID, map[string]interface{}{
		"description": "Account created",
		"source":      sourceSignup,
	})
	return account, nil
}

// GetAccountByID retrieves an account by id.
func (s *accountService) GetAccountByID(id string) (*models.Account, error) {
	var account models.Account
	if err := s.db.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &account, nil
}

// ListAccounts returns the non-deleted accounts matching the filter.
// The unfiltered snapshot is served through the session cache so the
// console's per-keystroke filtering does not re-read the store each time;
// filtering happens in memory over the snapshot.
func (s *accountService) ListAccounts(filter AccountFilter) ([]models.Account, error) {
	accounts, ok := s.cache.Get()
	if !ok {
		if err := s.db.
			Where("status <> ?", models.StatusDeleted).
			Order("created_at").
			Find(&accounts).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		s.cache.Put(accounts)
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	role := filter.Role

	matched := make([]models.Account, 0, len(accounts))
	for _, a := range accounts {
		if role != "" && role != "ALL" && string(a.Role) != role {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(a.FullName), query) &&
			!strings.Contains(strings.ToLower(a.Email), query) {
			continue
		}
		matched = append(matched, a)
	}
	return matched, nil
}

// ChangeRole assigns a new role to the account and records CHANGE_ROLE.
func (s *accountService) ChangeRole(accountID string, newRole models.Role, actorID *string) (*models.Account, error) {
	if !newRole.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown role %q", newRole))
	}

	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}

	previous := account.Role
	if err := s.db.Model(account).Update("role", newRole).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Role = newRole

	s.cache.Invalidate()
	s.audit.Record(models.ActionChangeRole, actorID, account.ID, map[string]interface{}{
		"description": fmt.Sprintf("Role changed from %s to %s", previous, newRole),
		"source":      sourceAdminPanel,
		"from":        string(previous),
		"to":          string(newRole),
	})
	return account, nil
}

// ToggleStatus flips an account between ACTIVE and SUSPENDED and records
// TOGGLE_STATUS. DELETED is terminal and cannot be toggled.
func (s *accountService) ToggleStatus(accountID string, actorID *string) (*models.Account, error) {
	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}

	next, err := account.Status.Toggled()
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidState, "A deleted account cannot be suspended or reactivated")
	}

	previous := account.Status
	if err := s.db.Model(account).Update("status", next).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.Status = next

	s.cache.Invalidate()
	s.audit.Record(models.ActionToggleStatus, actorID, account.ID, map[string]interface{}{
		"description": fmt.Sprintf("Status changed from %s to %s", previous, next),
		"source":      sourceAdminPanel,
		"from":        string(previous),
		"to":          string(next),
	})
	return account, nil
}

// EditProfile updates name, contact fields, role, and status in a single
// operation and records EDIT_USER with the full field diff. All validation
// happens before any write; a failed edit leaves the row untouched.
func (s *accountService) EditProfile(accountID string, edit ProfileEdit, actorID *string) (*models.Account, error) {
	firstName := strings.TrimSpace(edit.FirstName)
	lastName := strings.TrimSpace(edit.LastName)
	if firstName == "" || lastName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "First name and last name are required")
	}
	if edit.Role != nil && !edit.Role.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown role %q", *edit.Role))
	}
	if edit.Status != nil {
		if !edit.Status.Valid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unknown status %q", *edit.Status))
		}
		if *edit.Status == models.StatusDeleted {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Accounts are deleted through the delete operation, not by editing status")
		}
	}

	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}
	if account.Status == models.StatusDeleted {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidState, "A deleted account cannot be edited")
	}

	updates := map[string]interface{}{}
	diff := map[string]interface{}{}
	set := func(column string, from, to interface{}) {
		updates[column] = to
		if from != to {
			diff[column] = map[string]interface{}{"from": from, "to": to}
		}
	}

	set("first_name", account.FirstName, firstName)
	set("last_name", account.LastName, lastName)
	set("full_name", account.FullName, models.ComposeFullName(firstName, lastName))
	if edit.Phone != nil {
		set("phone", account.Phone, *edit.Phone)
	}
	if edit.Company != nil {
		set("company", account.Company, *edit.Company)
	}
	if edit.Role != nil {
		set("role", string(account.Role), string(*edit.Role))
	}
	if edit.Status != nil {
		set("status", string(account.Status), string(*edit.Status))
	}

	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.cache.Invalidate()
	s.audit.Record(models.ActionEditUser, actorID, account.ID, map[string]interface{}{
		"description": "Profile edited",
		"source":      sourceAdminPanel,
		"changes":     diff,
	})
	return s.GetAccountByID(accountID)
}

// UpdateName is the self-service rename from the settings page. Unlike
// EditProfile it touches nothing but the name fields and is available to
// the account owner regardless of role.
func (s *accountService) UpdateName(accountID, firstName, lastName string) (*models.Account, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "First name and last name are required")
	}

	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return nil, err
	}
	if account.Status == models.StatusDeleted {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidState, "A deleted account cannot be edited")
	}

	fullName := models.ComposeFullName(firstName, lastName)
	updates := map[string]interface{}{
		"first_name": firstName,
		"last_name":  lastName,
		"full_name":  fullName,
	}
	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	account.FirstName = firstName
	account.LastName = lastName
	account.FullName = fullName

	s.cache.Invalidate()
	s.audit.Record(models.ActionEditUser, &account.ID, account.ID, map[string]interface{}{
		"description": "Display name updated",
		"source":      sourceSettings,
	})
	return account, nil
}

// DeleteAccount removes an account: credential first, then the profile row
// is marked DELETED (soft delete, preserving audit references).
//
// Four guards run in order before anything mutates: self-deletion,
// existence, last-admin, and the identity store removal itself. Any guard
// failure aborts the whole operation with nothing changed locally.
//
// The last-admin guard is a count-then-act sequence without store-side
// locking, so two concurrent deletions of the final two administrators can
// both pass it. Closing that window needs a conditional update evaluated
// transactionally in the profile store.
func (s *accountService) DeleteAccount(accountID string, actorID *string) error {
	if actorID != nil && *actorID == accountID {
		return apperrors.ErrSelfDelete
	}

	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return err
	}

	if account.Role == models.RoleAdmin {
		var admins int64
		if err := s.db.Model(&models.Account{}).
			Where("role = ? AND status <> ?", models.RoleAdmin, models.StatusDeleted).
			Count(&admins).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if admins <= 1 {
			return apperrors.ErrLastAdmin
		}
	}

	if err := s.identity.DeleteCredential(accountID); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.Wrap(apperrors.ErrIdentityStore, err)
	}

	if err := s.db.Model(account).Update("status", models.StatusDeleted).Error; err != nil {
		// The credential is already gone upstream; this profile row is now
		// orphaned and needs manual reconciliation. Surface it distinctly.
		logger.Get().Errorw("credential deleted but profile update failed",
			"account_id", accountID,
			"error", err,
		)
		return apperrors.Wrap(apperrors.ErrInconsistentState, err)
	}

	s.cache.Invalidate()
	s.audit.Record(models.ActionDeleteUser, actorID, accountID, map[string]interface{}{
		"description": fmt.Sprintf("Account %s (%s) deleted", account.FullName, account.Email),
		"source":      sourceAdminPanel,
	})
	return nil
}
