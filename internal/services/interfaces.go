package services

import (
	"audycon/internal/models"
	"audycon/internal/pagination"
)

// IdentityStore is the contract for the external credential authority.
// The lifecycle service coordinates with it on deletion so that a profile
// is never soft-deleted without its credential being removed first.
type IdentityStore interface {
	CreateUser(email, password string) (string, error)
	DeleteCredential(accountID string) error
	SignIn(email, password string) (string, error)
}

// AccountFilter holds the recognized directory filter options. Query is a
// case-insensitive substring match over full name and email; Role narrows
// to an exact role, with "ALL" or empty meaning no role filter.
type AccountFilter struct {
	Query string
	Role  string
}

// ProfileEdit carries the fields an administrator may change in one edit.
// First and last name are required; nil pointers leave a field untouched.
type ProfileEdit struct {
	FirstName string
	LastName  string
	Phone     *string
	Company   *string
	Role      *models.Role
	Status    *models.Status
}

// AccountServicer defines the contract for the account lifecycle service:
// the state machine on role/status and the guards on destructive operations.
type AccountServicer interface {
	CreateAccount(id, email, firstName, lastName, phone, company string) (*models.Account, error)
	GetAccountByID(id string) (*models.Account, error)
	ListAccounts(filter AccountFilter) ([]models.Account, error)
	ChangeRole(accountID string, newRole models.Role, actorID *string) (*models.Account, error)
	ToggleStatus(accountID string, actorID *string) (*models.Account, error)
	EditProfile(accountID string, edit ProfileEdit, actorID *string) (*models.Account, error)
	UpdateName(accountID, firstName, lastName string) (*models.Account, error)
	DeleteAccount(accountID string, actorID *string) error
}

// EntryFilter holds the recognized audit log filter options. Query is a
// case-insensitive substring match over the action tag and detail text;
// Action narrows to an exact tag, with "ALL" or empty meaning no filter.
type EntryFilter struct {
	Query  string
	Action string
}

// EnrichedEntry is an audit entry joined with the display names of the
// accounts it references. When a reference cannot be resolved (account
// hard-removed, or the lookup failed) the name falls back to a shortened id.
type EnrichedEntry struct {
	models.AuditEntry
	PerformerName string `json:"performer_name"`
	TargetName    string `json:"target_name"`
}

// AuditServicer defines the contract for recording and reviewing the audit
// trail. Record is best-effort: it must never fail the primary mutation.
type AuditServicer interface {
	Record(action models.Action, performedBy *string, targetUser string, detail map[string]interface{})
	ListEntries(page pagination.PageRequest, filter EntryFilter) (*pagination.PageResponse[EnrichedEntry], error)
	ListEntriesForAccount(accountID string) ([]EnrichedEntry, error)
}
