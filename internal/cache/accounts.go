// Package cache holds the short-lived account list cache used by the admin
// console's directory view. The console filters on every keystroke; caching
// the unfiltered list keeps that from hammering the profile store.
//
// The cache is an explicit, owned object: it is created by the service that
// uses it, guarded by its own mutex, expires on a TTL, and is invalidated
// after every mutating call. It is never shared as ambient package state.
package cache

import (
	"sync"
	"time"

	"audycon/internal/models"
)

// DefaultTTL bounds how stale a cached account listing may get when no
// mutation happens in this process (other admin sessions may still be
// mutating the store).
const DefaultTTL = 30 * time.Second

// AccountList caches one snapshot of the non-deleted account listing.
type AccountList struct {
	mu       sync.Mutex
	accounts []models.Account
	expires  time.Time
	ttl      time.Duration
}

// NewAccountList creates an empty cache with the given TTL. A zero or
// negative TTL disables caching entirely.
func NewAccountList(ttl time.Duration) *AccountList {
	return &AccountList{ttl: ttl}
}

// Get returns the cached snapshot, or nil and false when the cache is empty
// or expired. The returned slice must be treated as read-only.
func (c *AccountList) Get() ([]models.Account, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accounts == nil || time.Now().After(c.expires) {
		return nil, false
	}
	return c.accounts, true
}

// Put stores a fresh snapshot and restarts the TTL clock.
func (c *AccountList) Put(accounts []models.Account) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.accounts = accounts
	c.expires = time.Now().Add(c.ttl)
}

// Invalidate drops the snapshot. Every mutating lifecycle call must
// invalidate so the next listing reflects the mutation.
func (c *AccountList) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accounts = nil
}
