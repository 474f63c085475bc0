// Package uuid generates the UUIDv7 identifiers used as primary keys for
// profiles and audit entries. UUIDv7 is time-ordered, so keys created later
// sort later, which keeps the append-only logs table naturally clustered by
// time and gives newest-first queries a stable tiebreaker.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a fresh UUIDv7 in canonical string form. If v7 generation
// fails (exhausted entropy source), it falls back to a random UUIDv4 so id
// assignment never blocks a write.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// IsValid reports whether s parses as a UUID of any version. Account ids
// arrive from path parameters and request bodies and are validated before
// they reach a query.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
