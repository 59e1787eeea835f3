package user

import (
	"context"
	"time"
)

// AccessWindow is the fixed paid-access duration granted per unlock.
// Repeated grants re-anchor the window at grant time, they never stack.
const AccessWindow = 24 * time.Hour

// UserRecord is the per-user access state. Exactly one record exists per
// Telegram identity; records are created lazily and never deleted.
type UserRecord struct {
	ID            int64     `json:"id"`
	FirstName     string    `json:"first_name"`
	Username      string    `json:"username"`
	AccessExpires time.Time `json:"access_expires"`
	JoinDate      time.Time `json:"join_date"`
	TotalGrants   int       `json:"total_access_grants"`
}

// HasAccessAt reports whether the record grants access at the given instant.
func (u UserRecord) HasAccessAt(now time.Time) bool {
	return u.AccessExpires.After(now)
}

// IUserRepository is the storage contract for user records. Implementations
// must support concurrent access to independent records; last-write-wins per
// record is acceptable, cross-record atomicity is never required.
type IUserRepository interface {
	Init(ctx context.Context) error

	// GetOrCreate returns the stored record, creating one with an expired
	// access window (Unix epoch) on first contact.
	GetOrCreate(ctx context.Context, id int64, firstName, username string) (UserRecord, error)

	// GrantAccess moves AccessExpires to now+AccessWindow and increments
	// TotalGrants. A missing record is fabricated implicitly; granting
	// never fails on an unknown identity.
	GrantAccess(ctx context.Context, id int64) error

	// HasAccess is false when no record exists.
	HasAccess(ctx context.Context, id int64) (bool, error)

	Count(ctx context.Context) (int64, error)

	// ListIDs returns a snapshot of all known identities. A fresh call
	// always starts from the current full set.
	ListIDs(ctx context.Context) ([]int64, error)
}
