/*
Package store defines the persistence interface for pay settings and bills.

PURPOSE:
  The projection engine is pure; everything it needs is loaded up front and
  handed in as values. This package is the boundary where those values come
  from. Implementations must round-trip records faithfully: DueDate and
  Frequency semantics are never altered in storage, and CreatedAt is always
  populated so weekly/fortnightly recurrence has its anchor.

INVARIANT ENFORCEMENT:
  SavePaySettings recomputes the cached DesiredPayAmount before writing.
  The derived amount is never an independent input; persisting is the one
  choke point where the cache and its source can be kept in lockstep.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - store/memory: in-memory store for tests
*/
package store

import (
	"context"
	"errors"

	"github.com/icaruswings/Budgeto/paycycle"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrMissingUserID is returned when a record has no owning user.
	ErrMissingUserID = errors.New("record has no user id")
)

// Store persists pay settings and bills, keyed by user identity.
type Store interface {
	// GetPaySettings returns the settings for a user, or ErrNotFound.
	GetPaySettings(ctx context.Context, userID string) (*paycycle.PaySettings, error)

	// SavePaySettings upserts a user's settings, recomputing the derived
	// desired amount before the write.
	SavePaySettings(ctx context.Context, settings paycycle.PaySettings) error

	// ListUserIDs returns every user with stored settings. The reminder
	// scheduler walks this.
	ListUserIDs(ctx context.Context) ([]string, error)

	// ListBills returns all of a user's bills, active and inactive,
	// ordered by creation time.
	ListBills(ctx context.Context, userID string) ([]paycycle.Bill, error)

	// GetBill returns a single bill, or ErrNotFound.
	GetBill(ctx context.Context, userID, billID string) (*paycycle.Bill, error)

	// CreateBill persists a new bill, assigning its ID and CreatedAt when
	// unset, and returns the stored record.
	CreateBill(ctx context.Context, bill paycycle.Bill) (paycycle.Bill, error)

	// UpdateBill rewrites an existing bill, or returns ErrNotFound.
	// CreatedAt is immutable: the recurrence anchor survives edits.
	UpdateBill(ctx context.Context, bill paycycle.Bill) error

	// DeleteBill removes a bill, or returns ErrNotFound.
	DeleteBill(ctx context.Context, userID, billID string) error

	// Close releases underlying resources.
	Close() error
}
