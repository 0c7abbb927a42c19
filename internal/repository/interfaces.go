package repository

import (
	"context"

	"github.com/Svg70/crypto-booking/internal/domain"
)

// AccessRepository persists the engine's authorization state: the
// one-time initialization record, the (role, address) table used by
// the first logic generation and the creator/user registries used by
// the second. All of it lives in the same store as events so the two
// generations share one layout.
type AccessRepository interface {
	// GetMeta returns the initialization record, or ErrNotInitialized.
	GetMeta(ctx context.Context) (*domain.EngineMeta, error)

	// Initialize writes the record exactly once. A second call returns
	// ErrAlreadyInitialized regardless of arguments.
	Initialize(ctx context.Context, meta *domain.EngineMeta) error

	// HasRole reports membership of the (role, address) pair.
	HasRole(ctx context.Context, role domain.Role, addr domain.Address) (bool, error)

	// GrantRole adds the pair. Granting an already-held role is a no-op.
	GrantRole(ctx context.Context, role domain.Role, addr domain.Address) error

	// RevokeRole removes the pair. Revoking an absent role is a no-op.
	RevokeRole(ctx context.Context, role domain.Role, addr domain.Address) error

	// CreatorAddress returns the bound address, or the zero sentinel
	// when the creator id is absent or has been removed.
	CreatorAddress(ctx context.Context, id domain.CreatorID) (domain.Address, error)

	// PutCreator binds the id to the address, overwriting any prior binding.
	PutCreator(ctx context.Context, id domain.CreatorID, addr domain.Address) error

	// RemoveCreator resets the binding to the zero sentinel.
	RemoveCreator(ctx context.Context, id domain.CreatorID) error

	// UserAddress returns the bound address, or the zero sentinel.
	UserAddress(ctx context.Context, id domain.UserID) (domain.Address, error)

	// PutUser binds the user id to its paying address.
	PutUser(ctx context.Context, id domain.UserID, addr domain.Address) error
}

// EventRepository persists event records.
type EventRepository interface {
	// Create inserts a new record, or ErrEventAlreadyExists.
	Create(ctx context.Context, event *domain.Event) error

	// GetByID returns the record, or ErrEventNotFound.
	GetByID(ctx context.Context, id domain.EventID) (*domain.Event, error)

	// Update overwrites the full record. The caller resolves the sparse
	// patch against the stored state before calling.
	Update(ctx context.Context, event *domain.Event) error

	// Decline marks the event declined. Declining twice is a no-op.
	Decline(ctx context.Context, id domain.EventID) error

	// List returns events ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]*domain.Event, error)
}

// SettleParams carries everything the booking store needs to commit
// one settlement: which event, how many tickets, and the receipt row.
type SettleParams struct {
	EventID       domain.EventID
	UserID        domain.UserID
	Payer         domain.Address
	Tickets       uint64
	Total         uint64
	ReceiptID     string
	SchemaVersion int
}

// PullFunc performs the external fund transfer. The booking store
// calls it inside the settlement transaction, after the ledger rows
// are staged but before commit, so a failed pull rolls everything
// back. It returns an opaque transfer reference.
type PullFunc func(ctx context.Context) (string, error)

// BookingRepository persists the cumulative ticket ledger and the
// settlement receipts.
type BookingRepository interface {
	// GetBooking returns the cumulative count for (event, user). A pair
	// that never settled returns a zero-count booking, not an error.
	GetBooking(ctx context.Context, eventID domain.EventID, userID domain.UserID) (*domain.Booking, error)

	// Settle commits one payment atomically: it locks the event row,
	// re-checks capacity and expiry, invokes pull, and on success
	// increments the booked count, the (event, user) ledger entry and
	// writes the receipt. Any failure leaves no partial state.
	Settle(ctx context.Context, params SettleParams, pull PullFunc) (*domain.Settlement, error)

	// GetSettlement returns a receipt by id.
	GetSettlement(ctx context.Context, id string) (*domain.Settlement, error)
}
