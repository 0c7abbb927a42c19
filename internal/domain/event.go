package domain

import "time"

// Event represents a bookable event record. CreatorRef is opaque at
// this level: generation 1 stores the creator's address, generation 2
// stores a creator id. SchemaVersion records which generation wrote
// the record so either logic can interpret existing rows correctly.
type Event struct {
	ID            EventID `json:"id"`
	ExpiresAt     int64   `json:"expires_at"` // unix seconds, strictly future at creation
	Declined      bool    `json:"declined"`
	CreatorRef    string  `json:"creator_ref"`
	Title         string  `json:"title"`
	TicketsBooked uint64  `json:"tickets_booked"`
	MaxTickets    uint64  `json:"max_tickets"`
	Price         uint64  `json:"price"` // per ticket, smallest token unit
	SchemaVersion int     `json:"schema_version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired reports whether the event's expiry has passed at the given time.
func (e *Event) IsExpired(now time.Time) bool {
	return e.ExpiresAt <= now.Unix()
}

// Remaining returns the number of tickets still available.
func (e *Event) Remaining() uint64 {
	if e.TicketsBooked >= e.MaxTickets {
		return 0
	}
	return e.MaxTickets - e.TicketsBooked
}

// CanBook reports whether count more tickets fit under the capacity cap.
func (e *Event) CanBook(count uint64) bool {
	return count <= e.Remaining()
}

// Booking is the cumulative number of tickets a user holds for an
// event. The pair (EventID, UserID) is the ledger key; the count only
// ever grows, one settlement at a time.
type Booking struct {
	EventID   EventID   `json:"event_id"`
	UserID    UserID    `json:"user_id"`
	Tickets   uint64    `json:"tickets"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Settlement is the receipt of one successful payment: the fund pull
// and the ledger credit it performed atomically.
type Settlement struct {
	ID          string    `json:"id"`
	EventID     EventID   `json:"event_id"`
	UserID      UserID    `json:"user_id"`
	Payer       Address   `json:"payer"`
	Tickets     uint64    `json:"tickets"`
	Total       uint64    `json:"total"` // tickets * price at settlement time
	TransferRef string    `json:"transfer_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// EngineMeta is the one-time initialization record: the seeded admin,
// the treasury account that receives pulled funds, and the address of
// the external token ledger. Exactly one row exists once Initialize
// has run.
type EngineMeta struct {
	Admin         Address   `json:"admin"`
	Treasury      Address   `json:"treasury"`
	Operator      Address   `json:"operator"`
	TokenAddress  Address   `json:"token_address"`
	SchemaVersion int       `json:"schema_version"`
	InitializedAt time.Time `json:"initialized_at"`
}

// MulTickets computes count * price, reporting overflow instead of
// wrapping. Settlement totals must never truncate silently.
func MulTickets(count, price uint64) (uint64, error) {
	if count == 0 || price == 0 {
		return 0, nil
	}
	total := count * price
	if total/count != price {
		return 0, ErrOverflow
	}
	return total, nil
}
