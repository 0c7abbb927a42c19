package domain

// Address identifies a token account. The empty string is the zero
// sentinel and must never be treated as a valid signer.
type Address string

// ZeroAddress is the sentinel returned for absent registry entries.
const ZeroAddress Address = ""

// IsZero reports whether the address is the zero sentinel.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Opaque fixed-size identifiers. They are distinct from addresses: an
// event, a buyer and a creator are each looked up by their own id, and
// the binding from id to address lives in the registry tables.
type (
	EventID   string
	UserID    string
	CreatorID string
)

// Role is the closed set of privileges used by the first logic
// generation. Membership of a (role, address) pair is binary.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCreator Role = "creator"
)

// Valid reports whether the role is a member of the closed set.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCreator
}

// Generation selects the authorization model the engine runs with.
// Both generations operate over the same storage layout; the value is
// configuration, never persisted state.
type Generation int

const (
	// GenerationV1 uses the (role, address) table: any holder of the
	// creator role may create events, and an event's creator reference
	// is the creator's own address.
	GenerationV1 Generation = 1

	// GenerationV2 uses the explicit creator registry: an event's
	// creator reference is a creator id, and payments are checked
	// against the user registry.
	GenerationV2 Generation = 2
)

// Valid reports whether the generation is one of the two shipped ones.
func (g Generation) Valid() bool {
	return g == GenerationV1 || g == GenerationV2
}
