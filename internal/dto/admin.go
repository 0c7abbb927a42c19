package dto

// InitializeRequest seeds the engine exactly once per deployment.
// Admin receives the admin role, Operator is a backup admin, Treasury
// is the engine's own token account that settlements credit, and
// TokenAddress points at the external fungible-token ledger.
type InitializeRequest struct {
	Admin        string `json:"admin" binding:"required"`
	Operator     string `json:"operator" binding:"required"`
	Treasury     string `json:"treasury" binding:"required"`
	TokenAddress string `json:"token_address" binding:"required"`
}

// RoleRequest grants or revokes a (role, address) pair (generation 1)
type RoleRequest struct {
	Role    string `json:"role" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// AddCreatorRequest binds a creator id to an address (generation 2)
type AddCreatorRequest struct {
	CreatorID string `json:"creator_id" binding:"required"`
	Address   string `json:"address" binding:"required"`
}

// CreateUserRequest binds a user id to its paying address (generation 2)
type CreateUserRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// CreatorResponse is the lookup result for a creator id. Address is
// the zero sentinel (empty) when the creator has been removed.
type CreatorResponse struct {
	CreatorID string `json:"creator_id"`
	Address   string `json:"address"`
}
