package gateway

import (
	"context"

	"github.com/Svg70/crypto-booking/internal/domain"
)

// TokenGateway is the client for the external fungible-token ledger.
// The booking engine never holds funds itself: a payer approves an
// allowance for the engine's account out of band, and settlement pulls
// the owed amount with TransferFrom.
type TokenGateway interface {
	// BalanceOf returns the token balance of the account.
	BalanceOf(ctx context.Context, account domain.Address) (uint64, error)

	// Allowance returns how much the spender may still pull from owner.
	Allowance(ctx context.Context, owner, spender domain.Address) (uint64, error)

	// TransferFrom moves amount from `from` to `to` on behalf of the
	// engine, consuming allowance. It returns an opaque transfer
	// reference on success. Shortfalls map to
	// domain.ErrInsufficientBalance / domain.ErrInsufficientAllowance.
	TransferFrom(ctx context.Context, from, to domain.Address, amount uint64) (string, error)

	// Transfer moves the engine's own funds, used to compensate a payer
	// when a settlement fails after the pull went through.
	Transfer(ctx context.Context, from, to domain.Address, amount uint64) (string, error)

	// Name identifies the gateway implementation.
	Name() string
}
