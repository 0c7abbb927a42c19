package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/google/uuid"
)

type allowanceKey struct {
	owner   domain.Address
	spender domain.Address
}

// MemoryTokenGateway implements TokenGateway with an in-process token
// ledger. It follows the usual fungible-token rules: transfers debit
// balance, delegated transfers also debit allowance, and both checks
// run before any state changes.
type MemoryTokenGateway struct {
	config     *MemoryTokenGatewayConfig
	mu         sync.Mutex
	balances   map[domain.Address]uint64
	allowances map[allowanceKey]uint64
}

// MemoryTokenGatewayConfig holds configuration for the in-memory ledger
type MemoryTokenGatewayConfig struct {
	// DelayMs is the simulated transfer latency in milliseconds
	DelayMs int
}

// DefaultMemoryTokenGatewayConfig returns default configuration
func DefaultMemoryTokenGatewayConfig() *MemoryTokenGatewayConfig {
	return &MemoryTokenGatewayConfig{
		DelayMs: 0,
	}
}

// NewMemoryTokenGateway creates a new in-memory token gateway
func NewMemoryTokenGateway(config *MemoryTokenGatewayConfig) *MemoryTokenGateway {
	if config == nil {
		config = DefaultMemoryTokenGatewayConfig()
	}
	return &MemoryTokenGateway{
		config:     config,
		balances:   make(map[domain.Address]uint64),
		allowances: make(map[allowanceKey]uint64),
	}
}

func (g *MemoryTokenGateway) delay(ctx context.Context) error {
	if g.config.DelayMs <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(g.config.DelayMs) * time.Millisecond):
		return nil
	}
}

// BalanceOf returns the balance of the account
func (g *MemoryTokenGateway) BalanceOf(ctx context.Context, account domain.Address) (uint64, error) {
	if err := g.delay(ctx); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.balances[account], nil
}

// Allowance returns the remaining delegated spending limit
func (g *MemoryTokenGateway) Allowance(ctx context.Context, owner, spender domain.Address) (uint64, error) {
	if err := g.delay(ctx); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.allowances[allowanceKey{owner, spender}], nil
}

// TransferFrom moves amount from `from` to `to`, consuming the
// allowance `from` granted to the engine
func (g *MemoryTokenGateway) TransferFrom(ctx context.Context, from, to domain.Address, amount uint64) (string, error) {
	if err := g.delay(ctx); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	key := allowanceKey{owner: from, spender: to}
	if g.allowances[key] < amount {
		return "", domain.ErrInsufficientAllowance
	}
	if g.balances[from] < amount {
		return "", domain.ErrInsufficientBalance
	}

	g.allowances[key] -= amount
	g.balances[from] -= amount
	g.balances[to] += amount

	return fmt.Sprintf("memtx_%s", uuid.New().String()[:8]), nil
}

// Transfer moves funds without touching allowances
func (g *MemoryTokenGateway) Transfer(ctx context.Context, from, to domain.Address, amount uint64) (string, error) {
	if err := g.delay(ctx); err != nil {
		return "", err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.balances[from] < amount {
		return "", domain.ErrInsufficientBalance
	}
	g.balances[from] -= amount
	g.balances[to] += amount

	return fmt.Sprintf("memtx_%s", uuid.New().String()[:8]), nil
}

// Mint credits freshly minted tokens to an account. Development only.
func (g *MemoryTokenGateway) Mint(ctx context.Context, account domain.Address, amount uint64) error {
	if err := g.delay(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.balances[account] += amount
	return nil
}

// Approve sets the allowance owner grants to spender. Development only.
func (g *MemoryTokenGateway) Approve(ctx context.Context, owner, spender domain.Address, amount uint64) error {
	if err := g.delay(ctx); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.allowances[allowanceKey{owner, spender}] = amount
	return nil
}

// Name returns the gateway name
func (g *MemoryTokenGateway) Name() string {
	return "memory"
}

// Ensure MemoryTokenGateway implements TokenGateway
var _ TokenGateway = (*MemoryTokenGateway)(nil)
