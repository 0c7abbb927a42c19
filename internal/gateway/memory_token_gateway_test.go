package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/Svg70/crypto-booking/internal/domain"
)

const (
	owner    = domain.Address("0xowner")
	treasury = domain.Address("0xtreasury")
)

func TestMemoryTokenGateway_TransferFrom(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryTokenGateway(nil)

	if err := g.Mint(ctx, owner, 1000); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if err := g.Approve(ctx, owner, treasury, 600); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	ref, err := g.TransferFrom(ctx, owner, treasury, 400)
	if err != nil {
		t.Fatalf("TransferFrom failed: %v", err)
	}
	if ref == "" {
		t.Error("expected a transfer reference")
	}

	balance, _ := g.BalanceOf(ctx, owner)
	if balance != 600 {
		t.Errorf("expected owner balance 600, got %d", balance)
	}
	balance, _ = g.BalanceOf(ctx, treasury)
	if balance != 400 {
		t.Errorf("expected treasury balance 400, got %d", balance)
	}

	// Allowance is consumed by the pull
	allowance, _ := g.Allowance(ctx, owner, treasury)
	if allowance != 200 {
		t.Errorf("expected remaining allowance 200, got %d", allowance)
	}
}

func TestMemoryTokenGateway_TransferFrom_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("insufficient allowance", func(t *testing.T) {
		g := NewMemoryTokenGateway(nil)
		if err := g.Mint(ctx, owner, 1000); err != nil {
			t.Fatalf("Mint failed: %v", err)
		}
		if err := g.Approve(ctx, owner, treasury, 100); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}

		_, err := g.TransferFrom(ctx, owner, treasury, 200)
		if !errors.Is(err, domain.ErrInsufficientAllowance) {
			t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
		}

		// Nothing moved
		balance, _ := g.BalanceOf(ctx, owner)
		if balance != 1000 {
			t.Errorf("expected untouched balance, got %d", balance)
		}
		allowance, _ := g.Allowance(ctx, owner, treasury)
		if allowance != 100 {
			t.Errorf("expected untouched allowance, got %d", allowance)
		}
	})

	t.Run("insufficient balance", func(t *testing.T) {
		g := NewMemoryTokenGateway(nil)
		if err := g.Mint(ctx, owner, 100); err != nil {
			t.Fatalf("Mint failed: %v", err)
		}
		if err := g.Approve(ctx, owner, treasury, 1000); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}

		_, err := g.TransferFrom(ctx, owner, treasury, 200)
		if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Fatalf("expected ErrInsufficientBalance, got %v", err)
		}
	})
}

func TestMemoryTokenGateway_Transfer(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryTokenGateway(nil)

	if err := g.Mint(ctx, treasury, 500); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	// Refunds move funds without any allowance
	if _, err := g.Transfer(ctx, treasury, owner, 300); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	balance, _ := g.BalanceOf(ctx, owner)
	if balance != 300 {
		t.Errorf("expected balance 300, got %d", balance)
	}

	if _, err := g.Transfer(ctx, treasury, owner, 300); !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}
