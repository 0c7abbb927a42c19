package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/pkg/retry"
)

func fastGatewayConfig(baseURL string) *HTTPTokenGatewayConfig {
	return &HTTPTokenGatewayConfig{
		BaseURL: baseURL,
		Timeout: time.Second,
		Retry: &retry.Config{
			MaxRetries:      3,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			Multiplier:      2.0,
		},
	}
}

func TestHTTPTokenGateway_TransferFrom_RetryDoesNotReapply(t *testing.T) {
	applications := 0
	refs := make(map[string]string)

	// Ledger that applies the transfer but loses the first response. A
	// retry carrying the same idempotency key replays the stored result
	// instead of moving funds again.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("X-Idempotency-Key")
		if key == "" {
			t.Error("transfer request carries no idempotency key")
		}
		if ref, seen := refs[key]; seen {
			json.NewEncoder(w).Encode(map[string]string{"transfer_ref": ref})
			return
		}
		applications++
		refs[key] = fmt.Sprintf("tx-%d", applications)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"message": "response lost"})
	}))
	defer srv.Close()

	g := NewHTTPTokenGateway(fastGatewayConfig(srv.URL))

	ref, err := g.TransferFrom(context.Background(), "0xpayer", "0xtreasury", 200)
	if err != nil {
		t.Fatalf("TransferFrom failed: %v", err)
	}
	if ref != "tx-1" {
		t.Errorf("expected replayed ref tx-1, got %q", ref)
	}
	if applications != 1 {
		t.Errorf("one transfer applied %d times", applications)
	}

	// A separate transfer gets its own key and applies on its own
	if _, err := g.Transfer(context.Background(), "0xtreasury", "0xpayer", 200); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if applications != 2 {
		t.Errorf("expected a fresh application for a new transfer, got %d", applications)
	}
}

func TestHTTPTokenGateway_TransferFrom_RejectionNotRetried(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "INSUFFICIENT_ALLOWANCE",
			"message": "allowance too low",
		})
	}))
	defer srv.Close()

	g := NewHTTPTokenGateway(fastGatewayConfig(srv.URL))

	_, err := g.TransferFrom(context.Background(), "0xpayer", "0xtreasury", 200)
	if !errors.Is(err, domain.ErrInsufficientAllowance) {
		t.Fatalf("expected ErrInsufficientAllowance, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("rejected transfer was retried %d times", attempts-1)
	}
}
