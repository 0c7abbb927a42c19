package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/pkg/retry"
	"github.com/google/uuid"
)

// HTTPTokenGateway implements TokenGateway against a token ledger
// service speaking a small REST API. Transport failures are retried
// with backoff; business rejections (insufficient balance or
// allowance) are permanent and surface as domain errors.
type HTTPTokenGateway struct {
	config  *HTTPTokenGatewayConfig
	client  *http.Client
	retrier *retry.Retrier
}

// HTTPTokenGatewayConfig holds configuration for the HTTP gateway
type HTTPTokenGatewayConfig struct {
	BaseURL string
	Timeout time.Duration
	Retry   *retry.Config
}

// DefaultHTTPTokenGatewayConfig returns default configuration
func DefaultHTTPTokenGatewayConfig() *HTTPTokenGatewayConfig {
	return &HTTPTokenGatewayConfig{
		BaseURL: "http://localhost:8545",
		Timeout: 10 * time.Second,
		Retry: &retry.Config{
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		},
	}
}

// NewHTTPTokenGateway creates a new HTTP token gateway
func NewHTTPTokenGateway(config *HTTPTokenGatewayConfig) *HTTPTokenGateway {
	if config == nil {
		config = DefaultHTTPTokenGatewayConfig()
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &HTTPTokenGateway{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		retrier: retry.New(config.Retry),
	}
}

type amountResponse struct {
	Amount uint64 `json:"amount"`
}

type transferRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Amount    uint64 `json:"amount"`
	Delegated bool   `json:"delegated"`
}

type transferResponse struct {
	TransferRef string `json:"transfer_ref"`
	Code        string `json:"code"`
	Message     string `json:"message"`
}

// BalanceOf returns the token balance of the account
func (g *HTTPTokenGateway) BalanceOf(ctx context.Context, account domain.Address) (uint64, error) {
	var out amountResponse
	url := fmt.Sprintf("%s/accounts/%s/balance", g.config.BaseURL, account)
	if err := g.getJSON(ctx, url, &out); err != nil {
		return 0, err
	}
	return out.Amount, nil
}

// Allowance returns the remaining delegated spending limit
func (g *HTTPTokenGateway) Allowance(ctx context.Context, owner, spender domain.Address) (uint64, error) {
	var out amountResponse
	url := fmt.Sprintf("%s/accounts/%s/allowances/%s", g.config.BaseURL, owner, spender)
	if err := g.getJSON(ctx, url, &out); err != nil {
		return 0, err
	}
	return out.Amount, nil
}

// TransferFrom pulls amount from `from` to `to` using allowance
func (g *HTTPTokenGateway) TransferFrom(ctx context.Context, from, to domain.Address, amount uint64) (string, error) {
	return g.transfer(ctx, &transferRequest{
		From:      string(from),
		To:        string(to),
		Amount:    amount,
		Delegated: true,
	})
}

// Transfer moves the engine's own funds
func (g *HTTPTokenGateway) Transfer(ctx context.Context, from, to domain.Address, amount uint64) (string, error) {
	return g.transfer(ctx, &transferRequest{
		From:   string(from),
		To:     string(to),
		Amount: amount,
	})
}

// Name returns the gateway name
func (g *HTTPTokenGateway) Name() string {
	return "http"
}

func (g *HTTPTokenGateway) transfer(ctx context.Context, req *transferRequest) (string, error) {
	// One key per logical transfer, reused across retry attempts. A
	// transfer the ledger applied before the response was lost must not
	// be applied again on retry.
	idempotencyKey := uuid.New().String()

	var ref string
	err := g.retrier.Do(ctx, func(ctx context.Context) error {
		body, err := json.Marshal(req)
		if err != nil {
			return retry.Permanent(err)
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.BaseURL+"/transfers", bytes.NewReader(body))
		if err != nil {
			return retry.Permanent(err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("X-Idempotency-Key", idempotencyKey)

		resp, err := g.client.Do(httpReq)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		var out transferResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fmt.Errorf("failed to decode transfer response: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
			ref = out.TransferRef
			return nil
		case resp.StatusCode >= 500:
			return fmt.Errorf("token ledger error: %s", out.Message)
		default:
			// A rejected transfer never succeeds on retry
			return retry.Permanent(mapTransferError(out.Code, out.Message))
		}
	})
	if err != nil {
		return "", err
	}
	return ref, nil
}

func (g *HTTPTokenGateway) getJSON(ctx context.Context, url string, out interface{}) error {
	return g.retrier.Do(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Permanent(err)
		}

		resp, err := g.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("token ledger returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return retry.Permanent(fmt.Errorf("token ledger returned %d", resp.StatusCode))
		}
		return json.NewDecoder(resp.Body).Decode(out)
	})
}

func mapTransferError(code, message string) error {
	switch code {
	case "INSUFFICIENT_BALANCE":
		return domain.ErrInsufficientBalance
	case "INSUFFICIENT_ALLOWANCE":
		return domain.ErrInsufficientAllowance
	default:
		return fmt.Errorf("transfer rejected: %s", message)
	}
}

// Ensure HTTPTokenGateway implements TokenGateway
var _ TokenGateway = (*HTTPTokenGateway)(nil)
