package dto

import (
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
)

// PaymentRequest books tickets against a pre-approved token balance.
// Payer is the address the funds are pulled from; for a registered
// user id it must match the registered address.
type PaymentRequest struct {
	TicketCount uint64 `json:"ticket_count" binding:"required"`
	EventID     string `json:"event_id" binding:"required"`
	UserID      string `json:"user_id" binding:"required"`
	Payer       string `json:"payer" binding:"required"`
}

// PaymentResponse is the settlement receipt
type PaymentResponse struct {
	SettlementID string    `json:"settlement_id"`
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	Tickets      uint64    `json:"tickets"`
	Total        uint64    `json:"total"`
	TransferRef  string    `json:"transfer_ref,omitempty"`
	SettledAt    time.Time `json:"settled_at"`
}

// PaymentFromDomain converts a settlement to its response shape
func PaymentFromDomain(s *domain.Settlement) *PaymentResponse {
	return &PaymentResponse{
		SettlementID: s.ID,
		EventID:      string(s.EventID),
		UserID:       string(s.UserID),
		Tickets:      s.Tickets,
		Total:        s.Total,
		TransferRef:  s.TransferRef,
		SettledAt:    s.CreatedAt,
	}
}

// BookingResponse is the cumulative ledger entry for (event, user)
type BookingResponse struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Tickets uint64 `json:"tickets"`
}
