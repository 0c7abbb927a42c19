package dto

import "github.com/Svg70/crypto-booking/internal/domain"

// CreateEventRequest carries the full field set of a new event.
// CreatorRef is the caller's address in generation 1 and a creator id
// in generation 2.
type CreateEventRequest struct {
	EventID       string `json:"event_id" binding:"required"`
	ExpiresAt     int64  `json:"expires_at" binding:"required"`
	CreatorRef    string `json:"creator_ref" binding:"required"`
	Title         string `json:"title" binding:"required"`
	TicketsBooked uint64 `json:"tickets_booked"`
	MaxTickets    uint64 `json:"max_tickets" binding:"required"`
	Price         uint64 `json:"price" binding:"required"`
}

// UpdateEventRequest is a sparse patch: zero values leave the stored
// field untouched, so passing max_tickets=0 keeps the prior capacity
// while other supplied fields change.
type UpdateEventRequest struct {
	ExpiresAt     int64  `json:"expires_at"`
	Title         string `json:"title"`
	TicketsBooked uint64 `json:"tickets_booked"`
	MaxTickets    uint64 `json:"max_tickets"`
	Price         uint64 `json:"price"`
}

// EventResponse mirrors the stored event record
type EventResponse struct {
	ID            string `json:"id"`
	ExpiresAt     int64  `json:"expires_at"`
	Declined      bool   `json:"declined"`
	CreatorRef    string `json:"creator_ref"`
	Title         string `json:"title"`
	TicketsBooked uint64 `json:"tickets_booked"`
	MaxTickets    uint64 `json:"max_tickets"`
	Price         uint64 `json:"price"`
}

// EventFromDomain converts a domain event to its response shape
func EventFromDomain(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:            string(e.ID),
		ExpiresAt:     e.ExpiresAt,
		Declined:      e.Declined,
		CreatorRef:    e.CreatorRef,
		Title:         e.Title,
		TicketsBooked: e.TicketsBooked,
		MaxTickets:    e.MaxTickets,
		Price:         e.Price,
	}
}
