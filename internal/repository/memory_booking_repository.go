package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
)

type bookingKey struct {
	eventID domain.EventID
	userID  domain.UserID
}

// MemoryBookingRepository is an in-memory BookingRepository for local
// development and tests. It shares the event store with
// MemoryEventRepository so settlements see the same capacity counters.
type MemoryBookingRepository struct {
	mu          sync.RWMutex
	events      *MemoryEventRepository
	bookings    map[bookingKey]*domain.Booking
	settlements map[string]*domain.Settlement
}

// NewMemoryBookingRepository creates an in-memory booking store backed
// by the given event store.
func NewMemoryBookingRepository(events *MemoryEventRepository) *MemoryBookingRepository {
	return &MemoryBookingRepository{
		events:      events,
		bookings:    make(map[bookingKey]*domain.Booking),
		settlements: make(map[string]*domain.Settlement),
	}
}

func (r *MemoryBookingRepository) GetBooking(ctx context.Context, eventID domain.EventID, userID domain.UserID) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if booking, ok := r.bookings[bookingKey{eventID, userID}]; ok {
		cloned := *booking
		return &cloned, nil
	}
	return &domain.Booking{EventID: eventID, UserID: userID, Tickets: 0}, nil
}

func (r *MemoryBookingRepository) Settle(ctx context.Context, params SettleParams, pull PullFunc) (*domain.Settlement, error) {
	// Reserve capacity first so a concurrent settlement cannot oversell,
	// then pull the funds. A failed pull releases the reservation.
	if err := r.events.bookTickets(params.EventID, params.Tickets); err != nil {
		return nil, err
	}

	transferRef, err := pull(ctx)
	if err != nil {
		r.events.unbookTickets(params.EventID, params.Tickets)
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := bookingKey{params.EventID, params.UserID}
	booking, ok := r.bookings[key]
	if !ok {
		booking = &domain.Booking{EventID: params.EventID, UserID: params.UserID}
		r.bookings[key] = booking
	}
	booking.Tickets += params.Tickets
	booking.UpdatedAt = time.Now()

	settlement := &domain.Settlement{
		ID:          params.ReceiptID,
		EventID:     params.EventID,
		UserID:      params.UserID,
		Payer:       params.Payer,
		Tickets:     params.Tickets,
		Total:       params.Total,
		TransferRef: transferRef,
		CreatedAt:   time.Now(),
	}
	r.settlements[settlement.ID] = settlement

	cloned := *settlement
	return &cloned, nil
}

func (r *MemoryBookingRepository) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	settlement, ok := r.settlements[id]
	if !ok {
		return nil, domain.ErrSettlementNotFound
	}
	cloned := *settlement
	return &cloned, nil
}

// Ensure MemoryBookingRepository implements BookingRepository
var _ BookingRepository = (*MemoryBookingRepository)(nil)
