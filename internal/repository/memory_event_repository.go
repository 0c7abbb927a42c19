package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Svg70/crypto-booking/internal/domain"
)

// MemoryEventRepository is an in-memory EventRepository for local
// development and tests.
type MemoryEventRepository struct {
	mu     sync.RWMutex
	events map[domain.EventID]*domain.Event
}

// NewMemoryEventRepository creates an empty in-memory event store.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{
		events: make(map[domain.EventID]*domain.Event),
	}
}

func (r *MemoryEventRepository) Create(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[event.ID]; ok {
		return domain.ErrEventAlreadyExists
	}
	stored := *event
	r.events[event.ID] = &stored
	return nil
}

func (r *MemoryEventRepository) GetByID(ctx context.Context, id domain.EventID) (*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	cloned := *event
	return &cloned, nil
}

func (r *MemoryEventRepository) Update(ctx context.Context, event *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	stored := *event
	r.events[event.ID] = &stored
	return nil
}

func (r *MemoryEventRepository) Decline(ctx context.Context, id domain.EventID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	event.Declined = true
	return nil
}

func (r *MemoryEventRepository) List(ctx context.Context, limit, offset int) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*domain.Event, 0, len(r.events))
	for _, event := range r.events {
		cloned := *event
		all = append(all, &cloned)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*domain.Event{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

// bookTickets increments the booked count under the store lock. Used by
// the in-memory booking repository to share one event view.
func (r *MemoryEventRepository) bookTickets(id domain.EventID, count uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return domain.ErrEventNotFound
	}
	if !event.CanBook(count) {
		return domain.ErrCapacityExceeded
	}
	event.TicketsBooked += count
	return nil
}

// unbookTickets reverses a booking after a failed settlement commit.
func (r *MemoryEventRepository) unbookTickets(id domain.EventID, count uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event, ok := r.events[id]; ok && event.TicketsBooked >= count {
		event.TicketsBooked -= count
	}
}

// Ensure MemoryEventRepository implements EventRepository
var _ EventRepository = (*MemoryEventRepository)(nil)
