package service

import (
	"context"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/internal/dto"
	"github.com/Svg70/crypto-booking/internal/metrics"
	"github.com/Svg70/crypto-booking/internal/repository"
	"github.com/Svg70/crypto-booking/pkg/logger"
	"github.com/Svg70/crypto-booking/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// EventService defines the interface for event catalog operations
type EventService interface {
	// Create adds a new event authored by the caller. The expiry must
	// be strictly in the future.
	Create(ctx context.Context, caller domain.Address, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// Update patches an existing event. Zero-valued fields in the
	// request leave the stored values untouched. Only the event's
	// author may update it.
	Update(ctx context.Context, caller domain.Address, id domain.EventID, req *dto.UpdateEventRequest) (*dto.EventResponse, error)

	// Decline permanently blocks further bookings. Admin only.
	Decline(ctx context.Context, caller domain.Address, id domain.EventID) error

	// Get returns an event by id.
	Get(ctx context.Context, id domain.EventID) (*dto.EventResponse, error)

	// List returns events, newest first.
	List(ctx context.Context, limit, offset int) ([]*dto.EventResponse, error)
}

// eventService implements EventService
type eventService struct {
	events     repository.EventRepository
	access     repository.AccessRepository
	publisher  EventPublisher
	generation domain.Generation
}

// EventServiceConfig contains configuration for the event service
type EventServiceConfig struct {
	Generation domain.Generation
	Publisher  EventPublisher
}

// NewEventService creates a new event service
func NewEventService(events repository.EventRepository, access repository.AccessRepository, cfg *EventServiceConfig) EventService {
	generation := domain.GenerationV2
	var publisher EventPublisher = NewNoOpEventPublisher()
	if cfg != nil {
		if cfg.Generation.Valid() {
			generation = cfg.Generation
		}
		if cfg.Publisher != nil {
			publisher = cfg.Publisher
		}
	}
	return &eventService{
		events:     events,
		access:     access,
		publisher:  publisher,
		generation: generation,
	}
}

func (s *eventService) Create(ctx context.Context, caller domain.Address, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", req.EventID))

	if req.EventID == "" {
		span.SetStatus(codes.Error, "invalid event id")
		return nil, domain.ErrInvalidEventID
	}
	if req.ExpiresAt <= time.Now().Unix() {
		span.SetStatus(codes.Error, "expiry in the past")
		return nil, domain.ErrTimestampInPast
	}

	creatorRef := req.CreatorRef
	switch s.generation {
	case domain.GenerationV1:
		ok, err := s.access.HasRole(ctx, domain.RoleCreator, caller)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if !ok {
			span.SetStatus(codes.Error, "caller lacks creator role")
			return nil, domain.ErrUnauthorized
		}
		// First generation records the author by address
		creatorRef = string(caller)
	default:
		addr, err := s.access.CreatorAddress(ctx, domain.CreatorID(req.CreatorRef))
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if addr.IsZero() || addr != caller {
			span.SetStatus(codes.Error, "caller is not the bound creator")
			return nil, domain.ErrUnauthorized
		}
	}

	now := time.Now()
	event := &domain.Event{
		ID:            domain.EventID(req.EventID),
		ExpiresAt:     req.ExpiresAt,
		CreatorRef:    creatorRef,
		Title:         req.Title,
		TicketsBooked: req.TicketsBooked,
		MaxTickets:    req.MaxTickets,
		Price:         req.Price,
		SchemaVersion: int(s.generation),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.events.Create(ctx, event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.publisher.PublishEventCreated(ctx, event); err != nil {
		logger.Get().Warn("failed to publish event created",
			zap.String("event_id", req.EventID),
			zap.Error(err))
	}
	metrics.RecordEventCreated(ctx, req.EventID)

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

func (s *eventService) Update(ctx context.Context, caller domain.Address, id domain.EventID, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", string(id)))

	if id == "" {
		span.SetStatus(codes.Error, "invalid event id")
		return nil, domain.ErrInvalidEventID
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.requireOwner(ctx, caller, event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Sparse patch: zero values keep the stored field
	if req.ExpiresAt != 0 {
		if req.ExpiresAt <= time.Now().Unix() {
			span.SetStatus(codes.Error, "expiry in the past")
			return nil, domain.ErrTimestampInPast
		}
		event.ExpiresAt = req.ExpiresAt
	}
	if req.Title != "" {
		event.Title = req.Title
	}
	if req.TicketsBooked != 0 {
		event.TicketsBooked = req.TicketsBooked
	}
	if req.MaxTickets != 0 {
		event.MaxTickets = req.MaxTickets
	}
	if req.Price != 0 {
		event.Price = req.Price
	}
	// The patched record must still fit under its capacity cap, and it
	// keeps the schema tag of the generation that wrote it.
	if event.TicketsBooked > event.MaxTickets {
		span.SetStatus(codes.Error, "tickets booked over capacity")
		return nil, domain.ErrCapacityExceeded
	}
	event.UpdatedAt = time.Now()

	if err := s.events.Update(ctx, event); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.publisher.PublishEventUpdated(ctx, event); err != nil {
		logger.Get().Warn("failed to publish event updated",
			zap.String("event_id", string(id)),
			zap.Error(err))
	}
	metrics.RecordEventUpdated(ctx, string(id))

	span.SetStatus(codes.Ok, "")
	return dto.EventFromDomain(event), nil
}

func (s *eventService) Decline(ctx context.Context, caller domain.Address, id domain.EventID) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.decline")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", string(id)))

	if id == "" {
		span.SetStatus(codes.Error, "invalid event id")
		return domain.ErrInvalidEventID
	}

	ok, err := s.access.HasRole(ctx, domain.RoleAdmin, caller)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if !ok {
		span.SetStatus(codes.Error, "caller is not admin")
		return domain.ErrUnauthorized
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.events.Decline(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	event.Declined = true

	if err := s.publisher.PublishEventDeclined(ctx, event); err != nil {
		logger.Get().Warn("failed to publish event declined",
			zap.String("event_id", string(id)),
			zap.Error(err))
	}
	metrics.RecordEventDeclined(ctx, string(id))

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *eventService) Get(ctx context.Context, id domain.EventID) (*dto.EventResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidEventID
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.EventFromDomain(event), nil
}

func (s *eventService) List(ctx context.Context, limit, offset int) ([]*dto.EventResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	events, err := s.events.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.EventFromDomain(e))
	}
	return out, nil
}

// requireOwner resolves authorship per generation. The first generation
// stores the author's address directly; the second stores a creator id
// that must currently resolve to the caller. A removed creator resolves
// to the zero sentinel and never matches.
func (s *eventService) requireOwner(ctx context.Context, caller domain.Address, event *domain.Event) error {
	if caller.IsZero() {
		return domain.ErrNotEventOwner
	}

	switch s.generation {
	case domain.GenerationV1:
		if event.CreatorRef != string(caller) {
			return domain.ErrNotEventOwner
		}
	default:
		addr, err := s.access.CreatorAddress(ctx, domain.CreatorID(event.CreatorRef))
		if err != nil {
			return err
		}
		if addr.IsZero() || addr != caller {
			return domain.ErrNotEventOwner
		}
	}
	return nil
}

// Ensure eventService implements EventService
var _ EventService = (*eventService)(nil)
