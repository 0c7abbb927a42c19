package service

import (
	"context"
	"errors"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/internal/dto"
	"github.com/Svg70/crypto-booking/internal/gateway"
	"github.com/Svg70/crypto-booking/internal/metrics"
	"github.com/Svg70/crypto-booking/internal/repository"
	"github.com/Svg70/crypto-booking/pkg/logger"
	"github.com/Svg70/crypto-booking/pkg/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// PaymentService defines the interface for settling payments. A
// settlement pulls pre-approved funds from the payer's token account
// into the treasury and credits the (event, user) ticket ledger in one
// atomic step: either both happen or neither does.
type PaymentService interface {
	// Pay settles one payment for the caller.
	Pay(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*dto.PaymentResponse, error)

	// GetSettlement returns a settlement receipt by id.
	GetSettlement(ctx context.Context, id string) (*dto.PaymentResponse, error)
}

// paymentService implements PaymentService
type paymentService struct {
	bookings   repository.BookingRepository
	events     repository.EventRepository
	access     repository.AccessRepository
	token      gateway.TokenGateway
	publisher  EventPublisher
	generation domain.Generation
}

// PaymentServiceConfig contains configuration for the payment service
type PaymentServiceConfig struct {
	Generation domain.Generation
	Publisher  EventPublisher
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	bookings repository.BookingRepository,
	events repository.EventRepository,
	access repository.AccessRepository,
	token gateway.TokenGateway,
	cfg *PaymentServiceConfig,
) PaymentService {
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
	return &paymentService{
		bookings:   bookings,
		events:     events,
		access:     access,
		token:      token,
		publisher:  publisher,
		generation: generation,
	}
}

func (s *paymentService) Pay(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*dto.PaymentResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.payment.pay")
	defer span.End()
	span.SetAttributes(
		attribute.String("event_id", req.EventID),
		attribute.String("user_id", req.UserID),
		attribute.Int64("ticket_count", int64(req.TicketCount)),
	)
	start := time.Now()

	settlement, err := s.pay(ctx, caller, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordPaymentFailure(ctx, req.EventID, failureReason(err))
		return nil, err
	}

	metrics.RecordSettlement(ctx, req.EventID, settlement.Tickets, time.Since(start).Seconds())

	if err := s.publisher.PublishPaymentSettled(ctx, settlement); err != nil {
		logger.Get().Warn("failed to publish payment settled",
			zap.String("settlement_id", settlement.ID),
			zap.Error(err))
	}

	span.SetAttributes(attribute.String("settlement_id", settlement.ID))
	span.SetStatus(codes.Ok, "")
	return dto.PaymentFromDomain(settlement), nil
}

func (s *paymentService) pay(ctx context.Context, caller domain.Address, req *dto.PaymentRequest) (*domain.Settlement, error) {
	if req.TicketCount == 0 {
		return nil, domain.ErrInvalidTicketCount
	}
	if req.EventID == "" {
		return nil, domain.ErrInvalidEventID
	}
	if req.UserID == "" {
		return nil, domain.ErrInvalidUserID
	}
	payer := domain.Address(req.Payer)
	if payer.IsZero() {
		return nil, domain.ErrInvalidAddress
	}
	// Funds can only be pulled from the caller's own account
	if payer != caller {
		return nil, domain.ErrUnauthorized
	}

	meta, err := s.access.GetMeta(ctx)
	if err != nil {
		return nil, err
	}

	event, err := s.events.GetByID(ctx, domain.EventID(req.EventID))
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if event.Declined {
		return nil, domain.ErrEventDeclined
	}
	if event.IsExpired(now) {
		return nil, domain.ErrEventExpired
	}
	if !event.CanBook(req.TicketCount) {
		return nil, domain.ErrCapacityExceeded
	}

	// The second generation binds user ids to addresses: a registered
	// user may only be credited by its own address. Unregistered ids
	// pass through, matching the first generation's behavior.
	if s.generation == domain.GenerationV2 {
		userAddr, err := s.access.UserAddress(ctx, domain.UserID(req.UserID))
		if err != nil {
			return nil, err
		}
		if !userAddr.IsZero() && userAddr != payer {
			return nil, domain.ErrWrongUserAddress
		}
	}

	total, err := domain.MulTickets(req.TicketCount, event.Price)
	if err != nil {
		return nil, err
	}

	// Pre-flight against the token ledger so obviously doomed pulls
	// never open a settlement transaction.
	allowance, err := s.token.Allowance(ctx, payer, meta.Treasury)
	if err != nil {
		return nil, err
	}
	if allowance < total {
		return nil, domain.ErrInsufficientAllowance
	}
	balance, err := s.token.BalanceOf(ctx, payer)
	if err != nil {
		return nil, err
	}
	if balance < total {
		return nil, domain.ErrInsufficientBalance
	}

	params := repository.SettleParams{
		EventID:       domain.EventID(req.EventID),
		UserID:        domain.UserID(req.UserID),
		Payer:         payer,
		Tickets:       req.TicketCount,
		Total:         total,
		ReceiptID:     uuid.New().String(),
		SchemaVersion: int(s.generation),
	}

	var pulledRef string
	settlement, err := s.bookings.Settle(ctx, params, func(ctx context.Context) (string, error) {
		ref, err := s.token.TransferFrom(ctx, payer, meta.Treasury, total)
		if err != nil {
			return "", err
		}
		pulledRef = ref
		return ref, nil
	})
	if err != nil {
		if pulledRef != "" {
			s.compensate(ctx, meta.Treasury, payer, total, pulledRef)
		}
		return nil, err
	}
	return settlement, nil
}

func (s *paymentService) GetSettlement(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	settlement, err := s.bookings.GetSettlement(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.PaymentFromDomain(settlement), nil
}

// compensate refunds a pull whose ledger commit failed afterwards. The
// refund is best effort: a failure here is logged for the operator to
// reconcile by transfer reference.
func (s *paymentService) compensate(ctx context.Context, treasury, payer domain.Address, total uint64, transferRef string) {
	refundRef, err := s.token.Transfer(ctx, treasury, payer, total)
	if err != nil {
		logger.Get().Error("settlement rolled back but refund failed, manual reconciliation required",
			zap.String("transfer_ref", transferRef),
			zap.String("payer", string(payer)),
			zap.Uint64("total", total),
			zap.Error(err))
		return
	}
	logger.Get().Warn("settlement rolled back, funds refunded",
		zap.String("transfer_ref", transferRef),
		zap.String("refund_ref", refundRef))
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientAllowance):
		return "insufficient_allowance"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, domain.ErrEventDeclined):
		return "event_declined"
	case errors.Is(err, domain.ErrEventExpired):
		return "event_expired"
	case errors.Is(err, domain.ErrWrongUserAddress):
		return "wrong_user_address"
	case errors.Is(err, domain.ErrEventNotFound):
		return "event_not_found"
	case domain.IsValidationError(err):
		return "validation"
	default:
		return "internal"
	}
}

// Ensure paymentService implements PaymentService
var _ PaymentService = (*paymentService)(nil)
