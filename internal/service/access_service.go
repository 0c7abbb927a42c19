package service

import (
	"context"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/internal/dto"
	"github.com/Svg70/crypto-booking/internal/repository"
	"github.com/Svg70/crypto-booking/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AccessService defines the interface for engine authorization logic.
// It covers both logic generations: the (role, address) table of the
// first and the creator/user registries of the second. Which rules the
// engine enforces is picked by configuration; the stored state is the
// same either way.
type AccessService interface {
	// Initialize seeds the engine exactly once. The admin address
	// receives the admin role; a second call fails regardless of input.
	Initialize(ctx context.Context, req *dto.InitializeRequest) error

	// Meta returns the initialization record.
	Meta(ctx context.Context) (*domain.EngineMeta, error)

	// GrantRole adds a (role, address) pair. Admin only.
	GrantRole(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error

	// RevokeRole removes a (role, address) pair. Admin only.
	RevokeRole(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error

	// HasRole reports membership of a (role, address) pair.
	HasRole(ctx context.Context, role domain.Role, addr domain.Address) (bool, error)

	// AddCreator binds a creator id to an address. Admin only.
	AddCreator(ctx context.Context, caller domain.Address, req *dto.AddCreatorRequest) error

	// RemoveCreator resets a creator binding to the zero sentinel, so
	// the id can no longer author catalog changes. Admin only.
	RemoveCreator(ctx context.Context, caller domain.Address, id domain.CreatorID) error

	// GetCreator returns the creator binding. A removed or unknown
	// creator resolves to the zero sentinel, not an error.
	GetCreator(ctx context.Context, id domain.CreatorID) (*dto.CreatorResponse, error)

	// CreateUser binds a user id to its paying address. Admin only.
	CreateUser(ctx context.Context, caller domain.Address, req *dto.CreateUserRequest) error

	// UserAddress returns the bound address or the zero sentinel.
	UserAddress(ctx context.Context, id domain.UserID) (domain.Address, error)
}

// accessService implements AccessService
type accessService struct {
	repo       repository.AccessRepository
	generation domain.Generation
}

// AccessServiceConfig contains configuration for the access service
type AccessServiceConfig struct {
	Generation domain.Generation
}

// NewAccessService creates a new access service
func NewAccessService(repo repository.AccessRepository, cfg *AccessServiceConfig) AccessService {
	generation := domain.GenerationV2
	if cfg != nil && cfg.Generation.Valid() {
		generation = cfg.Generation
	}
	return &accessService{
		repo:       repo,
		generation: generation,
	}
}

func (s *accessService) Initialize(ctx context.Context, req *dto.InitializeRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.access.initialize")
	defer span.End()

	if req == nil || req.Admin == "" || req.Operator == "" || req.Treasury == "" || req.TokenAddress == "" {
		span.SetStatus(codes.Error, "invalid address")
		return domain.ErrInvalidAddress
	}

	meta := &domain.EngineMeta{
		Admin:         domain.Address(req.Admin),
		Operator:      domain.Address(req.Operator),
		Treasury:      domain.Address(req.Treasury),
		TokenAddress:  domain.Address(req.TokenAddress),
		SchemaVersion: int(s.generation),
		InitializedAt: time.Now(),
	}

	if err := s.repo.Initialize(ctx, meta); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("admin", req.Admin))
	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *accessService) Meta(ctx context.Context) (*domain.EngineMeta, error) {
	return s.repo.GetMeta(ctx)
}

func (s *accessService) GrantRole(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.access.grant_role")
	defer span.End()

	role := domain.Role(req.Role)
	if !role.Valid() {
		span.SetStatus(codes.Error, "invalid role")
		return domain.ErrInvalidRole
	}
	if req.Address == "" {
		span.SetStatus(codes.Error, "invalid address")
		return domain.ErrInvalidAddress
	}
	if err := s.requireAdmin(ctx, caller); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.repo.GrantRole(ctx, role, domain.Address(req.Address)); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *accessService) RevokeRole(ctx context.Context, caller domain.Address, req *dto.RoleRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.access.revoke_role")
	defer span.End()

	role := domain.Role(req.Role)
	if !role.Valid() {
		span.SetStatus(codes.Error, "invalid role")
		return domain.ErrInvalidRole
	}
	if err := s.requireAdmin(ctx, caller); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.repo.RevokeRole(ctx, role, domain.Address(req.Address)); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *accessService) HasRole(ctx context.Context, role domain.Role, addr domain.Address) (bool, error) {
	if !role.Valid() {
		return false, domain.ErrInvalidRole
	}
	return s.repo.HasRole(ctx, role, addr)
}

func (s *accessService) AddCreator(ctx context.Context, caller domain.Address, req *dto.AddCreatorRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.access.add_creator")
	defer span.End()

	if req.CreatorID == "" {
		span.SetStatus(codes.Error, "invalid creator id")
		return domain.ErrInvalidCreatorID
	}
	if req.Address == "" {
		span.SetStatus(codes.Error, "invalid address")
		return domain.ErrInvalidAddress
	}
	if err := s.requireAdmin(ctx, caller); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.repo.PutCreator(ctx, domain.CreatorID(req.CreatorID), domain.Address(req.Address)); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("creator_id", req.CreatorID))
	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *accessService) RemoveCreator(ctx context.Context, caller domain.Address, id domain.CreatorID) error {
	ctx, span := telemetry.StartSpan(ctx, "service.access.remove_creator")
	defer span.End()

	if id == "" {
		span.SetStatus(codes.Error, "invalid creator id")
		return domain.ErrInvalidCreatorID
	}
	if err := s.requireAdmin(ctx, caller); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.repo.RemoveCreator(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *accessService) GetCreator(ctx context.Context, id domain.CreatorID) (*dto.CreatorResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidCreatorID
	}

	addr, err := s.repo.CreatorAddress(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CreatorResponse{
		CreatorID: string(id),
		Address:   string(addr),
	}, nil
}

func (s *accessService) CreateUser(ctx context.Context, caller domain.Address, req *dto.CreateUserRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.access.create_user")
	defer span.End()

	if req.UserID == "" {
		span.SetStatus(codes.Error, "invalid user id")
		return domain.ErrInvalidUserID
	}
	if req.Address == "" {
		span.SetStatus(codes.Error, "invalid address")
		return domain.ErrInvalidAddress
	}
	if err := s.requireAdmin(ctx, caller); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.repo.PutUser(ctx, domain.UserID(req.UserID), domain.Address(req.Address)); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("user_id", req.UserID))
	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *accessService) UserAddress(ctx context.Context, id domain.UserID) (domain.Address, error) {
	if id == "" {
		return domain.ZeroAddress, domain.ErrInvalidUserID
	}
	return s.repo.UserAddress(ctx, id)
}

// requireAdmin checks initialization and admin role membership
func (s *accessService) requireAdmin(ctx context.Context, caller domain.Address) error {
	if _, err := s.repo.GetMeta(ctx); err != nil {
		return err
	}
	if caller.IsZero() {
		return domain.ErrUnauthorized
	}

	ok, err := s.repo.HasRole(ctx, domain.RoleAdmin, caller)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

// Ensure accessService implements AccessService
var _ AccessService = (*accessService)(nil)
