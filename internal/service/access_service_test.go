package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/internal/dto"
	"github.com/Svg70/crypto-booking/internal/repository"
)

func newAccessService(generation domain.Generation) (AccessService, *repository.MemoryAccessRepository) {
	repo := repository.NewMemoryAccessRepository()
	svc := NewAccessService(repo, &AccessServiceConfig{Generation: generation})
	return svc, repo
}

func initRequest() *dto.InitializeRequest {
	return &dto.InitializeRequest{
		Admin:        string(testAdmin),
		Operator:     "0xoperator",
		Treasury:     string(testTreasury),
		TokenAddress: "0xtoken",
	}
}

func TestAccessService_Initialize(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccessService(domain.GenerationV2)

	if err := svc.Initialize(ctx, initRequest()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	meta, err := svc.Meta(ctx)
	if err != nil {
		t.Fatalf("Meta failed: %v", err)
	}
	if meta.Admin != testAdmin || meta.Treasury != testTreasury {
		t.Errorf("unexpected meta: %+v", meta)
	}

	// The admin address is seeded with the admin role
	ok, err := svc.HasRole(ctx, domain.RoleAdmin, testAdmin)
	if err != nil || !ok {
		t.Errorf("expected seeded admin role, ok=%v err=%v", ok, err)
	}
}

func TestAccessService_Initialize_Twice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccessService(domain.GenerationV2)

	if err := svc.Initialize(ctx, initRequest()); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}

	// The second call fails regardless of arguments
	other := initRequest()
	other.Admin = "0xother"
	if err := svc.Initialize(ctx, other); !errors.Is(err, domain.ErrAlreadyInitialized) {
		t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
	}
}

func TestAccessService_Initialize_MissingAddress(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccessService(domain.GenerationV2)

	req := initRequest()
	req.Treasury = ""
	if err := svc.Initialize(ctx, req); !errors.Is(err, domain.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestAccessService_Roles(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccessService(domain.GenerationV1)

	// Before initialization every admin operation fails
	err := svc.GrantRole(ctx, testAdmin, &dto.RoleRequest{Role: "creator", Address: "0xcreator"})
	if !errors.Is(err, domain.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}

	if err := svc.Initialize(ctx, initRequest()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	err = svc.GrantRole(ctx, "0xrando", &dto.RoleRequest{Role: "creator", Address: "0xcreator"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-admin, got %v", err)
	}

	err = svc.GrantRole(ctx, testAdmin, &dto.RoleRequest{Role: "superuser", Address: "0xcreator"})
	if !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	if err := svc.GrantRole(ctx, testAdmin, &dto.RoleRequest{Role: "creator", Address: "0xcreator"}); err != nil {
		t.Fatalf("GrantRole failed: %v", err)
	}
	ok, _ := svc.HasRole(ctx, domain.RoleCreator, "0xcreator")
	if !ok {
		t.Error("expected creator role after grant")
	}

	if err := svc.RevokeRole(ctx, testAdmin, &dto.RoleRequest{Role: "creator", Address: "0xcreator"}); err != nil {
		t.Fatalf("RevokeRole failed: %v", err)
	}
	ok, _ = svc.HasRole(ctx, domain.RoleCreator, "0xcreator")
	if ok {
		t.Error("expected role to be gone after revoke")
	}
}

func TestAccessService_Creators(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccessService(domain.GenerationV2)

	if err := svc.Initialize(ctx, initRequest()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	err := svc.AddCreator(ctx, "0xrando", &dto.AddCreatorRequest{CreatorID: "creator-1", Address: "0xcreator"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if err := svc.AddCreator(ctx, testAdmin, &dto.AddCreatorRequest{CreatorID: "creator-1", Address: "0xcreator"}); err != nil {
		t.Fatalf("AddCreator failed: %v", err)
	}

	got, err := svc.GetCreator(ctx, "creator-1")
	if err != nil {
		t.Fatalf("GetCreator failed: %v", err)
	}
	if got.Address != "0xcreator" {
		t.Errorf("expected bound address, got %q", got.Address)
	}

	// Removal resets the binding to the zero sentinel instead of
	// deleting the row
	if err := svc.RemoveCreator(ctx, testAdmin, "creator-1"); err != nil {
		t.Fatalf("RemoveCreator failed: %v", err)
	}
	got, err = svc.GetCreator(ctx, "creator-1")
	if err != nil {
		t.Fatalf("GetCreator after removal failed: %v", err)
	}
	if got.Address != string(domain.ZeroAddress) {
		t.Errorf("expected zero sentinel after removal, got %q", got.Address)
	}

	// Unknown ids read the same way
	got, err = svc.GetCreator(ctx, "never-added")
	if err != nil {
		t.Fatalf("GetCreator for unknown id failed: %v", err)
	}
	if got.Address != "" {
		t.Errorf("expected empty address for unknown id, got %q", got.Address)
	}
}

func TestAccessService_Users(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccessService(domain.GenerationV2)

	if err := svc.Initialize(ctx, initRequest()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if err := svc.CreateUser(ctx, testAdmin, &dto.CreateUserRequest{UserID: "user-1", Address: "0xuser"}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	addr, err := svc.UserAddress(ctx, "user-1")
	if err != nil {
		t.Fatalf("UserAddress failed: %v", err)
	}
	if addr != "0xuser" {
		t.Errorf("expected bound address, got %q", addr)
	}

	addr, err = svc.UserAddress(ctx, "unknown")
	if err != nil {
		t.Fatalf("UserAddress for unknown id failed: %v", err)
	}
	if !addr.IsZero() {
		t.Errorf("expected zero sentinel for unknown user, got %q", addr)
	}
}
