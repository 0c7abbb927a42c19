package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
)

func seedEvent(id string, createdAt time.Time) *domain.Event {
	return &domain.Event{
		ID:         domain.EventID(id),
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
		Title:      "Concert",
		MaxTickets: 10,
		Price:      100,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func TestMemoryEventRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()

	if err := repo.Create(ctx, seedEvent("concert-1", time.Now())); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "concert-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Concert" {
		t.Errorf("unexpected event: %+v", got)
	}

	// Returned events are copies, mutating them must not leak back
	got.Title = "Mutated"
	again, _ := repo.GetByID(ctx, "concert-1")
	if again.Title != "Concert" {
		t.Error("stored event was mutated through the returned copy")
	}
}

func TestMemoryEventRepository_Create_Duplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()

	if err := repo.Create(ctx, seedEvent("concert-1", time.Now())); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	err := repo.Create(ctx, seedEvent("concert-1", time.Now()))
	if !errors.Is(err, domain.ErrEventAlreadyExists) {
		t.Fatalf("expected ErrEventAlreadyExists, got %v", err)
	}
}

func TestMemoryEventRepository_GetByID_NotFound(t *testing.T) {
	repo := NewMemoryEventRepository()
	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestMemoryEventRepository_Decline(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()

	if err := repo.Create(ctx, seedEvent("concert-1", time.Now())); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Decline(ctx, "concert-1"); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	// Declining twice is a no-op
	if err := repo.Decline(ctx, "concert-1"); err != nil {
		t.Fatalf("second Decline failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "concert-1")
	if !got.Declined {
		t.Error("expected event to be declined")
	}
}

func TestMemoryEventRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()

	base := time.Now()
	for i, id := range []string{"concert-1", "concert-2", "concert-3"} {
		if err := repo.Create(ctx, seedEvent(id, base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Create %s failed: %v", id, err)
		}
	}

	all, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
	if all[0].ID != "concert-3" || all[2].ID != "concert-1" {
		t.Errorf("expected newest first, got %s..%s", all[0].ID, all[2].ID)
	}

	page, err := repo.List(ctx, 1, 1)
	if err != nil {
		t.Fatalf("List page failed: %v", err)
	}
	if len(page) != 1 || page[0].ID != "concert-2" {
		t.Errorf("unexpected page: %+v", page)
	}

	empty, err := repo.List(ctx, 10, 5)
	if err != nil {
		t.Fatalf("List past end failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(empty))
	}
}
