package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
)

func newBookingStores(t *testing.T, maxTickets uint64) (*MemoryEventRepository, *MemoryBookingRepository) {
	t.Helper()
	events := NewMemoryEventRepository()
	err := events.Create(context.Background(), &domain.Event{
		ID:         "concert-1",
		ExpiresAt:  time.Now().Add(time.Hour).Unix(),
		Title:      "Concert",
		MaxTickets: maxTickets,
		Price:      100,
	})
	if err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return events, NewMemoryBookingRepository(events)
}

func settleParams(tickets uint64, receiptID string) SettleParams {
	return SettleParams{
		EventID:       "concert-1",
		UserID:        "user-1",
		Payer:         "0xpayer",
		Tickets:       tickets,
		Total:         tickets * 100,
		ReceiptID:     receiptID,
		SchemaVersion: 2,
	}
}

func TestMemoryBookingRepository_Settle(t *testing.T) {
	ctx := context.Background()
	events, bookings := newBookingStores(t, 10)

	pulled := false
	settlement, err := bookings.Settle(ctx, settleParams(3, "receipt-1"), func(ctx context.Context) (string, error) {
		pulled = true
		return "tx-abc", nil
	})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if !pulled {
		t.Fatal("expected pull to be invoked")
	}
	if settlement.TransferRef != "tx-abc" {
		t.Errorf("expected transfer ref tx-abc, got %q", settlement.TransferRef)
	}

	event, _ := events.GetByID(ctx, "concert-1")
	if event.TicketsBooked != 3 {
		t.Errorf("expected 3 tickets booked, got %d", event.TicketsBooked)
	}

	booking, err := bookings.GetBooking(ctx, "concert-1", "user-1")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if booking.Tickets != 3 {
		t.Errorf("expected 3 tickets in ledger, got %d", booking.Tickets)
	}
}

func TestMemoryBookingRepository_Settle_Cumulative(t *testing.T) {
	ctx := context.Background()
	_, bookings := newBookingStores(t, 10)

	pull := func(ctx context.Context) (string, error) { return "tx", nil }
	if _, err := bookings.Settle(ctx, settleParams(2, "receipt-1"), pull); err != nil {
		t.Fatalf("first Settle failed: %v", err)
	}
	if _, err := bookings.Settle(ctx, settleParams(2, "receipt-2"), pull); err != nil {
		t.Fatalf("second Settle failed: %v", err)
	}

	booking, _ := bookings.GetBooking(ctx, "concert-1", "user-1")
	if booking.Tickets != 4 {
		t.Errorf("expected cumulative 4 tickets, got %d", booking.Tickets)
	}
}

func TestMemoryBookingRepository_Settle_PullFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	events, bookings := newBookingStores(t, 10)

	pullErr := errors.New("ledger unreachable")
	_, err := bookings.Settle(ctx, settleParams(3, "receipt-1"), func(ctx context.Context) (string, error) {
		return "", pullErr
	})
	if !errors.Is(err, pullErr) {
		t.Fatalf("expected pull error, got %v", err)
	}

	// The reservation made before the pull must be reversed
	event, _ := events.GetByID(ctx, "concert-1")
	if event.TicketsBooked != 0 {
		t.Errorf("expected 0 tickets booked after rollback, got %d", event.TicketsBooked)
	}
	booking, _ := bookings.GetBooking(ctx, "concert-1", "user-1")
	if booking.Tickets != 0 {
		t.Errorf("expected empty ledger after rollback, got %d", booking.Tickets)
	}
	if _, err := bookings.GetSettlement(ctx, "receipt-1"); !errors.Is(err, domain.ErrSettlementNotFound) {
		t.Errorf("expected no receipt after rollback, got %v", err)
	}
}

func TestMemoryBookingRepository_Settle_CapacityExceeded(t *testing.T) {
	ctx := context.Background()
	_, bookings := newBookingStores(t, 2)

	pulled := false
	_, err := bookings.Settle(ctx, settleParams(3, "receipt-1"), func(ctx context.Context) (string, error) {
		pulled = true
		return "tx", nil
	})
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if pulled {
		t.Error("pull must not run when capacity is exceeded")
	}
}

func TestMemoryBookingRepository_GetBooking_Empty(t *testing.T) {
	ctx := context.Background()
	_, bookings := newBookingStores(t, 10)

	booking, err := bookings.GetBooking(ctx, "concert-1", "nobody")
	if err != nil {
		t.Fatalf("GetBooking failed: %v", err)
	}
	if booking.Tickets != 0 {
		t.Errorf("expected zero-count booking, got %d", booking.Tickets)
	}
	if booking.EventID != "concert-1" || booking.UserID != "nobody" {
		t.Errorf("expected key to round-trip, got %+v", booking)
	}
}

func TestMemoryBookingRepository_GetSettlement(t *testing.T) {
	ctx := context.Background()
	_, bookings := newBookingStores(t, 10)

	if _, err := bookings.Settle(ctx, settleParams(1, "receipt-1"), func(ctx context.Context) (string, error) {
		return "tx", nil
	}); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	settlement, err := bookings.GetSettlement(ctx, "receipt-1")
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if settlement.Tickets != 1 || settlement.Total != 100 {
		t.Errorf("unexpected settlement: %+v", settlement)
	}
}
