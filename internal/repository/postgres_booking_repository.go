package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/pkg/telemetry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresBookingRepository implements BookingRepository using PostgreSQL with pgxpool
type PostgresBookingRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresBookingRepository creates a new PostgresBookingRepository
func NewPostgresBookingRepository(pool *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{pool: pool}
}

// GetBooking retrieves the cumulative ticket count for (event, user).
// Absence is a zero-count booking, not an error.
func (r *PostgresBookingRepository) GetBooking(ctx context.Context, eventID domain.EventID, userID domain.UserID) (*domain.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", string(eventID)),
		attribute.String("user_id", string(userID)),
	)

	booking := &domain.Booking{EventID: eventID, UserID: userID}
	err := r.pool.QueryRow(ctx,
		`SELECT tickets, updated_at FROM bookings WHERE event_id = $1 AND user_id = $2`,
		string(eventID), string(userID),
	).Scan(&booking.Tickets, &booking.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "no bookings yet")
			return booking, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return booking, nil
}

// Settle commits one payment in a single transaction. The event row is
// locked FOR UPDATE so concurrent settlements serialize on it, then
// capacity and state are re-checked under the lock, the ledger rows
// are staged, and only then is the fund pull invoked. Commit happens
// after the pull succeeds, so a failed pull rolls every row back.
func (r *PostgresBookingRepository) Settle(ctx context.Context, params SettleParams, pull PullFunc) (*domain.Settlement, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.settle")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", string(params.EventID)),
		attribute.String("user_id", string(params.UserID)),
		attribute.Int64("tickets", int64(params.Tickets)),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to begin settlement: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		declined      bool
		expiresAt     int64
		ticketsBooked uint64
		maxTickets    uint64
	)
	err = tx.QueryRow(ctx,
		`SELECT declined, expires_at, tickets_booked, max_tickets FROM events WHERE id = $1 FOR UPDATE`,
		string(params.EventID),
	).Scan(&declined, &expiresAt, &ticketsBooked, &maxTickets)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "event not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to lock event: %w", err)
	}

	if declined {
		span.SetStatus(codes.Error, "event declined")
		return nil, domain.ErrEventDeclined
	}
	if expiresAt <= time.Now().Unix() {
		span.SetStatus(codes.Error, "event expired")
		return nil, domain.ErrEventExpired
	}
	if ticketsBooked+params.Tickets > maxTickets {
		span.SetStatus(codes.Error, "capacity exceeded")
		return nil, domain.ErrCapacityExceeded
	}

	_, err = tx.Exec(ctx,
		`UPDATE events SET tickets_booked = tickets_booked + $2, updated_at = $3 WHERE id = $1`,
		string(params.EventID), params.Tickets, time.Now(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to book tickets: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (event_id, user_id, tickets, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, user_id) DO UPDATE SET
			tickets = bookings.tickets + $3,
			updated_at = $4
	`, string(params.EventID), string(params.UserID), params.Tickets, time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to credit booking: %w", err)
	}

	// External fund pull, while the event row stays locked. An error
	// here aborts the transaction and leaves the ledger untouched.
	transferRef, err := pull(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fund pull failed")
		return nil, err
	}

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

	_, err = tx.Exec(ctx, `
		INSERT INTO settlements (id, event_id, user_id, payer, tickets, total, transfer_ref, schema_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		settlement.ID,
		string(settlement.EventID),
		string(settlement.UserID),
		string(settlement.Payer),
		settlement.Tickets,
		settlement.Total,
		settlement.TransferRef,
		params.SchemaVersion,
		settlement.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to record settlement: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return settlement, nil
}

// GetSettlement retrieves a receipt by id
func (r *PostgresBookingRepository) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.booking.get_settlement")
	defer span.End()

	span.SetAttributes(attribute.String("settlement_id", id))

	settlement := &domain.Settlement{}
	var eventID, userID, payer string
	err := r.pool.QueryRow(ctx, `
		SELECT id, event_id, user_id, payer, tickets, total, transfer_ref, created_at
		FROM settlements
		WHERE id = $1
	`, id).Scan(
		&settlement.ID,
		&eventID,
		&userID,
		&payer,
		&settlement.Tickets,
		&settlement.Total,
		&settlement.TransferRef,
		&settlement.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrSettlementNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	settlement.EventID = domain.EventID(eventID)
	settlement.UserID = domain.UserID(userID)
	settlement.Payer = domain.Address(payer)

	span.SetStatus(codes.Ok, "")
	return settlement, nil
}

// Ensure PostgresBookingRepository implements BookingRepository
var _ BookingRepository = (*PostgresBookingRepository)(nil)
