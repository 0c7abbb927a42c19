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

// PostgresAccessRepository implements AccessRepository using PostgreSQL with pgxpool
type PostgresAccessRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAccessRepository creates a new PostgresAccessRepository
func NewPostgresAccessRepository(pool *pgxpool.Pool) *PostgresAccessRepository {
	return &PostgresAccessRepository{pool: pool}
}

// GetMeta retrieves the one-row initialization record
func (r *PostgresAccessRepository) GetMeta(ctx context.Context) (*domain.EngineMeta, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.access.get_meta")
	defer span.End()

	query := `
		SELECT admin, treasury, operator, token_address, schema_version, initialized_at
		FROM engine_meta
		WHERE id = 1
	`

	meta := &domain.EngineMeta{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&meta.Admin,
		&meta.Treasury,
		&meta.Operator,
		&meta.TokenAddress,
		&meta.SchemaVersion,
		&meta.InitializedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not initialized")
			return nil, domain.ErrNotInitialized
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get engine meta: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return meta, nil
}

// Initialize writes the one-row record and seeds the admin role in the
// same transaction. The fixed-id insert makes a second call conflict.
func (r *PostgresAccessRepository) Initialize(ctx context.Context, meta *domain.EngineMeta) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.access.initialize")
	defer span.End()

	span.SetAttributes(attribute.String("admin", string(meta.Admin)))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO engine_meta (id, admin, treasury, operator, token_address, schema_version, initialized_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := tx.Exec(ctx, query,
		string(meta.Admin),
		string(meta.Treasury),
		string(meta.Operator),
		string(meta.TokenAddress),
		meta.SchemaVersion,
		meta.InitializedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "already initialized")
		return domain.ErrAlreadyInitialized
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO roles (role, address, granted_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		string(domain.RoleAdmin), string(meta.Admin), meta.InitializedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to seed admin role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit initialization: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// HasRole checks membership of the (role, address) pair
func (r *PostgresAccessRepository) HasRole(ctx context.Context, role domain.Role, addr domain.Address) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.access.has_role")
	defer span.End()

	span.SetAttributes(
		attribute.String("role", string(role)),
		attribute.String("address", string(addr)),
	)

	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM roles WHERE role = $1 AND address = $2)`,
		string(role), string(addr),
	).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check role: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// GrantRole adds the (role, address) pair
func (r *PostgresAccessRepository) GrantRole(ctx context.Context, role domain.Role, addr domain.Address) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.access.grant_role")
	defer span.End()

	span.SetAttributes(
		attribute.String("role", string(role)),
		attribute.String("address", string(addr)),
	)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO roles (role, address, granted_at) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
		string(role), string(addr), time.Now(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to grant role: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// RevokeRole removes the (role, address) pair
func (r *PostgresAccessRepository) RevokeRole(ctx context.Context, role domain.Role, addr domain.Address) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.access.revoke_role")
	defer span.End()

	span.SetAttributes(
		attribute.String("role", string(role)),
		attribute.String("address", string(addr)),
	)

	_, err := r.pool.Exec(ctx,
		`DELETE FROM roles WHERE role = $1 AND address = $2`,
		string(role), string(addr),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to revoke role: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// CreatorAddress looks up the creator binding. Absent rows resolve to
// the zero sentinel, same as removed creators.
func (r *PostgresAccessRepository) CreatorAddress(ctx context.Context, id domain.CreatorID) (domain.Address, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.access.creator_address")
	defer span.End()

	span.SetAttributes(attribute.String("creator_id", string(id)))

	var addr string
	err := r.pool.QueryRow(ctx,
		`SELECT address FROM creators WHERE creator_id = $1`,
		string(id),
	).Scan(&addr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "not found")
			return domain.ZeroAddress, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ZeroAddress, fmt.Errorf("failed to get creator address: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return domain.Address(addr), nil
}

// PutCreator upserts the creator binding
func (r *PostgresAccessRepository) PutCreator(ctx context.Context, id domain.CreatorID, addr domain.Address) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.access.put_creator")
	defer span.End()

	span.SetAttributes(attribute.String("creator_id", string(id)))

	_, err := r.pool.Exec(ctx, `
		INSERT INTO creators (creator_id, address, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (creator_id) DO UPDATE SET address = $2, updated_at = $3
	`, string(id), string(addr), time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to put creator: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// RemoveCreator resets the binding to the zero sentinel. The row is
// kept so a later lookup still resolves, just to nothing.
func (r *PostgresAccessRepository) RemoveCreator(ctx context.Context, id domain.CreatorID) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.access.remove_creator")
	defer span.End()

	span.SetAttributes(attribute.String("creator_id", string(id)))

	_, err := r.pool.Exec(ctx, `
		INSERT INTO creators (creator_id, address, updated_at)
		VALUES ($1, '', $2)
		ON CONFLICT (creator_id) DO UPDATE SET address = '', updated_at = $2
	`, string(id), time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to remove creator: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// UserAddress looks up the user binding
func (r *PostgresAccessRepository) UserAddress(ctx context.Context, id domain.UserID) (domain.Address, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.access.user_address")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", string(id)))

	var addr string
	err := r.pool.QueryRow(ctx,
		`SELECT address FROM users WHERE user_id = $1`,
		string(id),
	).Scan(&addr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "not found")
			return domain.ZeroAddress, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.ZeroAddress, fmt.Errorf("failed to get user address: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return domain.Address(addr), nil
}

// PutUser upserts the user binding
func (r *PostgresAccessRepository) PutUser(ctx context.Context, id domain.UserID, addr domain.Address) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.access.put_user")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", string(id)))

	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (user_id, address, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET address = $2, updated_at = $3
	`, string(id), string(addr), time.Now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to put user: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure PostgresAccessRepository implements AccessRepository
var _ AccessRepository = (*PostgresAccessRepository)(nil)
