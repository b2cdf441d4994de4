package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Aswindil12/algus-turf/internal/domain"
	"github.com/Aswindil12/algus-turf/pkg/telemetry"
)

// PostgresUserRepository implements UserRepository using PostgreSQL with pgxpool
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create inserts a new user. Duplicate emails surface as ErrUserAlreadyExists
// via the unique index on users.email.
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.create")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", user.ID))

	query := `
		INSERT INTO users (id, name, email, phone, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO NOTHING`
	tag, err := r.pool.Exec(ctx, query,
		user.ID, user.Name, user.Email, user.Phone, user.PasswordHash, string(user.Role), user.CreatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("insert user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "email already registered")
		return domain.ErrUserAlreadyExists
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	query := `SELECT id, name, email, phone, password_hash, role, created_at FROM users WHERE id = $1`
	return r.queryUser(ctx, span, query, id)
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.get_by_email")
	defer span.End()

	query := `SELECT id, name, email, phone, password_hash, role, created_at FROM users WHERE email = $1`
	return r.queryUser(ctx, span, query, email)
}

// ExistsByEmail checks whether an email is already registered
func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.exists_by_email")
	defer span.End()

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("check user email: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

// Count returns the number of registered users
func (r *PostgresUserRepository) Count(ctx context.Context) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.count")
	defer span.End()

	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("count users: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return count, nil
}

func (r *PostgresUserRepository) queryUser(ctx context.Context, span trace.Span, query string, arg any) (*domain.User, error) {
	user := &domain.User{}
	var role string
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.Phone, &user.PasswordHash, &role, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrUserNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("get user: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}
