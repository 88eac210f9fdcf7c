package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"messenger/errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresUserRepository struct {
	db DBTX
}

func NewPostgresUserRepository(db DBTX) IUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser relies on the unique email constraint to serialize concurrent signups.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, email, hashedPassword string) (string, error) {
	query :=
		`INSERT INTO users (id, email, password_hash, roles)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`

	var id string
	err := r.db.QueryRowContext(ctx, query, uuid.NewString(), email, hashedPassword, "user").Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if stderrors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", errors.ErrUserAlreadyExists
		}
		return "", fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
	return id, nil
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	query :=
		`SELECT id, email, password_hash, roles, created_at FROM users
		 WHERE email = $1`

	var (
		user  User
		roles string
	)
	err := r.db.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Email, &user.PasswordHash, &roles, &user.CreatedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return User{}, errors.ErrNotFound
		}
		return User{}, fmt.Errorf("%w: %w", errors.ErrStoreUnavailable, err)
	}
	user.Roles = strings.Split(roles, ",")
	return user, nil
}
